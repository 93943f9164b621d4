package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const DefaultListenAddress = "127.0.0.1:8080"

type Config struct {
	// Network selects an entry of Networks.
	Network string `yaml:"network"`
	// RpcURL, PackageID and RegistryID override the network defaults when set.
	RpcURL     string `yaml:"rpcUrl"`
	PackageID  string `yaml:"packageId"`
	RegistryID string `yaml:"registryId"`
	Node       struct {
		Keyfile string `yaml:"keyfile"`
	} `yaml:"node"`
	Logger struct {
		Verbosity string `yaml:"verbosity"`
	} `yaml:"logger"`
	Server struct {
		ListenAddress string `yaml:"listenAddress"`
	} `yaml:"server"`
	Tx struct {
		GasBudget uint64 `yaml:"gasBudget"`
	} `yaml:"tx"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}

	// A relative keyfile is resolved against the config file's directory.
	if config.Node.Keyfile != "" && !filepath.IsAbs(config.Node.Keyfile) {
		config.Node.Keyfile = filepath.Join(filepath.Dir(path), config.Node.Keyfile)
	}
	if config.Server.ListenAddress == "" {
		config.Server.ListenAddress = DefaultListenAddress
	}

	return &config, nil
}

// Resolve returns the network settings with the configured overrides applied.
func (c *Config) Resolve() (NetworkConfig, error) {
	network := c.Network
	if network == "" {
		network = DefaultNetwork
	}
	nc, ok := Networks[network]
	if !ok {
		return NetworkConfig{}, fmt.Errorf("unknown network %q", network)
	}
	if c.RpcURL != "" {
		nc.RPCURL = c.RpcURL
	}
	if c.PackageID != "" {
		nc.PackageID = c.PackageID
	}
	if c.RegistryID != "" {
		nc.RegistryID = c.RegistryID
	}
	if nc.PackageID == "" {
		return NetworkConfig{}, fmt.Errorf("network %q has no profile package configured", network)
	}
	return nc, nil
}
