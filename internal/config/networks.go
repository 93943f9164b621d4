package config

// NetworkConfig identifies the full node and the deployed profile package of one network.
type NetworkConfig struct {
	Name       string
	RPCURL     string
	PackageID  string
	RegistryID string
}

const DefaultNetwork = "mainnet"

// Networks holds the public full nodes. Package and registry ids depend on the
// deployment and are supplied with packageId and registryId.
var Networks = map[string]NetworkConfig{
	"mainnet": {
		Name:   "mainnet",
		RPCURL: "https://fullnode.mainnet.sui.io:443",
	},
	"testnet": {
		Name:   "testnet",
		RPCURL: "https://fullnode.testnet.sui.io:443",
	},
	"devnet": {
		Name:   "devnet",
		RPCURL: "https://fullnode.devnet.sui.io:443",
	},
	"localnet": {
		Name:   "localnet",
		RPCURL: "http://127.0.0.1:9000",
	},
}
