package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	mocks "github.com/polymedia/polymedia-profile/mocks/profile"
	"github.com/polymedia/polymedia-profile/pkg/profile"
)

const (
	aliceAddress = "0x000000000000000000000000000000000000000000000000000000000000000a"
	bobAddress   = "0x000000000000000000000000000000000000000000000000000000000000000b"
	aliceID      = "0x000000000000000000000000000000000000000000000000000000000000001a"
)

var alice = &profile.Profile{
	ID:    aliceID,
	Name:  "Alice",
	Data:  json.RawMessage(`{"n":1}`),
	Owner: aliceAddress,
}

func newTestServer(t *testing.T) (*mocks.MockProfileLookup, *httptest.Server) {
	m := new(mocks.MockProfileLookup)
	srv := httptest.NewServer(NewHandler(m, zap.NewNop()).Routes())
	t.Cleanup(srv.Close)
	return m, srv
}

func TestGetProfileByOwner(t *testing.T) {
	m, srv := newTestServer(t)
	m.On("GetProfileByOwner", mock.Anything, "0xa", true).Return(alice, nil).Once()
	m.On("GetProfileByOwner", mock.Anything, "0xb", false).Return(nil, nil).Once()
	m.On("GetProfileByOwner", mock.Anything, "nope", true).Return(nil, profile.ErrInvalidAddress).Once()
	m.On("GetProfileByOwner", mock.Anything, "0xc", true).Return(nil, &profile.LookupError{Status: "failure", Message: "abort"}).Once()

	t.Run("found", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/v1/owners/0xa/profile")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		var got profile.Profile
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, *alice, got)
	})

	t.Run("no profile", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/v1/owners/0xb/profile?cache=false")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("invalid address", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/v1/owners/nope/profile")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("lookup failure", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/v1/owners/0xc/profile")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})

	m.AssertExpectations(t)
}

func TestGetProfileByID(t *testing.T) {
	m, srv := newTestServer(t)
	m.On("GetProfileObjectByID", mock.Anything, "0x1a").Return(alice, nil).Once()
	m.On("GetProfileObjectByID", mock.Anything, "0x2a").Return(nil, nil).Once()
	m.On("GetProfileObjectByID", mock.Anything, "0x3a").Return(nil, &profile.DecodingError{ObjectID: "0x3a", Reason: "wrong type"}).Once()
	m.On("GetProfileObjectByID", mock.Anything, "0x4a").Return(nil, errors.New("connection refused")).Once()
	m.On("GetProfileObjectByID", mock.Anything, "bogus").Return(nil, profile.ErrInvalidAddress).Once()

	for path, want := range map[string]int{
		"/v1/profiles/0x1a":  http.StatusOK,
		"/v1/profiles/0x2a":  http.StatusNotFound,
		"/v1/profiles/0x3a":  http.StatusNotFound,
		"/v1/profiles/0x4a":  http.StatusBadGateway,
		"/v1/profiles/bogus": http.StatusBadRequest,
	} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, want, resp.StatusCode, path)
	}

	resp, err := http.Post(srv.URL+"/v1/profiles/0x1a", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	m.AssertExpectations(t)
}

func TestGetProfilesByOwner(t *testing.T) {
	t.Run("ordered entries", func(t *testing.T) {
		m, srv := newTestServer(t)
		results, err := profile.NewResults([]string{bobAddress, aliceAddress}, map[string]*profile.Profile{aliceAddress: alice})
		require.NoError(t, err)
		m.On("GetProfilesByOwner", mock.Anything, []string{"0xb", "0xa", "0xb"}, true).Return(results, nil).Once()

		resp, err := http.Post(srv.URL+"/v1/owners/profiles", "application/json",
			strings.NewReader(`{"addresses":["0xb","0xa","0xb"]}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got []OwnerProfile
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		require.Len(t, got, 2)
		assert.Equal(t, bobAddress, got[0].Address)
		assert.Nil(t, got[0].Profile)
		assert.Equal(t, aliceAddress, got[1].Address)
		assert.Equal(t, alice, got[1].Profile)
		m.AssertExpectations(t)
	})

	t.Run("invalid body", func(t *testing.T) {
		_, srv := newTestServer(t)
		resp, err := http.Post(srv.URL+"/v1/owners/profiles", "application/json", strings.NewReader(`{"addresses":`))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("too many addresses", func(t *testing.T) {
		_, srv := newTestServer(t)
		body, err := json.Marshal(BatchRequest{Addresses: make([]string, MaxBatchAddresses+1)})
		require.NoError(t, err)
		resp, err := http.Post(srv.URL+"/v1/owners/profiles", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("lookup failure", func(t *testing.T) {
		m, srv := newTestServer(t)
		m.On("GetProfilesByOwner", mock.Anything, []string{"0xa"}, true).Return(nil, errors.New("connection refused")).Once()
		resp, err := http.Post(srv.URL+"/v1/owners/profiles", "application/json", strings.NewReader(`{"addresses":["0xa"]}`))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	_, srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUseCache(t *testing.T) {
	for query, want := range map[string]bool{
		"":             true,
		"?cache=true":  true,
		"?cache=false": false,
		"?cache=0":     false,
		"?cache=bogus": true,
	} {
		r := httptest.NewRequest(http.MethodGet, "/v1/profiles/0x1"+query, nil)
		assert.Equal(t, want, useCache(r), query)
	}
}
