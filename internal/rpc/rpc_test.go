package rpc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinychain/tinychain/internal/blockchain"
	"github.com/tinychain/tinychain/internal/broadcast"
	"github.com/tinychain/tinychain/internal/core"
	"github.com/tinychain/tinychain/internal/wallet"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func newTestServer(t *testing.T) (*Server, *wallet.Wallet) {
	t.Helper()
	chdirTemp(t)
	w, err := wallet.CreateKeys()
	require.NoError(t, err)
	chain := blockchain.New("5001", w, broadcast.New())
	return &Server{NodeID: "5001", Chain: chain, Wallet: w}, w
}

func doRequest(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	NewRouter(s).ServeHTTP(rec, req)
	return rec
}

func TestHandleIndexAndNetworkReturn200(t *testing.T) {
	s, _ := newTestServer(t)
	assert.Equal(t, http.StatusOK, doRequest(t, s, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusOK, doRequest(t, s, http.MethodGet, "/network", nil).Code)
}

func TestHandleCreateWallet(t *testing.T) {
	s, _ := newTestServer(t)
	s.Wallet = nil
	rec := doRequest(t, s, http.MethodPost, "/wallet", nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["public_key"])
	assert.NotEmpty(t, body["private_key"])
}

func TestHandleBalanceWithoutWallet(t *testing.T) {
	s, _ := newTestServer(t)
	s.Wallet = nil
	rec := doRequest(t, s, http.MethodGet, "/balance", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleBalanceWithWallet(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/balance", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleMineProducesBlock(t *testing.T) {
	s, w := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/mine", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, core.MiningReward, s.Chain.GetBalance(w.PublicKey))
}

func TestHandleMineFailsWithoutWallet(t *testing.T) {
	s, _ := newTestServer(t)
	s.Wallet = nil
	s.Chain = blockchain.New("5001", nil, broadcast.New())
	rec := doRequest(t, s, http.MethodPost, "/mine", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleMineSucceedsAfterWalletCreatedOnKeylessNode(t *testing.T) {
	s, _ := newTestServer(t)
	s.Wallet = nil
	s.Chain = blockchain.New("5001", nil, broadcast.New())

	rec := doRequest(t, s, http.MethodPost, "/mine", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code, "keyless node cannot mine yet")

	rec = doRequest(t, s, http.MethodPost, "/wallet", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/mine", nil)
	assert.Equal(t, http.StatusCreated, rec.Code, "engine's own wallet must be synced by the /wallet handler")
}

func TestHandleTransactionRequiresWallet(t *testing.T) {
	s, _ := newTestServer(t)
	s.Wallet = nil
	rec := doRequest(t, s, http.MethodPost, "/transaction", map[string]interface{}{"recipient": "bob", "amount": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleTransactionAdmitsFundedTransfer(t *testing.T) {
	s, _ := newTestServer(t)
	doRequest(t, s, http.MethodPost, "/mine", nil)

	rec := doRequest(t, s, http.MethodPost, "/transaction", map[string]interface{}{"recipient": "bob-pub-key", "amount": 2})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, s.Chain.Pool(), 1)
}

func TestHandleTransactionRejectsUnfundedTransfer(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/transaction", map[string]interface{}{"recipient": "bob-pub-key", "amount": 1000})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleBroadcastBlockOutcomes(t *testing.T) {
	s, _ := newTestServer(t)

	tip := s.Chain.Chain()[0]
	lastHash, err := core.HashBlock(tip)
	require.NoError(t, err)

	rec := doRequest(t, s, http.MethodPost, "/broadcast-block", map[string]interface{}{
		"block": map[string]interface{}{
			"index":         5,
			"previous_hash": lastHash,
			"timestamp":     1,
			"proof":         0,
			"transactions":  []interface{}{},
		},
	})
	assert.Equal(t, http.StatusOK, rec.Code, "far-future index should defer, not reject")

	rec = doRequest(t, s, http.MethodPost, "/broadcast-block", map[string]interface{}{
		"block": map[string]interface{}{
			"index":         0,
			"previous_hash": "",
			"timestamp":     0,
			"proof":         100,
			"transactions":  []interface{}{},
		},
	})
	assert.Equal(t, http.StatusConflict, rec.Code, "stale index should be rejected")
}

func TestHandleNodeLifecycle(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/node", map[string]interface{}{"node": "localhost:5002"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/nodes", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["all_nodes"], "localhost:5002")

	rec = doRequest(t, s, http.MethodDelete, "/node/localhost:5002", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleChainAndTransactions(t *testing.T) {
	s, _ := newTestServer(t)
	assert.Equal(t, http.StatusOK, doRequest(t, s, http.MethodGet, "/chain", nil).Code)
	assert.Equal(t, http.StatusOK, doRequest(t, s, http.MethodGet, "/transactions", nil).Code)
}

func TestHandleResolveConflicts(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/resolve-conflicts", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
