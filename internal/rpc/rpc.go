// Package rpc is tinychain's HTTP facade: it owns no blockchain logic of
// its own, translating the thirteen JSON endpoints directly into calls
// on an *blockchain.Blockchain and a *wallet.Wallet, writing back whatever
// status code the engine's return value maps to.
//
// Modeled on a neighboring validator's ledger query handlers: a handler
// struct holding its dependencies, one method per route,
// `w.Header().Set("Content-Type", "application/json")` followed by
// `http.Error` with a JSON body on failure. Routing itself uses
// gorilla/mux for the path-parameterized DELETE /node/{url} route that
// net/http's own ServeMux cannot express as cleanly.
package rpc

import (
	"encoding/json"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/tinychain/tinychain/internal/blockchain"
	"github.com/tinychain/tinychain/internal/core"
	"github.com/tinychain/tinychain/internal/wallet"
)

var logger = log.New(os.Stdout, "[rpc] ", log.LstdFlags)

// Server holds the dependencies every handler needs: the engine, the
// node's own wallet (nil until one is created or loaded), and the node id
// used to derive wallet and snapshot file names.
type Server struct {
	NodeID string
	Chain  *blockchain.Blockchain
	Wallet *wallet.Wallet
}

// NewRouter builds the mux.Router exposing every endpoint.
func NewRouter(s *Server) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/network", s.handleNetwork).Methods(http.MethodGet)
	r.HandleFunc("/wallet", s.handleCreateWallet).Methods(http.MethodPost)
	r.HandleFunc("/wallet", s.handleLoadWallet).Methods(http.MethodGet)
	r.HandleFunc("/balance", s.handleBalance).Methods(http.MethodGet)
	r.HandleFunc("/transaction", s.handleTransaction).Methods(http.MethodPost)
	r.HandleFunc("/broadcast-transaction", s.handleBroadcastTransaction).Methods(http.MethodPost)
	r.HandleFunc("/broadcast-block", s.handleBroadcastBlock).Methods(http.MethodPost)
	r.HandleFunc("/mine", s.handleMine).Methods(http.MethodPost)
	r.HandleFunc("/resolve-conflicts", s.handleResolve).Methods(http.MethodPost)
	r.HandleFunc("/transactions", s.handleTransactions).Methods(http.MethodGet)
	r.HandleFunc("/chain", s.handleChain).Methods(http.MethodGet)
	r.HandleFunc("/node", s.handleAddNode).Methods(http.MethodPost)
	r.HandleFunc("/node/{url:.*}", s.handleRemoveNode).Methods(http.MethodDelete)
	r.HandleFunc("/nodes", s.handleListNodes).Methods(http.MethodGet)
	return r
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Printf("failed to encode response body: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleIndex and handleNetwork serve the node's static HTML UI. The UI
// itself is out of scope for this facade; a minimal placeholder page is
// served so the routes exist and return 200.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(indexHTML))
}

func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(networkHTML))
}

func (s *Server) handleCreateWallet(w http.ResponseWriter, r *http.Request) {
	wlt, err := wallet.CreateKeys()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate wallet keys")
		return
	}
	if err := wlt.SaveKeys(s.NodeID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save wallet keys")
		return
	}
	s.Wallet = wlt
	s.Chain.SetWallet(wlt)
	writeJSON(w, http.StatusCreated, walletResponse(wlt, s.Chain.GetBalance(wlt.PublicKey)))
}

func (s *Server) handleLoadWallet(w http.ResponseWriter, r *http.Request) {
	wlt, err := wallet.LoadKeys(s.NodeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load wallet keys")
		return
	}
	s.Wallet = wlt
	s.Chain.SetWallet(wlt)
	writeJSON(w, http.StatusCreated, walletResponse(wlt, s.Chain.GetBalance(wlt.PublicKey)))
}

func walletResponse(w *wallet.Wallet, funds float64) map[string]interface{} {
	return map[string]interface{}{
		"public_key":  w.PublicKey,
		"private_key": w.PrivateKeyHex(),
		"funds":       funds,
	}
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	if s.Wallet == nil {
		writeError(w, http.StatusInternalServerError, "node has no wallet loaded")
		return
	}
	funds := s.Chain.GetBalance(s.Wallet.PublicKey)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "balance computed successfully",
		"funds":   funds,
	})
}

type transactionRequest struct {
	Recipient string  `json:"recipient"`
	Amount    float64 `json:"amount"`
}

func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	if s.Wallet == nil {
		writeError(w, http.StatusBadRequest, "node has no wallet loaded")
		return
	}
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Recipient == "" {
		writeError(w, http.StatusBadRequest, "recipient and amount are required")
		return
	}
	signature, err := s.Wallet.SignTransaction(s.Wallet.PublicKey, req.Recipient, req.Amount)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to sign transaction")
		return
	}
	tx := core.NewTransaction(s.Wallet.PublicKey, req.Recipient, signature, req.Amount)
	if !s.Chain.AddTransaction(tx.Sender, tx.Recipient, tx.Signature, tx.Amount, false) {
		writeError(w, http.StatusInternalServerError, "transaction was not admitted")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":     "transaction will be added to the next mined block",
		"transaction": tx,
		"funds":       s.Chain.GetBalance(s.Wallet.PublicKey),
	})
}

func (s *Server) handleBroadcastTransaction(w http.ResponseWriter, r *http.Request) {
	var full struct {
		Sender    string  `json:"sender"`
		Recipient string  `json:"recipient"`
		Amount    float64 `json:"amount"`
		Signature string  `json:"signature"`
	}
	if err := json.NewDecoder(r.Body).Decode(&full); err != nil || full.Sender == "" || full.Recipient == "" {
		writeError(w, http.StatusBadRequest, "sender, recipient, amount and signature are required")
		return
	}
	if !s.Chain.AddTransaction(full.Sender, full.Recipient, full.Signature, full.Amount, true) {
		writeError(w, http.StatusInternalServerError, "broadcast transaction was declined")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "transaction accepted"})
}

type broadcastBlockRequest struct {
	Block core.Block `json:"block"`
}

func (s *Server) handleBroadcastBlock(w http.ResponseWriter, r *http.Request) {
	var req broadcastBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "block is required")
		return
	}
	switch s.Chain.AddBlock(req.Block) {
	case blockchain.BlockAppended:
		writeJSON(w, http.StatusCreated, map[string]string{"message": "block appended"})
	case blockchain.BlockDeferred:
		writeJSON(w, http.StatusOK, map[string]string{"message": "block deferred, resolution pending"})
	default:
		writeError(w, http.StatusConflict, "block rejected")
	}
}

func (s *Server) handleMine(w http.ResponseWriter, r *http.Request) {
	block, outcome := s.Chain.MineBlock()
	switch outcome {
	case blockchain.MineOK:
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"message": "new block mined",
			"block":   block,
			"funds":   s.Chain.GetBalance(s.Wallet.PublicKey),
		})
	case blockchain.MineResolvePending:
		writeError(w, http.StatusConflict, "mining is disabled while a resolution is pending")
	default:
		writeError(w, http.StatusInternalServerError, "mining failed")
	}
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	replaced := s.Chain.Resolve()
	message := "chain was authoritative, no replacement was necessary"
	if replaced {
		message = "chain was replaced with a longer peer chain"
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": message})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Chain.Pool())
}

func (s *Server) handleChain(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Chain.Chain())
}

type nodeRequest struct {
	Node string `json:"node"`
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var req nodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Node == "" {
		writeError(w, http.StatusBadRequest, "node is required")
		return
	}
	if err := s.Chain.AddPeer(req.Node); err != nil {
		logger.Printf("failed to persist after adding peer %s: %v", req.Node, err)
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "node added",
		"all_nodes": s.Chain.Peers(),
	})
}

func (s *Server) handleRemoveNode(w http.ResponseWriter, r *http.Request) {
	url := mux.Vars(r)["url"]
	if url == "" {
		writeError(w, http.StatusBadRequest, "node url is required")
		return
	}
	if err := s.Chain.RemovePeer(url); err != nil {
		logger.Printf("failed to persist after removing peer %s: %v", url, err)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "node removed",
		"all_nodes": s.Chain.Peers(),
	})
}

func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"all_nodes": s.Chain.Peers()})
}
