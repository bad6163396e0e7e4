package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/tinychain/tinychain/internal/blockchain"
	"github.com/tinychain/tinychain/internal/broadcast"
	"github.com/tinychain/tinychain/internal/rpc"
	"github.com/tinychain/tinychain/internal/wallet"
)

type options struct {
	Port int `short:"p" long:"port" default:"5001" description:"port this node listens on; also selects its wallet and snapshot file suffixes"`
}

// runNode wires a node's components together in the order they depend on
// each other: wallet (load existing keys or stay keyless until /wallet is
// called), the blockchain engine (load an existing snapshot or start from
// genesis), the peer broadcaster, and finally the HTTP facade. It returns
// the constructed *http.Server so main can drive its lifecycle.
func runNode(nodeID string) (*http.Server, error) {
	log.Println("Initializing tinychain node components...")

	wlt, err := wallet.LoadKeys(nodeID)
	if err != nil {
		log.Printf("no existing wallet for node %s, starting keyless: %v", nodeID, err)
		wlt = nil
	} else {
		log.Printf("loaded existing wallet for node %s, public key %.16s...", nodeID, wlt.PublicKey)
	}

	caster := broadcast.New()
	chain := blockchain.New(nodeID, wlt, caster)
	log.Printf("blockchain engine initialized: chain height %d", len(chain.Chain())-1)

	server := &rpc.Server{NodeID: nodeID, Chain: chain, Wallet: wlt}
	router := rpc.NewRouter(server)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", nodeID),
		Handler: router,
	}
	return httpServer, nil
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		log.Fatalf("failed to parse command-line flags: %v", err)
	}

	nodeID := strconv.Itoa(opts.Port)
	log.Printf("Starting tinychain node (tinychaind) on port %s...", nodeID)

	httpServer, err := runNode(nodeID)
	if err != nil {
		log.Fatalf("node initialization failed: %v", err)
	}

	go func() {
		log.Printf("node listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server failed: %v", err)
		}
	}()

	shutdownChannel := make(chan os.Signal, 1)
	signal.Notify(shutdownChannel, os.Interrupt, syscall.SIGTERM)
	sig := <-shutdownChannel
	log.Printf("caught signal: %v. Starting graceful shutdown...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("error during http server shutdown: %v", err)
	}

	log.Println("tinychain node shut down gracefully.")
}
