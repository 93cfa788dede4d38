package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/edublock/edublock/app/services/node/handlers"
	"github.com/edublock/edublock/foundation/blockchain/genesis"
	"github.com/edublock/edublock/foundation/blockchain/peer"
	"github.com/edublock/edublock/foundation/blockchain/state"
	"github.com/edublock/edublock/foundation/blockchain/storage"
	"github.com/edublock/edublock/foundation/blockchain/storage/memory"
	"github.com/edublock/edublock/foundation/blockchain/storage/pebbledb"
	"github.com/edublock/edublock/foundation/blockchain/wallet"
	"github.com/edublock/edublock/foundation/blockchain/worker"
	"github.com/edublock/edublock/foundation/events"
	"github.com/edublock/edublock/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:120s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
		}
		Node struct {
			KeyFile     string   `conf:"default:zblock/accounts/miner.json"`
			GenesisFile string   `conf:"default:zblock/genesis.json"`
			Backend     string   `conf:"default:memory"`
			DBPath      string   `conf:"default:zblock/blocks.db"`
			KnownPeers  []string `conf:"default:0.0.0.0:8080;0.0.0.0:8180"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Blockchain Support

	// Load the genesis information so every node agrees on difficulty
	// and mining reward.
	gen, err := genesis.Load(cfg.Node.GenesisFile)
	if err != nil {
		return fmt.Errorf("unable to load genesis file: %w", err)
	}
	log.Infow("startup", "status", "genesis", "difficulty", gen.Difficulty, "reward", gen.MiningReward)

	// Load the miner wallet so rewards credit this node. A missing key
	// file gets a fresh wallet written in its place.
	w, err := loadOrCreateWallet(cfg.Node.KeyFile)
	if err != nil {
		return fmt.Errorf("unable to load miner wallet: %w", err)
	}
	log.Infow("startup", "status", "miner wallet", "address", w.Address())

	// A peer set is a collection of known nodes in the network so
	// transactions and blocks can be shared.
	peerSet := peer.NewSet()
	for _, host := range cfg.Node.KnownPeers {
		if pr, ok := peer.New(host); ok {
			peerSet.Add(pr)
		}
	}

	// Select the storage backend for the write-through of sealed blocks.
	var store storage.Store
	switch cfg.Node.Backend {
	case "memory":
		store = memory.New()
	case "pebble":
		store, err = pebbledb.New(cfg.Node.DBPath)
		if err != nil {
			return fmt.Errorf("unable to open block storage: %w", err)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Node.Backend)
	}

	// The blockchain packages accept a function of this signature to allow
	// the application to log. These raw messages are also sent to any
	// websocket client that is connected into the system through the
	// events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)
	}

	// The state value represents the blockchain node and manages the chain,
	// the pending pool, and the peer set.
	st, err := state.New(state.Config{
		MinerAddress: w.Address(),
		Host:         cfg.Web.PublicHost,
		Genesis:      gen,
		KnownPeers:   peerSet,
		Storage:      store,
		EvHandler:    ev,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	// The worker package implements the different workflows such as mining,
	// transaction sharing, and chain resolution. The worker will register
	// itself with the state.
	worker.Run(st, ev)

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug router started", "host", cfg.Web.DebugHost)

	// The Debug function returns a mux to listen and serve on for all the
	// debug related endpoints. This includes the standard library endpoints.
	debugMux := handlers.DebugMux(build, log)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing public API support")

	// Construct the mux for the public API calls.
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    st,
		Evts:     evts,
	})

	// Construct a server to service the requests against the mux.
	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}

// loadOrCreateWallet reads the miner key file, generating and persisting a
// fresh wallet when the file does not exist yet.
func loadOrCreateWallet(path string) (*wallet.Wallet, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return wallet.FromJSON(data)
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	w, err := wallet.New()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	data, err = w.ExportJSON()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return nil, err
	}

	return w, nil
}
