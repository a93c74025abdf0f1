package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/vedhavyas/subspace/app/services/node/handlers"
	"github.com/vedhavyas/subspace/foundation/blockchain/commitment"
	"github.com/vedhavyas/subspace/foundation/blockchain/dsn"
	"github.com/vedhavyas/subspace/foundation/blockchain/dsn/disk"
	"github.com/vedhavyas/subspace/foundation/blockchain/dsn/memory"
	"github.com/vedhavyas/subspace/foundation/blockchain/genesis"
	"github.com/vedhavyas/subspace/foundation/blockchain/state"
	"github.com/vedhavyas/subspace/foundation/blockchain/worker"
	"github.com/vedhavyas/subspace/foundation/events"
	"github.com/vedhavyas/subspace/foundation/logger"
	"github.com/vedhavyas/subspace/foundation/nameservice"
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
			WriteTimeout    time.Duration `conf:"default:30s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
			PrivateHost     string        `conf:"default:0.0.0.0:9080"`
		}
		State struct {
			GenesisPath string `conf:"default:zblock/genesis.json"`
			QueueSize   int    `conf:"default:64"`
		}
		NameService struct {
			Folder string `conf:"default:zblock/farmers/"`
		}
		Storage struct {
			Path            string `conf:"default:zblock/pieces"`
			InMemory        bool   `conf:"default:false"`
			Volatile        bool   `conf:"default:false,help:keep pieces in process maps instead of badger"`
			HeaderCacheSize int    `conf:"default:1024"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "subspace archival node",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
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

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Name Service Support

	// The nameservice package provides name resolution for farmer public keys.
	// The names come from the file names in the zblock/farmers folder.
	ns, err := nameservice.New(cfg.NameService.Folder)
	if err != nil {
		return fmt.Errorf("unable to load farmer name service: %w", err)
	}

	// Logging the farmers for documentation in the logs.
	for pk, name := range ns.Copy() {
		log.Infow("startup", "status", "nameservice", "name", name, "farmer", pk)
	}

	// =========================================================================
	// Genesis Support

	gen, err := genesis.Load(cfg.State.GenesisPath)
	if err != nil {
		return fmt.Errorf("unable to load genesis: %w", err)
	}

	log.Infow("startup", "status", "genesis", "chainid", gen.ChainID, "recordspersegment", gen.Geometry().RecordsPerSegment, "solutionrange", gen.SolutionRange,
		"farmer", ns.Lookup(gen.Farmer))

	// =========================================================================
	// Storage Support

	var store dsn.Store
	switch {
	case cfg.Storage.Volatile:
		log.Infow("startup", "status", "using process memory piece store")
		store = memory.New()

	default:
		log.Infow("startup", "status", "opening badger piece store", "path", cfg.Storage.Path, "inmemory", cfg.Storage.InMemory)
		d, err := disk.New(disk.Config{
			Path:     cfg.Storage.Path,
			InMemory: cfg.Storage.InMemory,
		})
		if err != nil {
			return fmt.Errorf("opening piece store: %w", err)
		}
		store = d
	}

	// =========================================================================
	// Archiver Support

	// The blockchain packages accept a function of this signature to allow the
	// application to log. These raw messages are also sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(events.Parse(s))
	}

	// The state value represents the archival node and manages the archiver
	// and the piece store and provides an API for application support.
	st, err := state.New(state.Config{
		Geometry:        gen.Geometry(),
		Committer:       commitment.NewHashCommitter(),
		Store:           store,
		HeaderCacheSize: cfg.Storage.HeaderCacheSize,
		EvHandler:       ev,
	})
	if err != nil {
		store.Close()
		return err
	}
	defer st.Shutdown()

	// Block zero carries the genesis solution and is archived before any
	// submitted block.
	genesisBlock, err := gen.Block()
	if err != nil {
		return err
	}
	if _, err := st.ArchiveBlock(context.Background(), genesisBlock); err != nil {
		return fmt.Errorf("archiving genesis block: %w", err)
	}

	// The worker package archives submitted blocks in the background. The
	// worker will register itself with the state.
	worker.Run(st, cfg.State.QueueSize, ev)

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log, st)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
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

	log.Infow("startup", "status", "initializing V1 public API support")

	// Construct the mux for the public API calls.
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    st,
		NS:       ns,
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
	// Start Private Service

	log.Infow("startup", "status", "initializing V1 private API support")

	// Construct the mux for the private API calls.
	privateMux := handlers.PrivateMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    st,
	})

	// Construct a server to service the requests against the mux.
	private := http.Server{
		Addr:         cfg.Web.PrivateHost,
		Handler:      privateMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "private api router started", "host", private.Addr)
		serverErrors <- private.ListenAndServe()
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
		ctx, cancelPri := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancelPri()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown private API started")
		if err := private.Shutdown(ctx); err != nil {
			private.Close()
			return fmt.Errorf("could not stop private service gracefully: %w", err)
		}

		// Give outstanding requests a deadline for completion.
		ctx, cancelPub := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancelPub()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}
