package serverrun

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	cfgpkg "github.com/moorlog/moor/internal/config"
	"github.com/moorlog/moor/internal/relay"
	"github.com/moorlog/moor/internal/runtime"
	httpserver "github.com/moorlog/moor/internal/server/http"
	anchorsvc "github.com/moorlog/moor/internal/services/anchors"
	pebblestore "github.com/moorlog/moor/internal/storage/pebble"
	logpkg "github.com/moorlog/moor/pkg/log"
)

func getenvDefault(key, def string) string {
	if v := func() string { return getenv(key) }(); v != "" {
		return v
	}
	return def
}

// small wrapper to allow testing; replaced by os.Getenv at build time
var getenv = func(key string) string { return os.Getenv(key) }

type Options struct {
	DataDir       string
	HTTPAddr      string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
}

// Run starts the HTTP server (and the Kafka relay when brokers are
// configured) and blocks until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	// Be robust to callers that don't pass a signal-aware context
	// or if signal delivery needs to be observed here. We layer a
	// local signal context over the provided one.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}
	storeDir := filepath.Join(opts.DataDir, "store")
	rt, err := runtime.Open(runtime.Options{DataDir: storeDir, Fsync: opts.Fsync, FsyncInterval: opts.FsyncInterval, Config: opts.Config})
	if err != nil {
		return err
	}
	defer rt.Close()

	// Build process-wide logger using env/ApplyConfig; defaults: level=info, format=text
	cfg := &logpkg.Config{
		Level:  getenvDefault("MOOR_LOG_LEVEL", "info"),
		Format: getenvDefault("MOOR_LOG_FORMAT", "text"),
	}
	procLogger, err := logpkg.ApplyConfig(cfg)
	if err != nil {
		// Fallback to a sane default
		lvl := logpkg.InfoLevel
		if l, e := logpkg.ParseLevel(cfg.Level); e == nil {
			lvl = l
		}
		procLogger = logpkg.NewLogger(logpkg.WithLevel(lvl), logpkg.WithFormatter(&logpkg.TextFormatter{}))
	}

	// Redirect stdlib logs (e.g., Pebble) to our logger
	logpkg.RedirectStdLog(procLogger)

	procLogger.Info("Starting moor server",
		logpkg.Str("http", opts.HTTPAddr),
		logpkg.Str("stream", opts.Config.StreamName),
		logpkg.Str("level", cfg.Level),
		logpkg.Str("format", cfg.Format),
	)

	// One shared service instance backs the HTTP surface and the relay.
	svc, err := anchorsvc.NewWithLogger(rt, procLogger.With(logpkg.Component("anchors")))
	if err != nil {
		return err
	}
	hsrv := httpserver.NewWithService(rt, svc)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := hsrv.ListenAndServe(sctx, opts.HTTPAddr); err != nil && sctx.Err() == nil {
			log.Printf("http error: %v", err)
		}
	}()

	if len(opts.Config.KafkaBrokers) > 0 {
		rel := relay.New(svc, opts.Config.KafkaBrokers, opts.Config.KafkaTopic, procLogger.With(logpkg.Component("relay")))
		procLogger.Info("Starting Kafka relay",
			logpkg.Str("topic", opts.Config.KafkaTopic),
			logpkg.Int("brokers", len(opts.Config.KafkaBrokers)),
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := rel.Run(sctx); err != nil && sctx.Err() == nil {
				log.Printf("relay error: %v", err)
			}
		}()
	}

	<-sctx.Done()
	// Initiate graceful shutdown of the server before closing the runtime/DB to avoid races.
	hsrv.Close()
	wg.Wait()
	return nil
}
