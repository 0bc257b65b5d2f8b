package serverrun

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	cfgpkg "github.com/mgale/MemQueue/internal/config"
	"github.com/mgale/MemQueue/internal/runtime"
	httpserver "github.com/mgale/MemQueue/internal/server/http"
	logpkg "github.com/mgale/MemQueue/pkg/log"
)

// Options for starting the server process.
type Options struct {
	HTTPAddr string
	Config   cfgpkg.Config
}

// Run opens the runtime and serves HTTP until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	// Layer a local signal context over the provided one so callers
	// that pass context.Background() still get clean shutdown.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := opts.Config

	logCfg := &logpkg.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}
	procLogger, err := logpkg.ApplyConfig(logCfg)
	if err != nil {
		lvl := logpkg.InfoLevel
		if l, e := logpkg.ParseLevel(cfg.Log.Level); e == nil {
			lvl = l
		}
		procLogger = logpkg.NewLogger(logpkg.WithLevel(lvl), logpkg.WithFormatter(&logpkg.TextFormatter{}))
	}

	// Redirect stdlib logs (e.g., Pebble) to our logger.
	logpkg.RedirectStdLog(procLogger)

	rt, err := runtime.Open(sctx, runtime.Options{Config: cfg, Logger: procLogger})
	if err != nil {
		return err
	}
	defer rt.Close()

	procLogger.Info("Starting memqueue server",
		logpkg.Str("http", opts.HTTPAddr),
		logpkg.Str("backend", cfg.Backend),
		logpkg.Bool("autodelete", cfg.AutoDelete),
		logpkg.Int("client_lag_seconds", cfg.ClientLagSeconds),
		logpkg.Str("level", cfg.Log.Level),
		logpkg.Str("format", cfg.Log.Format),
	)

	hsrv := httpserver.New(rt, procLogger)
	errCh := make(chan error, 1)
	go func() { errCh <- hsrv.ListenAndServe(sctx, opts.HTTPAddr) }()

	select {
	case <-sctx.Done():
	case err := <-errCh:
		if err != nil && sctx.Err() == nil {
			return err
		}
	}
	hsrv.Close()
	return nil
}
