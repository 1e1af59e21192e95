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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/pflag"
	"github.com/sv2linux/sv2-bridge/internal/bridge"
	"github.com/sv2linux/sv2-bridge/internal/config"
	authHandler "github.com/sv2linux/sv2-bridge/internal/controller/http/auth"
	"github.com/sv2linux/sv2-bridge/internal/delivery"
	sqliteRepo "github.com/sv2linux/sv2-bridge/internal/repositories/invocations/sqlite"
	"github.com/sv2linux/sv2-bridge/pkg/callback"
	"github.com/sv2linux/sv2-bridge/pkg/common/logger"
	irepo "github.com/sv2linux/sv2-bridge/pkg/repositories/invocations"
)

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	flags := pflag.NewFlagSet("sv2-bridge", pflag.ContinueOnError)
	port := flags.Int("port", 0, "listener port (default 8888, or SV2_BRIDGE_PORT)")
	bottle := flags.String("bottle", "", "Bottles bottle name holding SV2")
	handleURI := flags.String("handle-uri", "", "relay a single dreamtonics-svstudio2:// URI and exit")
	logPath := flags.String("log-file", "", "append-only log file (default /tmp/auth_bridge.log)")
	debug := flags.Bool("debug", false, "enable debug logging")
	if err := flags.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		return 1
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *bottle != "" {
		cfg.Bottle = *bottle
	}
	if *logPath != "" {
		cfg.LogPath = *logPath
	}
	if *debug {
		cfg.LogLevel = "debug"
	}

	logger.Initialize(cfg.LogLevel)
	if err := logger.AttachFile(cfg.LogPath); err != nil {
		logger.Warn("cannot open log file %s: %v", cfg.LogPath, err)
	}
	defer logger.Close()

	writer := delivery.NewWriter(delivery.ResolvePrefix(cfg.Bottle))
	logger.Debug("wine prefix: %s", writer.Prefix())

	// The relay must still work when the audit store is unavailable (bad
	// HOME, read-only disk); status just loses history.
	var repo irepo.Repository
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		logger.Warn("invocation store unavailable: %v", err)
	} else if r, err := sqliteRepo.NewSQLiteRepo(cfg.DBPath); err != nil {
		logger.Warn("invocation store unavailable: %v", err)
	} else {
		repo = r
		defer repo.Disconnect()
	}

	svc := bridge.NewService(writer, repo)

	// Mode selection: a URI (flag or positional, the OS-dispatch contract)
	// runs the pipeline once; no URI starts the listener.
	args := flags.Args()
	if *handleURI != "" {
		args = []string{*handleURI}
	}
	if len(args) > 0 {
		return runOnce(svc, args)
	}
	return serve(svc, repo, cfg)
}

func runOnce(svc *bridge.Service, args []string) int {
	inv, err := callback.FromArgs(args)
	if err != nil {
		logger.Error("invocation rejected: %v", err)
		return 1
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := svc.Process(ctx, inv); err != nil {
		logger.Error("relay failed (%s): %v", bridge.OutcomeKind(err), err)
		return 1
	}
	fmt.Println("Authentication forwarded to SV2 successfully")
	return 0
}

func serve(svc *bridge.Service, repo irepo.Repository, cfg *config.Config) int {
	h := authHandler.NewHandler(svc, repo, cfg.Port, cfg.ResponseType)
	router := chi.NewRouter()
	const maxBodySize = 1 << 20
	router.Use(middleware.RequestSize(maxBodySize))
	router.Use(middleware.Recoverer)
	router.Mount("/", h.Router())

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: withCORS(router)}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("auth bridge listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		logger.Error("listen: %v", err)
		return 1
	case sig := <-stop:
		logger.Info("received %s, shutting down...", sig)
	}

	// In-flight callbacks finish delivering before the listener closes.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown: %v", err)
	}
	logger.Info("auth bridge stopped")
	return 0
}
