package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mdp/qrterminal/v3"
	"github.com/spf13/pflag"

	"github.com/sir_venger/cactus/internal/app/drophttp"
	"github.com/sir_venger/cactus/internal/config"
	"github.com/sir_venger/cactus/internal/discovery"
	"github.com/sir_venger/cactus/internal/models"
	"github.com/sir_venger/cactus/internal/netutil"
	"github.com/sir_venger/cactus/internal/usecase/dropsvc/adapters/disk"
	"github.com/sir_venger/cactus/pkg/logger"
)

const (
	shutdownTimeout = 15 * time.Second
	gcInterval      = time.Hour
)

// runUp поднимает HTTP-сервер, объявляет его в сети и ждёт SIGINT/SIGTERM.
func runUp(args []string) error {
	fs := pflag.NewFlagSet("up", pflag.ContinueOnError)
	port := fs.IntP("port", "p", 0, "port to listen on")
	dir := fs.StringP("dir", "d", "", "directory to save uploaded files")
	cfgPath := fs.String("config", "", "path to YAML config")
	noQR := fs.Bool("no-qr", false, "do not print the QR code")
	noDiscovery := fs.Bool("no-discovery", false, "do not announce the server via mDNS")
	verbose := fs.BoolP("verbose", "v", false, "log every request")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if fs.Changed("port") {
		cfg.Port = *port
	}
	if fs.Changed("dir") {
		cfg.UploadDir = *dir
	}
	if *noQR {
		cfg.ShowQR = false
	}
	if *noDiscovery {
		cfg.Discovery = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if *verbose {
		if err := logger.SetLevel("debug"); err != nil {
			return err
		}
	}

	handler, _, err := drophttp.NewServer(cfg)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", cfg.Port, err)
	}

	stopStagingGC := disk.StartGC(disk.StagingPath(cfg.StagingDir), cfg.StagingTTL, gcInterval)
	defer stopStagingGC()
	stopPartialGC := disk.StartGC(disk.PartialPath(cfg.UploadDir), cfg.StagingTTL, gcInterval)
	defer stopPartialGC()

	dc := discovery.New()
	defer func() {
		if err := dc.Close(); err != nil {
			logger.Warn("withdraw service", "error", err)
		}
	}()
	if cfg.Discovery {
		// Без mDNS сервер всё равно доступен по адресу из баннера.
		if err := dc.Publish(discovery.Record(cfg.Instance, cfg.Port)); err != nil {
			logger.Warn("publish service", "error", err)
		}
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// graceful shutdown по SIGTERM/SIGINT
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("shutdown", "error", err)
		}
	}()

	printBanner(cfg, dc.Published())
	logger.Info("listening", "port", cfg.Port, "dir", cfg.UploadDir, "staging", cfg.StagingDir)

	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	stop()

	// дождаться завершения активных загрузок
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("final shutdown", "error", err)
	}
	logger.Info("server stopped")
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		if err := os.Setenv("CONFIG_PATH", path); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Init(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
		return nil, err
	}
	return cfg, nil
}

func printBanner(cfg *config.Config, announced bool) {
	url := models.ResolvedInstance{Address: netutil.LocalIP(), Port: cfg.Port}.URL()
	fmt.Printf("Serving on %s\n", url)
	if announced {
		fmt.Printf("Announced as %q, run `cactus find` on another machine\n", cfg.Instance)
	}
	if cfg.ShowQR {
		qrterminal.GenerateHalfBlock(url, qrterminal.L, os.Stdout)
	}
}
