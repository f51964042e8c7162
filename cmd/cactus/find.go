package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/pflag"

	"github.com/sir_venger/cactus/internal/discovery"
	"github.com/sir_venger/cactus/internal/models"
	"github.com/sir_venger/cactus/pkg/dropproto"
	"github.com/sir_venger/cactus/pkg/logger"
)

// runFind ищет сервер в локальной сети, печатает его адрес и открывает в браузере.
func runFind(args []string) error {
	fs := pflag.NewFlagSet("find", pflag.ContinueOnError)
	timeout := fs.Duration("timeout", 0, "give up after this long (0 waits until interrupted)")
	noOpen := fs.Bool("no-open", false, "only print the URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := loadConfig(""); err != nil {
		return err
	}

	inst, err := locate(*timeout)
	if err != nil {
		return err
	}

	url := inst.URL()
	fmt.Println(url)
	if *noOpen {
		return nil
	}
	if err := browser.OpenURL(url); err != nil {
		logger.Warn("open browser", "url", url, "error", err)
	}
	return nil
}

// locate блокируется до первого ответа, сигнала или таймаута.
func locate(timeout time.Duration) (models.ResolvedInstance, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	fmt.Fprintln(os.Stderr, "Searching for cactus on the local network...")
	inst, err := discovery.New().Find(ctx, dropproto.Identifier)
	if err != nil {
		return models.ResolvedInstance{}, fmt.Errorf("find %s: %w", dropproto.Identifier, err)
	}
	return inst, nil
}
