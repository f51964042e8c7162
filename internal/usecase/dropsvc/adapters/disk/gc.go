package disk

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sir_venger/cactus/pkg/logger"
)

// StartGC стартует периодическую очистку служебного подкаталога (StagingPath или PartialPath)
// от файлов, брошенных упавшими запросами. Каталог загрузок целиком сюда не передаётся.
func StartGC(root string, ttl time.Duration, every time.Duration) func() {
	if every <= 0 || ttl <= 0 {
		return func() {}
	}

	ticker := time.NewTicker(every)
	stop := make(chan struct{})
	var once sync.Once
	go func() {
		for {
			select {
			case <-ticker.C:
				if n, err := sweepOnce(root, ttl); err != nil {
					logger.Warn("staging sweep failed", "dir", root, "error", err)
				} else if n > 0 {
					logger.Info("staging sweep", "dir", root, "removed", n)
				}
			case <-stop:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		once.Do(func() {
			close(stop)
		})
	}
}

// sweepOnce удаляет временные и недописанные файлы cactus старше ttl.
// Отсутствующий каталог не ошибка: .cactus-partial создаётся только при копировании.
func sweepOnce(root string, ttl time.Duration) (int, error) {
	now := time.Now()
	entries, err := os.ReadDir(root)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() || !isLeftover(e.Name()) {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < ttl {
			continue
		}

		if err := os.Remove(filepath.Join(root, e.Name())); err == nil {
			removed++
		}
	}

	return removed, nil
}

func isLeftover(name string) bool {
	if !strings.HasPrefix(name, leftoverPrefix) {
		return false
	}
	return strings.HasSuffix(name, stagingSuffix) || strings.HasSuffix(name, partialSuffix)
}
