package dropsvc

import (
	"context"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/sir_venger/cactus/internal/models"
	"github.com/sir_venger/cactus/pkg/logger"
)

// Store сохраняет все части параллельно и ждёт завершения каждой.
// Ошибка одной части не прерывает остальные: каждая горутина кладёт
// свой результат в отдельный слот и всегда возвращает nil.
func (s *Files) Store(ctx context.Context, parts []models.FilePart) models.UploadOutcome {
	results := make([]models.PersistResult, len(parts))

	var eg errgroup.Group
	for i, part := range parts {
		i, part := i, part
		eg.Go(func() error {
			results[i] = s.persistOne(ctx, part)
			return nil
		})
	}
	_ = eg.Wait()

	return models.UploadOutcome{Results: results}
}

func (s *Files) persistOne(ctx context.Context, part models.FilePart) models.PersistResult {
	dst, err := s.Persister.Persist(ctx, part)
	if err != nil {
		logger.Error("file upload failed", "name", part.Name, "error", err)
		if derr := s.Stager.Discard(part); derr != nil {
			logger.Warn("discard staged part", "name", part.Name, "error", derr)
		}
		return models.Failed(part, err)
	}

	logger.Info("file uploaded", "path", dst, "size", humanize.Bytes(uint64(part.Size)))
	return models.Saved(part, dst)
}
