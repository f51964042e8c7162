package dropsvc

import (
	"context"
	"io"
	"net/http"

	"github.com/sir_venger/cactus/internal/models"
)

type (
	// Stager выкладывает байты части во временное хранилище.
	Stager interface {
		Stage(name string, r io.Reader) (models.FilePart, error)
		Discard(part models.FilePart) error
	}

	// Persister переносит выложенную часть в каталог загрузок и возвращает финальный путь.
	Persister interface {
		Persist(ctx context.Context, part models.FilePart) (string, error)
	}

	// Service объединяет разбор запроса и сохранение файлов.
	Service interface {
		Decode(r *http.Request) ([]models.FilePart, error)
		Store(ctx context.Context, parts []models.FilePart) models.UploadOutcome
	}
)

type Deps struct {
	Stager    Stager
	Persister Persister
}

type Files struct {
	Deps
}

// New конструирует сервис приёма файлов с заданными зависимостями.
func New(deps Deps) *Files {
	return &Files{Deps: deps}
}

var _ Service = (*Files)(nil)
