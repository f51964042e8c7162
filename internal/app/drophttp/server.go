package drophttp

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sir_venger/cactus/internal/config"
	"github.com/sir_venger/cactus/internal/models"
	"github.com/sir_venger/cactus/internal/usecase/dropsvc"
	"github.com/sir_venger/cactus/internal/usecase/dropsvc/adapters/disk"
	"github.com/sir_venger/cactus/pkg/dropproto"
	"github.com/sir_venger/cactus/pkg/httperrors"
)

type Server struct {
	Files dropsvc.Service
	// MaxBytes ограничивает тело запроса, 0 отключает ограничение.
	MaxBytes int64
	page     *template.Template
}

// NewServer собирает сервис приёма файлов из конфигурации и возвращает готовый обработчик.
func NewServer(cfg *config.Config) (http.Handler, *Server, error) {
	files, err := buildFileService(cfg)
	if err != nil {
		return nil, nil, err
	}

	srv := New(files)
	srv.MaxBytes = cfg.MaxUploadBytes
	return srv.Routes(), srv, nil
}

// New создаёт сервер поверх произвольной реализации сервиса.
func New(files dropsvc.Service) *Server {
	return &Server{
		Files: files,
		page:  pageTemplate,
	}
}

// Routes регистрирует закрытый набор методов на "/" и fallback 405.
func (s *Server) Routes() http.Handler {
	rtr := chi.NewRouter()
	// limitBody стоит первым: MaxBytesReader должен получить исходный ResponseWriter.
	rtr.Use(limitBody(s.MaxBytes), requestID, accessLog)

	rtr.Get(dropproto.UploadPath, s.getIndex)
	rtr.Post(dropproto.UploadPath, s.postUpload)
	rtr.MethodNotAllowed(s.methodNotAllowed)

	return rtr
}

func buildFileService(cfg *config.Config) (dropsvc.Service, error) {
	stager, err := disk.NewStager(cfg.StagingDir)
	if err != nil {
		return nil, err
	}
	persister, err := disk.NewPersister(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	return dropsvc.New(dropsvc.Deps{
		Stager:    stager,
		Persister: persister,
	}), nil
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Allow", "GET, POST")
	httperrors.Write(w, models.ErrMethodNotAllowed)
}
