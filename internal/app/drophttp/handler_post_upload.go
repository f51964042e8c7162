package drophttp

import (
	"context"
	"net/http"

	"github.com/sir_venger/cactus/pkg/dropproto"
	"github.com/sir_venger/cactus/pkg/logger"
)

// postUpload принимает multipart, сохраняет все файлы и перенаправляет на страницу со счётчиком.
// Неразобранное тело даёт редирект на чистую форму без счётчика.
func (s *Server) postUpload(w http.ResponseWriter, r *http.Request) {
	log := logger.With("request_id", RequestIDFromContext(r.Context()))

	parts, err := s.Files.Decode(r)
	if err != nil {
		log.Warn("failed to parse form", "error", err)
		redirect(w, dropproto.UploadPath)
		return
	}

	// Начатая загрузка доводится до конца даже при обрыве соединения.
	out := s.Files.Store(context.WithoutCancel(r.Context()), parts)
	log.Info("upload finished", "saved", out.SuccessCount(), "total", out.Total())

	redirect(w, dropproto.UploadedLocation(out.SuccessCount()))
}

func redirect(w http.ResponseWriter, to string) {
	w.Header().Set("Location", to)
	w.WriteHeader(http.StatusFound)
}
