package drophttp

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/sir_venger/cactus/internal/models"
	"github.com/sir_venger/cactus/pkg/dropproto"
	"github.com/sir_venger/cactus/pkg/httperrors"
	"github.com/sir_venger/cactus/pkg/logger"
)

// getIndex отдаёт страницу загрузки; кэширование запрещено, чтобы счётчик не залипал.
func (s *Server) getIndex(w http.ResponseWriter, r *http.Request) {
	count, _ := dropproto.ParseUploaded(r.URL.Query())

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, pageData{UploadedCount: count}); err != nil {
		logger.Error("render page", "request_id", RequestIDFromContext(r.Context()), "error", err)
		httperrors.Write(w, fmt.Errorf("%w: %v", models.ErrRender, err))
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
