package dropsvc

import (
	"fmt"
	"io"
	"net/http"

	"github.com/sir_venger/cactus/internal/models"
	"github.com/sir_venger/cactus/pkg/dropproto"
	"github.com/sir_venger/cactus/pkg/logger"
)

// Decode читает multipart-тело потоково и выкладывает каждую часть поля "upload".
// Остальные поля вычитываются и игнорируются. Любая ошибка разбора оборачивает
// models.ErrMalformedUpload, а уже выложенные части удаляются; сюда же попадает
// превышение лимита тела, который ставит HTTP-слой.
func (s *Files) Decode(r *http.Request) ([]models.FilePart, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedUpload, err)
	}

	var parts []models.FilePart
	for {
		p, err := mr.NextPart()
		// Только голый io.EOF означает конец тела: обёрнутый EOF означает оборванный поток.
		if err == io.EOF {
			break
		}
		if err != nil {
			s.discard(parts)
			return nil, fmt.Errorf("%w: %v", models.ErrMalformedUpload, err)
		}

		// Браузер без выбранного файла присылает часть с пустым именем.
		if p.FormName() != dropproto.UploadField || p.FileName() == "" {
			_, _ = io.Copy(io.Discard, p)
			_ = p.Close()
			continue
		}

		part, err := s.Stager.Stage(p.FileName(), p)
		_ = p.Close()
		if err != nil {
			s.discard(parts)
			return nil, fmt.Errorf("%w: stage %q: %v", models.ErrMalformedUpload, p.FileName(), err)
		}
		parts = append(parts, part)
	}

	return parts, nil
}

func (s *Files) discard(parts []models.FilePart) {
	for _, part := range parts {
		if err := s.Stager.Discard(part); err != nil {
			logger.Warn("discard staged part", "name", part.Name, "error", err)
		}
	}
}
