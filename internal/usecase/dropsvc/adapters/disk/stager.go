package disk

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/sir_venger/cactus/internal/models"
)

// Служебные файлы cactus живут только в собственных скрытых подкаталогах:
// .cactus-staging/.cactus-<uuid>.upload внутри staging_dir и
// .cactus-partial/.cactus-*.part внутри каталога загрузок (копирование между файловыми системами).
// Пользовательские файлы туда не попадают, поэтому GC не трогает загрузки.
const (
	stagingArea    = ".cactus-staging"
	partialArea    = ".cactus-partial"
	leftoverPrefix = ".cactus-"
	stagingSuffix  = ".upload"
	partialSuffix  = ".part"
)

// StagingPath возвращает подкаталог временных файлов внутри root.
func StagingPath(root string) string {
	return filepath.Join(root, stagingArea)
}

// PartialPath возвращает подкаталог недописанных копий внутри каталога загрузок.
func PartialPath(uploadDir string) string {
	return filepath.Join(uploadDir, partialArea)
}

// Stager выкладывает входящие части во временный каталог до финального перемещения.
type Stager struct {
	dir string
}

// NewStager создаёт подкаталог временных файлов внутри root, если его ещё нет.
func NewStager(root string) (*Stager, error) {
	dir := StagingPath(root)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	return &Stager{dir: dir}, nil
}

// Dir возвращает подкаталог, в котором лежат временные файлы.
func (s *Stager) Dir() string {
	return s.dir
}

// Stage копирует r во временный файл с уникальным именем.
// При ошибке частично записанный файл удаляется.
func (s *Stager) Stage(name string, r io.Reader) (models.FilePart, error) {
	path := filepath.Join(s.dir, leftoverPrefix+uuid.NewString()+stagingSuffix)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return models.FilePart{}, err
	}

	n, err := io.Copy(f, r)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return models.FilePart{}, err
	}

	return models.FilePart{Name: name, Path: path, Size: n}, nil
}

// Discard удаляет временный файл части; отсутствие файла не ошибка.
func (s *Stager) Discard(part models.FilePart) error {
	if part.Path == "" {
		return nil
	}
	if err := os.Remove(part.Path); err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}
