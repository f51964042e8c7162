package disk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/sir_venger/cactus/internal/models"
)

// Persister переносит выложенные части в каталог загрузок.
type Persister struct {
	dir string
}

// NewPersister проверяет, что каталог загрузок существует, и создаёт его при необходимости.
func NewPersister(dir string) (*Persister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &Persister{dir: dir}, nil
}

func (p *Persister) Dir() string {
	return p.dir
}

// PartialDir возвращает подкаталог для копий, ещё не переименованных в цель.
func (p *Persister) PartialDir() string {
	return PartialPath(p.dir)
}

// Persist перемещает часть в dir/<имя файла>, перезаписывая существующий файл.
// Сначала пробуем rename; между файловыми системами копируем во временный файл
// в .cactus-partial того же каталога и переименовываем его, чтобы наполовину записанный файл не был виден.
func (p *Persister) Persist(ctx context.Context, part models.FilePart) (string, error) {
	name, err := SafeName(part.Name)
	if err != nil {
		return "", &models.PersistError{Name: part.Name, Reason: "invalid filename", Err: err}
	}
	dst := filepath.Join(p.dir, name)

	err = os.Rename(part.Path, dst)
	if err == nil {
		return dst, nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return "", &models.PersistError{Name: part.Name, Reason: "rename", Err: err}
	}

	if err := copyReplace(ctx, part.Path, dst, p.PartialDir()); err != nil {
		return "", &models.PersistError{Name: part.Name, Reason: "copy", Err: err}
	}
	_ = os.Remove(part.Path)

	return dst, nil
}

func copyReplace(ctx context.Context, src, dst, tmpDir string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(tmpDir, leftoverPrefix+"*"+partialSuffix)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = io.Copy(tmp, ctxReader{ctx: ctx, r: in}); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmpName, dst); err != nil {
		return err
	}
	committed = true

	return nil
}

// SafeName оставляет от клиентского имени только последний элемент пути.
// Обратные слеши считаются разделителями: браузеры под Windows присылают полный путь.
// Имена служебных подкаталогов зарезервированы.
func SafeName(name string) (string, error) {
	if strings.ContainsRune(name, 0) {
		return "", models.ErrInvalidFilename
	}

	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	switch base {
	case "", ".", "..", "/", stagingArea, partialArea:
		return "", models.ErrInvalidFilename
	}

	return base, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
