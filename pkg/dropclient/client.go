package dropclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/sir_venger/cactus/pkg/dropproto"
)

var ErrRejected = errors.New("server rejected upload")

type Client interface {
	// Upload отправляет файлы одним multipart-запросом и возвращает число сохранённых сервером.
	Upload(ctx context.Context, baseURL string, paths ...string) (int, error)
}

type httpClient struct {
	c *http.Client
}

// New создаёт HTTP-клиент, который не следует за редиректом: счётчик читается из Location.
func New() Client {
	return &httpClient{
		c: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Upload стримит файлы через pipe, не загружая их в память целиком.
func (h *httpClient) Upload(ctx context.Context, baseURL string, paths ...string) (int, error) {
	if len(paths) == 0 {
		return 0, fmt.Errorf("no files to upload")
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeParts(mw, paths))
	}()

	u := strings.TrimRight(baseURL, "/") + dropproto.UploadPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, pr)
	if err != nil {
		_ = pr.CloseWithError(err)
		return 0, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := h.c.Do(req)
	if err != nil {
		_ = pr.CloseWithError(err)
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusFound {
		return 0, fmt.Errorf("upload failed: %s", resp.Status)
	}

	return parseLocation(resp.Header.Get("Location"))
}

func writeParts(mw *multipart.Writer, paths []string) error {
	for _, p := range paths {
		if err := writePart(mw, p); err != nil {
			return err
		}
	}
	return mw.Close()
}

func writePart(mw *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := mw.CreateFormFile(dropproto.UploadField, filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// parseLocation достаёт счётчик из /?🌵=N. Редирект без счётчика значит, что тело не разобрано.
func parseLocation(loc string) (int, error) {
	u, err := url.Parse(loc)
	if err != nil {
		return 0, fmt.Errorf("bad redirect %q: %w", loc, err)
	}
	n, ok := dropproto.ParseUploaded(u.Query())
	if !ok {
		return 0, ErrRejected
	}
	return n, nil
}
