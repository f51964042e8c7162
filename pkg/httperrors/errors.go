package httperrors

import (
	"errors"
	"net/http"

	"github.com/sir_venger/cactus/internal/models"
)

// Write отображает ошибку на HTTP-статус. Ошибки загрузки сюда не попадают:
// POST всегда завершается редиректом.
func Write(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrMethodNotAllowed):
		http.Error(w, err.Error(), http.StatusMethodNotAllowed)
	default:
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
