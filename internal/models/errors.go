package models

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedUpload  = errors.New("malformed upload")
	ErrInvalidFilename  = errors.New("invalid filename")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrRender           = errors.New("render page")
	ErrBrowseStopped    = errors.New("service browse stopped")
)

// PersistError описывает неудачу перемещения одного файла в целевой каталог.
type PersistError struct {
	Name   string
	Reason string
	Err    error
}

func (e *PersistError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("persist %q: %s", e.Name, e.Reason)
	}
	return fmt.Sprintf("persist %q: %s: %v", e.Name, e.Reason, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
