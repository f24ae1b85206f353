package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingFile       = errors.New("no file provided")
	ErrEmptyInput        = errors.New("file is empty")
	ErrInvalidFileFormat = errors.New("invalid file format")
	ErrNoRows            = errors.New("no data rows found")
)

// MissingFieldsError reports a row whose required fields are incomplete.
// The raw values are kept so the operator can see which column the export
// left blank.
type MissingFieldsError struct {
	Row    int
	Fields map[string]string
}

func (e MissingFieldsError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, name := range []string{"nombre", "rut", "curso", "fecha", "nota"} {
		v, ok := e.Fields[name]
		if !ok {
			continue
		}
		if v == "" {
			v = "?"
		}
		parts = append(parts, fmt.Sprintf("%s=%s", name, v))
	}
	return fmt.Sprintf("fila %d: faltan campos requeridos (%s)", e.Row, strings.Join(parts, ", "))
}

type InvalidScoreError struct {
	Row   int
	Value string
}

func (e InvalidScoreError) Error() string {
	return fmt.Sprintf("fila %d: nota invalida: %s", e.Row, e.Value)
}

type InvalidDateError struct {
	Row   int
	Value string
}

func (e InvalidDateError) Error() string {
	return fmt.Sprintf("fila %d: fecha invalida: %s", e.Row, e.Value)
}

// RetryableError marks a store write failure that the batch writer may
// retry with backoff before falling back to sub-batches.
type RetryableError struct {
	Err     error
	Message string
}

func (e RetryableError) Error() string {
	return fmt.Sprintf("retryable error: %s - %s", e.Message, e.Err.Error())
}

func (e RetryableError) Unwrap() error {
	return e.Err
}

func NewRetryableError(err error, message string) error {
	return RetryableError{
		Err:     err,
		Message: message,
	}
}
