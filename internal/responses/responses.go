// Package responses defines the typed API errors and the JSON envelope the
// HTTP layer speaks.
package responses

import (
	"encoding/json"
	"net/http"
)

// APIError is an error that knows its HTTP status.
type APIError interface {
	error
	StatusCode() int
}

type BadRequestError struct{ Msg string }

func (e BadRequestError) Error() string   { return e.Msg }
func (e BadRequestError) StatusCode() int { return http.StatusBadRequest }

type NotFoundError struct{ Msg string }

func (e NotFoundError) Error() string   { return e.Msg }
func (e NotFoundError) StatusCode() int { return http.StatusNotFound }

type InternalServerError struct{ Msg string }

func (e InternalServerError) Error() string   { return e.Msg }
func (e InternalServerError) StatusCode() int { return http.StatusInternalServerError }

// Envelope is the uniform response wrapper.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WriteSuccess writes a 200 envelope around data.
func WriteSuccess(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(Envelope{Success: true, Data: data})
}

// WriteError maps the error to its status; anything that isn't an APIError
// becomes a 500 without leaking its message.
func WriteError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	errorMsg := "Internal Server Error"
	if apiErr, ok := err.(APIError); ok {
		statusCode = apiErr.StatusCode()
		errorMsg = apiErr.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(Envelope{Success: false, Error: errorMsg})
}
