package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// NetworkError indica que la peticion no obtuvo respuesta.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError es una respuesta no exitosa del servicio remoto.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: status=%d: %s", e.Status, e.Message)
}

func newServerError(status int, body []byte) *ServerError {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(body, &envelope); err == nil {
		msg = strings.TrimSpace(envelope.Message)
		if msg == "" {
			msg = strings.TrimSpace(envelope.Error)
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &ServerError{Status: status, Message: msg}
}

// IsAuthFailure indica un rechazo confirmado de credenciales (401/403).
func IsAuthFailure(err error) bool {
	var se *ServerError
	if !errors.As(err, &se) {
		return false
	}
	return se.Status == http.StatusUnauthorized || se.Status == http.StatusForbidden
}

// ServerMessage devuelve el mensaje del servidor si err es un ServerError.
func ServerMessage(err error) (string, bool) {
	var se *ServerError
	if !errors.As(err, &se) {
		return "", false
	}
	return se.Message, true
}
