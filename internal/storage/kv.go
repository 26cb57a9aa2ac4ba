package storage

import (
	"context"
	"errors"
)

// KV es el medio durable donde el cliente guarda entradas string por clave.
// Cumple el rol del localStorage del navegador.
type KV interface {
	// Get devuelve el valor y si existe. Una clave ausente no es error.
	Get(ctx context.Context, key string) (string, bool, error)
	// SetMany escribe todas las entradas en una sola operacion: o se ven todas o ninguna.
	SetMany(ctx context.Context, entries map[string]string) error
	// Delete elimina las claves indicadas. Borrar claves ausentes no es error.
	Delete(ctx context.Context, keys ...string) error
}

var ErrEmptyKey = errors.New("storage: empty key")

func checkKeys(entries map[string]string) error {
	for k := range entries {
		if k == "" {
			return ErrEmptyKey
		}
	}
	return nil
}
