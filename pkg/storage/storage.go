// Package storage persists uploaded certificate files.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: object not found")

// Object is a file ready to be stored
type Object struct {
	Key         string
	ContentType string
	Data        []byte
}

// Store persists objects and returns the reference saved on the record
type Store interface {
	Put(ctx context.Context, obj Object) (string, error)
	Delete(ctx context.Context, ref string) error
	Name() string
}
