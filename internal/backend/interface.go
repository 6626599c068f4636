package backend

import (
	"context"
	"errors"

	"wallet/internal/amqp"
	"wallet/internal/storage"
)

// Result holds the opened persistence port and, when configured and
// reachable, the AMQP change feed client.
type Result struct {
	Repository storage.Repository
	Feed       *amqp.Client
}

// Close closes the feed. The repository is owned by whoever wraps it
// (normally services.RecordStore) and is closed there.
func (r *Result) Close() error {
	if r == nil || r.Feed == nil {
		return nil
	}
	return r.Feed.Close()
}

// CloseAll closes the feed and the repository; used when startup fails
// before a RecordStore takes ownership.
func (r *Result) CloseAll() error {
	if r == nil {
		return nil
	}
	var errs []error
	if err := r.Close(); err != nil {
		errs = append(errs, err)
	}
	if r.Repository != nil {
		if err := r.Repository.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Factory creates backends based on configuration
type Factory interface {
	Create(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type Type

	// SQLite specific
	DBPath string

	// Change feed; disabled when AMQPURL is empty.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// Type represents the type of backend
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
