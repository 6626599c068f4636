package backend

import (
	"context"
	"fmt"

	"wallet/internal/amqp"
	"wallet/internal/log"
	"wallet/internal/storage"
	"wallet/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentStorage),
	}
}

// Create opens the repository for config.Type. A store failure is returned;
// an unreachable broker only disables the change feed.
func (f *DefaultFactory) Create(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		repo storage.Repository
		err  error
	)
	switch config.Type {
	case SQLiteBackend:
		repo, err = storage.NewSQLiteRepository(config.DBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.DBPath)
	case MemoryBackend:
		repo = memory.New()
		f.logger.InfoContext(ctx, "Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	result := &Result{Repository: repo}

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without change feed",
				log.FieldError, err)
		} else {
			result.Feed = client
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	return result, nil
}
