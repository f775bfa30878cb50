package cmdutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/papercomputeco/binder/pkg/config"
	"github.com/papercomputeco/binder/pkg/eventstream"
	"github.com/papercomputeco/binder/pkg/eventstream/kafka"
	"github.com/papercomputeco/binder/pkg/eventstream/nop"
	"github.com/papercomputeco/binder/pkg/recorder"
	"github.com/papercomputeco/binder/pkg/storage"
	"github.com/papercomputeco/binder/pkg/storage/inmemory"
	"github.com/papercomputeco/binder/pkg/storage/postgres"
	"github.com/papercomputeco/binder/pkg/storage/sqlite"
)

// NewStorageDriver opens the transcript store selected by storage.provider.
func NewStorageDriver(ctx context.Context, v *viper.Viper, configDir string, log *slog.Logger) (storage.Driver, error) {
	switch provider := v.GetString("storage.provider"); provider {
	case config.StorageMemory:
		log.Debug("using in-memory transcript storage")
		return inmemory.NewDriver(), nil

	case config.StorageSQLite:
		path, err := config.EnsureSQLitePath(v.GetString("storage.sqlite_path"), configDir)
		if err != nil {
			return nil, err
		}
		driver, err := sqlite.NewDriver(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("opening SQLite transcripts: %w", err)
		}
		log.Debug("using SQLite transcript storage", "path", path)
		return driver, nil

	case config.StoragePostgres:
		dsn := v.GetString("storage.postgres_dsn")
		if dsn == "" {
			return nil, errors.New("storage.postgres_dsn is required for the postgres provider")
		}
		driver, err := postgres.NewDriver(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("opening PostgreSQL transcripts: %w", err)
		}
		log.Debug("using PostgreSQL transcript storage")
		return driver, nil

	default:
		return nil, fmt.Errorf("unknown storage provider %q", provider)
	}
}

// NewPublisher creates the event publisher selected by events.provider.
func NewPublisher(v *viper.Viper, log *slog.Logger) (eventstream.Publisher, error) {
	switch provider := v.GetString("events.provider"); provider {
	case config.EventsNop, "":
		return nop.NewPublisher(), nil

	case config.EventsKafka:
		brokers := config.Brokers(v)
		p, err := kafka.NewPublisher(kafka.Config{
			Brokers: brokers,
			Topic:   v.GetString("events.topic"),
		}, log)
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		log.Debug("publishing chat events to kafka", "brokers", brokers, "topic", v.GetString("events.topic"))
		return p, nil

	default:
		return nil, fmt.Errorf("unknown events provider %q", provider)
	}
}

// Recorder persists and publishes chat turns in the background. Close drains
// the queue and then releases the store and publisher.
type Recorder struct {
	*recorder.Pool

	driver    storage.Driver
	publisher eventstream.Publisher
}

// NewRecorder wires storage and publishing from v into a recorder pool.
func NewRecorder(ctx context.Context, v *viper.Viper, configDir string, log *slog.Logger) (*Recorder, error) {
	driver, err := NewStorageDriver(ctx, v, configDir, log)
	if err != nil {
		return nil, err
	}

	publisher, err := NewPublisher(v, log)
	if err != nil {
		_ = driver.Close()
		return nil, err
	}

	pool, err := recorder.NewPool(&recorder.Config{
		Driver:         driver,
		Publisher:      publisher,
		OrganizationID: v.GetString("backend.organization_id"),
		Logger:         log,
	})
	if err != nil {
		_ = publisher.Close()
		_ = driver.Close()
		return nil, err
	}

	return &Recorder{Pool: pool, driver: driver, publisher: publisher}, nil
}

// Close drains pending turns, then closes the publisher and the store.
func (r *Recorder) Close() error {
	r.Pool.Close()
	return errors.Join(r.publisher.Close(), r.driver.Close())
}
