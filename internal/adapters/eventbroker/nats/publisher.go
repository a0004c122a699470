package nats

import (
	"context"
	"encoding/json"
	"filedrop/internal/config"
	"filedrop/internal/core/domain"
	"filedrop/internal/core/port"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher emits upload and settings events on JetStream
type Publisher struct {
	logger *slog.Logger
	conn   *nats.Conn
	js     jetstream.JetStream
	config config.NATSConfig
}

var _ port.EventPublisher = (*Publisher)(nil)

// NewNATSPublisher connects and makes sure the stream exists
func NewNATSPublisher(ctx context.Context, cfg config.NATSConfig, logger *slog.Logger) (*Publisher, error) {
	conn, js, err := connect(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := EnsureStream(ctx, js, cfg); err != nil {
		conn.Close()
		return nil, err
	}
	return &Publisher{
		logger: logger,
		conn:   conn,
		js:     js,
		config: cfg,
	}, nil
}

// PublishUploadFinished publishes a finished upload, deduplicated on the file id
func (p *Publisher) PublishUploadFinished(ctx context.Context, event domain.UploadFinishedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("could not marshal upload event: %w", err)
	}
	_, err = p.js.Publish(ctx, p.config.UploadSubject, data, jetstream.WithMsgID(event.FileID))
	if err != nil {
		return fmt.Errorf("failed to publish upload event: %w", err)
	}
	p.logger.Debug("upload event published", "file_id", event.FileID)
	return nil
}

// PublishSettingsChanged tells every replica to refresh its settings
func (p *Publisher) PublishSettingsChanged(ctx context.Context, event domain.SettingsChangedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("could not marshal settings event: %w", err)
	}
	if _, err = p.js.Publish(ctx, p.config.SettingsSubject, data); err != nil {
		return fmt.Errorf("failed to publish settings event: %w", err)
	}
	return nil
}

// Close drains pending publishes and closes the connection
func (p *Publisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
