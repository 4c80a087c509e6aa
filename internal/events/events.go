// Package events publishes notifications about transferred release assets.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fivetwenty-io/ghclient/internal/constants"
	"github.com/fivetwenty-io/ghclient/pkg/gh"
	"github.com/nats-io/nats.go"
)

// PublisherType represents the type of event backend.
type PublisherType string

const (
	// PublisherTypeNATS publishes to a NATS subject.
	PublisherTypeNATS PublisherType = "nats"

	// PublisherTypeLog writes events to a gh.Logger.
	PublisherTypeLog PublisherType = "log"

	// PublisherTypeNone discards events.
	PublisherTypeNone PublisherType = "none"
)

// Event types.
const (
	AssetDownloaded = "downloaded"
	AssetUploaded   = "uploaded"
	AssetDeleted    = "deleted"
)

// Static errors for err113 compliance.
var (
	ErrNATSConfigRequired       = errors.New("NATS configuration required for NATS publisher")
	ErrUnsupportedPublisherType = errors.New("unsupported publisher type")
	ErrPublisherClosed          = errors.New("publisher is closed")
)

// Event describes one asset transfer.
type Event struct {
	Type       string    `json:"type"`
	Owner      string    `json:"owner"`
	Repository string    `json:"repository"`
	Tag        string    `json:"tag,omitempty"`
	ReleaseID  int64     `json:"release_id,omitempty"`
	AssetID    int64     `json:"asset_id,omitempty"`
	AssetName  string    `json:"asset_name"`
	Size       int64     `json:"size"`
	Filename   string    `json:"filename,omitempty"`
	Time       time.Time `json:"time"`
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NATSConfig configures the NATS publisher.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
	ClientName    string
	Timeout       time.Duration
}

// PublisherConfig configures the event backend.
type PublisherConfig struct {
	Type   PublisherType
	NATS   *NATSConfig
	Logger gh.Logger
}

// NewPublisherFromConfig creates a publisher from configuration. A nil
// config yields a no-op publisher.
func NewPublisherFromConfig(config *PublisherConfig) (Publisher, error) {
	if config == nil {
		return NewNoOpPublisher(), nil
	}

	switch config.Type {
	case PublisherTypeNATS:
		if config.NATS == nil || config.NATS.URL == "" {
			return nil, ErrNATSConfigRequired
		}

		return ConnectNATS(config.NATS)

	case PublisherTypeLog:
		return NewLogPublisher(config.Logger), nil

	case PublisherTypeNone, "":
		return NewNoOpPublisher(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPublisherType, config.Type)
	}
}

// natsConn is the subset of *nats.Conn used by NATSPublisher.
type natsConn interface {
	Publish(subj string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	Drain() error
}

// NATSPublisher publishes each event as JSON on "<prefix>.asset.<type>".
type NATSPublisher struct {
	conn    natsConn
	prefix  string
	timeout time.Duration

	mutex  sync.Mutex
	closed bool
}

// ConnectNATS dials the server named in config.
func ConnectNATS(config *NATSConfig) (*NATSPublisher, error) {
	name := config.ClientName
	if name == "" {
		name = "ghc"
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = nats.DefaultTimeout
	}

	conn, err := nats.Connect(config.URL, nats.Name(name), nats.Timeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", config.URL, err)
	}

	return NewNATSPublisher(conn, config.SubjectPrefix, timeout), nil
}

// NewNATSPublisher wraps an existing connection.
func NewNATSPublisher(conn natsConn, prefix string, timeout time.Duration) *NATSPublisher {
	if prefix == "" {
		prefix = constants.DefaultEventSubjectPrefix
	}

	return &NATSPublisher{
		conn:    conn,
		prefix:  prefix,
		timeout: timeout,
	}
}

// Subject returns the subject an event of eventType is published on.
func (p *NATSPublisher) Subject(eventType string) string {
	return p.prefix + ".asset." + eventType
}

// Publish implements Publisher.Publish. It flushes so the event has reached
// the server before returning.
func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.closed {
		return ErrPublisherClosed
	}

	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	err = ctx.Err()
	if err != nil {
		return fmt.Errorf("publishing event: %w", err)
	}

	err = p.conn.Publish(p.Subject(event.Type), data)
	if err != nil {
		return fmt.Errorf("publishing event: %w", err)
	}

	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return fmt.Errorf("flushing event: %w", context.DeadlineExceeded)
		}
	}

	err = p.conn.FlushTimeout(timeout)
	if err != nil {
		return fmt.Errorf("flushing event: %w", err)
	}

	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true

	err := p.conn.Drain()
	if err != nil {
		return fmt.Errorf("draining NATS connection: %w", err)
	}

	return nil
}

// LogPublisher writes events to a logger at info level.
type LogPublisher struct {
	logger gh.Logger
}

// NewLogPublisher creates a log publisher. A nil logger discards events.
func NewLogPublisher(logger gh.Logger) *LogPublisher {
	if logger == nil {
		logger = gh.NopLogger{}
	}

	return &LogPublisher{logger: logger}
}

// Publish implements Publisher.Publish.
func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	p.logger.Info("asset "+event.Type, map[string]interface{}{
		"repository": event.Owner + "/" + event.Repository,
		"tag":        event.Tag,
		"asset":      event.AssetName,
		"size":       event.Size,
	})

	return nil
}

// Close implements Publisher.Close.
func (p *LogPublisher) Close() error {
	return nil
}

// NoOpPublisher discards every event.
type NoOpPublisher struct{}

// NewNoOpPublisher creates a new no-op publisher.
func NewNoOpPublisher() *NoOpPublisher {
	return &NoOpPublisher{}
}

// Publish does nothing.
func (p *NoOpPublisher) Publish(ctx context.Context, event Event) error {
	return nil
}

// Close does nothing.
func (p *NoOpPublisher) Close() error {
	return nil
}
