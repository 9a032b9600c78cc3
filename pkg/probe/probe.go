// Package probe issues lightweight reachability pings against the
// source and destination databases before a bulk transfer is committed.
//
// A probe is a single driver-level ping per endpoint. Either endpoint
// failing is fatal for the whole job; there is no partial proceed.
// Bounded retry with fixed backoff can be enabled for transient network
// blips, and applies only here, never to export or import.
package probe

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default timing constants for a probe attempt.
const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultRetryBackoff   = 2 * time.Second
)

// Conn is a pingable database connection.
type Conn interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Dialer opens a Conn for a connection string.
type Dialer func(ctx context.Context, uri string) (Conn, error)

// Prober pings endpoints through a Dialer.
type Prober struct {
	dial    Dialer
	retries int
	backoff time.Duration
}

// Option configures a Prober.
type Option func(*Prober)

// WithDialer replaces the default mongo-driver dialer. Used in tests.
func WithDialer(d Dialer) Option {
	return func(p *Prober) { p.dial = d }
}

// WithRetries enables bounded retry per endpoint. n is the number of
// additional attempts after the first failure.
func WithRetries(n int) Option {
	return func(p *Prober) { p.retries = n }
}

// WithBackoff sets the fixed delay between retry attempts.
func WithBackoff(d time.Duration) Option {
	return func(p *Prober) { p.backoff = d }
}

// New creates a Prober. Without options it performs a single attempt
// per endpoint using the mongo driver.
func New(opts ...Option) *Prober {
	p := &Prober{
		dial:    mongoDial,
		backoff: DefaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ping verifies one endpoint is reachable.
func (p *Prober) Ping(ctx context.Context, uri string) error {
	var lastErr error
	for attempt := 0; attempt <= p.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.backoff):
			}
		}
		if lastErr = p.pingOnce(ctx, uri); lastErr == nil {
			return nil
		}
	}
	return lastErr
}

func (p *Prober) pingOnce(ctx context.Context, uri string) error {
	conn, err := p.dial(ctx, uri)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close(ctx) }()

	return conn.Ping(ctx)
}

// mongoDial opens a mongo-driver client with a bounded connect timeout.
func mongoDial(ctx context.Context, uri string) (Conn, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(DefaultConnectTimeout).
		SetServerSelectionTimeout(DefaultConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return &mongoConn{client: client}, nil
}

type mongoConn struct {
	client *mongo.Client
}

func (c *mongoConn) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

func (c *mongoConn) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
