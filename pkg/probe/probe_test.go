package probe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	pingErr error
	pings   *int
	closed  *bool
}

func (c *fakeConn) Ping(ctx context.Context) error {
	*c.pings++
	return c.pingErr
}

func (c *fakeConn) Close(ctx context.Context) error {
	*c.closed = true
	return nil
}

func fakeDialer(pingErr error, pings *int, closed *bool) Dialer {
	return func(ctx context.Context, uri string) (Conn, error) {
		return &fakeConn{pingErr: pingErr, pings: pings, closed: closed}, nil
	}
}

func TestPing_Reachable(t *testing.T) {
	var pings int
	var closed bool
	p := New(WithDialer(fakeDialer(nil, &pings, &closed)))

	err := p.Ping(context.Background(), "mongodb://localhost:27017")
	require.NoError(t, err)
	assert.Equal(t, 1, pings)
	assert.True(t, closed, "connection must be closed after the ping")
}

func TestPing_Unreachable_SingleAttempt(t *testing.T) {
	var pings int
	var closed bool
	p := New(WithDialer(fakeDialer(errors.New("server selection timeout"), &pings, &closed)))

	err := p.Ping(context.Background(), "mongodb://unreachable:27017")
	require.Error(t, err)
	assert.Equal(t, 1, pings, "default is one attempt per endpoint, no retry")
}

func TestPing_DialError(t *testing.T) {
	p := New(WithDialer(func(ctx context.Context, uri string) (Conn, error) {
		return nil, errors.New("invalid connection string")
	}))

	err := p.Ping(context.Background(), "mongodb://bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid connection string")
}

func TestPing_RetriesThenSucceeds(t *testing.T) {
	var pings int
	var closed bool
	failures := 2

	dial := func(ctx context.Context, uri string) (Conn, error) {
		var pingErr error
		if pings < failures {
			pingErr = errors.New("transient network blip")
		}
		return &fakeConn{pingErr: pingErr, pings: &pings, closed: &closed}, nil
	}

	p := New(WithDialer(dial), WithRetries(2), WithBackoff(time.Millisecond))
	err := p.Ping(context.Background(), "mongodb://flaky:27017")
	require.NoError(t, err)
	assert.Equal(t, 3, pings)
}

func TestPing_RetriesExhausted(t *testing.T) {
	var pings int
	var closed bool
	p := New(
		WithDialer(fakeDialer(errors.New("down"), &pings, &closed)),
		WithRetries(2),
		WithBackoff(time.Millisecond),
	)

	err := p.Ping(context.Background(), "mongodb://down:27017")
	require.Error(t, err)
	assert.Equal(t, 3, pings)
}

func TestPing_CancelledDuringBackoff(t *testing.T) {
	var pings int
	var closed bool
	p := New(
		WithDialer(fakeDialer(errors.New("down"), &pings, &closed)),
		WithRetries(5),
		WithBackoff(time.Minute),
	)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := p.Ping(ctx, "mongodb://down:27017")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, pings)
}
