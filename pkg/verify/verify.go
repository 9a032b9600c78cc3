// Package verify reports per-collection document counts from the
// destination database after an import.
//
// Verification is an observability step, not a correctness gate: counts
// are surfaced to the operator, never compared against the source, and
// a failed count query for one collection does not abort the rest.
package verify

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/time/rate"
)

// CollectionCount is the count result for one collection.
type CollectionCount struct {
	Name      string
	Documents int64
}

// Warning is a non-fatal per-collection verification failure.
type Warning struct {
	Collection string
	Detail     string
}

// Result holds the outcome of one verification pass.
type Result struct {
	// Counts holds one entry per successfully counted collection,
	// in manifest order.
	Counts []CollectionCount

	// Warnings holds one entry per failed count query, in manifest order.
	Warnings []Warning
}

// Counter counts documents in one collection.
type Counter interface {
	Count(ctx context.Context, database, collection string) (int64, error)
	Close(ctx context.Context) error
}

// Opener connects a Counter to a destination URI.
type Opener func(ctx context.Context, uri string) (Counter, error)

// Verifier issues count queries against the destination.
type Verifier struct {
	open    Opener
	limiter *rate.Limiter
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithOpener replaces the default mongo-driver opener. Used in tests.
func WithOpener(open Opener) Option {
	return func(v *Verifier) { v.open = open }
}

// WithRateLimit caps count queries per second. 0 means unlimited.
func WithRateLimit(perSecond float64) Option {
	return func(v *Verifier) {
		if perSecond > 0 {
			v.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// New creates a Verifier. Without options it connects with the mongo
// driver and runs unthrottled.
func New(opts ...Option) *Verifier {
	v := &Verifier{open: mongoOpen}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Run counts documents for each manifest name exactly once.
//
// An individual query failure becomes a Warning and counting continues
// with the remaining names. Only a connection-level failure (the
// destination cannot be opened at all) is returned as an error.
func (v *Verifier) Run(ctx context.Context, uri, database string, collections []string) (*Result, error) {
	counter, err := v.open(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("connect to destination: %w", err)
	}
	defer func() { _ = counter.Close(ctx) }()

	res := &Result{}
	for _, name := range collections {
		if v.limiter != nil {
			if err := v.limiter.Wait(ctx); err != nil {
				return res, err
			}
		}

		n, err := counter.Count(ctx, database, name)
		if err != nil {
			res.Warnings = append(res.Warnings, Warning{
				Collection: name,
				Detail:     err.Error(),
			})
			continue
		}
		res.Counts = append(res.Counts, CollectionCount{Name: name, Documents: n})
	}

	return res, nil
}

// mongoOpen connects a mongo-driver backed Counter.
func mongoOpen(ctx context.Context, uri string) (Counter, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	return &mongoCounter{client: client}, nil
}

type mongoCounter struct {
	client *mongo.Client
}

func (c *mongoCounter) Count(ctx context.Context, database, collection string) (int64, error) {
	// Refuse to report 0 for a collection that does not exist at the
	// destination; absence is a warning, not an empty collection.
	names, err := c.client.Database(database).ListCollectionNames(ctx, bson.M{"name": collection})
	if err != nil {
		return 0, err
	}
	if len(names) == 0 {
		return 0, fmt.Errorf("collection %s does not exist", collection)
	}

	return c.client.Database(database).Collection(collection).CountDocuments(ctx, bson.D{})
}

func (c *mongoCounter) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
