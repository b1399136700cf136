// Package database owns the storage connections: the MongoDB client the
// service cannot run without, and the optional SQL readiness check.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrClosed is reported as the disconnect reason after Close.
var ErrClosed = errors.New("connection closed")

// Mongo is the process-wide MongoDB handle.  It is created once in main and
// injected into the repository and the readiness handler.
type Mongo struct {
	client  *mongo.Client
	db      *mongo.Database
	tracker *connTracker
}

// Connect dials uri, verifies the connection with a ping and selects dbName.
// There is no retry: callers treat an error as fatal.
func Connect(ctx context.Context, uri, dbName string) (*Mongo, error) {
	tracker := &connTracker{}
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second).
		SetServerMonitor(&event.ServerMonitor{
			TopologyDescriptionChanged: func(e *event.TopologyDescriptionChangedEvent) {
				tracker.observe(e.NewDescription)
			},
		})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	// Ping with timeout
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	tracker.set(StateConnected, nil)

	return &Mongo{client: client, db: client.Database(dbName), tracker: tracker}, nil
}

// Database returns the selected database.
func (m *Mongo) Database() *mongo.Database { return m.db }

// State reports the current connectivity.
func (m *Mongo) State() ConnState { return m.tracker.get() }

// Err returns the reason of the last disconnect, or nil.
func (m *Mongo) Err() error { return m.tracker.err() }

// Close disconnects the client.  The state becomes disconnected even when
// the driver reports an error.
func (m *Mongo) Close(ctx context.Context) error {
	m.tracker.close(ErrClosed)
	return m.client.Disconnect(ctx)
}
