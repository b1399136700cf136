package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iliyamo/item-api/internal/database"
	"github.com/iliyamo/item-api/internal/model"
	"github.com/iliyamo/item-api/internal/queue"
	"github.com/iliyamo/item-api/internal/repository"
)

// memStore is an in-memory ItemStore.  Setting err makes every call fail
// the way a disconnected database would.
type memStore struct {
	mu    sync.Mutex
	items []model.Item
	err   error
}

func (s *memStore) List(_ context.Context, limit int64) ([]model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	n := int64(len(s.items))
	if n > limit {
		n = limit
	}
	out := make([]model.Item, n)
	copy(out, s.items[:n])
	return out, nil
}

func (s *memStore) Create(_ context.Context, it *model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	it.ID = primitive.NewObjectID()
	it.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	s.items = append(s.items, *it)
	return nil
}

func (s *memStore) GetByID(_ context.Context, id string) (*model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.items {
		if s.items[i].ID.Hex() == id {
			it := s.items[i]
			return &it, nil
		}
	}
	return nil, repository.ErrItemNotFound
}

type recordingPublisher struct {
	events []queue.ItemCreatedEvent
	err    error
}

func (p *recordingPublisher) PublishItemCreated(_ context.Context, ev queue.ItemCreatedEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

type fakeConn struct {
	state database.ConnState
	err   error
}

func (f fakeConn) State() database.ConnState { return f.state }
func (f fakeConn) Err() error                { return f.err }

type fakeCheck struct {
	name string
	err  error
}

func (p fakeCheck) Name() string               { return p.name }
func (p fakeCheck) Ping(context.Context) error { return p.err }

var errDown = errors.New("connection pool for mongodb:27017 was cleared")

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewRequestValidator()
	e.Logger.SetOutput(io.Discard)
	return e
}

// serve runs fn against a fresh context; body is sent as JSON when not empty.
func serve(t *testing.T, e *echo.Echo, method, target, body string, fn echo.HandlerFunc, params ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(params) == 2 {
		c.SetParamNames(params[0])
		c.SetParamValues(params[1])
	}
	require.NoError(t, fn(c))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
