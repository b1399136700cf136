package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/item-api/internal/model"
	"github.com/iliyamo/item-api/internal/queue"
	"github.com/iliyamo/item-api/internal/repository"
)

// ListLimit caps GET /api/items.
const ListLimit = 100

// ItemStore is the persistence the item handlers need.
// *repository.ItemRepo satisfies it.
type ItemStore interface {
	List(ctx context.Context, limit int64) ([]model.Item, error)
	Create(ctx context.Context, it *model.Item) error
	GetByID(ctx context.Context, id string) (*model.Item, error)
}

// EventPublisher announces created items.  *queue.Publisher satisfies it.
type EventPublisher interface {
	PublishItemCreated(ctx context.Context, event queue.ItemCreatedEvent) error
}

// ItemHandler serves /api/items.  Events is optional.
type ItemHandler struct {
	Store  ItemStore
	Events EventPublisher
}

// NewItemHandler constructs an ItemHandler and panics if store is nil.
func NewItemHandler(store ItemStore, events EventPublisher) *ItemHandler {
	if store == nil {
		panic("nil store passed to NewItemHandler")
	}
	return &ItemHandler{Store: store, Events: events}
}

// List returns up to ListLimit items with their count.
func (h *ItemHandler) List(c echo.Context) error {
	items, err := h.Store.List(c.Request().Context(), ListLimit)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"count":  len(items),
		"data":   items,
	})
}

// Create binds and validates the body, persists a new item and answers 201.
// Every failure, storage included, is reported as 400.
func (h *ItemHandler) Create(c echo.Context) error {
	var in model.CreateItemInput
	if err := c.Bind(&in); err != nil {
		return errorJSON(c, http.StatusBadRequest, bindMessage(err))
	}
	if err := c.Validate(&in); err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	it := model.NewItem(in)
	if err := h.Store.Create(c.Request().Context(), it); err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	h.publishCreated(c, it)
	return c.JSON(http.StatusCreated, echo.Map{"status": "success", "data": it})
}

// Get returns one item by id.
func (h *ItemHandler) Get(c echo.Context) error {
	it, err := h.Store.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return errorJSON(c, http.StatusNotFound, "Item not found")
		}
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": it})
}

// publishCreated is best effort: the item is already stored, so a broker
// failure is only logged.
func (h *ItemHandler) publishCreated(c echo.Context, it *model.Item) {
	if h.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	ev := queue.ItemCreatedEvent{
		ItemID:      it.ID.Hex(),
		Name:        it.Name,
		Description: it.Description,
		CreatedAt:   it.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if err := h.Events.PublishItemCreated(ctx, ev); err != nil {
		c.Logger().Warnf("publish item.created for %s failed: %v", ev.ItemID, err)
	}
}

func errorJSON(c echo.Context, code int, msg string) error {
	return c.JSON(code, echo.Map{"status": "error", "message": msg})
}

// bindMessage unwraps echo's HTTPError so clients see the decoder message
// rather than a Go struct dump.
func bindMessage(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			return he.Internal.Error()
		}
		if s, ok := he.Message.(string); ok {
			return s
		}
	}
	return err.Error()
}

// HTTPErrorHandler answers errors that reach Echo, such as unknown routes or
// a recovered panic, with the same {status, message} body the handlers use.
// Messages of non-HTTP errors are not exposed.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if s, ok := he.Message.(string); ok {
			msg = s
		} else {
			msg = http.StatusText(code)
		}
	} else {
		c.Logger().Error(err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = errorJSON(c, code, msg)
	}
	if err != nil {
		c.Logger().Error(err)
	}
}
