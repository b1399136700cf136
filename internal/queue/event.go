// Package queue defines the item.created event and the RabbitMQ publisher
// and consumer that move it.
package queue

// ItemCreatedQueue is the durable queue events are routed to.
const ItemCreatedQueue = "item.created"

// ItemCreatedEvent is published after an item is persisted.  It carries the
// full record so consumers never need to query the database.
type ItemCreatedEvent struct {
	ItemID      string `json:"item_id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"` // RFC 3339, UTC
}
