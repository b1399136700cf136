package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item is the only persisted record.  ID is assigned by the store on
// creation and CreatedAt is never changed after the insert.
//
// Fields:
//
//	ID          – ObjectID primary key (items._id).
//	Name        – optional free text.
//	Description – optional free text.
//	CreatedAt   – creation timestamp, UTC with millisecond precision.
type Item struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name,omitempty" bson:"name,omitempty"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}

// CreateItemInput is the accepted body of POST /api/items.  Fields not
// listed here are ignored by the binder.
type CreateItemInput struct {
	Name        string `json:"name" validate:"max=1024"`
	Description string `json:"description" validate:"max=1024"`
}

// NewItem builds an unsaved Item from validated input.
func NewItem(in CreateItemInput) *Item {
	return &Item{Name: in.Name, Description: in.Description}
}
