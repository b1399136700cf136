package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/item-api/internal/model"
)

// ItemsCollection is the collection backing ItemRepo.
const ItemsCollection = "items"

// ItemRepo encapsulates all queries against the items collection.
type ItemRepo struct {
	coll *mongo.Collection
}

// NewItemRepo constructs an ItemRepo on the given database handle.
func NewItemRepo(db *mongo.Database) *ItemRepo {
	return &ItemRepo{coll: db.Collection(ItemsCollection)}
}

// List returns at most limit items in natural order.  The result is never
// nil so that it serialises as an empty JSON array.
func (r *ItemRepo) List(ctx context.Context, limit int64) ([]model.Item, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetLimit(limit))
	if err != nil {
		return nil, err
	}
	items := make([]model.Item, 0)
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts it as a new document.  The ObjectID is always generated
// here; CreatedAt defaults to now, truncated to the millisecond precision
// BSON dates can store, so the returned record equals the stored one.
func (r *ItemRepo) Create(ctx context.Context, it *model.Item) error {
	it.ID = primitive.NewObjectID()
	if it.CreatedAt.IsZero() {
		it.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	_, err := r.coll.InsertOne(ctx, it)
	return err
}

// GetByID looks up a single item by its hex ObjectID.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*model.Item, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrItemNotFound
	}
	var it model.Item
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&it); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &it, nil
}
