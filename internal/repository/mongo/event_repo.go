// Package mongo implements the document-store repositories over a MongoDB
// database. Events live in the "events" collection with server-assigned
// ObjectIDs; the admin allow-list lives in "admins".
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"faithconnect/internal/domain"
)

const eventsCollection = "events"

// eventDoc is the stored shape of an event. IDs are ObjectIDs in the store
// and opaque hex strings at the domain boundary.
type eventDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Date        string             `bson:"date"`
	Category    string             `bson:"category"`
	Location    string             `bson:"location"`
	Description string             `bson:"description"`
	PosterURL   string             `bson:"poster_url,omitempty"`
}

func (d eventDoc) toDomain() domain.Event {
	return domain.Event{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Date:        d.Date,
		Category:    d.Category,
		Location:    d.Location,
		Description: d.Description,
		PosterURL:   d.PosterURL,
	}
}

type EventRepo struct {
	collection *mongo.Collection
}

// NewEventRepo returns an EventRepository backed by db's events collection.
func NewEventRepo(db *mongo.Database) *EventRepo {
	return &EventRepo{collection: db.Collection(eventsCollection)}
}

// Insert stores the event and sets its store-assigned id.
func (r *EventRepo) Insert(ctx context.Context, event *domain.Event) error {
	doc := eventDoc{
		Title:       event.Title,
		Date:        event.Date,
		Category:    event.Category,
		Location:    event.Location,
		Description: event.Description,
		PosterURL:   event.PosterURL,
	}
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("insert event: unexpected id type %T", result.InsertedID)
	}
	event.ID = oid.Hex()
	return nil
}

// ListAll returns the full collection snapshot. There is no server-side
// filtering; criteria are applied in memory by the filter engine.
func (r *EventRepo) ListAll(ctx context.Context) ([]domain.Event, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []eventDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	events := make([]domain.Event, len(docs))
	for i, d := range docs {
		events[i] = d.toDomain()
	}
	return events, nil
}

// DeleteByID removes the event with the given id. Deleting an id that is
// absent (or not a valid ObjectID) returns domain.ErrNotFound.
func (r *EventRepo) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// IsNotFound reports whether err is the driver's or the domain's not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, domain.ErrNotFound)
}
