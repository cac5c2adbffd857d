package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"faithconnect/internal/domain"
)

const adminsCollection = "admins"

type adminDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
}

type AdminRepo struct {
	collection *mongo.Collection
}

// NewAdminRepo returns an AdminRegistry backed by db's admins collection.
// Presence in the collection is what makes an identity an admin.
func NewAdminRepo(db *mongo.Database) *AdminRepo {
	return &AdminRepo{collection: db.Collection(adminsCollection)}
}

func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	var doc adminDoc
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get admin by email: %w", err)
	}
	return &domain.Admin{
		ID:           doc.ID.Hex(),
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
	}, nil
}

func (r *AdminRepo) IsAdmin(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("check admin membership: %w", err)
	}
	return count > 0, nil
}
