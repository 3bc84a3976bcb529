// internal/app/store/screenprefs/screenprefsstore.go
package screenprefsstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/barangayhub/internal/app/system/indexes"
	"github.com/dalemusser/barangayhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound means the staff member never changed the screen's defaults.
var ErrNotFound = errors.New("screenprefs: not found")

// Store provides access to the screen_prefs collection, one document
// per (user_id, screen).
type Store struct {
	c *mongo.Collection
}

// New creates a new screen preferences store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(indexes.ScreenPrefsCollection)}
}

// Get returns the saved preferences or ErrNotFound.
func (s *Store) Get(ctx context.Context, userID, screen string) (models.ScreenPrefs, error) {
	var p models.ScreenPrefs
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "screen": screen}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ScreenPrefs{}, ErrNotFound
	}
	if err != nil {
		return models.ScreenPrefs{}, err
	}
	return p, nil
}

// Save upserts p, replacing every preference field. UpdatedAt is set
// here.
func (s *Store) Save(ctx context.Context, p models.ScreenPrefs) error {
	if p.UserID == "" || p.Screen == "" {
		return errors.New("screenprefs: user and screen are required")
	}
	p.UpdatedAt = time.Now().UTC()

	filter := bson.M{"user_id": p.UserID, "screen": p.Screen}
	update := bson.M{
		"$set": bson.M{
			"page_size":  p.PageSize,
			"filter":     p.Filter,
			"sort_by":    p.SortBy,
			"sort_order": p.SortOrder,
			"updated_at": p.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":     primitive.NewObjectID(),
			"user_id": p.UserID,
			"screen":  p.Screen,
		},
	}
	_, err := s.c.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// Delete resets a screen to its defaults for userID.
func (s *Store) Delete(ctx context.Context, userID, screen string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID, "screen": screen})
	return err
}
