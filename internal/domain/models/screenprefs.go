// internal/domain/models/screenprefs.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScreenPrefs is how one staff member last left one screen.
type ScreenPrefs struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	Screen    string             `bson:"screen"`
	PageSize  int                `bson:"page_size,omitempty"`
	Filter    string             `bson:"filter,omitempty"`
	SortBy    string             `bson:"sort_by,omitempty"`
	SortOrder string             `bson:"sort_order,omitempty"`
	UpdatedAt time.Time          `bson:"updated_at"`
}
