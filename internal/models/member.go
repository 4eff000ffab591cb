package models

import (
	"time"

	"github.com/google/uuid"
)

// Member is an entry in the owner directory. The matcher reads member names to
// disambiguate same-amount bills against transaction descriptions.
type Member struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"index" json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
