package core

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Model holds the columns shared by every table.
type Model struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a random UUID unless the ID was set beforehand.
func (m *Model) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// PrimaryKey returns the id of the row.
func (m Model) PrimaryKey() string { return m.ID }
