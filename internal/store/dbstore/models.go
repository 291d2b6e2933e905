package dbstore

import (
	"time"
)

// DefaultsEntryModel represents a single key-value entry in the defaults table.
type DefaultsEntryModel struct {
	Key       string    `gorm:"primaryKey;size:100"`
	Value     []byte    `gorm:"type:blob;not null"` // Raw value, typically a JSON document
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for DefaultsEntryModel
func (DefaultsEntryModel) TableName() string {
	return "defaults"
}
