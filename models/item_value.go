package models

import "time"

// ItemValue is one entry of the user-maintained slug -> value table. Value
// holds the raw JSON so arbitrary imported shapes survive a round trip.
type ItemValue struct {
	Slug      string `gorm:"primaryKey;size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Value     string `gorm:"type:text;not null"`
}
