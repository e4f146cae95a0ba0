package models

import "time"

// LastCheckedID is the primary key of the single last_checked row.
const LastCheckedID = 1

// LastChecked holds the most recent lookup outcome. The table has one row.
type LastChecked struct {
	ID        uint `gorm:"primaryKey"`
	UpdatedAt time.Time
	Item      string   `gorm:"size:255;not null;default:''"`
	Value     *float64 // nil when no value was found
	Source    string   `gorm:"size:32;not null"`
	Timestamp int64    `gorm:"not null"` // unix milliseconds
}

func (LastChecked) TableName() string { return "last_checked" }
