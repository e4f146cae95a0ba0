package models

import "time"

// LookupRecord is an append-only history entry for every persisted lookup.
type LookupRecord struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	LookupID  string `gorm:"size:36;index"`
	Item      string `gorm:"size:255"`
	Slug      string `gorm:"size:255;index"`
	Value     *float64
	Source    string `gorm:"size:32;not null;index"`
	SourceURL string `gorm:"size:1024"`
	Error     string `gorm:"size:1024"`
	CheckedAt time.Time `gorm:"not null;index"`
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{&LastChecked{}, &ItemValue{}, &LookupRecord{}}
}
