package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"arcvalue/models"
	"arcvalue/pkg/itemvalue"
)

// GormStore keeps state in a relational database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open connection.
func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

// OpenPostgres connects to dsn and optionally migrates the schema.
func OpenPostgres(dsn string, autoMigrate bool) (*GormStore, error) {
	if dsn == "" {
		return nil, errors.New("store: postgres driver needs a database_url (or DB_DSN)")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, eris.Wrap(err, "store: connect postgres")
	}
	s := NewGormStore(db)
	if autoMigrate {
		s.Migrate()
	}
	return s, nil
}

// DB exposes the underlying connection.
func (s *GormStore) DB() *gorm.DB { return s.db }

// Migrate runs AutoMigrate per model so one failure does not block the others.
// Failures are logged, not returned, since restricted roles may lack DDL rights.
func (s *GormStore) Migrate() int {
	failed := 0
	for _, m := range models.All() {
		if err := s.db.AutoMigrate(m); err != nil {
			failed++
			zap.L().Warn("store: migration warning", zap.String("model", modelName(m)), zap.Error(err))
		}
	}
	return failed
}

func modelName(m any) string {
	switch m.(type) {
	case *models.LastChecked:
		return "last_checked"
	case *models.ItemValue:
		return "item_values"
	case *models.LookupRecord:
		return "lookup_records"
	}
	return "unknown"
}

func (s *GormStore) SaveLast(ctx context.Context, last LastChecked) error {
	row := models.LastChecked{
		ID:        models.LastCheckedID,
		Item:      last.Item,
		Value:     last.Value,
		Source:    last.Source,
		Timestamp: last.Timestamp,
	}
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return eris.Wrap(err, "store: save last checked")
	}
	return nil
}

func (s *GormStore) Last(ctx context.Context) (LastChecked, bool, error) {
	var row models.LastChecked
	err := s.db.WithContext(ctx).First(&row, models.LastCheckedID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return LastChecked{}, false, nil
	}
	if err != nil {
		return LastChecked{}, false, eris.Wrap(err, "store: load last checked")
	}
	return LastChecked{Item: row.Item, Value: row.Value, Source: row.Source, Timestamp: row.Timestamp}, true, nil
}

func (s *GormStore) Values(ctx context.Context) (ValueTable, error) {
	var rows []models.ItemValue
	if err := s.db.WithContext(ctx).Order("slug").Find(&rows).Error; err != nil {
		return nil, eris.Wrap(err, "store: list values")
	}
	table := make(ValueTable, len(rows))
	for _, r := range rows {
		table[r.Slug] = json.RawMessage(r.Value)
	}
	return table, nil
}

func (s *GormStore) ReplaceValues(ctx context.Context, table ValueTable) error {
	rows := make([]models.ItemValue, 0, len(table))
	for slug, v := range table {
		raw := string(v)
		if raw == "" {
			raw = "null"
		}
		rows = append(rows, models.ItemValue{Slug: slug, Value: raw})
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.ItemValue{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 200).Error
	})
	if err != nil {
		return eris.Wrap(err, "store: replace values")
	}
	return nil
}

// RecordLookup appends res to the lookup history.
func (s *GormStore) RecordLookup(ctx context.Context, item string, res itemvalue.LookupResult) error {
	at := res.Timestamp
	if at.IsZero() {
		at = time.Now()
	}
	rec := models.LookupRecord{
		LookupID:  res.ID,
		Item:      item,
		Slug:      res.Slug,
		Value:     res.Value,
		Source:    string(res.Source),
		SourceURL: res.SourceURL,
		Error:     res.Error,
		CheckedAt: at,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return eris.Wrap(err, "store: record lookup")
	}
	return nil
}

// History returns the newest limit lookups.
func (s *GormStore) History(ctx context.Context, limit int) ([]models.LookupRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []models.LookupRecord
	if err := s.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&out).Error; err != nil {
		return nil, eris.Wrap(err, "store: list history")
	}
	return out, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
