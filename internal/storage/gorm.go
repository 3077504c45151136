package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/brightgoods/storefront-backend/pkg/db"
	pkgerrors "github.com/brightgoods/storefront-backend/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVRecord is the single relational table backing the database store.
type KVRecord struct {
	RecordKey   string    `gorm:"column:record_key;primaryKey"`
	RecordValue string    `gorm:"column:record_value;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

// TableName implements the GORM naming hook.
func (KVRecord) TableName() string {
	return "kv_records"
}

// GormStore persists records through the shared GORM client. Writes are
// serialized with a process-local mutex; SQLite has no row locking and the
// service runs a single writer process.
type GormStore struct {
	client *db.Client
	mu     sync.Mutex
}

// NewGormStore wraps the shared database client.
func NewGormStore(client *db.Client) *GormStore {
	return &GormStore{client: client}
}

// AutoMigrate creates the kv_records table when goose is not in use.
func (s *GormStore) AutoMigrate() error {
	return s.client.DB().AutoMigrate(&KVRecord{})
}

func (s *GormStore) Get(ctx context.Context, key string) (string, bool, error) {
	var record KVRecord
	err := s.client.DB().WithContext(ctx).First(&record, "record_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "db get")
	}
	return record.RecordValue, true, nil
}

func (s *GormStore) Set(ctx context.Context, key, value string) error {
	record := KVRecord{RecordKey: key, RecordValue: value, UpdatedAt: time.Now().UTC()}
	err := s.client.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "record_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"record_value", "updated_at"}),
		}).
		Create(&record).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "db set")
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	err := s.client.DB().WithContext(ctx).Delete(&KVRecord{}, "record_key = ?", key).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "db delete")
	}
	return nil
}

func (s *GormStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		var record KVRecord
		exists := true
		err := tx.First(&record, "record_key = ?", key).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			exists = false
		} else if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "db read for update")
		}

		next, err := fn(record.RecordValue, exists)
		if err != nil {
			return err
		}

		updated := KVRecord{RecordKey: key, RecordValue: next, UpdatedAt: time.Now().UTC()}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "record_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"record_value", "updated_at"}),
		}).Create(&updated).Error
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "db write")
		}
		return nil
	})
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "db update")
}
