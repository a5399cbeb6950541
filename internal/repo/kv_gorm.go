package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry 是 kv_entries 表的一行
type Entry struct {
	Key       string    `gorm:"column:entry_key;primaryKey;size:191"`
	Value     string    `gorm:"column:entry_value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Entry) TableName() string { return "kv_entries" }

type GormKV struct{ db *gorm.DB }

func NewGormKV(db *gorm.DB) *GormKV { return &GormKV{db: db} }

// Migrate creates the kv_entries table when it is missing.
func (k *GormKV) Migrate(ctx context.Context) error {
	return k.db.WithContext(ctx).AutoMigrate(&Entry{})
}

func (k *GormKV) Get(ctx context.Context, key string) ([]byte, error) {
	var e Entry
	err := k.db.WithContext(ctx).Where("entry_key = ?", key).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(e.Value), nil
}

// Set 使用 upsert，postgres 走 ON CONFLICT，mysql 走 ON DUPLICATE KEY
func (k *GormKV) Set(ctx context.Context, key string, val []byte) error {
	e := Entry{Key: key, Value: string(val), UpdatedAt: time.Now()}
	return k.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"entry_value", "updated_at"}),
	}).Create(&e).Error
}

func (k *GormKV) Delete(ctx context.Context, key string) error {
	return k.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&Entry{}).Error
}
