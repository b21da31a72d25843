package statestore

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// KVEntry is one cached key/value pair.
type KVEntry struct {
	Key       string `gorm:"primaryKey"`
	Value     []byte
	UpdatedAt time.Time
}

func (KVEntry) TableName() string { return "kv_entries" }

// Cache is the local fallback tier, an embedded sqlite database. It keeps
// the last known copy of everything written through the Tiered store so a
// node survives a primary outage with stale-but-usable state.
type Cache struct {
	db *gorm.DB
}

// NewCache opens (and migrates) the cache database at path. Use
// "file::memory:?cache=shared" in tests.
func NewCache(path string) (*Cache, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&KVEntry{}); err != nil {
		return nil, err
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry KVEntry
	err := c.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return entry.Value, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	entry := KVEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	return c.db.WithContext(ctx).Save(&entry).Error
}

// Subscribe is unsupported locally; callers rely on polling.
func (c *Cache) Subscribe(ctx context.Context, key string, fn func()) (func(), error) {
	return func() {}, errors.New("cache store does not push updates")
}

func (c *Cache) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
