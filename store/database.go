package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVEntry represents a record row in the database
type KVEntry struct {
	Key        string `gorm:"primaryKey;column:key"`
	Count      int64
	StringSet  string // JSON-encoded array, "" when the field is absent
	Dictionary string
	ExpiresAt  int64 `gorm:"index"`
}

func (KVEntry) TableName() string { return "kv_entries" }

// DatabaseStore keeps records in a Postgres table. Counter adds go through a
// single upsert statement; set union/subtract take a row lock, so per-key
// mutations stay atomic without client-side read-modify-write.
type DatabaseStore struct {
	db *gorm.DB
}

func NewDatabaseStore(dsn string) (*DatabaseStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-create table if needed
	if err := db.AutoMigrate(&KVEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &DatabaseStore{db: db}, nil
}

func (ds *DatabaseStore) Get(ctx context.Context, key string) (Record, bool, error) {
	var entry KVEntry
	result := ds.db.WithContext(ctx).Where(`"key" = ?`, key).First(&entry)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return Record{}, false, nil
	}
	if result.Error != nil {
		return Record{}, false, result.Error
	}

	rec, err := entry.record()
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

func (ds *DatabaseStore) Put(ctx context.Context, key string, rec Record) error {
	encoded, err := encodeStringSet(rec.StringSet)
	if err != nil {
		return err
	}
	entry := KVEntry{
		Key:        key,
		Count:      rec.Count,
		StringSet:  encoded,
		Dictionary: rec.Dictionary,
		ExpiresAt:  rec.ExpiresAt,
	}
	return ds.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&entry).Error
}

func (ds *DatabaseStore) SetCount(ctx context.Context, key string, value int64) error {
	return ds.db.WithContext(ctx).Exec(
		`INSERT INTO kv_entries ("key", count) VALUES (?, ?)
		 ON CONFLICT ("key") DO UPDATE SET count = EXCLUDED.count`,
		key, value,
	).Error
}

func (ds *DatabaseStore) AddCount(ctx context.Context, key string, delta int64, expiresAt int64) (int64, error) {
	var count int64
	err := ds.db.WithContext(ctx).Raw(
		`INSERT INTO kv_entries ("key", count, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT ("key") DO UPDATE
		 SET count = kv_entries.count + EXCLUDED.count, expires_at = EXCLUDED.expires_at
		 RETURNING count`,
		key, delta, expiresAt,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (ds *DatabaseStore) AddStrings(ctx context.Context, key string, values []string, expiresAt int64) ([]string, bool, error) {
	var out []string
	err := ds.mutateLocked(ctx, key, func(entry *KVEntry) error {
		set, err := decodeStringSet(entry.StringSet)
		if err != nil {
			return err
		}
		present := make(map[string]struct{}, len(set))
		for _, s := range set {
			present[s] = struct{}{}
		}
		for _, v := range values {
			if _, ok := present[v]; !ok {
				present[v] = struct{}{}
				set = append(set, v)
			}
		}
		entry.ExpiresAt = expiresAt
		encoded, err := encodeStringSet(set)
		if err != nil {
			return err
		}
		entry.StringSet = encoded
		out = set
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (ds *DatabaseStore) RemoveStrings(ctx context.Context, key string, values []string, expiresAt int64) ([]string, error) {
	var out []string
	err := ds.mutateLocked(ctx, key, func(entry *KVEntry) error {
		set, err := decodeStringSet(entry.StringSet)
		if err != nil {
			return err
		}
		drop := make(map[string]struct{}, len(values))
		for _, v := range values {
			drop[v] = struct{}{}
		}
		kept := set[:0]
		for _, s := range set {
			if _, ok := drop[s]; !ok {
				kept = append(kept, s)
			}
		}
		entry.ExpiresAt = expiresAt
		encoded, err := encodeStringSet(kept)
		if err != nil {
			return err
		}
		entry.StringSet = encoded
		out = kept
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ds *DatabaseStore) SetExpiresAt(ctx context.Context, key string, expiresAt int64) error {
	return ds.db.WithContext(ctx).Exec(
		`INSERT INTO kv_entries ("key", expires_at) VALUES (?, ?)
		 ON CONFLICT ("key") DO UPDATE SET expires_at = EXCLUDED.expires_at`,
		key, expiresAt,
	).Error
}

func (ds *DatabaseStore) RemoveStringSet(ctx context.Context, key string) error {
	return ds.db.WithContext(ctx).
		Model(&KVEntry{}).
		Where(`"key" = ?`, key).
		Update("string_set", "").Error
}

// ReapExpired deletes records whose TTL lapsed more than the reclamation
// grace period ago. Meant for a maintenance cron, not the request path.
func (ds *DatabaseStore) ReapExpired(ctx context.Context) error {
	cutoff := time.Now().Add(-defaultReclaimGrace).Unix()
	return ds.db.WithContext(ctx).
		Delete(&KVEntry{}, "expires_at > 0 AND expires_at <= ?", cutoff).Error
}

// Close closes the database connection
func (ds *DatabaseStore) Close() error {
	sqlDB, err := ds.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// mutateLocked loads the row under FOR UPDATE (creating it if absent), applies
// fn, and saves the result, all in one transaction.
func (ds *DatabaseStore) mutateLocked(ctx context.Context, key string, fn func(*KVEntry) error) error {
	return ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry KVEntry
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(`"key" = ?`, key).First(&entry)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			entry = KVEntry{Key: key}
		} else if result.Error != nil {
			return result.Error
		}

		if err := fn(&entry); err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&entry).Error
	})
}

func (e KVEntry) record() (Record, error) {
	set, err := decodeStringSet(e.StringSet)
	if err != nil {
		return Record{}, fmt.Errorf("malformed string set for key %q: %w", e.Key, err)
	}
	return Record{
		Key:        e.Key,
		Count:      e.Count,
		StringSet:  set,
		Dictionary: e.Dictionary,
		ExpiresAt:  e.ExpiresAt,
	}, nil
}

func encodeStringSet(set []string) (string, error) {
	if len(set) == 0 {
		return "", nil
	}
	data, err := json.Marshal(set)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeStringSet(encoded string) ([]string, error) {
	if encoded == "" {
		return nil, nil
	}
	var set []string
	if err := json.Unmarshal([]byte(encoded), &set); err != nil {
		return nil, err
	}
	return set, nil
}
