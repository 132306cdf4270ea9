// Package store keeps the dashboard's small pieces of durable state
// (headline counters, scanner state, settings) in a key-value store.
package store

import (
	"fmt"
	"sync"

	bolt "go.etcd.io/bbolt"
)

// KV is a flat string-keyed byte store.
type KV interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Close() error
}

const stateBucket = "state"

// BoltKV is a KV backed by a bbolt file.
type BoltKV struct {
	db *bolt.DB
}

// OpenBolt opens (creating if needed) a bbolt file at path.
func OpenBolt(path string) (*BoltKV, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open state db %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(stateBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create state bucket: %w", err)
	}
	return &BoltKV{db: db}, nil
}

func (b *BoltKV) Get(key string) ([]byte, bool, error) {
	var val []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(stateBucket)).Get([]byte(key))
		if v != nil {
			val = append([]byte{}, v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return val, val != nil, nil
}

func (b *BoltKV) Set(key string, value []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(stateBucket)).Put([]byte(key), value)
	})
}

func (b *BoltKV) Close() error {
	return b.db.Close()
}

// MemoryKV is a KV that lives for the life of the process.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte{}, v...), true, nil
}

func (m *MemoryKV) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte{}, value...)
	return nil
}

func (m *MemoryKV) Close() error { return nil }
