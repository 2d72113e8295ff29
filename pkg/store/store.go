// Package store supplies the unit store the kernel reaches through
// ref paths. The kernel itself keeps no persistent state; the store is
// an external collaborator with a RAM implementation and a bbolt file
// implementation persisting canonical bytes.
package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	bolt "go.etcd.io/bbolt"

	"github.com/architector1324/vnix/pkg/unit"
)

var (
	ErrLoad = errors.New("db load fault")
	ErrSave = errors.New("db save fault")
)

// Store maps ref paths to units.
type Store interface {
	Load(path []string) (*unit.Unit, error)
	Save(path []string, u *unit.Unit) error
}

// RAMStore keeps units in memory for the kernel lifetime.
type RAMStore struct {
	mu    sync.RWMutex
	units map[string]*unit.Unit
}

func NewRAMStore() *RAMStore {
	return &RAMStore{units: make(map[string]*unit.Unit)}
}

func (s *RAMStore) Load(path []string) (*unit.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.units[pathKey(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLoad, pathKey(path))
	}
	return u, nil
}

func (s *RAMStore) Save(path []string, u *unit.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.units[pathKey(path)] = u
	return nil
}

var bucketUnits = []byte("units")

// BoltStore persists canonical unit bytes in a bbolt file.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (creating if needed) the store file in dataDir.
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "vnix.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketUnits)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Load(path []string) (*unit.Unit, error) {
	var u *unit.Unit
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketUnits)
		data := b.Get([]byte(pathKey(path)))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrLoad, pathKey(path))
		}
		var err error
		u, err = unit.FromBytes(data)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrLoad, err)
		}
		return nil
	})
	return u, err
}

func (s *BoltStore) Save(path []string, u *unit.Unit) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketUnits)
		return b.Put([]byte(pathKey(path)), u.Bytes())
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSave, err)
	}
	return nil
}

func pathKey(path []string) string {
	return strings.Join(path, ".")
}
