// Package storage keeps zoneshah scan history in bbolt and lays out the
// per-scan directories on disk.
//
// Bucket layout:
//
//	scans         scan id -> ScanRecord JSON, including every domain result
//	domain_index  domain  -> JSON list of scan ids that covered it
//	meta          "schema_version" -> layout version of the two buckets above
package storage

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.etcd.io/bbolt"
)

const (
	bucketScans       = "scans"
	bucketDomainIndex = "domain_index"
	bucketMeta        = "meta"

	keySchemaVersion = "schema_version"

	// SchemaVersion is the bucket layout written by this build
	SchemaVersion = 1
)

// ErrSchemaVersion is returned when a database was written by an
// incompatible zoneshah version
var ErrSchemaVersion = errors.New("unsupported scan database schema")

// Store wraps a bbolt database holding scan history
type Store struct {
	db *bbolt.DB
}

// NewStore opens the scan database at path, creating the buckets and
// stamping the schema version on first use
func NewStore(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{bucketScans, bucketDomainIndex} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}

		meta, err := tx.CreateBucketIfNotExists([]byte(bucketMeta))
		if err != nil {
			return err
		}
		return checkSchema(meta)
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// checkSchema stamps a fresh database and rejects one from another layout
func checkSchema(meta *bbolt.Bucket) error {
	stored := meta.Get([]byte(keySchemaVersion))
	if stored == nil {
		return meta.Put([]byte(keySchemaVersion), []byte(strconv.Itoa(SchemaVersion)))
	}

	version, err := strconv.Atoi(string(stored))
	if err != nil || version != SchemaVersion {
		return fmt.Errorf("%w: version %q, want %d", ErrSchemaVersion, stored, SchemaVersion)
	}
	return nil
}

// Close closes the bbolt database
func (s *Store) Close() error {
	return s.db.Close()
}
