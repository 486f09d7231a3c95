package storage

import (
	"encoding/json"
	"slices"
	"sort"
	"time"

	"github.com/hakim/zoneshah/internal/models"
	"go.etcd.io/bbolt"
)

// SaveScan persists a scan record and indexes it under every domain it covers
func (s *Store) SaveScan(record *models.ScanRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}

		scans := tx.Bucket([]byte(bucketScans))
		if err := scans.Put([]byte(record.ID), data); err != nil {
			return err
		}

		index := tx.Bucket([]byte(bucketDomainIndex))
		for _, domain := range record.Domains() {
			if err := appendIndex(index, domain, record.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// appendIndex adds id to the scan id list stored under domain
func appendIndex(index *bbolt.Bucket, domain, id string) error {
	key := []byte(domain)

	var scanIDs []string
	if existing := index.Get(key); existing != nil {
		if err := json.Unmarshal(existing, &scanIDs); err != nil {
			return err
		}
	}

	if slices.Contains(scanIDs, id) {
		return nil
	}
	scanIDs = append(scanIDs, id)

	data, err := json.Marshal(scanIDs)
	if err != nil {
		return err
	}
	return index.Put(key, data)
}

// GetScan retrieves a scan record by ID. Returns nil when not found.
func (s *Store) GetScan(id string) (*models.ScanRecord, error) {
	var record *models.ScanRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketScans)).Get([]byte(id))
		if data == nil {
			return nil
		}

		record = &models.ScanRecord{}
		return json.Unmarshal(data, record)
	})

	return record, err
}

// ListScans retrieves every scan that covered domain, sorted by StartedAt descending
func (s *Store) ListScans(domain string) ([]*models.ScanRecord, error) {
	var records []*models.ScanRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketDomainIndex)).Get([]byte(domain))
		if data == nil {
			return nil
		}

		var scanIDs []string
		if err := json.Unmarshal(data, &scanIDs); err != nil {
			return err
		}

		scans := tx.Bucket([]byte(bucketScans))
		for _, id := range scanIDs {
			scanData := scans.Get([]byte(id))
			if scanData == nil {
				continue
			}
			var record models.ScanRecord
			if err := json.Unmarshal(scanData, &record); err != nil {
				return err
			}
			records = append(records, &record)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})

	return records, nil
}

// GetLatestScans returns up to n of the most recent scans covering domain
func (s *Store) GetLatestScans(domain string, n int) ([]*models.ScanRecord, error) {
	records, err := s.ListScans(domain)
	if err != nil {
		return nil, err
	}
	if len(records) > n {
		records = records[:n]
	}
	return records, nil
}

// UpdateScanStatus updates the status of a scan and sets CompletedAt on terminal states
func (s *Store) UpdateScanStatus(id string, status models.ScanStatus) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		scans := tx.Bucket([]byte(bucketScans))

		data := scans.Get([]byte(id))
		if data == nil {
			return nil // Not found, no-op
		}

		var record models.ScanRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return err
		}

		record.Status = status
		if status.IsTerminal() && record.CompletedAt == nil {
			now := time.Now()
			record.CompletedAt = &now
		}

		updated, err := json.Marshal(&record)
		if err != nil {
			return err
		}
		return scans.Put([]byte(id), updated)
	})
}
