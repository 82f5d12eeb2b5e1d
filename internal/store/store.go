package store

import (
	"bytes"
	"covidwatch/internal/components/assert"
	"covidwatch/internal/components/chrono"
	"covidwatch/internal/components/telemetry"
	"covidwatch/internal/covid"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/goccy/go-json"
)

const (
	report_store_open   = "store.open"
	report_store_add    = "store.add"
	report_store_update = "store.update"
)

// Record is the latest extraction for one id. TimestampAdd and TimestampUpdate
// are epoch milliseconds, TimestampUpdate stays 0 until the first update.
type Record struct {
	ID              string        `json:"id"`
	Info            covid.Numbers `json:"info"`
	TimestampAdd    int64         `json:"timestampAdd"`
	TimestampUpdate int64         `json:"timestampUpdate"`
}

// document is the persisted shape of a store.
type document struct {
	Records []Record `json:"records"`
	Count   *int     `json:"count"`
}

// Store is a json file backed collection of records. Every mutation is written
// through to disk before returning.
//
// Callers are expected to Find before Add, Add does not reject an id that is
// already present and Update silently ignores an unknown id. Both cases are
// reported as telemetry warnings.
type Store struct {
	path  string
	clock chrono.API
	tel   telemetry.API

	mu      sync.Mutex
	records []Record
	count   int
}

// Open loads the store at path, a missing or empty file is initialized to an
// empty store and written immediately. An existing document is never reset.
func Open(path string, clock chrono.API, tel telemetry.API) (*Store, error) {
	assert.NotEmptyStr("path", path)
	assert.NotNil("clock", clock)
	assert.NotNil("telemetry", tel)

	s := &Store{
		path:    path,
		clock:   clock,
		tel:     telemetry.NewScopedAPI("store", tel),
		records: []Record{},
	}

	contents, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.tel.ReportBroken(report_store_open, err, path)
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}

	if len(bytes.TrimSpace(contents)) == 0 {
		s.tel.ReportDebug("initializing store", path)
		err = s.persist()
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	var doc document
	err = json.Unmarshal(contents, &doc)
	if err != nil {
		s.tel.ReportBroken(report_store_open, fmt.Errorf("decode: %w", err), path)
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}

	needsDefaults := doc.Records == nil || doc.Count == nil
	if doc.Records != nil {
		s.records = doc.Records
	}
	if doc.Count != nil {
		s.count = *doc.Count
	} else {
		s.count = len(s.records)
	}
	if needsDefaults {
		err = s.persist()
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Path is the backing file of the store.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.records, func(r Record) bool {
		return r.ID == id
	})
}

// Find returns the first record with the given id, ok is false when there is none.
func (s *Store) Find(id string) (record Record, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Record{}, false
	}
	return s.records[i], true
}

// Add appends a new record and updates the count.
func (s *Store) Add(id string, info covid.Numbers) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(id, info)
}

func (s *Store) add(id string, info covid.Numbers) error {
	if s.indexOf(id) >= 0 {
		s.tel.ReportWarning(report_store_add, fmt.Errorf("duplicate id %q", id), s.path)
	}

	previous, previousCount := s.records, s.count
	s.records = append(slices.Clip(s.records), Record{
		ID:              id,
		Info:            info,
		TimestampAdd:    chrono.UnixMilli(s.clock),
		TimestampUpdate: 0,
	})
	s.count = len(s.records)

	err := s.persist()
	if err != nil {
		s.records, s.count = previous, previousCount
		s.tel.ReportBroken(report_store_add, err, s.path)
		return err
	}
	return nil
}

// Update replaces the info of the record with the given id and bumps its
// TimestampUpdate. An unknown id is a no-op.
func (s *Store) Update(id string, info covid.Numbers) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		s.tel.ReportWarning(report_store_update, fmt.Errorf("unknown id %q", id), s.path)
		return nil
	}
	return s.update(i, info)
}

func (s *Store) update(i int, info covid.Numbers) error {
	previous := s.records[i]
	updated := previous
	updated.Info = info
	updated.TimestampUpdate = max(chrono.UnixMilli(s.clock), previous.TimestampUpdate)
	s.records[i] = updated

	err := s.persist()
	if err != nil {
		s.records[i] = previous
		s.tel.ReportBroken(report_store_update, err, s.path)
		return err
	}
	return nil
}

// Upsert adds the record when id is absent and updates it otherwise.
func (s *Store) Upsert(id string, info covid.Numbers) (created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i >= 0 {
		return false, s.update(i, info)
	}
	return true, s.add(id, info)
}

// Records returns a copy of the records in insertion order.
func (s *Store) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.records)
}

// Count is the persisted count, it equals len(Records()) after every Add.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// persist atomically replaces the backing file, the previous document stays
// intact if anything fails before the rename.
func (s *Store) persist() error {
	count := s.count
	contents, err := json.MarshalIndent(document{
		Records: s.records,
		Count:   &count,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write store %s: %w", s.path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	err = tmp.Chmod(0644)
	if err == nil {
		_, err = tmp.Write(contents)
	}
	if err == nil {
		err = tmp.Sync()
	}
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write store %s: %w", s.path, err)
	}

	err = os.Rename(tmpName, s.path)
	if err != nil {
		return fmt.Errorf("write store %s: %w", s.path, err)
	}
	return nil
}
