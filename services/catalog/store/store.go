// Package store is the persistence gateway: the whole dataset is one JSON
// document read once at the start of a run and replaced atomically at the
// end, plus a small metadata document recording run freshness. Nothing is
// streamed or appended; a run that dies mid-way leaves the prior files
// untouched.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"catwatch-backend/services/catalog"
)

const (
	datasetFile = "cats.json"
	metaFile    = "meta.json"
	backupDir   = "backup"
)

type RunMeta struct {
	LastScraped time.Time `json:"lastScraped"`
}

type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Load returns the prior dataset. A missing or unreadable document is a
// first run, not an error: the pipeline proceeds with an empty prior
// store and rebuilds.
func (s *Store) Load() []catalog.CatRecord {
	raw, err := os.ReadFile(filepath.Join(s.dir, datasetFile))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to read prior dataset, starting fresh", "err", err)
		}
		return nil
	}

	var cats []catalog.CatRecord
	err = json.Unmarshal(raw, &cats)
	if err != nil {
		slog.Warn("prior dataset is corrupt, starting fresh", "err", err)
		return nil
	}
	return cats
}

// PriorMap is Load keyed by id. Duplicate ids in a persisted dataset
// violate the uniqueness invariant; the last one wins and a warning is
// logged rather than failing the run.
func (s *Store) PriorMap() map[string]catalog.CatRecord {
	cats := s.Load()
	out := make(map[string]catalog.CatRecord, len(cats))
	for _, cat := range cats {
		if _, dup := out[cat.Id]; dup {
			slog.Warn("duplicate id in persisted dataset", "id", cat.Id)
		}
		out[cat.Id] = cat
	}
	return out
}

// Save replaces the dataset wholesale. The document is written to a temp
// file in the same directory and renamed over the old one, so a crashed
// run can never leave a half-written dataset.
func (s *Store) Save(cats []catalog.CatRecord) error {
	raw, err := json.MarshalIndent(cats, "", "  ")
	if err != nil {
		return err
	}
	return s.writeAtomic(datasetFile, raw)
}

func (s *Store) SaveMeta(meta RunMeta) error {
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return s.writeAtomic(metaFile, raw)
}

func (s *Store) LoadMeta() (RunMeta, error) {
	var meta RunMeta
	raw, err := os.ReadFile(filepath.Join(s.dir, metaFile))
	if err != nil {
		return meta, err
	}
	err = json.Unmarshal(raw, &meta)
	return meta, err
}

// LoadBackup reads the backup dataset under key, used when a live scrape
// of that pipeline entry yields nothing. Keys are per entry, not per
// source id: branch pages of one organization snapshot independently.
func (s *Store) LoadBackup(key string) ([]catalog.CatRecord, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, backupDir, key+".json"))
	if err != nil {
		return nil, err
	}
	var cats []catalog.CatRecord
	err = json.Unmarshal(raw, &cats)
	if err != nil {
		return nil, err
	}
	return cats, nil
}

// SaveBackup snapshots an entry's successful scrape so the next failed
// run has something to fall back to.
func (s *Store) SaveBackup(key string, cats []catalog.CatRecord) error {
	err := os.MkdirAll(filepath.Join(s.dir, backupDir), 0755)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(cats, "", "  ")
	if err != nil {
		return err
	}
	return s.writeAtomic(filepath.Join(backupDir, key+".json"), raw)
}

func (s *Store) writeAtomic(name string, raw []byte) error {
	dest := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return err
	}
	_, err = tmp.Write(raw)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	err = tmp.Close()
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
