package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"catwatch-backend/services/catalog"
)

func TestLoadMissingDatasetIsFirstRun(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	require.Nil(t, s.Load())
	require.Empty(t, s.PriorMap())
}

func TestLoadCorruptDatasetIsFirstRun(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cats.json"), []byte("{not json"), 0644))

	s, err := New(dir)
	require.NoError(t, err)
	require.Nil(t, s.Load())
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	reserved := time.Date(2024, 11, 2, 10, 0, 0, 0, time.UTC)
	cats := []catalog.CatRecord{
		{
			Id:           "bat-tom",
			Name:         "Tom",
			SourceId:     "battersea",
			Status:       catalog.StatusReserved,
			DateListed:   reserved.Add(-48 * time.Hour),
			DateReserved: &reserved,
		},
		{
			Id:       "cp-104233",
			Name:     "Poppy",
			SourceId: "cats_protection",
			Status:   catalog.StatusAvailable,
		},
	}
	require.NoError(t, s.Save(cats))

	got := s.Load()
	require.Equal(t, cats, got)

	prior := s.PriorMap()
	require.Len(t, prior, 2)
	require.Equal(t, "Tom", prior["bat-tom"].Name)
}

func TestSaveWholesaleReplace(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save([]catalog.CatRecord{{Id: "bat-a"}, {Id: "bat-b"}}))
	require.NoError(t, s.Save([]catalog.CatRecord{{Id: "bat-c"}}))

	got := s.Load()
	require.Len(t, got, 1)
	require.Equal(t, "bat-c", got[0].Id)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, s.Save([]catalog.CatRecord{{Id: "bat-a"}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "cats.json", entries[0].Name())
}

func TestDatasetFieldNames(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Save([]catalog.CatRecord{{
		Id:       "bat-tom",
		Source:   catalog.SourceShelter,
		SourceId: "battersea",
	}}))

	raw, err := os.ReadFile(filepath.Join(s.dir, "cats.json"))
	require.NoError(t, err)

	var doc []map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Len(t, doc, 1)
	// the document is a public contract; dateReserved serializes as an
	// explicit null while empty derived fields are omitted
	require.Contains(t, doc[0], "sourceType")
	require.Contains(t, doc[0], "sourceId")
	require.Contains(t, doc[0], "dateReserved")
	require.Nil(t, doc[0]["dateReserved"])
	require.NotContains(t, doc[0], "dateAdopted")
	require.NotContains(t, doc[0], "environment")
}

func TestMetaRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.LoadMeta()
	require.Error(t, err, "no run yet means no meta")

	at := time.Date(2024, 11, 9, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveMeta(RunMeta{LastScraped: at}))

	meta, err := s.LoadMeta()
	require.NoError(t, err)
	require.Equal(t, at, meta.LastScraped)
}

func TestBackupRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.LoadBackup("battersea")
	require.Error(t, err)

	cats := []catalog.CatRecord{{Id: "bat-tom", Name: "Tom", SourceId: "battersea"}}
	require.NoError(t, s.SaveBackup("battersea", cats))

	got, err := s.LoadBackup("battersea")
	require.NoError(t, err)
	require.Equal(t, cats, got)

	// backups are per source
	_, err = s.LoadBackup("lick")
	require.Error(t, err)
}
