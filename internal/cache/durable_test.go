package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/rohmanhakim/seraphim/pkg/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// durableStores returns one fresh instance of every durable implementation.
func durableStores(t *testing.T) map[string]Store {
	t.Helper()

	db, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	files, err := NewFileStore(filepath.Join(t.TempDir(), "entries"))
	require.NoError(t, err)

	return map[string]Store{
		"sqlite": db,
		"file":   files,
	}
}

func TestDurableStores_Contract(t *testing.T) {
	for name, store := range durableStores(t) {
		t.Run(name, func(t *testing.T) {
			entry := Entry{Data: []byte(`{"a":1}`), Timestamp: 1, ExpiresAt: 2, Type: "obj"}

			_, ok, err := store.Get("brand_apple")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Put("brand_apple", entry))
			require.NoError(t, store.Put("brand_zte", entry))
			require.NoError(t, store.Put("brands_list", entry))

			got, ok, err := store.Get("brand_apple")
			require.NoError(t, err)
			require.True(t, ok)
			assert.JSONEq(t, `{"a":1}`, string(got.Data))
			assert.Equal(t, int64(2), got.ExpiresAt)
			assert.Equal(t, "obj", got.Type)

			entry.ExpiresAt = 3
			require.NoError(t, store.Put("brand_apple", entry))
			got, _, _ = store.Get("brand_apple")
			assert.Equal(t, int64(3), got.ExpiresAt, "put overwrites")

			keys, err := store.Keys("brand_")
			require.NoError(t, err)
			sort.Strings(keys)
			assert.Equal(t, []string{"brand_apple", "brand_zte"}, keys)

			require.NoError(t, store.Delete("brand_zte"))
			require.NoError(t, store.Delete("never_there"))
			_, ok, _ = store.Get("brand_zte")
			assert.False(t, ok)

			require.NoError(t, store.Clear())
			keys, err = store.Keys("")
			require.NoError(t, err)
			assert.Empty(t, keys)
		})
	}
}

func TestDurableStores_SurviveRestart(t *testing.T) {
	for name, store := range durableStores(t) {
		t.Run(name, func(t *testing.T) {
			clock := timeutil.NewManualClock(epoch)
			first := NewTiered(Options{Durable: store, Clock: clock})
			require.NoError(t, NewTyped[string](first, "string").Set("brand_apple", "records", time.Hour))

			// a new process starts with an empty fast tier
			second := NewTiered(Options{Durable: store, Clock: clock})
			got, ok := NewTyped[string](second, "string").Get("brand_apple")

			require.True(t, ok)
			assert.Equal(t, "records", got)
		})
	}
}

func TestSQLiteStore_NamespaceOnDisk(t *testing.T) {
	db, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Put("brands_list", Entry{Data: []byte(`[]`)}))
	_, err = db.db.Exec(
		"INSERT INTO cache_entries (key, value, updated_at) VALUES ('foreign', '{}', 0)",
	)
	require.NoError(t, err)

	var stored string
	require.NoError(t, db.db.QueryRow(
		"SELECT key FROM cache_entries WHERE key LIKE 'seraphim_cache_%'",
	).Scan(&stored))
	assert.Equal(t, "seraphim_cache_brands_list", stored)

	require.NoError(t, db.Clear())
	var remaining int
	require.NoError(t, db.db.QueryRow("SELECT COUNT(*) FROM cache_entries").Scan(&remaining))
	assert.Equal(t, 1, remaining, "foreign rows survive Clear")
}

func TestSQLiteStore_CorruptRowIsError(t *testing.T) {
	db, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.db.Exec(
		"INSERT INTO cache_entries (key, value, updated_at) VALUES ('seraphim_cache_bad', 'not json', 0)",
	)
	require.NoError(t, err)

	_, ok, err := db.Get("bad")

	assert.False(t, ok)
	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, ErrCauseCorruptEntry, storageErr.Cause)
}

func TestFileStore_IgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	files, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"), []byte(`{"key":"other","data":null,"timestamp":0,"expiresAt":0}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "garbage.json"), []byte(`nope`), 0o600))
	require.NoError(t, files.Put("brand_apple", Entry{Data: []byte(`1`)}))

	keys, err := files.Keys("")
	require.NoError(t, err)
	assert.Equal(t, []string{"brand_apple"}, keys)

	require.NoError(t, files.Clear())
	_, err = os.Stat(filepath.Join(dir, "notes.json"))
	assert.NoError(t, err, "foreign files survive Clear")
	assert.Equal(t, dir, files.Dir())
}

func TestFileStore_RecordShapeOnDisk(t *testing.T) {
	dir := t.TempDir()
	files, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, files.Put("brands_list", Entry{Data: []byte(`["x"]`), Timestamp: 10, ExpiresAt: 20}))

	raw, err := os.ReadFile(files.pathFor("brands_list"))
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.JSONEq(t, `"seraphim_cache_brands_list"`, string(fields["key"]))
	assert.JSONEq(t, `["x"]`, string(fields["data"]))
	assert.JSONEq(t, `10`, string(fields["timestamp"]))
	assert.JSONEq(t, `20`, string(fields["expiresAt"]))
	assert.NotContains(t, fields, "entry")
}
