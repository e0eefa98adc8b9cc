package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/rohmanhakim/seraphim/pkg/fileutil"
	"github.com/rohmanhakim/seraphim/pkg/hashutil"
)

const fileNameHashLen = 32

// FileStore is a durable tier keeping one JSON file per entry. File names
// are hashes of the namespaced key; the key itself is stored inside the file
// so Keys can enumerate without a separate index.
type FileStore struct {
	dir string
}

// Compile-time interface check
var _ Store = (*FileStore)(nil)

// fileRecord is the entry's own fields with the namespaced key alongside,
// the same shape the sqlite tier stores.
type fileRecord struct {
	Key string `json:"key"`
	Entry
}

// NewFileStore creates dir when missing.
func NewFileStore(dir string) (*FileStore, error) {
	if err := fileutil.EnsureDir(dir); err != nil {
		return nil, &StorageError{
			Message: err.Error(),
			Cause:   ErrCauseUnavailable,
		}
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) Dir() string {
	return f.dir
}

func (f *FileStore) pathFor(key string) string {
	return filepath.Join(f.dir, hashutil.ShortKey(Namespace+key, fileNameHashLen)+".json")
}

func (f *FileStore) Get(key string) (Entry, bool, error) {
	rec, ok, err := f.readRecord(f.pathFor(key))
	if err != nil || !ok {
		return Entry{}, false, err
	}
	if rec.Key != Namespace+key {
		// hash collision or foreign file
		return Entry{}, false, nil
	}
	return rec.Entry, true, nil
}

func (f *FileStore) Put(key string, entry Entry) error {
	data, err := json.Marshal(fileRecord{Key: Namespace + key, Entry: entry})
	if err != nil {
		return &StorageError{
			Message: err.Error(),
			Cause:   ErrCauseEncodeFailure,
			Key:     key,
		}
	}
	if werr := fileutil.WriteFileAtomic(f.pathFor(key), data, 0o600); werr != nil {
		cause := ErrCauseWriteFailure
		if fileutil.IsDiskFull(werr) {
			cause = ErrCauseQuotaExceeded
		}
		return &StorageError{
			Message: werr.Error(),
			Cause:   cause,
			Key:     key,
		}
	}
	return nil
}

func (f *FileStore) Delete(key string) error {
	if err := os.Remove(f.pathFor(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &StorageError{
			Message: err.Error(),
			Cause:   ErrCauseWriteFailure,
			Key:     key,
		}
	}
	return nil
}

func (f *FileStore) Clear() error {
	return f.walk(func(path string, rec fileRecord) error {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return &StorageError{
				Message: err.Error(),
				Cause:   ErrCauseWriteFailure,
			}
		}
		return nil
	})
}

func (f *FileStore) Keys(prefix string) ([]string, error) {
	keys := []string{}
	err := f.walk(func(_ string, rec fileRecord) error {
		k := strings.TrimPrefix(rec.Key, Namespace)
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// walk visits every readable namespaced record in the directory. Unreadable
// or foreign files are skipped.
func (f *FileStore) walk(visit func(path string, rec fileRecord) error) error {
	dirEntries, err := os.ReadDir(f.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return &StorageError{
			Message: err.Error(),
			Cause:   ErrCauseReadFailure,
		}
	}
	for _, de := range dirEntries {
		if de.IsDir() || fileutil.GetFileExtension(de.Name()) != "json" {
			continue
		}
		path := filepath.Join(f.dir, de.Name())
		rec, ok, err := f.readRecord(path)
		if err != nil || !ok || !strings.HasPrefix(rec.Key, Namespace) {
			continue
		}
		if err := visit(path, rec); err != nil {
			return err
		}
	}
	return nil
}

func (f *FileStore) readRecord(path string) (fileRecord, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileRecord{}, false, nil
		}
		return fileRecord{}, false, &StorageError{
			Message: err.Error(),
			Cause:   ErrCauseReadFailure,
		}
	}
	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fileRecord{}, false, &StorageError{
			Message: err.Error(),
			Cause:   ErrCauseCorruptEntry,
		}
	}
	return rec, true, nil
}
