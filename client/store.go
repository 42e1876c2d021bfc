package client

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// token keys
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
)

// TokenStore is a persistent key/value store.
type TokenStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(keys ...string) error
}

var (
	_ TokenStore = (*FileStore)(nil)
	_ TokenStore = (*MemoryStore)(nil)
)

// FileStore keeps the values in a JSON object file, readable by its owner only.
var errCorruptFile = errors.New("corrupt token file")

type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (fs *FileStore) load() (map[string]string, error) {
	values := make(map[string]string)
	b, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return nil, errors.Wrap(err, "reading token file")
	}
	if len(b) == 0 {
		return values, nil
	}
	if err = json.Unmarshal(b, &values); err != nil {
		return nil, errors.Wrap(errCorruptFile, err.Error())
	}
	return values, nil
}

func (fs *FileStore) save(values map[string]string) error {
	b, err := json.Marshal(values)
	if err != nil {
		return errors.Wrap(err, "encoding token file")
	}
	if err = os.MkdirAll(filepath.Dir(fs.path), 0o700); err != nil {
		return errors.Wrap(err, "creating token directory")
	}
	if err = os.WriteFile(fs.path, b, 0o600); err != nil {
		return errors.Wrap(err, "writing token file")
	}
	// WriteFile keeps the mode of an existing file
	return errors.Wrap(os.Chmod(fs.path, 0o600), "securing token file")
}

// Get reports a missing or unreadable file as a missing key.
func (fs *FileStore) Get(key string) (string, bool) {
	values, err := fs.load()
	if err != nil {
		return "", false
	}
	val, ok := values[key]
	return val, ok
}

func (fs *FileStore) Set(key, value string) error {
	values, err := fs.load()
	if err != nil {
		return err
	}
	values[key] = value
	return fs.save(values)
}

// Delete overwrites a corrupt file, which cannot be trusted to not hold the keys anymore.
func (fs *FileStore) Delete(keys ...string) error {
	values, err := fs.load()
	if errors.Is(err, errCorruptFile) {
		values, err = make(map[string]string), nil
	}
	if err != nil {
		return err
	}
	for _, key := range keys {
		delete(values, key)
	}
	return fs.save(values)
}

type MemoryStore struct {
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (ms *MemoryStore) Get(key string) (string, bool) {
	val, ok := ms.values[key]
	return val, ok
}

func (ms *MemoryStore) Set(key, value string) error {
	ms.values[key] = value
	return nil
}

func (ms *MemoryStore) Delete(keys ...string) error {
	for _, key := range keys {
		delete(ms.values, key)
	}
	return nil
}
