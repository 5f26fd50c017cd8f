package filesystem

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"canva-clone/core"

	"github.com/sirupsen/logrus"
)

// fsStore keeps one file per key under basePath. Keys are path-escaped so
// that a key containing "/" still maps to a single file.
type fsStore struct {
	basePath string
}

// NewStore creates a new filesystem-based store rooted at basePath.
func NewStore(basePath string) (*fsStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &fsStore{basePath: basePath}, nil
}

var errInvalidKey = errors.New("invalid key")

func (s *fsStore) pathFor(key string) (string, error) {
	name := url.PathEscape(key)
	if key == "" || name == "." || name == ".." || strings.HasPrefix(name, ".tmp-") {
		return "", fmt.Errorf("%w: %q", errInvalidKey, key)
	}
	return filepath.Join(s.basePath, name), nil
}

func (s *fsStore) Get(ctx context.Context, key string) ([]byte, error) {
	filePath, err := s.pathFor(key)
	if err != nil {
		return nil, err
	}
	log := logrus.WithFields(logrus.Fields{"key": key, "file_path": filePath})

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug("Key not found on disk")
			return nil, core.ErrNotFound
		}
		log.WithError(err).Error("Failed to read value")
		return nil, err
	}
	return data, nil
}

// Set writes through a temporary file and renames it into place so readers
// never see a partial value.
func (s *fsStore) Set(ctx context.Context, key string, value []byte) error {
	filePath, err := s.pathFor(key)
	if err != nil {
		return err
	}
	log := logrus.WithFields(logrus.Fields{"key": key, "file_path": filePath})

	tmp, err := os.CreateTemp(s.basePath, ".tmp-*")
	if err != nil {
		log.WithError(err).Error("Failed to create temporary file")
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		log.WithError(err).Error("Failed to write value")
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		log.WithError(err).Error("Failed to move value into place")
		return err
	}
	log.WithField("data_length", len(value)).Debug("Value written to disk")
	return nil
}

func (s *fsStore) Remove(ctx context.Context, key string) error {
	filePath, err := s.pathFor(key)
	if err != nil {
		return err
	}
	err = os.Remove(filePath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithField("key", key).WithError(err).Error("Failed to remove value")
		return err
	}
	return nil
}

func (s *fsStore) List(ctx context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".tmp-") {
			continue
		}
		key, err := url.PathUnescape(entry.Name())
		if err != nil {
			logrus.WithField("file_name", entry.Name()).Warn("Skipping file with an undecodable name")
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *fsStore) Close() error { return nil }
