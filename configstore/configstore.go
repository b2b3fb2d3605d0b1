// Package configstore persists the threshold configuration.
package configstore

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"student-scores/apperr"
	"student-scores/models"
	"student-scores/scoring"
)

// Store loads and replaces the whole configuration document.
type Store interface {
	Load(ctx context.Context) (*models.Config, error)
	Save(ctx context.Context, cfg *models.Config) error
}

// FileStore keeps the configuration as a YAML file. A missing file yields
// the default configuration.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) Load(ctx context.Context) (*models.Config, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		log.WithField("path", s.Path).Debug("config file missing, using defaults")
		return scoring.DefaultConfig(), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config")
	}

	var cfg models.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse YAML")
	}
	if err := models.Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Save validates cfg and swaps it in through a temp file so readers never
// see a partial document.
func (s *FileStore) Save(ctx context.Context, cfg *models.Config) error {
	if cfg == nil {
		return apperr.Validationf("configuration is required")
	}
	if err := models.Validate(cfg); err != nil {
		return apperr.Validationf("%v", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return apperr.Wrap(err, "marshal config")
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.Wrap(err, "create config dir")
	}
	tmp, err := os.CreateTemp(dir, ".thresholds-*.yaml")
	if err != nil {
		return apperr.Wrap(err, "create temp config")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apperr.Wrap(err, "write temp config")
	}
	if err := tmp.Close(); err != nil {
		return apperr.Wrap(err, "close temp config")
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return apperr.Wrap(err, "replace config")
	}

	log.WithField("path", s.Path).Info("config saved")
	return nil
}
