package store

import (
	"tableflip.dev/focussync/pkg/config"
)

// Config locates the on-disk store.
type Config interface {
	BasePath() string
}

// LoadConfig resolves the store location from the application config.
func LoadConfig() (Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
