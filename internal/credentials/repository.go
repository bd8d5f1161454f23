// Package credentials persists the provider configuration between runs.
package credentials

import (
	"encoding/json"

	"github.com/matheus3301/evowpp/internal/provider"
)

// Key is the entry the provider configuration is stored under.
const Key = "evolutionApiConfig"

// Repository loads and saves the provider configuration. It performs no
// validation; callers decide what is worth saving.
type Repository interface {
	// Load returns the last saved config, or nil when nothing usable is stored.
	Load() (*provider.Config, error)
	// Save overwrites the stored config and returns once it is durable.
	Save(cfg provider.Config) error
}

// Clearer is implemented by repositories that can forget the stored config.
type Clearer interface {
	Clear() error
}

func encode(cfg provider.Config) ([]byte, error) {
	return json.Marshal(cfg)
}

// decode fails closed: anything that is not a JSON object with all three
// fields set is treated as absent.
func decode(raw []byte) (*provider.Config, bool) {
	var cfg provider.Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, false
	}
	if !cfg.Complete() {
		return nil, false
	}
	return &cfg, true
}
