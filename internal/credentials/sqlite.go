package credentials

import (
	"fmt"

	"github.com/matheus3301/evowpp/internal/provider"
	"github.com/matheus3301/evowpp/internal/store"
	"go.uber.org/zap"
)

// SQLiteRepository keeps the config as a JSON value in the session database.
type SQLiteRepository struct {
	db     *store.DB
	logger *zap.Logger
}

// NewSQLiteRepository creates a repository backed by db.
func NewSQLiteRepository(db *store.DB, logger *zap.Logger) *SQLiteRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteRepository{db: db, logger: logger}
}

func (r *SQLiteRepository) Load() (*provider.Config, error) {
	raw, ok, err := r.db.Get(Key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", Key, err)
	}
	if !ok {
		return nil, nil
	}
	cfg, ok := decode([]byte(raw))
	if !ok {
		r.logger.Warn("stored provider config is malformed, ignoring", zap.String("key", Key))
		return nil, nil
	}
	return cfg, nil
}

func (r *SQLiteRepository) Save(cfg provider.Config) error {
	raw, err := encode(cfg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", Key, err)
	}
	if err := r.db.Put(Key, string(raw)); err != nil {
		return fmt.Errorf("save %s: %w", Key, err)
	}
	r.logger.Info("provider config saved", zap.Object("provider", cfg))
	return nil
}

// Clear removes the stored config.
func (r *SQLiteRepository) Clear() error {
	if err := r.db.Delete(Key); err != nil {
		return fmt.Errorf("clear %s: %w", Key, err)
	}
	r.logger.Info("provider config cleared")
	return nil
}
