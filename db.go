package main

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"arcvalue/pkg/config"
	"arcvalue/pkg/store"
)

// migrate creates the state schema for the postgres driver. The file driver
// only needs its directory.
func migrate(cfg *config.Config) error {
	switch cfg.Store.Driver {
	case "postgres":
		st, err := store.OpenPostgres(cfg.Store.DatabaseURL, false)
		if err != nil {
			return err
		}
		defer st.Close()
		if failed := st.Migrate(); failed > 0 {
			return eris.Errorf("migrate: %d model(s) failed, see warnings", failed)
		}
		zap.L().Info("server: schema migrated")
		return nil
	default:
		st, err := store.NewFileStore(cfg.Store.Dir)
		if err != nil {
			return err
		}
		zap.L().Info("server: file store ready", zap.String("dir", st.Dir()))
		return st.Close()
	}
}
