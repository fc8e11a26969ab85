package main

import (
	"log/slog"

	"scanhist/internal/config"
	"scanhist/internal/store"
)

func withStore(cfg *config.Config, fn func(*store.Store) error) error {
	st, err := store.Open(cfg.DBPath, &cfg.History)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Warn("close history", "path", cfg.DBPath, "err", err)
		}
	}()
	slog.Debug("opened history", "path", cfg.DBPath)
	return fn(st)
}
