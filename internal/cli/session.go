package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/fatimatanveer/ethical-hackers-journey/internal/catalog"
	"github.com/fatimatanveer/ethical-hackers-journey/internal/config"
	"github.com/fatimatanveer/ethical-hackers-journey/internal/engine"
	"github.com/fatimatanveer/ethical-hackers-journey/internal/leaderboard"
	"github.com/fatimatanveer/ethical-hackers-journey/internal/model"
	"github.com/fatimatanveer/ethical-hackers-journey/internal/store"
)

// session is the wiring shared by commands that touch saved state:
// config, catalog, store, leaderboard and an engine restored from the
// saved game.
type session struct {
	cfg     config.Config
	catalog *catalog.Catalog
	store   *store.Store
	board   *leaderboard.Board
	engine  *engine.Engine
	logger  *slog.Logger
}

// openStore loads config and opens the database. Failures are reported
// through f and returned as an ExitError.
func openStore(opts *RootOptions, cmd *cobra.Command, f *OutputFormatter) (config.Config, *store.Store, *slog.Logger, error) {
	cfg, err := opts.Config()
	if err != nil {
		return config.Config{}, nil, nil, f.Fail(ExitCommandError, ErrCodeConfig, "invalid configuration", err)
	}
	logger := opts.Logger(cmd.ErrOrStderr(), cfg)

	logger.Debug("opening database", "path", cfg.DBPath)
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return config.Config{}, nil, nil, f.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	return cfg, st, logger, nil
}

// openSession builds a session. Failures are reported through f and
// returned as an ExitError.
func openSession(ctx context.Context, opts *RootOptions, cmd *cobra.Command, f *OutputFormatter, extra ...engine.Option) (*session, error) {
	cfg, st, logger, err := openStore(opts, cmd, f)
	if err != nil {
		return nil, err
	}

	cat, err := cfg.Catalog()
	if err != nil {
		st.Close()
		return nil, f.Fail(ExitCommandError, ErrCodeCatalog, "failed to load catalog", err)
	}
	rnd, err := cfg.Random()
	if err != nil {
		st.Close()
		return nil, f.Fail(ExitCommandError, ErrCodeConfig, "failed to seed random source", err)
	}

	lb, err := loadLeaderboard(ctx, st, logger)
	if err != nil {
		st.Close()
		return nil, f.Fail(ExitCommandError, ErrCodeStore, "failed to load leaderboard", err)
	}
	board := leaderboard.New(lb,
		leaderboard.WithSaver(st),
		leaderboard.WithWindow(cfg.LeaderboardWindow),
		leaderboard.WithLogger(logger))

	engOpts := []engine.Option{
		engine.WithRandom(rnd),
		engine.WithPersister(st),
		engine.WithRecorder(engine.MultiRecorder{board, st}),
		engine.WithHintDelay(cfg.HintDelay),
		engine.WithLogger(logger),
	}
	eng := engine.New(cat, append(engOpts, extra...)...)

	s := &session{cfg: cfg, catalog: cat, store: st, board: board, engine: eng, logger: logger}
	if err := s.restore(ctx); err != nil {
		s.close()
		return nil, f.Fail(ExitCommandError, ErrCodeStore, "failed to load saved game", err)
	}
	return s, nil
}

// loadLeaderboard reads the stored leaderboard. An unreadable document is
// replaced by an empty board rather than blocking play.
func loadLeaderboard(ctx context.Context, st *store.Store, logger *slog.Logger) (leaderboard.Snapshot, error) {
	snap, err := st.LoadLeaderboard(ctx)
	if errors.Is(err, leaderboard.ErrInvalidSnapshot) {
		logger.Warn("discarding unreadable leaderboard", "error", err)
		return leaderboard.Snapshot{Entries: []leaderboard.Entry{}}, nil
	}
	return snap, err
}

// restore loads the saved game if there is one. An unreadable snapshot is
// discarded rather than blocking play.
func (s *session) restore(ctx context.Context) error {
	snap, err := s.store.LoadGame(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil
	case errors.Is(err, model.ErrInvalidSnapshot):
		s.logger.Warn("discarding unreadable saved game", "error", err)
		return nil
	case err != nil:
		return err
	}
	if err := s.engine.Restore(snap); err != nil {
		s.logger.Warn("discarding unreadable saved game", "error", err)
	}
	return nil
}

func (s *session) close() {
	s.engine.Close()
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}
