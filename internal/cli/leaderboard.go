package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fatimatanveer/ethical-hackers-journey/internal/leaderboard"
)

// LeaderboardOptions holds flags for the leaderboard command.
type LeaderboardOptions struct {
	*RootOptions
	Limit int
	Runs  bool
}

// NewLeaderboardCommand creates the leaderboard command and its clear
// subcommand.
func NewLeaderboardCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LeaderboardOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the leaderboard",
		Long: `Show leaderboard entries ranked by score, most recent first on ties.

With --runs the archive of completed runs is listed instead, newest first.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLeaderboard(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 10, "maximum number of rows (0 for all)")
	cmd.Flags().BoolVar(&opts.Runs, "runs", false, "list archived runs instead of leaderboard entries")

	cmd.AddCommand(&cobra.Command{
		Use:           "clear",
		Short:         "Remove every leaderboard entry",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLeaderboardClear(rootOpts, cmd)
		},
	})

	return cmd
}

func runLeaderboard(opts *LeaderboardOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	if opts.Limit < 0 {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "--limit must not be negative", nil)
	}

	_, st, logger, err := openStore(opts.RootOptions, cmd, f)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := commandContext(cmd)
	if opts.Runs {
		runs, err := st.Runs(ctx, opts.Limit)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "failed to read runs", err)
		}
		if f.JSON() {
			return f.Success(runs)
		}
		if len(runs) == 0 {
			fmt.Fprintln(f.Writer, "No runs recorded yet.")
			return nil
		}
		tw := f.Table()
		fmt.Fprintln(tw, "RUN\tPLAYER\tROLE\tMISSION\tSCORE\tCOMPLETED")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n", r.RunID, r.PlayerName, r.Role, r.MissionID, r.Score, formatMillis(r.CompletedAt))
		}
		return tw.Flush()
	}

	snap, err := loadLeaderboard(ctx, st, logger)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to load leaderboard", err)
	}
	entries := leaderboard.Rank(snap.Entries)
	if opts.Limit > 0 && len(entries) > opts.Limit {
		entries = entries[:opts.Limit]
	}

	if f.JSON() {
		return f.Success(entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(f.Writer, "Leaderboard is empty.")
		return nil
	}
	tw := f.Table()
	fmt.Fprintln(tw, "#\tPLAYER\tROLE\tSCORE\tCOMPLETED")
	for i, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", i+1, e.PlayerName, e.Role, e.Score, formatMillis(e.CompletedAt))
	}
	return tw.Flush()
}

func runLeaderboardClear(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	cfg, st, logger, err := openStore(opts, cmd, f)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := commandContext(cmd)
	snap, err := loadLeaderboard(ctx, st, logger)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to load leaderboard", err)
	}
	board := leaderboard.New(snap,
		leaderboard.WithSaver(st),
		leaderboard.WithWindow(cfg.LeaderboardWindow),
		leaderboard.WithLogger(logger))
	if err := board.Clear(ctx); err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to clear leaderboard", err)
	}
	logger.Info("leaderboard cleared", "removed", len(snap.Entries))

	if f.JSON() {
		return f.Success(map[string]int{"removed": len(snap.Entries)})
	}
	fmt.Fprintf(f.Writer, "✓ Leaderboard cleared (%d entries removed)\n", len(snap.Entries))
	return nil
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.DateTime)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
