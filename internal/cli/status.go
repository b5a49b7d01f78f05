package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fatimatanveer/ethical-hackers-journey/internal/model"
)

// StatusReport describes the saved game.
type StatusReport struct {
	Player              string              `json:"player"`
	Role                model.Role          `json:"role"`
	Mission             string              `json:"mission,omitempty"`
	Status              model.MissionStatus `json:"status"`
	FailureReason       string              `json:"failureReason,omitempty"`
	Metrics             model.Metrics       `json:"metrics"`
	Score               int                 `json:"score"`
	Grade               string              `json:"grade"`
	CompletedObjectives []string            `json:"completedObjectives"`
	AvailableScenarios  []string            `json:"availableScenarios"`
	Commands            int                 `json:"commands"`
	Decisions           int                 `json:"decisions"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "status",
		Short:         "Show the saved game",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, cmd)
		},
	}
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Abandon the saved mission",
		Long: `Abandon the saved game and return to the initial state.

The leaderboard and the run archive are kept.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(rootOpts, cmd)
		},
	}
}

func runStatus(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	sess, err := openSession(commandContext(cmd), opts, cmd, f)
	if err != nil {
		return err
	}
	defer sess.close()

	report := statusReport(sess)
	if f.JSON() {
		return f.Success(report)
	}

	w := f.Writer
	player := report.Player
	if player == "" {
		player = model.AnonymousPlayer
	}
	fmt.Fprintf(w, "Player: %s (%s)\n", player, report.Role)
	if report.Mission == "" {
		fmt.Fprintln(w, "No active mission.")
		return nil
	}
	fmt.Fprintf(w, "Mission: %s [%s]\n", report.Mission, report.Status)
	if report.FailureReason != "" {
		fmt.Fprintf(w, "Reason: %s\n", report.FailureReason)
	}
	m := report.Metrics
	fmt.Fprintf(w, "Technical: %d  Ethics: %d  Detection risk: %d  Time: %ds\n",
		m.TechnicalScore, m.EthicsScore, m.DetectionRisk, m.TimeElapsed)
	fmt.Fprintf(w, "Score: %d (%s)\n", report.Score, report.Grade)
	fmt.Fprintf(w, "Objectives done: %s\n", joinOrNone(report.CompletedObjectives))
	fmt.Fprintf(w, "Scenarios open: %s\n", joinOrNone(report.AvailableScenarios))
	fmt.Fprintf(w, "History: %d commands, %d decisions\n", report.Commands, report.Decisions)
	return nil
}

func statusReport(sess *session) StatusReport {
	eng := sess.engine
	score := eng.FinalScore()
	report := StatusReport{
		Player:              eng.PlayerName(),
		Role:                eng.Role(),
		Status:              eng.Status(),
		FailureReason:       eng.FailureReason(),
		Metrics:             eng.Metrics(),
		Score:               score,
		Grade:               model.Grade(score),
		CompletedObjectives: eng.CompletedObjectives(),
		AvailableScenarios:  []string{},
		Commands:            len(eng.TerminalHistory()),
		Decisions:           len(eng.ScenarioHistory()),
	}
	if m, ok := eng.CurrentMission(); ok {
		report.Mission = m.ID
	}
	for _, s := range eng.AvailableScenarios() {
		report.AvailableScenarios = append(report.AvailableScenarios, s.ID)
	}
	return report
}

func runReset(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := commandContext(cmd)
	sess, err := openSession(ctx, opts, cmd, f)
	if err != nil {
		return err
	}
	defer sess.close()

	if err := sess.engine.ResetGame(ctx); err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to save reset game", err)
	}

	if f.JSON() {
		return f.Success(map[string]any{"status": sess.engine.Status()})
	}
	fmt.Fprintln(f.Writer, "✓ Game reset")
	return nil
}

func joinOrNone(ids []string) string {
	if len(ids) == 0 {
		return "none"
	}
	return strings.Join(ids, ", ")
}
