package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/fatimatanveer/ethical-hackers-journey/internal/engine"
	"github.com/fatimatanveer/ethical-hackers-journey/internal/minigame"
	"github.com/fatimatanveer/ethical-hackers-journey/internal/model"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Mission string
	Player  string
	Role    string
	Resume  bool

	// Clock and Scheduler override the engine's timers (for testing).
	// If nil, the system clock and time.AfterFunc are used.
	Clock     engine.Clock
	Scheduler engine.Scheduler
}

const playHelp = `Meta commands:
  :choose <scenario> <choice>    resolve a scenario
  :minigame <scenario> [n ...]   show a challenge, or flag entries n and submit
  :scenarios                     list available scenarios and their choices
  :log                           show the mission log
  :score                         show metrics, score and grade
  :briefing                      show the mission briefing
  :help                          show this help
  :quit                          leave (progress is saved)
Anything else is sent to the mission terminal. Try 'help'.`

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a mission in the simulated terminal",
		Long: `Start a mission, or resume the saved one, and play it line by line.

Plain lines go to the mission terminal. Lines starting with ':' are meta
commands for decisions and reports; type ':help' to list them. Progress is
saved after every action.

Example:
  ehj play --mission red-1 --player ada
  ehj play --resume`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Mission, "mission", "m", "", "mission id to start")
	cmd.Flags().StringVar(&opts.Player, "player", "", "player name recorded on the leaderboard")
	cmd.Flags().StringVar(&opts.Role, "role", "", "preferred role (red|blue)")
	cmd.Flags().BoolVar(&opts.Resume, "resume", false, "resume the saved mission")

	return cmd
}

func runPlay(opts *PlayOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	if !opts.Resume && opts.Mission == "" {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "--mission is required unless --resume is set", nil)
	}
	if opts.Role != "" && !model.Role(opts.Role).Valid() {
		return f.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("invalid role %q: must be red or blue", opts.Role), nil)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	p := &player{out: cmd.OutOrStdout(), json: f.JSON(), clock: engine.SystemClock{}}
	if opts.Clock != nil {
		p.clock = opts.Clock
	}
	extra := []engine.Option{engine.WithObserver(p.observe)}
	if opts.Clock != nil {
		extra = append(extra, engine.WithClock(opts.Clock))
	}
	if opts.Scheduler != nil {
		extra = append(extra, engine.WithScheduler(opts.Scheduler))
	}

	sess, err := openSession(ctx, opts.RootOptions, cmd, f, extra...)
	if err != nil {
		return err
	}
	defer sess.close()
	p.sess = sess
	eng := sess.engine

	if opts.Player != "" {
		p.check(eng.SetPlayerName(ctx, opts.Player))
	}
	if opts.Role != "" {
		p.check(eng.SetRole(ctx, model.Role(opts.Role)))
	}

	_, active := eng.CurrentMission()
	switch {
	case opts.Resume && active:
		sess.logger.Info("resuming mission", "run_id", eng.RunID(), "status", eng.Status())
	case opts.Resume && opts.Mission == "":
		return f.Fail(ExitCommandError, ErrCodeNotFound, "no saved mission to resume", nil)
	default:
		if _, ok := sess.catalog.Mission(opts.Mission); !ok {
			return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("mission %q not found", opts.Mission), nil)
		}
		p.check(eng.StartMission(ctx, opts.Mission))
	}

	p.briefing()
	p.say("Type 'help' for terminal commands, ':help' for meta commands.", nil)
	return p.loop(ctx, cmd.InOrStdin())
}

// player renders one interactive session. Terminal entries arrive through
// the engine observer, possibly from a hint timer goroutine.
type player struct {
	mu   sync.Mutex
	out  io.Writer
	json bool
	sess *session
	last model.MissionStatus

	// clock feeds Tick with the time spent between inputs.
	clock engine.Clock
	seen  time.Time
}

func (p *player) observe(ev engine.Event) {
	if ev.Kind != engine.EventTerminal {
		return
	}
	e := ev.Entry
	var b strings.Builder
	if e.Command != "" {
		fmt.Fprintf(&b, "$ %s\n", e.Command)
	}
	b.WriteString(e.Output)
	p.say(b.String(), e)
}

// say writes text, or data as one JSON line in json mode.
func (p *player) say(text string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.json {
		if data == nil {
			data = map[string]string{"message": text}
		}
		_ = json.NewEncoder(p.out).Encode(data)
		return
	}
	fmt.Fprintln(p.out, text)
}

// check logs infrastructure errors. The game keeps running on the
// in-memory state.
func (p *player) check(err error) {
	if err != nil {
		p.sess.logger.Error("failed to save progress", "run_id", p.sess.engine.RunID(), "error", err)
	}
}

func (p *player) loop(ctx context.Context, in io.Reader) error {
	p.last = p.sess.engine.Status()
	p.seen = p.clock.Now()
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		now := p.clock.Now()
		p.check(p.sess.engine.Tick(ctx, now.Sub(p.seen)))
		p.seen = now

		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, ":") {
			if quit := p.meta(ctx, line); quit {
				return nil
			}
		} else {
			eff, err := p.sess.engine.ExecuteCommand(ctx, line)
			p.check(err)
			if _, active := p.sess.engine.CurrentMission(); !active && line != "" {
				p.say(eff.Output, nil)
			}
		}
		p.debrief()
	}
	if err := scanner.Err(); err != nil {
		return WrapExitError(ExitCommandError, "failed to read input", err)
	}
	return nil
}

// debrief reports a status transition once.
func (p *player) debrief() {
	eng := p.sess.engine
	status := eng.Status()
	if status == p.last {
		return
	}
	p.last = status
	score := eng.FinalScore()
	switch status {
	case model.StatusCompleted:
		p.say(fmt.Sprintf("*** MISSION COMPLETE *** Final score: %d (%s)", score, model.Grade(score)),
			map[string]any{"status": status, "score": score, "grade": model.Grade(score)})
	case model.StatusFailed:
		p.say(fmt.Sprintf("*** MISSION FAILED *** %s", eng.FailureReason()),
			map[string]any{"status": status, "reason": eng.FailureReason(), "score": score})
	}
}

func (p *player) meta(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		return true
	case ":help":
		p.say(playHelp, nil)
	case ":briefing":
		p.briefing()
	case ":score":
		p.score()
	case ":log":
		p.log()
	case ":scenarios":
		p.scenarios(ctx)
	case ":choose":
		if len(fields) != 3 {
			p.say("usage: :choose <scenario> <choice>", nil)
			return false
		}
		p.choose(ctx, fields[1], fields[2])
	case ":minigame":
		if len(fields) < 2 {
			p.say("usage: :minigame <scenario> [n ...]", nil)
			return false
		}
		p.minigame(ctx, fields[1], fields[2:])
	default:
		p.say(fmt.Sprintf("Unknown meta command %s. Type ':help'.", fields[0]), nil)
	}
	return false
}

func (p *player) briefing() {
	m, ok := p.sess.engine.CurrentMission()
	if !ok {
		p.say("No active mission.", nil)
		return
	}
	p.say(fmt.Sprintf("=== %s (%s, %s) ===\n%s", m.Title, m.Role, m.Difficulty, strings.TrimSpace(m.Briefing)),
		map[string]any{"mission": m.ID, "title": m.Title, "role": m.Role, "difficulty": m.Difficulty, "briefing": m.Briefing})
}

func (p *player) score() {
	eng := p.sess.engine
	m := eng.Metrics()
	score := eng.FinalScore()
	total := 0
	if mission, ok := eng.CurrentMission(); ok {
		total = len(mission.Objectives)
	}
	done := len(eng.CompletedObjectives())
	p.say(fmt.Sprintf("Status: %s\nObjectives: %d/%d\nTechnical: %d  Ethics: %d  Detection risk: %d  Time: %ds\nScore: %d (%s)",
		eng.Status(), done, total, m.TechnicalScore, m.EthicsScore, m.DetectionRisk, m.TimeElapsed, score, model.Grade(score)),
		map[string]any{"status": eng.Status(), "metrics": m, "score": score, "grade": model.Grade(score), "objectives": done, "total": total})
}

func (p *player) log() {
	items := p.sess.engine.MissionLog()
	if p.json {
		p.say("", items)
		return
	}
	if len(items) == 0 {
		p.say("Mission log is empty.", nil)
		return
	}
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		ts := time.UnixMilli(it.Timestamp).UTC().Format("15:04:05")
		switch it.Kind {
		case engine.LogDecision:
			fmt.Fprintf(&b, "[%s] DECISION %s: %s", ts, it.Scenario, it.Choice)
		default:
			first, _, _ := strings.Cut(it.Output, "\n")
			if it.Command != "" {
				fmt.Fprintf(&b, "[%s] $ %s -> %s", ts, it.Command, first)
			} else {
				fmt.Fprintf(&b, "[%s] %s", ts, first)
			}
		}
	}
	p.say(b.String(), nil)
}

func (p *player) scenarios(ctx context.Context) {
	eng := p.sess.engine
	available := eng.AvailableScenarios()
	if p.json {
		p.say("", available)
	} else if len(available) == 0 {
		p.say("No scenarios available. Complete more objectives to unlock them.", nil)
	} else {
		highlight := eng.HighlightScenarioID()
		var b strings.Builder
		for i, s := range available {
			if i > 0 {
				b.WriteString("\n\n")
			}
			mark := ""
			if s.ID == highlight {
				mark = " [NEW]"
			}
			fmt.Fprintf(&b, "%s: %s%s\n  %s", s.ID, s.Title, mark, s.Description)
			if s.RequiresMiniGame != "" {
				fmt.Fprintf(&b, "\n  Challenge: %s (:minigame %s)", s.RequiresMiniGame, s.ID)
			}
			for _, c := range s.Choices {
				fmt.Fprintf(&b, "\n  - %s: %s", c.ID, c.Text)
			}
		}
		p.say(b.String(), nil)
	}
	p.check(eng.ClearHighlight(ctx))
}

func (p *player) choose(ctx context.Context, scenarioID, choiceID string) {
	eng := p.sess.engine
	before := len(eng.ScenarioHistory())
	p.check(eng.MakeScenarioChoice(ctx, scenarioID, choiceID))
	if len(eng.ScenarioHistory()) == before {
		p.say(fmt.Sprintf("Choice %s/%s not accepted.", scenarioID, choiceID),
			map[string]any{"accepted": false, "scenario": scenarioID, "choice": choiceID})
		return
	}
	consequence := ""
	if m, ok := eng.CurrentMission(); ok {
		if s := m.Scenario(scenarioID); s != nil {
			if c := s.Choice(choiceID); c != nil {
				consequence = c.Consequence
			}
		}
	}
	p.say(consequence, map[string]any{"accepted": true, "scenario": scenarioID, "choice": choiceID, "consequence": consequence})
}

func (p *player) minigame(ctx context.Context, scenarioID string, args []string) {
	eng := p.sess.engine
	var challenge minigame.Challenge
	found := false
	if m, ok := eng.CurrentMission(); ok {
		if s := m.Scenario(scenarioID); s != nil {
			challenge, found = minigame.Lookup(s.RequiresMiniGame)
		}
	}
	if !found {
		p.say(fmt.Sprintf("No mini-game available for %s.", scenarioID), nil)
		return
	}

	if len(args) == 0 {
		var b strings.Builder
		b.WriteString(challenge.Prompt)
		for i, e := range challenge.Entries {
			fmt.Fprintf(&b, "\n  %d. %s", i+1, e.Text)
		}
		fmt.Fprintf(&b, "\nSubmit with :minigame %s <n> ...", scenarioID)
		p.say(b.String(), challenge)
		return
	}

	numbers := make([]int, 0, len(args))
	for _, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			p.say(fmt.Sprintf("not an entry number: %q", a), nil)
			return
		}
		numbers = append(numbers, n)
	}
	flags, err := challenge.Flags(numbers)
	if err != nil {
		p.say(err.Error(), nil)
		return
	}

	res, err := eng.SubmitMiniGame(ctx, scenarioID, flags)
	if errors.Is(err, engine.ErrNoMiniGame) {
		p.say(fmt.Sprintf("No mini-game available for %s.", scenarioID), nil)
		return
	}
	p.check(err)
	p.say(fmt.Sprintf("%s (score %d)", res.Message, res.Score), res)
}
