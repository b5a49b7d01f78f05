package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fatimatanveer/ethical-hackers-journey/internal/catalog"
	"github.com/fatimatanveer/ethical-hackers-journey/internal/engine"
	"github.com/fatimatanveer/ethical-hackers-journey/internal/interpreter"
	"github.com/fatimatanveer/ethical-hackers-journey/internal/leaderboard"
	"github.com/fatimatanveer/ethical-hackers-journey/internal/minigame"
	"github.com/fatimatanveer/ethical-hackers-journey/internal/model"
	"github.com/fatimatanveer/ethical-hackers-journey/internal/store"
	"github.com/fatimatanveer/ethical-hackers-journey/internal/testutil"
)

// Harness is the test execution engine.
// It drives one engine with a manual clock, scripted rolls and a fixed run id.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	board  *leaderboard.Board
	clock  *testutil.ManualClock
	sched  *testutil.ManualScheduler
	logger *slog.Logger
}

type runConfig struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// Option configures Run.
type Option func(*runConfig)

// WithCatalog runs the scenario against cat instead of the built-in catalog.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(c *runConfig) { c.catalog = cat }
}

// WithLogger routes engine and harness logs to l. Logs are discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) { c.logger = l }
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Deterministic helpers ensure reproducible results.
//
// Execution flow:
// 1. Create fresh in-memory database and leaderboard
// 2. Build the engine over a manual clock and scripted rolls
// 3. Apply player name and role, then execute steps with expect validation
// 4. Evaluate assertions and capture the transcript
//
// A returned error means the run itself broke (store failure, bad catalog);
// failed expectations and assertions are reported in Result.Errors.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.catalog == nil {
		cat, err := catalog.Default()
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		cfg.catalog = cat
	}

	// Create fresh in-memory SQLite database
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	clock := testutil.NewManualClock(testutil.Epoch)
	sched := testutil.NewManualScheduler(clock)
	board := leaderboard.New(leaderboard.Snapshot{},
		leaderboard.WithSaver(st),
		leaderboard.WithLogger(cfg.logger))

	eng := engine.New(cfg.catalog,
		engine.WithClock(clock),
		engine.WithScheduler(sched),
		engine.WithRandom(interpreter.NewSequence(scenario.Random...)),
		engine.WithPersister(st),
		engine.WithRecorder(engine.MultiRecorder{board, st}),
		engine.WithRunIDGenerator(testutil.NewFixedRunIDGenerator(scenario.RunID)),
		engine.WithLogger(cfg.logger))
	defer eng.Close()

	h := &Harness{
		store:  st,
		engine: eng,
		board:  board,
		clock:  clock,
		sched:  sched,
		logger: cfg.logger,
	}

	ctx := context.Background()
	result := NewResult()

	if err := h.setup(ctx, scenario); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Do, err)
		}
	}

	actx := &AssertionContext{
		Ctx:    ctx,
		Engine: eng,
		Store:  st,
		Board:  board,
	}
	for _, errMsg := range EvaluateAssertions(scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	result.Transcript = Capture(scenario.Name, eng, board)
	return result, nil
}

func (h *Harness) setup(ctx context.Context, s *Scenario) error {
	if s.Player != "" {
		if err := h.engine.SetPlayerName(ctx, s.Player); err != nil {
			return err
		}
	}
	if s.Role != "" {
		if err := h.engine.SetRole(ctx, model.Role(s.Role)); err != nil {
			return err
		}
	}
	return nil
}

// executeStep applies one step. Unmet expectations are added to result.
func (h *Harness) executeStep(ctx context.Context, i int, step Step, result *Result) error {
	switch step.Do {
	case StepStart:
		return h.engine.StartMission(ctx, step.Mission)

	case StepCommand:
		eff, err := h.engine.ExecuteCommand(ctx, step.Input)
		if err != nil {
			return err
		}
		if step.Expect != nil {
			checkCommand(i, step, eff, result)
		}

	case StepChoose:
		return h.engine.MakeScenarioChoice(ctx, step.Scenario, step.Choice)

	case StepMiniGame:
		return h.playMiniGame(ctx, i, step, result)

	case StepComplete:
		return h.engine.CompleteObjective(ctx, step.Objective)

	case StepFireHints:
		n := h.sched.FireAll()
		h.logger.Debug("hints fired", "step", i, "count", n)

	case StepAdvance:
		d, _ := time.ParseDuration(step.Duration)
		n := h.sched.Advance(d)
		h.logger.Debug("clock advanced", "step", i, "by", d, "fired", n)

	case StepTick:
		d, _ := time.ParseDuration(step.Duration)
		return h.engine.Tick(ctx, d)

	case StepReset:
		return h.engine.ResetGame(ctx)

	case StepClearHighlight:
		return h.engine.ClearHighlight(ctx)

	default:
		return fmt.Errorf("unknown step %q", step.Do)
	}
	return nil
}

func (h *Harness) playMiniGame(ctx context.Context, i int, step Step, result *Result) error {
	var flags []bool
	if m, ok := h.engine.CurrentMission(); ok {
		if s := m.Scenario(step.Scenario); s != nil {
			if challenge, ok := minigame.Lookup(s.RequiresMiniGame); ok {
				f, err := challenge.Flags(step.Flags)
				if err != nil {
					result.AddError(fmt.Sprintf("steps[%d]: %v", i, err))
					return nil
				}
				flags = f
			}
		}
	}

	res, err := h.engine.SubmitMiniGame(ctx, step.Scenario, flags)
	if errors.Is(err, engine.ErrNoMiniGame) {
		result.AddError(fmt.Sprintf("steps[%d]: %v", i, err))
		return nil
	}
	if err != nil {
		return err
	}
	if step.Expect != nil && step.Expect.Passed != nil && *step.Expect.Passed != res.Passed {
		result.AddError(fmt.Sprintf("steps[%d]: mini-game passed = %t, expected %t (score %d)",
			i, res.Passed, *step.Expect.Passed, res.Score))
	}
	return nil
}

func checkCommand(i int, step Step, eff interpreter.Effect, result *Result) {
	exp := step.Expect
	if exp.Output != nil && eff.Output != *exp.Output {
		result.AddError(fmt.Sprintf("steps[%d]: command %q output = %q, expected %q", i, step.Input, eff.Output, *exp.Output))
	}
	if exp.Contains != "" && !strings.Contains(eff.Output, exp.Contains) {
		result.AddError(fmt.Sprintf("steps[%d]: command %q output does not contain %q", i, step.Input, exp.Contains))
	}
	if exp.Recognized != nil && eff.Recognized != *exp.Recognized {
		result.AddError(fmt.Sprintf("steps[%d]: command %q recognized = %t, expected %t", i, step.Input, eff.Recognized, *exp.Recognized))
	}
}

// Capture builds the transcript of eng's current state.
func Capture(name string, eng *engine.Engine, board *leaderboard.Board) Transcript {
	t := Transcript{
		Scenario:            name,
		RunID:               eng.RunID(),
		Player:              eng.PlayerName(),
		Role:                eng.Role(),
		Status:              eng.Status(),
		FailureReason:       eng.FailureReason(),
		Metrics:             eng.Metrics(),
		Score:               eng.FinalScore(),
		CompletedObjectives: eng.CompletedObjectives(),
		AvailableScenarios:  []string{},
		Highlight:           eng.HighlightScenarioID(),
		Log:                 eng.MissionLog(),
		Leaderboard:         board.Ranked(),
	}
	t.Grade = model.Grade(t.Score)
	if m, ok := eng.CurrentMission(); ok {
		t.Mission = m.ID
	}
	for _, s := range eng.AvailableScenarios() {
		t.AvailableScenarios = append(t.AvailableScenarios, s.ID)
	}
	return t
}
