package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fatimatanveer/ethical-hackers-journey/internal/catalog"
	"github.com/fatimatanveer/ethical-hackers-journey/internal/interpreter"
	"github.com/fatimatanveer/ethical-hackers-journey/internal/minigame"
	"github.com/fatimatanveer/ethical-hackers-journey/internal/model"
	"github.com/fatimatanveer/ethical-hackers-journey/internal/resolver"
)

// DefaultHintDelay is the stagger between initial hint entries.
const DefaultHintDelay = 500 * time.Millisecond

// Synthetic terminal outputs.
const (
	MissionCompleteOutput = "All mission objectives complete! Mission successful."
	MissionFailedPrefix   = "MISSION TERMINATED: "
	DefaultFailReason     = "Mission failed."
)

// ErrNoMiniGame is returned by SubmitMiniGame when the scenario offers no
// challenge the player can currently attempt.
var ErrNoMiniGame = errors.New("no mini-game available")

// Persister saves the full play-through snapshot after every mutation.
type Persister interface {
	SaveGame(ctx context.Context, snap model.Snapshot) error
}

// Recorder receives each successfully completed run exactly once.
type Recorder interface {
	RecordRun(ctx context.Context, run model.RunSummary) error
}

// MultiRecorder offers each run to every recorder in order. All recorders
// are called even if one fails; their errors are joined.
type MultiRecorder []Recorder

// RecordRun implements Recorder.
func (m MultiRecorder) RecordRun(ctx context.Context, run model.RunSummary) error {
	var errs []error
	for _, r := range m {
		if err := r.RecordRun(ctx, run); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// EventKind classifies engine events.
type EventKind string

const (
	// EventTerminal carries a newly appended terminal entry.
	EventTerminal EventKind = "terminal"
	// EventStatus carries a mission status transition.
	EventStatus EventKind = "status"
)

// Event is delivered to observers after the mutation that produced it.
type Event struct {
	Kind   EventKind
	Entry  model.TerminalEntry
	Status model.MissionStatus
}

// Observer is notified of engine events. Observers run outside the engine
// lock, in the order events were produced.
type Observer func(Event)

// Engine owns one play-through.
//
// Thread-safety: all methods are safe for concurrent use. Hint callbacks
// fired by the Scheduler take the same lock as player intents.
type Engine struct {
	mu sync.Mutex

	catalog   *catalog.Catalog
	interp    *interpreter.Interpreter
	clock     Clock
	scheduler Scheduler
	persister Persister
	recorder  Recorder
	observers []Observer
	runIDs    RunIDGenerator
	hintDelay time.Duration
	logger    *slog.Logger

	state      model.PlayState
	runID      string
	generation uint64
	timers     []func() bool
	recorded   bool
	failReason string
	tickRem    time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for history timestamps.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithRandom sets the random source behind command side-narratives.
func WithRandom(r interpreter.Random) Option {
	return func(e *Engine) { e.interp = interpreter.New(r) }
}

// WithInterpreter replaces the command interpreter, e.g. one with extra
// registered commands.
func WithInterpreter(in *interpreter.Interpreter) Option {
	return func(e *Engine) { e.interp = in }
}

// WithScheduler sets the scheduler for staggered hints.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.scheduler = s }
}

// WithPersister saves the snapshot after every mutation.
func WithPersister(p Persister) Option {
	return func(e *Engine) { e.persister = p }
}

// WithRecorder receives completed runs.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithObserver adds an event observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

// WithHintDelay sets the stagger between hint entries.
//
// Default: 500ms (DefaultHintDelay)
func WithHintDelay(d time.Duration) Option {
	return func(e *Engine) { e.hintDelay = d }
}

// WithRunIDGenerator sets the run id generator.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(e *Engine) { e.runIDs = g }
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine in the initial state over a fresh roster from cat.
func New(cat *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog:   cat,
		clock:     SystemClock{},
		scheduler: SystemScheduler{},
		runIDs:    UUIDv7Generator{},
		hintDelay: DefaultHintDelay,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.interp == nil {
		e.interp = interpreter.New(nil)
	}
	e.state = model.NewPlayState(cat.Instantiate())
	return e
}

// Interpreter returns the engine's command interpreter.
func (e *Engine) Interpreter() *interpreter.Interpreter {
	return e.interp
}

// change collects the side effects of one mutation.
type change struct {
	dirty  bool
	events []Event
	run    *model.RunSummary
}

// mutate runs fn under the lock, persists if fn changed state, then
// notifies observers and the recorder outside the lock.
func (e *Engine) mutate(ctx context.Context, fn func(c *change)) error {
	e.mu.Lock()
	c := &change{}
	fn(c)
	var err error
	if c.dirty {
		err = e.persistLocked(ctx)
	}
	e.mu.Unlock()

	e.notify(c.events)
	if c.run != nil && e.recorder != nil {
		if rerr := e.recorder.RecordRun(ctx, *c.run); rerr != nil {
			err = errors.Join(err, fmt.Errorf("record run %s: %w", c.run.RunID, rerr))
		}
	}
	return err
}

func (e *Engine) persistLocked(ctx context.Context) error {
	if e.persister == nil {
		return nil
	}
	if err := e.persister.SaveGame(ctx, e.state.Snapshot()); err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	return nil
}

func (e *Engine) notify(events []Event) {
	for _, ev := range events {
		for _, o := range e.observers {
			o(ev)
		}
	}
}

func (e *Engine) now() int64 {
	return millis(e.clock.Now())
}

// appendLocked adds a terminal entry stamped with the current time.
func (e *Engine) appendLocked(c *change, command, output string) {
	entry := model.TerminalEntry{Command: command, Output: output, Timestamp: e.now()}
	e.state.TerminalHistory = append(e.state.TerminalHistory, entry)
	c.dirty = true
	c.events = append(c.events, Event{Kind: EventTerminal, Entry: entry})
}

func (e *Engine) setStatusLocked(c *change, s model.MissionStatus) {
	e.state.MissionStatus = s
	c.dirty = true
	c.events = append(c.events, Event{Kind: EventStatus, Status: s})
}

// checkCompletionLocked moves an in-progress mission with every objective
// complete to completed. It fires at most once per play-through.
func (e *Engine) checkCompletionLocked(c *change) {
	m := e.state.ActiveMission()
	if m == nil || e.state.MissionStatus != model.StatusInProgress || !m.AllObjectivesComplete() {
		return
	}
	e.setStatusLocked(c, model.StatusCompleted)
	e.appendLocked(c, "", MissionCompleteOutput)

	score := e.state.Metrics.FinalScore()
	e.logger.Info("mission completed",
		"run_id", e.runID,
		"mission", m.ID,
		"score", score,
		"grade", model.Grade(score))

	if !e.recorded {
		e.recorded = true
		c.run = &model.RunSummary{
			RunID:       e.runID,
			PlayerName:  e.state.PlayerName,
			Role:        m.Role,
			MissionID:   m.ID,
			Score:       score,
			CompletedAt: e.now(),
		}
	}
}

// stopTimersLocked cancels pending hints and invalidates any callback
// already in flight.
func (e *Engine) stopTimersLocked() {
	e.generation++
	for _, stop := range e.timers {
		stop()
	}
	e.timers = nil
}

// SetPlayerName sets the name recorded on completed runs.
func (e *Engine) SetPlayerName(ctx context.Context, name string) error {
	return e.mutate(ctx, func(c *change) {
		if e.state.PlayerName == name {
			return
		}
		e.state.PlayerName = name
		c.dirty = true
	})
}

// SetRole sets the player's role. Unknown roles are ignored.
// The role is a menu preference; it does not change an active mission.
func (e *Engine) SetRole(ctx context.Context, role model.Role) error {
	return e.mutate(ctx, func(c *change) {
		if !role.Valid() {
			e.logger.Debug("unknown role ignored", "role", role)
			return
		}
		if e.state.CurrentRole == role {
			return
		}
		e.state.CurrentRole = role
		c.dirty = true
	})
}

// StartMission begins a new play-through of missionID over a fresh roster.
// Unknown ids are ignored.
func (e *Engine) StartMission(ctx context.Context, missionID string) error {
	return e.mutate(ctx, func(c *change) {
		if _, ok := e.catalog.Mission(missionID); !ok {
			e.logger.Debug("unknown mission ignored", "mission", missionID)
			return
		}
		e.stopTimersLocked()

		e.state.CurrentMissionID = missionID
		e.state.Missions = e.catalog.Instantiate()
		e.state.Metrics = model.BaselineMetrics()
		e.state.TerminalHistory = []model.TerminalEntry{}
		e.state.ScenarioHistory = []model.ScenarioHistoryItem{}
		e.state.LastUnlockedScenarioID = ""
		e.setStatusLocked(c, model.StatusInProgress)

		e.runID = e.runIDs.Generate()
		e.recorded = false
		e.failReason = ""
		e.tickRem = 0

		m := e.state.ActiveMission()
		e.scheduleHintsLocked(m.InitialCommands)

		e.logger.Info("mission started",
			"run_id", e.runID,
			"mission", missionID,
			"role", m.Role,
			"hints", len(m.InitialCommands))
	})
}

func (e *Engine) scheduleHintsLocked(commands []string) {
	gen := e.generation
	for i, cmd := range commands {
		e.timers = append(e.timers, e.scheduler.AfterFunc(time.Duration(i)*e.hintDelay, func() {
			e.fireHint(gen, cmd)
		}))
	}
}

// fireHint appends one hint entry unless the play-through it was scheduled
// for has been replaced. Hints have no caller to return errors to.
func (e *Engine) fireHint(gen uint64, command string) {
	err := e.mutate(context.Background(), func(c *change) {
		if gen != e.generation {
			return
		}
		e.appendLocked(c, command, fmt.Sprintf("Type '%s' to get started", command))
	})
	if err != nil {
		e.logger.Error("hint persistence failed", "run_id", e.RunID(), "error", err)
	}
}

// ExecuteCommand interprets raw against the active mission and applies its
// effect. Without an active mission the canned output is returned and no
// state changes; blank input is ignored.
//
// Effects apply only while the mission is in progress. After the mission
// ends, commands are still logged but change no metrics or objectives.
func (e *Engine) ExecuteCommand(ctx context.Context, raw string) (interpreter.Effect, error) {
	var eff interpreter.Effect
	err := e.mutate(ctx, func(c *change) {
		m := e.state.ActiveMission()
		if m == nil {
			eff = interpreter.Effect{Output: interpreter.NoActiveMissionOutput}
			return
		}
		command := strings.TrimSpace(raw)
		if command == "" {
			return
		}

		eff = e.interp.Interpret(raw, m, e.state.Metrics, e.state.MissionStatus)
		if eff.ClearHistory {
			e.state.TerminalHistory = []model.TerminalEntry{}
		}
		e.appendLocked(c, command, eff.Output)

		if e.state.MissionStatus != model.StatusInProgress {
			return
		}

		before := availableIDs(m)
		e.state.Metrics = e.state.Metrics.Apply(eff.Delta())
		newly := 0
		for _, id := range eff.CompletesObjectives {
			if m.CompleteObjective(id) {
				newly++
			}
		}
		for _, a := range eff.Alerts {
			e.appendLocked(c, "", a.Message)
			e.state.Metrics = e.state.Metrics.Apply(model.Delta{DetectionRisk: a.DetectionRiskImpact})
		}
		if newly > 0 {
			e.announceUnlockLocked(c, m, before)
		}
		e.checkCompletionLocked(c)
	})
	return eff, err
}

// announceUnlockLocked logs the first scenario that became available since
// before and highlights it.
func (e *Engine) announceUnlockLocked(c *change, m *model.Mission, before map[string]bool) {
	for i := range m.Scenarios {
		s := &m.Scenarios[i]
		if !m.Available(s) || before[s.ID] {
			continue
		}
		e.appendLocked(c, "", fmt.Sprintf("--- New Scenario Unlocked: %s ---\nType 'scenario' to view details.", s.Title))
		e.state.LastUnlockedScenarioID = s.ID
		return
	}
}

func availableIDs(m *model.Mission) map[string]bool {
	ids := make(map[string]bool)
	for i := range m.Scenarios {
		if m.Available(&m.Scenarios[i]) {
			ids[m.Scenarios[i].ID] = true
		}
	}
	return ids
}

// MakeScenarioChoice resolves scenarioID with choiceID. Unknown ids, locked
// scenarios and already-resolved scenarios are ignored, as is any choice
// made while the mission is not in progress.
func (e *Engine) MakeScenarioChoice(ctx context.Context, scenarioID, choiceID string) error {
	return e.mutate(ctx, func(c *change) {
		e.chooseLocked(c, scenarioID, choiceID)
	})
}

func (e *Engine) chooseLocked(c *change, scenarioID, choiceID string) bool {
	m := e.state.ActiveMission()
	if m == nil || e.state.MissionStatus != model.StatusInProgress {
		e.logger.Debug("choice ignored", "scenario", scenarioID, "choice", choiceID, "status", e.state.MissionStatus)
		return false
	}
	out, err := resolver.Resolve(m, e.state.Metrics, scenarioID, choiceID)
	if err != nil {
		if !resolver.Ignorable(err) {
			e.logger.Error("choice failed", "run_id", e.runID, "error", err)
		} else {
			e.logger.Debug("choice ignored", "scenario", scenarioID, "choice", choiceID, "reason", err)
		}
		return false
	}

	e.state.Metrics = out.Metrics
	e.state.ScenarioHistory = append(e.state.ScenarioHistory, model.ScenarioHistoryItem{
		ScenarioID: scenarioID,
		ChoiceID:   choiceID,
		Timestamp:  e.now(),
	})
	c.dirty = true

	if out.EndsMission {
		reason := out.FailReason
		if reason == "" {
			reason = DefaultFailReason
		}
		e.failReason = reason
		e.setStatusLocked(c, model.StatusFailed)
		e.appendLocked(c, "", MissionFailedPrefix+reason)
		e.logger.Info("mission failed",
			"run_id", e.runID,
			"mission", m.ID,
			"scenario", scenarioID,
			"choice", choiceID)
		return true
	}
	e.checkCompletionLocked(c)
	return true
}

// CompleteObjective marks an objective of the active mission completed.
// It is idempotent; unknown ids are ignored.
func (e *Engine) CompleteObjective(ctx context.Context, objectiveID string) error {
	return e.mutate(ctx, func(c *change) {
		m := e.state.ActiveMission()
		if m == nil || !m.CompleteObjective(objectiveID) {
			return
		}
		c.dirty = true
		e.checkCompletionLocked(c)
	})
}

// SubmitMiniGame grades a challenge attempt for scenarioID. flags[i] marks
// the i-th log entry as suspicious. A passing attempt resolves the scenario
// with its review/analyze choice; a failing one changes nothing.
func (e *Engine) SubmitMiniGame(ctx context.Context, scenarioID string, flags []bool) (minigame.Result, error) {
	var (
		res    minigame.Result
		absent bool
	)
	err := e.mutate(ctx, func(c *change) {
		m := e.state.ActiveMission()
		if m == nil || e.state.MissionStatus != model.StatusInProgress {
			absent = true
			return
		}
		s := m.Scenario(scenarioID)
		if s == nil || s.RequiresMiniGame == "" || !m.Available(s) {
			absent = true
			return
		}
		challenge, ok := minigame.Lookup(s.RequiresMiniGame)
		if !ok {
			absent = true
			return
		}
		res = challenge.Grade(flags)
		e.logger.Debug("mini-game graded",
			"run_id", e.runID,
			"scenario", scenarioID,
			"score", res.Score,
			"passed", res.Passed)
		if !res.Passed {
			return
		}
		if choice, ok := minigame.PreferredChoice(s.Choices); ok {
			e.chooseLocked(c, scenarioID, choice.ID)
		}
	})
	if absent {
		return minigame.Result{}, fmt.Errorf("%w: scenario %q", ErrNoMiniGame, scenarioID)
	}
	return res, err
}

// ResetGame discards the play-through and returns to the initial state.
// The leaderboard is not touched.
func (e *Engine) ResetGame(ctx context.Context) error {
	return e.mutate(ctx, func(c *change) {
		e.stopTimersLocked()
		e.state = model.NewPlayState(e.catalog.Instantiate())
		e.runID = ""
		e.recorded = false
		e.failReason = ""
		e.tickRem = 0
		c.dirty = true
		c.events = append(c.events, Event{Kind: EventStatus, Status: model.StatusNotStarted})
		e.logger.Info("game reset")
	})
}

// Restore replaces the in-memory state with a persisted snapshot. It does
// not persist. An empty roster is refilled from the catalog; a completed
// play-through is not offered to the Recorder again.
func (e *Engine) Restore(snap model.Snapshot) error {
	st, err := snap.PlayState()
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if len(st.Missions) == 0 {
		st.Missions = e.catalog.Instantiate()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTimersLocked()
	e.state = st
	e.runID = ""
	if st.CurrentMissionID != "" {
		e.runID = e.runIDs.Generate()
	}
	e.recorded = st.MissionStatus == model.StatusCompleted
	e.failReason = restoredFailReason(&st)
	e.tickRem = 0
	e.logger.Debug("state restored",
		"run_id", e.runID,
		"mission", st.CurrentMissionID,
		"status", st.MissionStatus)
	return nil
}

func restoredFailReason(st *model.PlayState) string {
	if st.MissionStatus != model.StatusFailed {
		return ""
	}
	m := st.ActiveMission()
	if m == nil {
		return DefaultFailReason
	}
	for i := range m.Scenarios {
		if ch := m.Scenarios[i].SelectedChoice(); ch != nil && ch.EndsMission {
			if ch.FailReason != "" {
				return ch.FailReason
			}
			return DefaultFailReason
		}
	}
	return DefaultFailReason
}

// Tick advances the advisory elapsed time while a mission is in progress.
// Sub-second remainders carry over to the next tick.
func (e *Engine) Tick(ctx context.Context, d time.Duration) error {
	return e.mutate(ctx, func(c *change) {
		if d <= 0 || e.state.MissionStatus != model.StatusInProgress {
			return
		}
		e.tickRem += d
		secs := int(e.tickRem / time.Second)
		if secs == 0 {
			return
		}
		e.tickRem -= time.Duration(secs) * time.Second
		e.state.Metrics.TimeElapsed += secs
		c.dirty = true
	})
}

// ClearHighlight clears the unlocked-scenario highlight once the consumer
// has shown it.
func (e *Engine) ClearHighlight(ctx context.Context) error {
	return e.mutate(ctx, func(c *change) {
		if e.state.LastUnlockedScenarioID == "" {
			return
		}
		e.state.LastUnlockedScenarioID = ""
		c.dirty = true
	})
}

// Close stops pending hint timers. The engine stays usable.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTimersLocked()
}
