// Package minigame implements the mini-challenges a scenario can require
// before it resolves.
//
// A challenge is graded on the caller's flags. A pass resolves the scenario
// with its preferred choice (see PreferredChoice); a failed attempt changes
// nothing and may be retried.
package minigame

import (
	"fmt"
	"strings"

	"github.com/fatimatanveer/ethical-hackers-journey/internal/model"
)

// LogAnalysis is the tag of the log triage challenge.
const LogAnalysis = "log-analysis"

const (
	passMessage = "Success! Suspicious entries flagged correctly."
	failMessage = "Incorrect. Try again next time!"
)

// LogEntry is one line the player may flag.
type LogEntry struct {
	Text       string `json:"text"`
	Suspicious bool   `json:"-"`
}

// Challenge is a set of log entries to triage.
type Challenge struct {
	Name    string     `json:"name"`
	Prompt  string     `json:"prompt"`
	Entries []LogEntry `json:"entries"`
}

// Result is the graded outcome of one attempt.
type Result struct {
	Score   int    `json:"score"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

var challenges = map[string]Challenge{
	LogAnalysis: {
		Name:   LogAnalysis,
		Prompt: "Flag all suspicious log entries below.",
		Entries: []LogEntry{
			{Text: "User admin logged in from 10.0.0.2"},
			{Text: "Failed login from 192.168.56.101", Suspicious: true},
			{Text: "User root accessed db.customers"},
			{Text: "Multiple failed logins from 5.188.206.105", Suspicious: true},
		},
	},
}

// Known reports whether name is a registered challenge.
func Known(name string) bool {
	_, ok := challenges[name]
	return ok
}

// Lookup returns a copy of the named challenge.
func Lookup(name string) (Challenge, bool) {
	c, ok := challenges[name]
	if !ok {
		return Challenge{}, false
	}
	entries := make([]LogEntry, len(c.Entries))
	copy(entries, c.Entries)
	c.Entries = entries
	return c, true
}

// Grade scores flags against the challenge: +1 for each entry flagged
// correctly, -1 otherwise. Missing flags count as unflagged.
// An attempt passes with at most one mistake.
func (c Challenge) Grade(flags []bool) Result {
	score := 0
	for i, e := range c.Entries {
		flagged := i < len(flags) && flags[i]
		if flagged == e.Suspicious {
			score++
		} else {
			score--
		}
	}
	r := Result{Score: score, Passed: score >= len(c.Entries)-1}
	if r.Passed {
		r.Message = passMessage
	} else {
		r.Message = failMessage
	}
	return r
}

// Flags converts 1-based entry numbers into a flag vector for c.
func (c Challenge) Flags(numbers []int) ([]bool, error) {
	flags := make([]bool, len(c.Entries))
	for _, n := range numbers {
		if n < 1 || n > len(c.Entries) {
			return nil, fmt.Errorf("entry %d out of range 1-%d", n, len(c.Entries))
		}
		flags[n-1] = true
	}
	return flags, nil
}

// PreferredChoice returns the first choice whose text mentions reviewing or
// analyzing; it is the choice a passed challenge resolves to.
func PreferredChoice(choices []model.Choice) (model.Choice, bool) {
	for _, c := range choices {
		text := strings.ToLower(c.Text)
		if strings.Contains(text, "review") || strings.Contains(text, "analyze") {
			return c, true
		}
	}
	return model.Choice{}, false
}
