package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatimatanveer/ethical-hackers-journey/internal/testutil"
)

// playSession runs the play command over input against db with a manual
// clock, so hints never fire on their own.
func playSession(t *testing.T, db, format, input string, configure func(*PlayOptions)) (string, error) {
	t.Helper()
	clock := testutil.NewManualClock(testutil.Epoch)
	opts := &PlayOptions{
		RootOptions: &RootOptions{Format: format, DB: db},
		Clock:       clock,
		Scheduler:   testutil.NewManualScheduler(clock),
	}
	configure(opts)

	out := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	err := runPlay(opts, cmd)
	return out.String(), err
}

func mission(id string) func(*PlayOptions) {
	return func(o *PlayOptions) { o.Mission = id }
}

// executeRoot runs the full command tree with args.
func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPlay_FailsOnUnethicalChoice(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ehj.db")

	out, err := playSession(t, db, "text",
		"hack\n:choose r1-s2 r1-s2-c1\n:choose r1-s4 r1-s4-c1\n:quit\nnever read\n",
		func(o *PlayOptions) { o.Mission = "red-1"; o.Player = "ada" })
	require.NoError(t, err)

	assert.Contains(t, out, "=== Web Application Vulnerability Assessment (red, beginner) ===")
	assert.Contains(t, out, "$ hack\nCommand 'hack' not recognized. Type 'help' for available commands.")
	assert.Contains(t, out, "Choice r1-s2/r1-s2-c1 not accepted.")
	assert.Contains(t, out, "You break scope and risk harming production.")
	assert.Contains(t, out, "MISSION TERMINATED: You performed an unauthorized action.")
	assert.Contains(t, out, "*** MISSION FAILED *** You performed an unauthorized action.")
	assert.NotContains(t, out, "never read")

	status, err := executeRoot(t, "--db", db, "status")
	require.NoError(t, err)
	assert.Contains(t, status, "Player: ada (red)")
	assert.Contains(t, status, "Mission: red-1 [failed]")
	assert.Contains(t, status, "Reason: You performed an unauthorized action.")
	assert.Contains(t, status, "History: ")
}

func TestPlay_CompletesAndRecordsLeaderboard(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ehj.db")

	input := strings.Join([]string{
		":minigame b1-s1",
		":minigame b1-s1 2 4",
		":choose b1-s2 b1-s2-c1",
		":choose b1-s3 b1-s3-c2",
		":choose b1-s4 b1-s4-c1",
		":score",
	}, "\n") + "\n"
	out, err := playSession(t, db, "text", input,
		func(o *PlayOptions) { o.Mission = "blue-1"; o.Player = "grace" })
	require.NoError(t, err)

	assert.Contains(t, out, "Flag all suspicious log entries below.")
	assert.Contains(t, out, "  2. Failed login from 192.168.56.101")
	assert.Contains(t, out, "All mission objectives complete! Mission successful.")
	assert.Contains(t, out, "*** MISSION COMPLETE ***")
	assert.Contains(t, out, "Status: completed")

	board, err := executeRoot(t, "--db", db, "--format", "json", "leaderboard")
	require.NoError(t, err)
	var resp struct {
		Status string `json:"status"`
		Data   []struct {
			PlayerName string `json:"playerName"`
			Role       string `json:"role"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(board), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "grace", resp.Data[0].PlayerName)
	assert.Equal(t, "blue", resp.Data[0].Role)

	runs, err := executeRoot(t, "--db", db, "leaderboard", "--runs")
	require.NoError(t, err)
	assert.Contains(t, runs, "blue-1")
	assert.Contains(t, runs, "grace")
}

func TestPlay_ResumeKeepsHistory(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ehj.db")

	_, err := playSession(t, db, "text", "hack\n", mission("red-1"))
	require.NoError(t, err)

	out, err := playSession(t, db, "text", ":log\n:scenarios\n", func(o *PlayOptions) { o.Resume = true })
	require.NoError(t, err)
	assert.Contains(t, out, "=== Web Application Vulnerability Assessment")
	assert.Contains(t, out, "$ hack -> Command 'hack' not recognized.")
	assert.Contains(t, out, "r1-s1: Initial Access")
	assert.Contains(t, out, "r1-s4: Ethical Crossroads")
	assert.NotContains(t, out, "r1-s2:")
}

func TestPlay_ResumeWithoutSavedGame(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ehj.db")
	out, err := playSession(t, db, "text", "", func(o *PlayOptions) { o.Resume = true })
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E005")
	assert.Contains(t, out, "no saved mission to resume")
}

func TestPlay_ArgumentErrors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ehj.db")

	tests := []struct {
		name      string
		configure func(*PlayOptions)
		want      string
	}{
		{"no mission", func(o *PlayOptions) {}, "--mission is required"},
		{"unknown mission", mission("nope"), `mission "nope" not found`},
		{"bad role", func(o *PlayOptions) { o.Mission = "red-1"; o.Role = "purple" }, `invalid role "purple"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := playSession(t, db, "text", "", tt.configure)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestPlay_MetaCommandUsage(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ehj.db")
	out, err := playSession(t, db, "text",
		":choose r1-s1\n:minigame\n:minigame r1-s1\n:dance\n:help\n", mission("red-1"))
	require.NoError(t, err)
	assert.Contains(t, out, "usage: :choose <scenario> <choice>")
	assert.Contains(t, out, "usage: :minigame <scenario> [n ...]")
	assert.Contains(t, out, "No mini-game available for r1-s1.")
	assert.Contains(t, out, "Unknown meta command :dance.")
	assert.Contains(t, out, "Meta commands:")
}

func TestPlay_JSONLines(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ehj.db")
	out, err := playSession(t, db, "json", "hack\n", mission("red-1"))
	require.NoError(t, err)

	dec := json.NewDecoder(strings.NewReader(out))
	var lines []map[string]any
	for dec.More() {
		var line map[string]any
		require.NoError(t, dec.Decode(&line))
		lines = append(lines, line)
	}
	require.Len(t, lines, 3)
	assert.Equal(t, "red-1", lines[0]["mission"])
	assert.Contains(t, lines[1]["message"], ":help")
	assert.Equal(t, "hack", lines[2]["command"])
	assert.EqualValues(t, testutil.Epoch.UnixMilli(), lines[2]["timestamp"])
}

func TestResetClearsSavedGame(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ehj.db")
	_, err := playSession(t, db, "text", "hack\n", mission("red-1"))
	require.NoError(t, err)

	out, err := executeRoot(t, "--db", db, "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Game reset")

	out, err = executeRoot(t, "--db", db, "--format", "json", "status")
	require.NoError(t, err)
	var resp struct {
		Data StatusReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Empty(t, resp.Data.Mission)
	assert.Equal(t, "not_started", string(resp.Data.Status))
	assert.Zero(t, resp.Data.Commands)
}
