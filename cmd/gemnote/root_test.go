package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/gemnote/internal/app"
	"github.com/five82/gemnote/internal/entries"
)

type testEnv struct {
	dir    string
	config string
	prefs  string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	t.Setenv("GEMNOTE_API_KEY", "")
	t.Setenv("GEMNOTE_BASE_URL", "")
	t.Setenv("GEMNOTE_SUBNET", "")

	dir := t.TempDir()
	config := filepath.Join(dir, "config.toml")
	body := "data_dir = " + `"` + filepath.ToSlash(filepath.Join(dir, "data")) + `"` + "\nlog_level = \"debug\"\n"
	require.NoError(t, os.WriteFile(config, []byte(body), 0o644))
	return testEnv{dir: dir, config: config, prefs: filepath.Join(dir, "prefs.toml")}
}

// run executes one gemnote invocation and returns stdout.
func (e testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	c := &cli{in: strings.NewReader(stdin), out: &out, errOut: &errOut}
	root := newRootCmd(c)
	root.SetArgs(append([]string{
		"--config", e.config,
		"--prefs", e.prefs,
		"--in-memory-clipboard",
	}, args...))
	err := root.Execute()
	if err != nil {
		c.rt.Close()
	}
	return out.String(), err
}

func (e testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, "", args...)
	require.NoError(t, err, "gemnote %s", strings.Join(args, " "))
	return out
}

func TestAddListDelete(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "add", "first", "note")
	assert.Contains(t, out, "Added")
	env.mustRun(t, "add", "second note")

	out = env.mustRun(t, "list")
	assert.Contains(t, out, "first note")
	assert.Contains(t, out, "second note")
	assert.Less(t, strings.Index(out, "second note"), strings.Index(out, "first note"), "newest first")

	var listed []entries.Entry
	require.NoError(t, json.Unmarshal([]byte(env.mustRun(t, "list", "--json")), &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, "second note", listed[0].Content)

	out = env.mustRun(t, "delete", listed[0].ID[:8])
	assert.Contains(t, out, "Deleted")

	require.NoError(t, json.Unmarshal([]byte(env.mustRun(t, "list", "--json")), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "first note", listed[0].Content)
}

func TestAdd_DuplicateAndEmptyClipboard(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "add", "same")

	_, err := env.run(t, "", "add", "same")
	assert.ErrorIs(t, err, entries.ErrDuplicate)

	// Each run gets a fresh in-memory clipboard, which starts empty.
	_, err = env.run(t, "", "add")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clipboard is empty")
}

func TestDelete_UnknownID(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "", "delete", "nope")
	assert.ErrorIs(t, err, entries.ErrNotFound)
}

func TestClear(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "add", "one")
	env.mustRun(t, "add", "two")

	out, err := env.run(t, "n\n", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled")

	out, err = env.run(t, "y\n", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 2 entries")

	assert.Contains(t, env.mustRun(t, "list"), "No entries")
}

func TestKey(t *testing.T) {
	env := newTestEnv(t)
	assert.Contains(t, env.mustRun(t, "key"), "No API key set")

	out, err := env.run(t, "abcd1234efgh5678\n", "key", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "API key saved")

	out = env.mustRun(t, "key")
	assert.Contains(t, out, "abcd****5678")
	assert.NotContains(t, out, "abcd1234efgh5678")

	data, err := os.ReadFile(env.prefs)
	require.NoError(t, err)
	assert.Contains(t, string(data), "abcd1234efgh5678")

	env.mustRun(t, "key", "--clear")
	assert.Contains(t, env.mustRun(t, "key"), "No API key set")
}

func TestSend_RequiresKey(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "add", "pending")

	_, err := env.run(t, "", "send", "--all")
	assert.ErrorIs(t, err, app.ErrNoAPIKey)
	assert.Contains(t, describe(err), "gemnote key")

	_, err = env.run(t, "", "send")
	assert.Error(t, err)
}

func TestStatus(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "add", "pending")

	out := env.mustRun(t, "status")
	assert.Contains(t, out, "not set")
	assert.Contains(t, out, "1 (1 pending)")
	assert.Contains(t, out, "memory")
}

func TestLogs(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "add", "logged")

	out := env.mustRun(t, "logs", "--level", "info")
	assert.Contains(t, out, "entry added")

	out = env.mustRun(t, "logs", "--level", "error")
	assert.NotContains(t, out, "entry added")

	_, err := env.run(t, "", "logs", "--level", "loud")
	assert.Error(t, err)
}
