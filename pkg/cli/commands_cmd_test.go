package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommands_ListAll(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := execute(t, "commands")
	require.NoError(t, err)
}

func TestCommands_JSONOutput(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	output, err := execute(t, "--output", "json", "commands")
	require.NoError(t, err)

	var entries []CommandEntry
	require.NoError(t, json.Unmarshal([]byte(output), &entries), "output should be valid JSON")
	assert.Greater(t, len(entries), 10, "should list every leaf command")

	found := false
	for _, e := range entries {
		if e.Path != "" && e.Group != "" && e.Short != "" {
			found = true
			break
		}
	}
	assert.True(t, found, "entries should have path, group, and short fields")
}

func TestCommands_Filter(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	output, err := execute(t, "--output", "json", "commands", "--filter", "quarantine")
	require.NoError(t, err)

	var entries []CommandEntry
	require.NoError(t, json.Unmarshal([]byte(output), &entries))
	assert.NotEmpty(t, entries, "filter should match at least one command")
	for _, e := range entries {
		assert.True(t,
			containsIgnoreCase(e.Path, "quarantine") || containsIgnoreCase(e.Short, "quarantine") || containsIgnoreCase(e.Long, "quarantine"),
			"filtered entry should match query: %s", e.Path)
	}
}

func TestCommands_FilterGroup(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	output, err := execute(t, "--output", "json", "commands", "--group", "runs")
	require.NoError(t, err)

	var entries []CommandEntry
	require.NoError(t, json.Unmarshal([]byte(output), &entries))
	assert.NotEmpty(t, entries, "runs group should have commands")
	for _, e := range entries {
		assert.Equal(t, "runs", e.Group, "all entries should be in runs group")
	}
}

func TestCommands_HasFlags(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	output, err := execute(t, "--output", "json", "commands", "--filter", "set-profile")
	require.NoError(t, err)

	var entries []CommandEntry
	require.NoError(t, json.Unmarshal([]byte(output), &entries))
	require.NotEmpty(t, entries, "should find the set-profile command")

	for _, e := range entries {
		if e.Path == "config set-profile" {
			assert.NotEmpty(t, e.Flags, "set-profile should expose its flags")
			return
		}
	}
	t.Fatal("config set-profile not found in entries")
}

func TestCommands_FilterNoMatches(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	output, err := execute(t, "--output", "json", "commands", "--filter", "zzz_nonexistent_xyz_999")
	require.NoError(t, err)

	var entries []CommandEntry
	require.NoError(t, json.Unmarshal([]byte(output), &entries))
	assert.Empty(t, entries, "nonsense filter should return no commands")
}

func TestCommands_TableOutput(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	output, err := execute(t, "commands", "--group", "runs")
	require.NoError(t, err)

	assert.Contains(t, output, "PATH", "table output should have PATH column header")
	assert.Contains(t, output, "DESCRIPTION", "table output should have DESCRIPTION column header")
	assert.Contains(t, output, "runs ", "should show runs commands in table output")
}
