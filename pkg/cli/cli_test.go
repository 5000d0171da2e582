package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The DuckDB driver is registered through internal/warehouse.

// execute runs a fresh root command with the given args and returns the
// captured stdout. Each call gets its own command tree, mirroring one
// process invocation.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	restore := captureStdout(t)
	err := rootCmd.Execute()
	return restore(), err
}

// === Command Structure Tests ===

func TestCLI_CommandTree(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	rootCmd := newRootCmd()
	cmdNames := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdNames[cmd.Name()] = true
	}

	expectedCommands := []string{
		"serve", "seed", "run", "runs", "quarantine",
		"config", "commands", "version", "completion",
	}
	for _, name := range expectedCommands {
		t.Run(name, func(t *testing.T) {
			assert.True(t, cmdNames[name], "expected command %q to exist on root", name)
		})
	}
}

func TestCLI_UnknownCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := execute(t, "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestCLI_InvalidOutputFormat(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := execute(t, "-o", "xml", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestCLI_UnknownProfile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, SaveUserConfig(&UserConfig{
		CurrentProfile: "default",
		Profiles:       map[string]Profile{},
	}))

	_, err := execute(t, "-p", "nonexistent", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `profile "nonexistent" not found`)
}

// === Flag Validation Tests ===

func TestCLI_RunsList_UnknownStatus(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := execute(t, "runs", "list", "--status", "sideways")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown status "sideways"`)
}

func TestCLI_QuarantineList_UnknownEntity(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := execute(t, "quarantine", "list", "--entity", "order")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown entity "order"`)
}

// === Version and Config Tests ===

func TestCLI_VersionCommand_JSONOutput(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out, err := execute(t, "--output", "json", "version")
	require.NoError(t, err)

	var result map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &result),
		"version --output json should produce valid JSON: %s", out)
	assert.Contains(t, result, "version")
	assert.Contains(t, result, "commit")
}

func TestCLI_ConfigProfileRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out, err := execute(t, "config", "set-profile", "--name", "lab",
		"--warehouse", "/lab/warehouse.duckdb",
		"--control-db", "/lab/control.sqlite",
		"--output", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `Profile "lab" saved`)

	out, err = execute(t, "config", "use-profile", "lab")
	require.NoError(t, err)
	assert.Contains(t, out, `Active profile set to "lab"`)

	out, err = execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "current-profile: lab")
	assert.Contains(t, out, "/lab/warehouse.duckdb")
}

func TestCLI_ConfigUseProfile_Unknown(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, SaveUserConfig(&UserConfig{
		CurrentProfile: "default",
		Profiles:       map[string]Profile{},
	}))

	_, err := execute(t, "config", "use-profile", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `profile "ghost" not found`)
}

// === End-to-End Tests ===

// TestCLI_SeedRunInspect drives the full workflow against temporary
// databases: seed staging, execute a batch, then walk the run history and
// quarantine through every read command.
func TestCLI_SeedRunInspect(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	warehousePath := filepath.Join(dir, "warehouse.duckdb")
	controlPath := filepath.Join(dir, "control.sqlite")

	out, err := execute(t,
		"--warehouse", warehousePath, "--control-db", controlPath, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded staging tables")

	out, err = execute(t,
		"--warehouse", warehousePath, "--control-db", controlPath,
		"-o", "json", "run", "--triggered-by", "tester")
	require.NoError(t, err)

	var run runView
	require.NoError(t, json.Unmarshal([]byte(out), &run))
	assert.Equal(t, "COMPLETED", run.Status)
	assert.Equal(t, "MANUAL", run.TriggerType)
	assert.Equal(t, "tester", run.TriggeredBy)
	assert.Equal(t, int64(55), run.SourceRows)
	assert.Equal(t, int64(32), run.AcceptedRows)
	assert.Equal(t, int64(23), run.RejectedRows)
	require.Len(t, run.Entities, 6)
	assert.Equal(t, "customer", run.Entities[0].Entity)
	assert.Equal(t, "COMPLETED", run.Entities[0].Status)

	// runs list sees the finished run.
	out, err = execute(t,
		"--warehouse", warehousePath, "--control-db", controlPath,
		"-o", "json", "runs", "list")
	require.NoError(t, err)

	var listed []runView
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, run.ID, listed[0].ID)
	assert.Equal(t, int64(55), listed[0].SourceRows)

	// runs show renders the per-entity breakdown.
	out, err = execute(t,
		"--warehouse", warehousePath, "--control-db", controlPath,
		"runs", "show", run.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Run "+run.ID)
	assert.Contains(t, out, "COMPLETED")
	assert.Contains(t, out, "ENTITY")
	assert.Contains(t, out, "sales_line")

	// The quarantine carries every reject from the run.
	out, err = execute(t,
		"--warehouse", warehousePath, "--control-db", controlPath,
		"-o", "json", "quarantine", "summary")
	require.NoError(t, err)

	var summary struct {
		Counts []quarantineCountView `json:"counts"`
		Total  int64                 `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, int64(23), summary.Total)
	assert.NotEmpty(t, summary.Counts)

	out, err = execute(t,
		"--warehouse", warehousePath, "--control-db", controlPath,
		"-o", "json", "quarantine", "list", "--entity", "customer")
	require.NoError(t, err)

	var records []quarantineRecordView
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 3)
	for _, rec := range records {
		assert.Equal(t, "customer", rec.Entity)
		assert.Equal(t, run.ID, rec.RunID)
		assert.NotEmpty(t, rec.Payload)
	}
}

func TestCLI_RunsShow_NotFound(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	_, err := execute(t,
		"--warehouse", filepath.Join(dir, "warehouse.duckdb"),
		"--control-db", filepath.Join(dir, "control.sqlite"),
		"runs", "show", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCLI_RunsRecover_NothingToRecover(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	out, err := execute(t,
		"--warehouse", filepath.Join(dir, "warehouse.duckdb"),
		"--control-db", filepath.Join(dir, "control.sqlite"),
		"runs", "recover")
	require.NoError(t, err)
	assert.Contains(t, out, "No interrupted runs found")
}
