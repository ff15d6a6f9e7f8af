package batch_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/card-recon/cmd/batch"
	"fjacquet/card-recon/cmd/root"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	root.Cmd.AddCommand(batch.Cmd)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root.Cmd.SetOut(&out)
	root.Cmd.SetErr(&bytes.Buffer{})
	root.Cmd.SetArgs(args)
	t.Cleanup(func() {
		root.SharedFlags = root.CommonFlags{}
		root.ConfigFile, root.LogLevel, root.LogFormat, root.ReportFormat = "", "", "", ""
	})
	err := root.Cmd.Execute()
	return out.String(), err
}

func statement(rows ...string) []byte {
	return []byte(strings.Join(rows, "\n"))
}

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", dir)
	t.Setenv("RECON_INGEST_ROWS_TO_SKIP", "0")
	return dir
}

func TestBatchCommand(t *testing.T) {
	dir := setup(t)
	in := filepath.Join(dir, "statements")
	require.NoError(t, os.MkdirAll(in, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(in, "jan.csv"), statement(
		",05/01/2025,T,,CAFE,,SCL,01/01,01/01,,1500",
		",20/01/2025,T,,Pago Pesos TAR,,,,,,-1500",
	), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(in, "feb.csv"), statement(
		",05/02/2025,T,,CAFE,,SCL,01/01,01/01,,2500",
	), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(in, "readme.md"), []byte("ignored"), 0600))
	out := filepath.Join(dir, "reports")

	summary, err := execute(t, "batch", "-i", in, "-o", out, "--log-level", "error")
	require.NoError(t, err)

	assert.Contains(t, summary, "2 succeeded, 0 failed")
	assert.Contains(t, summary, "feb.csv: 1 unpaid")
	assert.Contains(t, summary, "jan.csv: 0 unpaid")

	feb, err := os.ReadFile(filepath.Join(out, "feb_report.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(feb), "Total unpaid (no match):     $2.500")
	assert.FileExists(t, filepath.Join(out, "jan_report.txt"))
	assert.FileExists(t, filepath.Join(in, "jan.csv"), "batch never archives")
}

func TestBatchCommand_FailureDoesNotStopOthers(t *testing.T) {
	dir := setup(t)
	in := filepath.Join(dir, "statements")
	require.NoError(t, os.MkdirAll(in, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(in, "good.csv"), statement(
		",05/01/2025,T,,CAFE,,SCL,01/01,01/01,,1500",
	), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(in, "narrow.csv"), statement("a,b,c"), 0600))

	summary, err := execute(t, "batch", "-i", in, "--report-format", "json", "--log-level", "error")
	assert.ErrorContains(t, err, "1 of 2 statements failed")
	assert.Contains(t, summary, "FAILED  narrow.csv")
	assert.FileExists(t, filepath.Join(dir, "data", "good_report.json"))
}

func TestBatchCommand_MissingDirectory(t *testing.T) {
	dir := setup(t)
	_, err := execute(t, "batch", "-i", filepath.Join(dir, "absent"))
	assert.ErrorContains(t, err, "directory does not exist")
}
