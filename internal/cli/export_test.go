package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/wrexpt/internal/config"
	"github.com/roach88/wrexpt/internal/locator"
	"github.com/roach88/wrexpt/internal/testutil"
)

type cliResult struct {
	code   int
	stdout string
	stderr string
}

// noStore is a locator that never finds an installation.
var noStore = locator.Func(func() (string, error) { return "", nil })

func testOptions() *RootOptions {
	return &RootOptions{
		Locator: noStore,
		RunIDs:  testutil.NewFixedRunIDGenerator("test-run-cli"),
	}
}

func runCLI(t *testing.T, opts *RootOptions, args ...string) cliResult {
	t.Helper()
	t.Setenv(config.EnvConfigFile, "")

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	code := ExecuteWithOptions(opts, args, stdout, stderr)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func sampleFixture() testutil.Fixture {
	return testutil.Fixture{
		Logins: []testutil.Login{{
			Name: "Bank", User1: "alice", Password1: "s3cret",
			Sites: []testutil.LoginSite{{Site: "bank.test"}},
		}},
		Notes: []testutil.Note{{Name: "Wifi", Body: "ssid"}},
		Tasks: []testutil.Task{testutil.Bookmark("Docs", "https://docs.test/")},
	}
}

func TestExport_Success(t *testing.T) {
	storePath := testutil.NewStore(t, sampleFixture())
	out := filepath.Join(t.TempDir(), "out.xml")

	res := runCLI(t, testOptions(), "-f", storePath, "-o", out)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Export complete")
	assert.Contains(t, res.stdout, "logins:    1")
	assert.Contains(t, res.stdout, "notes:     1")
	assert.Contains(t, res.stdout, "bookmarks: 1")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<bookmark url="https://docs.test/">Docs</bookmark>`)
}

func TestExport_LegacyArguments(t *testing.T) {
	f := sampleFixture()
	f.Password = "hunter2"
	storePath := testutil.NewStore(t, f)
	out := filepath.Join(t.TempDir(), "legacy.xml")

	res := runCLI(t, testOptions(), "/f:"+storePath, "/p:hunter2", "/o:"+out)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.FileExists(t, out)
}

func TestExport_BadLegacyArguments(t *testing.T) {
	storePath := testutil.NewStore(t, sampleFixture())

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"empty_value", []string{"/f:" + storePath, "/p:"}, "needs a value"},
		{"unknown_switch", []string{"/x:value"}, "unknown switch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, testOptions(), tt.args...)
			assert.Equal(t, ExitUsage, res.code)
			assert.Contains(t, res.stderr, tt.want)
			assert.Contains(t, res.stderr, "Usage:")
		})
	}
}

func TestExport_MissingStoreFile(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "absent.sdf")

	res := runCLI(t, testOptions(), "-f", storePath)
	assert.Equal(t, ExitNotFound, res.code)
	assert.Contains(t, res.stderr, "cannot find database file: "+storePath)
	assert.NoFileExists(t, storePath)
	assert.NoFileExists(t, storePath+config.OutputSuffix)
}

func TestExport_UnreachableStoreIsNotFound(t *testing.T) {
	dir := t.TempDir()
	notDir := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(notDir, []byte("x"), 0644))

	tests := []struct {
		name string
		path string
	}{
		{"parent is a file", filepath.Join(notDir, "WR.sdf")},
		{"store is a directory", dir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out.xml")
			res := runCLI(t, testOptions(), "-f", tt.path, "-o", out)
			assert.Equal(t, ExitNotFound, res.code)
			assert.Contains(t, res.stderr, "cannot find database file: "+tt.path)
			assert.NoFileExists(t, out)
		})
	}
}

func TestExport_NoStoreGivenOrLocated(t *testing.T) {
	res := runCLI(t, testOptions())
	assert.Equal(t, ExitUsage, res.code)
	assert.Contains(t, res.stderr, "none could be located")
}

func TestExport_LocatorFailure(t *testing.T) {
	opts := testOptions()
	opts.Locator = locator.Func(func() (string, error) { return "", errors.New("registry unavailable") })

	res := runCLI(t, opts)
	assert.Equal(t, ExitUsage, res.code)
	assert.Contains(t, res.stderr, "registry unavailable")
}

func TestExport_LocatedStoreAndDefaultOutput(t *testing.T) {
	storePath := testutil.NewStore(t, sampleFixture())
	opts := testOptions()
	opts.Locator = locator.Func(func() (string, error) { return filepath.Dir(storePath), nil })

	res := runCLI(t, opts)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.FileExists(t, storePath+config.OutputSuffix)
}

func TestExport_WrongPassword(t *testing.T) {
	f := sampleFixture()
	f.Password = "hunter2"
	storePath := testutil.NewStore(t, f)
	out := filepath.Join(t.TempDir(), "out.xml")

	res := runCLI(t, testOptions(), "-f", storePath, "-p", "wrong", "-o", out)
	assert.Equal(t, ExitExportFailure, res.code)
	assert.Contains(t, res.stderr, "export failed in phase open")
	assert.NotContains(t, res.stderr, "Usage:")
	assert.NoFileExists(t, out)
}

func TestExport_FailureDetails(t *testing.T) {
	f := sampleFixture()
	f.Password = "hunter2"
	storePath := testutil.NewStore(t, f)

	res := runCLI(t, testOptions(), "-f", storePath, "-p", "wrong", "-v")
	assert.Equal(t, ExitExportFailure, res.code)
	assert.Contains(t, res.stderr, "ERROR: cannot export "+storePath)
	assert.Contains(t, res.stderr, "Details: kind=STORE_OPEN step=open phase=idle")

	quiet := runCLI(t, testOptions(), "-f", storePath, "-p", "wrong")
	assert.Equal(t, ExitExportFailure, quiet.code)
	assert.NotContains(t, quiet.stderr, "Details:")

	js := runCLI(t, testOptions(), "-f", storePath, "-p", "wrong", "--format", "json")
	assert.Equal(t, ExitExportFailure, js.code)
	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    int                `json:"code"`
			Details ExportErrorDetails `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(js.stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ExitExportFailure, resp.Error.Code)
	assert.Equal(t, "STORE_OPEN", string(resp.Error.Details.Kind))
	assert.Equal(t, "open", string(resp.Error.Details.Step))
	assert.Equal(t, "idle", resp.Error.Details.Phase)
}

func TestExport_MalformedFragment(t *testing.T) {
	f := sampleFixture()
	f.Tasks = append(f.Tasks, testutil.Task{Name: "Broken", Script: "<task URL=", Flags: testutil.BookmarkFlags})
	storePath := testutil.NewStore(t, f)
	out := filepath.Join(t.TempDir(), "out.xml")

	res := runCLI(t, testOptions(), "-f", storePath, "-o", out)
	assert.Equal(t, ExitExportFailure, res.code)
	assert.Contains(t, res.stderr, "export failed in phase bookmarks")
	assert.Contains(t, res.stderr, "FRAGMENT_DECODE")
	assert.NoFileExists(t, out)
}

func TestExport_OutputSameAsStore(t *testing.T) {
	storePath := testutil.NewStore(t, sampleFixture())

	res := runCLI(t, testOptions(), "-f", storePath, "-o", storePath)
	assert.Equal(t, ExitUsage, res.code)
	assert.Contains(t, res.stderr, "would overwrite the store")
}

func TestExport_InvalidFlags(t *testing.T) {
	storePath := testutil.NewStore(t, sampleFixture())

	tests := []struct {
		name string
		args []string
	}{
		{"unknown_flag", []string{"-f", storePath, "--bogus"}},
		{"positional_argument", []string{storePath}},
		{"invalid_format", []string{"-f", storePath, "--format", "yaml"}},
		{"invalid_driver", []string{"-f", storePath, "--driver", "postgres"}},
		{"invalid_encoding", []string{"-f", storePath, "--encoding", "latin1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, testOptions(), tt.args...)
			assert.Equal(t, ExitUsage, res.code)
			assert.NoFileExists(t, storePath+config.OutputSuffix)
		})
	}
}

func TestExport_JSONSuccess(t *testing.T) {
	storePath := testutil.NewStore(t, sampleFixture())

	res := runCLI(t, testOptions(), "-f", storePath, "--format", "json")
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	var resp struct {
		Status string        `json:"status"`
		Data   ExportSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test-run-cli", resp.Data.RunID)
	assert.Equal(t, storePath+config.OutputSuffix, resp.Data.Output)
	assert.Equal(t, 1, resp.Data.Logins)
	assert.Equal(t, 1, resp.Data.Notes)
	assert.Equal(t, 1, resp.Data.Bookmarks)
	assert.Positive(t, resp.Data.Bytes)
}

func TestExport_JSONError(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "absent.sdf")

	res := runCLI(t, testOptions(), "-f", storePath, "--format", "json")
	assert.Equal(t, ExitNotFound, res.code)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ExitNotFound, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "cannot find database file")
}

func TestExport_ConfigFileDefaults(t *testing.T) {
	storePath := testutil.NewStore(t, sampleFixture())
	out := filepath.Join(t.TempDir(), "from-config.xml")
	cfgPath := filepath.Join(t.TempDir(), "wrexpt.yaml")
	cfg := "store: " + storePath + "\noutput: " + out + "\nencoding: utf-16\ndriver: sqlite\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	res := runCLI(t, testOptions(), "--config", cfgPath)
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(data), 2)
	assert.Equal(t, []byte{0xFF, 0xFE}, data[:2])
}

func TestExport_FlagsOverrideConfigFile(t *testing.T) {
	storePath := testutil.NewStore(t, sampleFixture())
	dir := t.TempDir()
	fromConfig := filepath.Join(dir, "from-config.xml")
	fromFlag := filepath.Join(dir, "from-flag.xml")
	cfgPath := filepath.Join(dir, "wrexpt.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output: "+fromConfig+"\n"), 0644))

	res := runCLI(t, testOptions(), "--config", cfgPath, "-f", storePath, "-o", fromFlag)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.FileExists(t, fromFlag)
	assert.NoFileExists(t, fromConfig)
}

func TestExport_ConfigFileFromEnvironment(t *testing.T) {
	storePath := testutil.NewStore(t, sampleFixture())
	out := filepath.Join(t.TempDir(), "env.xml")
	cfgPath := filepath.Join(t.TempDir(), "wrexpt.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("store: "+storePath+"\noutput: "+out+"\n"), 0644))

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	t.Setenv(config.EnvConfigFile, cfgPath)
	code := ExecuteWithOptions(testOptions(), nil, stdout, stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())
	assert.FileExists(t, out)
}

func TestExport_InvalidConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "wrexpt.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("password: leaked\n"), 0644))

	res := runCLI(t, testOptions(), "--config", cfgPath)
	assert.Equal(t, ExitUsage, res.code)
	assert.Contains(t, res.stderr, "invalid config file")
}

func TestExport_LogFile(t *testing.T) {
	storePath := testutil.NewStore(t, sampleFixture())
	logPath := filepath.Join(t.TempDir(), "wrexpt.log")

	res := runCLI(t, testOptions(), "-f", storePath, "-p", "not-logged", "--log-file", logPath, "-v")
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	logs := string(data)
	assert.Contains(t, logs, "start exporting database")
	assert.Contains(t, logs, "run_id=test-run-cli")
	assert.Contains(t, logs, "level=DEBUG")
	assert.NotContains(t, logs, "not-logged")
	assert.Contains(t, res.stderr, "start exporting database")
}

func TestExport_QuietWithoutVerbose(t *testing.T) {
	storePath := testutil.NewStore(t, sampleFixture())

	res := runCLI(t, testOptions(), "-f", storePath)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.NotContains(t, res.stderr, "level=DEBUG")
	assert.Contains(t, res.stderr, "level=INFO")
}

func TestExportSummary_Text(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	s := ExportSummary{
		RunID:     "test-run-cli",
		Store:     "/data/WR.sdf",
		Output:    "/data/WR.sdf.xml",
		Logins:    1,
		Notes:     2,
		Bookmarks: 2,
	}
	g.Assert(t, "export_summary", []byte(s.String()))
}
