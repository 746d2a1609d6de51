package integration

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	binaryPath  string
	coverageDir string
)

func TestMain(m *testing.M) {
	// Build the binary once before running tests
	tmpDir, err := os.MkdirTemp("", "nuspec-lsp-test")
	if err != nil {
		panic(err)
	}

	binaryPath = filepath.Join(tmpDir, "nuspec-lsp")

	// Create coverage directory in project root for persistent coverage data
	// If GOCOVERDIR is set externally, use that; otherwise use "./coverage"
	coverageDir = os.Getenv("GOCOVERDIR")
	if coverageDir == "" {
		// Get absolute path to project root (2 levels up from internal/integration)
		wd, err := os.Getwd()
		if err != nil {
			_ = os.RemoveAll(tmpDir)
			panic("failed to get working directory: " + err.Error())
		}
		coverageDir = filepath.Join(wd, "..", "..", "coverage")
	}
	coverageDir, err = filepath.Abs(coverageDir)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		panic("failed to get absolute coverage directory path: " + err.Error())
	}
	if err := os.MkdirAll(coverageDir, 0o750); err != nil {
		_ = os.RemoveAll(tmpDir)
		panic("failed to create coverage directory: " + err.Error())
	}

	// Build the module's main package with coverage instrumentation
	cmd := exec.Command("go", "build", "-cover", "-o", binaryPath, "github.com/tinovyatkin/nuspec-lsp")
	if out, err := cmd.CombinedOutput(); err != nil {
		_ = os.RemoveAll(tmpDir)
		panic("failed to build binary: " + string(out))
	}

	code := m.Run()

	_ = os.RemoveAll(tmpDir)
	os.Exit(code)
}

type result struct {
	stdout   string
	stderr   string
	exitCode int
}

func runBinary(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(),
		"GOCOVERDIR="+coverageDir,
	)
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	} else {
		require.NoError(t, err)
	}
	return result{stdout: stdout.String(), stderr: stderr.String(), exitCode: code}
}

func TestCheck(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		wantExit int
	}{
		{"valid", []string{"testdata/valid/Contoso.Utility.nuspec"}, 0},
		{"legacy-namespace", []string{"testdata/legacy/Legacy.nuspec"}, 1},
		{"mixed-namespace", []string{"testdata/mixed/Mixed.nuspec"}, 1},
		{"invalid", []string{"testdata/invalid/Broken.nuspec"}, 1},
		{"template", []string{"testdata/template/Template.nuspec"}, 1},
		{"unclosed", []string{"testdata/unclosed/Unclosed.nuspec"}, 1},
		{"tree", []string{"--exclude", "**/obj", "testdata/tree"}, 0},
		{"tree-with-obj", []string{"testdata/tree"}, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			args := append([]string{"check", "--color", "never"}, tc.args...)
			res := runBinary(t, "", args...)

			assert.Equal(t, tc.wantExit, res.exitCode, "stderr: %s", res.stderr)
			snaps.MatchStandaloneSnapshot(t, res.stdout)
		})
	}
}

func TestCheck_JSON(t *testing.T) {
	res := runBinary(t, "", "check", "--format", "json",
		"testdata/valid/Contoso.Utility.nuspec", "testdata/template/Template.nuspec")
	assert.Equal(t, 1, res.exitCode)
	assert.Contains(t, res.stderr, "found 2 problem(s)")

	var report struct {
		Files []struct {
			File        string `json:"file"`
			URI         string `json:"uri"`
			Diagnostics []struct {
				Line    int    `json:"line"`
				Column  int    `json:"column"`
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"diagnostics"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &report))
	require.Len(t, report.Files, 2)

	tmpl := report.Files[0]
	assert.Equal(t, "testdata/template/Template.nuspec", tmpl.File)
	assert.True(t, strings.HasPrefix(tmpl.URI, "file://"))
	require.Len(t, tmpl.Diagnostics, 2)
	for _, d := range tmpl.Diagnostics {
		assert.Equal(t, "templated-value", d.Code)
		assert.Equal(t, "Templated value which should be removed", d.Message)
	}
	assert.Equal(t, 6, tmpl.Diagnostics[0].Line)
	assert.Equal(t, 8, tmpl.Diagnostics[1].Line)

	assert.Equal(t, "testdata/valid/Contoso.Utility.nuspec", report.Files[1].File)
	assert.Empty(t, report.Files[1].Diagnostics)
}

func TestCheck_Stdin(t *testing.T) {
	data, err := os.ReadFile("testdata/invalid/Broken.nuspec")
	require.NoError(t, err)

	res := runBinary(t, string(data), "check", "--color", "never", "-")
	assert.Equal(t, 1, res.exitCode)
	assert.Contains(t, res.stdout, "-:7\n")
}

func TestCheck_UTF16(t *testing.T) {
	data, err := os.ReadFile("testdata/valid/Contoso.Utility.nuspec")
	require.NoError(t, err)

	text := strings.Replace(string(data), `encoding="utf-8"`, `encoding="utf-16"`, 1)
	encoded := []byte{0xFF, 0xFE}
	for _, r := range text {
		encoded = append(encoded, byte(r), byte(r>>8))
	}
	path := filepath.Join(t.TempDir(), "Utf16.nuspec")
	require.NoError(t, os.WriteFile(path, encoded, 0o644))

	res := runBinary(t, "", "check", path)
	assert.Equal(t, 0, res.exitCode, "stdout: %s\nstderr: %s", res.stdout, res.stderr)
}

func TestCheck_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "nuspec-lsp.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("[check]\nexclude = [\"**/obj\"]\ncolor = \"never\"\n"), 0o644))

	res := runBinary(t, "", "--config", cfg, "check", "testdata/tree")
	assert.Equal(t, 0, res.exitCode, "stdout: %s\nstderr: %s", res.stdout, res.stderr)
}

func TestVersion(t *testing.T) {
	res := runBinary(t, "", "version")
	require.Equal(t, 0, res.exitCode)
	assert.True(t, strings.HasPrefix(res.stdout, "nuspec-lsp version "))

	res = runBinary(t, "", "version", "--json")
	require.Equal(t, 0, res.exitCode)
	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &info))
	assert.Contains(t, info, "version")
}
