package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/chandu-machineni/iconify/internal/api"
	"github.com/chandu-machineni/iconify/internal/config"
	ierrors "github.com/chandu-machineni/iconify/internal/errors"
	"github.com/chandu-machineni/iconify/pkg/version"
)

const homeSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="24" height="24"><path d="M10 20v-6h4v6"/></svg>`

// isolate points HOME and XDG_CONFIG_HOME at a temp dir so commands never
// touch the real user config or log files.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("ICONIFY_UPSTREAM_MAX_RETRIES", "0")
	return home
}

// fakeUpstream serves mdi icons for any search that includes the mdi prefix
// or has no prefix filter, and an empty result otherwise.
func fakeUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		prefix := r.URL.Query().Get("prefix")
		if prefix != "" && !strings.Contains(prefix, "mdi") {
			_, _ = w.Write([]byte(`{"icons":[],"total":0,"limit":100,"start":0,"collections":{}}`))
			return
		}
		_, _ = w.Write([]byte(`{"icons":["mdi:home","mdi:home-outline"],"total":2,"limit":100,"start":0,` +
			`"collections":{"mdi":{"name":"Material Design Icons","total":7447}}}`))
	})
	mux.HandleFunc("/mdi/home.svg", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "24", r.URL.Query().Get("width"))
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write([]byte(homeSVG))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	t.Setenv("ICONIFY_UPSTREAM_BASE_URL", srv.URL)
	return srv
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--dir", t.TempDir()}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// ============================================================================
// Command tree
// ============================================================================

func TestRootCmd_HasCommands(t *testing.T) {
	root := NewRootCmd()

	want := []string{"search", "popular", "libraries", "categories", "svg",
		"serve", "mcp", "stats", "logs", "config", "version"}
	for _, name := range want {
		c, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, c.Name())
	}

	c, _, err := root.Find([]string{"libs"})
	require.NoError(t, err)
	assert.Equal(t, "libraries", c.Name())
}

func TestVersionCmd(t *testing.T) {
	isolate(t)

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, out string)
	}{
		{
			name: "full",
			args: []string{"version"},
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "iconify "+version.Version)
			},
		},
		{
			name: "short",
			args: []string{"version", "--short"},
			check: func(t *testing.T, out string) {
				assert.Equal(t, version.Short()+"\n", out)
			},
		},
		{
			name: "json",
			args: []string{"version", "--json"},
			check: func(t *testing.T, out string) {
				var info map[string]any
				require.NoError(t, json.Unmarshal([]byte(out), &info))
				assert.Equal(t, version.Version, info["version"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runCLI(t, tt.args...)
			require.NoError(t, err)
			tt.check(t, out)
		})
	}
}

// ============================================================================
// config
// ============================================================================

func TestConfigCmd_PathInitShow(t *testing.T) {
	home := isolate(t)
	want := filepath.Join(home, ".config", "iconify", "config.yaml")

	// Given: no user config
	out, _, err := runCLI(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, want+"\n", out)

	// When: init runs
	out, _, err = runCLI(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Created user configuration")
	assert.FileExists(t, want)

	// Then: a second init refuses to overwrite
	out, _, err = runCLI(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	// And: show --source user parses back to the defaults
	out, _, err = runCLI(t, "config", "show", "--source", "user")
	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, config.NewConfig().Search, cfg.Search)
	assert.Len(t, cfg.Providers, len(config.NewConfig().Providers))
}

func TestConfigShow_JSONAppliesEnv(t *testing.T) {
	isolate(t)
	t.Setenv("ICONIFY_SEARCH_PAGE_SIZE", "40")

	out, _, err := runCLI(t, "config", "show", "--json")
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, 40, cfg.Search.PageSize)
}

func TestConfigShow_Errors(t *testing.T) {
	isolate(t)

	_, _, err := runCLI(t, "config", "show", "--source", "user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config init")

	_, _, err = runCLI(t, "config", "show", "--source", "nope")
	require.Error(t, err)
}

// ============================================================================
// search / svg against a fake icon API
// ============================================================================

func TestSearchCmd_JSON(t *testing.T) {
	isolate(t)
	fakeUpstream(t)

	out, _, err := runCLI(t, "search", "home", "--format", "json")
	require.NoError(t, err)

	var resp api.SearchResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "home", resp.Query)
	assert.Equal(t, 1, resp.Page)

	seen := map[string]bool{}
	for _, ic := range resp.Icons {
		assert.False(t, seen[ic.QualifiedName], "duplicate %s", ic.QualifiedName)
		seen[ic.QualifiedName] = true
	}
	assert.True(t, seen["mdi:home"])
	assert.Equal(t, len(resp.Icons), resp.Count)
}

func TestSearchCmd_RejectsBadInput(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
	}{
		{"query too long", []string{"search", strings.Repeat("a", 201)}},
		{"negative page", []string{"search", "home", "--page=-1"}},
		{"huge page", []string{"search", "home", "--page=46116860184273881"}},
		{"qualified library", []string{"search", "home", "--library", "mdi:home"}},
		{"unknown style", []string{"search", "home", "--style", "sparkly"}},
		{"unknown format", []string{"search", "home", "--format", "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestSVGCmd_Stdout(t *testing.T) {
	isolate(t)
	fakeUpstream(t)

	out, _, err := runCLI(t, "svg", "mdi:home", "--stdout")
	require.NoError(t, err)
	assert.Equal(t, homeSVG, out)
}

func TestSVGCmd_WritesFile(t *testing.T) {
	isolate(t)
	fakeUpstream(t)
	dir := t.TempDir()

	out, _, err := runCLI(t, "svg", "mdi:home", "-o", dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "home-24px.svg")
	assert.Contains(t, out, path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, homeSVG, string(data))
}

func TestSVGCmd_InvalidName(t *testing.T) {
	isolate(t)

	_, _, err := runCLI(t, "svg", "home")
	var ie *ierrors.IconifyError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, ierrors.ErrCodeInvalidQualifiedName, ie.Code)
	assert.Contains(t, ie.Suggestion, "mdi:home")
}

// ============================================================================
// stats
// ============================================================================

func TestStatsCmd_QueriesServer(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/stats", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"cache":{"entries":3,"hits":5,"misses":2}}`))
	}))
	t.Cleanup(srv.Close)

	out, _, err := runCLI(t, "stats", "--addr", srv.URL, "--format", "json")
	require.NoError(t, err)

	var resp api.StatsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 3, resp.Cache.Entries)
}

func TestStatsCmd_ServerDown(t *testing.T) {
	isolate(t)

	_, _, err := runCLI(t, "stats", "--addr", "127.0.0.1:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "iconify serve")
}

// ============================================================================
// logs
// ============================================================================

func TestLogsCmd_TailsFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "test.log")
	lines := `{"time":"2026-01-02T03:04:05Z","level":"INFO","msg":"search_started","query":"home"}
{"time":"2026-01-02T03:04:06Z","level":"ERROR","msg":"provider_failed","provider":"material"}
`
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o644))

	out, _, err := runCLI(t, "logs", "--file", path, "--level", "error", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "provider_failed")
	assert.NotContains(t, out, "search_started")
}

func TestLogsCmd_InvalidFilter(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "test.log")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, _, err := runCLI(t, "logs", "--file", path, "--filter", "([")
	require.Error(t, err)
}
