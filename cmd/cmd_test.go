package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/naka-gawa/weekly-report/internal/config"
)

// newTestCommand returns a command with the flags setup reads, writing to out.
func newTestCommand(t *testing.T, out *bytes.Buffer) *cobra.Command {
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, nil, 0o600))

	c := &cobra.Command{Use: "test"}
	c.Flags().Bool("verbose", false, "")
	c.Flags().String("env-file", envFile, "")
	c.Flags().String("repo", "", "")
	c.Flags().String("org", "", "")
	c.Flags().Bool("summary", false, "")
	c.SetOut(out)
	return c
}

// fakeGitHub serves the REST and GraphQL endpoints used by the commands, enterprise style.
func fakeGitHub(t *testing.T, pullsStatus int) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/repos/owner/repo/pulls", func(w http.ResponseWriter, r *http.Request) {
		if pullsStatus != http.StatusOK {
			w.WriteHeader(pullsStatus)
			fmt.Fprint(w, `{"message": "Bad credentials"}`)
			return
		}
		fmt.Fprint(w, `[
			{"number": 1, "title": "Merge me", "user": {"login": "alice"}, "state": "closed", "created_at": "2026-10-01T10:00:00Z", "merged_at": "2026-10-13T10:00:00Z"},
			{"number": 2, "title": "Outsider", "user": {"login": "bob"}, "state": "open", "created_at": "2026-10-13T10:00:00Z"},
			{"number": 3, "title": "Draft", "user": {"login": "alice"}, "state": "open", "draft": true, "created_at": "2026-10-12T10:00:00Z"},
			{"number": 4, "title": "Review me", "user": {"login": "alice"}, "state": "open", "created_at": "2026-10-15T10:00:00Z"},
			{"number": 5, "title": "Unknown", "user": {"login": "carol"}, "state": "closed", "created_at": "2026-10-06T10:00:00Z", "merged_at": "2026-10-07T10:00:00Z"},
			{"number": 6, "title": "Abandoned", "user": {"login": "alice"}, "state": "closed", "created_at": "2026-10-06T10:00:00Z"}
		]`)
	})
	mux.HandleFunc("GET /api/v3/repos/owner/repo/issues", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2026-10-05T00:00:00Z", r.URL.Query().Get("since"))
		fmt.Fprint(w, `[
			{"number": 7, "title": "Bug", "user": {"login": "alice"}, "created_at": "2026-10-08T10:00:00Z"},
			{"number": 8, "title": "Outsider bug", "user": {"login": "bob"}, "created_at": "2026-10-08T10:00:00Z"},
			{"number": 9, "title": "Review me", "user": {"login": "alice"}, "created_at": "2026-10-15T10:00:00Z", "pull_request": {}}
		]`)
	})
	mux.HandleFunc("GET /api/v3/orgs/samouraiworld/members/{user}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("user") {
		case "alice":
			w.WriteHeader(http.StatusNoContent)
		case "carol":
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"message": "oops"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message": "Not Found"}`)
		}
	})
	mux.HandleFunc("POST /api/graphql", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"viewer":{"login":"alice"},"repository":{"nameWithOwner":"owner/repo","isPrivate":false}}}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func setEnv(t *testing.T, server *httptest.Server) {
	t.Setenv("GITHUB_TOKEN", "test-token")
	t.Setenv("GITHUB_REPOSITORY", "owner/repo")
	t.Setenv("GITHUB_ORG", "samouraiworld")
	t.Setenv("GITHUB_API_URL", server.URL+"/api/v3/")
	t.Setenv("GITHUB_WEB_URL", "https://github.com")
	t.Setenv("LOGGING_LEVEL", "error")
}

var wednesday = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func TestRunReport(t *testing.T) {
	setEnv(t, fakeGitHub(t, http.StatusOK))

	var out bytes.Buffer
	err := runReport(context.Background(), newTestCommand(t, &out), wednesday)
	require.NoError(t, err)

	expected := "----------------------------------\n" +
		"Markdown Report\n" +
		"----------------------------------\n" +
		"- **PRs merged this week:**\n" +
		"    - **Merge me** https://github.com/owner/repo/pull/1 alice\n" +
		"- **PRs waiting for review:**\n" +
		"    - **Review me** https://github.com/owner/repo/pull/4 alice\n" +
		"- **PRs in progress:**\n" +
		"    - **Draft** https://github.com/owner/repo/pull/3 alice\n" +
		"- **Issues opened this week:**\n" +
		"    - **Bug** https://github.com/owner/repo/issues/7 alice\n" +
		"\n" +
		"----------------------------------\n"
	assert.Equal(t, expected, out.String())
}

func TestRunReport_Summary(t *testing.T) {
	setEnv(t, fakeGitHub(t, http.StatusOK))

	var out bytes.Buffer
	c := newTestCommand(t, &out)
	require.NoError(t, c.Flags().Set("summary", "true"))
	require.NoError(t, runReport(context.Background(), c, wednesday))

	assert.Contains(t, out.String(), `"merged": 1`)
	assert.Contains(t, out.String(), `"issues_opened": 1`)
	assert.Contains(t, out.String(), `"merge_lead_time_hours"`)
}

func TestRunReport_FetchFailurePrintsNothing(t *testing.T) {
	setEnv(t, fakeGitHub(t, http.StatusUnauthorized))

	var out bytes.Buffer
	err := runReport(context.Background(), newTestCommand(t, &out), wednesday)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to build report")
	assert.Empty(t, out.String())
}

func TestRunReport_InvalidConfiguration(t *testing.T) {
	setEnv(t, fakeGitHub(t, http.StatusOK))

	var out bytes.Buffer
	c := newTestCommand(t, &out)
	require.NoError(t, c.Flags().Set("repo", "not-a-repository"))
	err := runReport(context.Background(), c, wednesday)

	assert.ErrorIs(t, err, config.ErrInvalidRepository)
	assert.Empty(t, out.String())
}

func TestRunDoctor(t *testing.T) {
	setEnv(t, fakeGitHub(t, http.StatusOK))

	var out bytes.Buffer
	require.NoError(t, runDoctor(context.Background(), newTestCommand(t, &out)))

	assert.Equal(t, "token user:   alice\n"+
		"repository:   owner/repo (public)\n"+
		"organization: samouraiworld (member)\n", out.String())
}

func TestRunReport_MissingEnvFile(t *testing.T) {
	setEnv(t, fakeGitHub(t, http.StatusOK))

	var out bytes.Buffer
	c := newTestCommand(t, &out)
	require.NoError(t, c.Flags().Set("env-file", filepath.Join(t.TempDir(), "absent.env")))
	err := runReport(context.Background(), c, wednesday)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "load env file")
	assert.Empty(t, out.String())
}

func TestSetup_FlagOverrides(t *testing.T) {
	setEnv(t, fakeGitHub(t, http.StatusOK))

	var out bytes.Buffer
	c := newTestCommand(t, &out)
	require.NoError(t, c.Flags().Set("repo", "other/project"))
	require.NoError(t, c.Flags().Set("org", "gnolang"))
	require.NoError(t, c.Flags().Set("verbose", "true"))

	cfg, logger, err := setup(c)
	require.NoError(t, err)
	assert.Equal(t, "other/project", cfg.GitHub.Repository)
	assert.Equal(t, "gnolang", cfg.GitHub.Org)
	assert.True(t, logger.Desugar().Core().Enabled(zapcore.DebugLevel), "verbose enables debug")
}
