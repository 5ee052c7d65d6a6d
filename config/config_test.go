package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvGithubToken, "ghp_0123456789abcdef0123")
	t.Setenv(EnvGithubRepository, "")
	t.Setenv(EnvGithubOwner, "octocat")
	t.Setenv(EnvGithubRepo, "hello-world")
}

func TestNewConfigDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := NewConfig()
	require.NoError(t, err)
	require.Equal(t, "octocat/hello-world", cfg.Repository())
	require.Equal(t, "0.0.0.0:8080", cfg.ServerAddr())
	require.Equal(t, 30, cfg.GitHub.WindowDays)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestNewConfigRepositoryOverride(t *testing.T) {
	setBaseEnv(t)
	t.Setenv(EnvGithubRepository, "golang/go")

	cfg, err := NewConfig()
	require.NoError(t, err)
	require.Equal(t, "golang", cfg.GitHub.Owner)
	require.Equal(t, "go", cfg.GitHub.Repo)
}

func TestNewConfigInvalidRepository(t *testing.T) {
	setBaseEnv(t)
	t.Setenv(EnvGithubRepository, "not-a-repo")

	_, err := NewConfig()
	require.Error(t, err)
}

func TestNewConfigMissingToken(t *testing.T) {
	setBaseEnv(t)
	t.Setenv(EnvGithubToken, "")

	_, err := NewConfig()
	require.Error(t, err)
	require.Contains(t, err.Error(), "GITHUB_TOKEN")
}

func TestSplitRepository(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		owner   string
		repo    string
		wantErr bool
	}{
		{name: "valid", in: "octocat/hello-world", owner: "octocat", repo: "hello-world"},
		{name: "missing slash", in: "octocat", wantErr: true},
		{name: "empty owner", in: "/repo", wantErr: true},
		{name: "too many parts", in: "a/b/c", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := SplitRepository(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.owner, owner)
			require.Equal(t, tt.repo, repo)
		})
	}
}

func TestTokenLooksValid(t *testing.T) {
	require.True(t, TokenLooksValid("ghp_x"))
	require.True(t, TokenLooksValid("github_pat_x"))
	require.True(t, TokenLooksValid("aaaaaaaaaaaaaaaaaaaaaaaa"))
	require.False(t, TokenLooksValid("short"))
}

func TestWindowValidate(t *testing.T) {
	day := 24 * time.Hour
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, Window{Start: now.Add(-day), End: now}.Validate())
	require.ErrorIs(t, Window{Start: now, End: now.Add(-day)}.Validate(), ErrBadWindow)
	require.ErrorIs(t, Window{Start: now, End: now.Add(time.Hour)}.Validate(), ErrBadWindow)
}

func TestDefaultWindow(t *testing.T) {
	setBaseEnv(t)
	cfg, err := NewConfig()
	require.NoError(t, err)

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	w := cfg.DefaultWindow(now)
	require.NoError(t, w.Validate())
	require.Equal(t, now.AddDate(0, 0, -30), w.Start)
	require.Equal(t, now, w.End)
}
