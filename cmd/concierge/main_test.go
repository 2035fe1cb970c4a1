package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/poiesic/concierge"
	"github.com/poiesic/concierge/ai/mock"
	"github.com/poiesic/concierge/config"
	"github.com/poiesic/concierge/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	tests := []struct {
		level   string
		enabled slog.Level
		wantErr bool
	}{
		{level: "debug", enabled: slog.LevelDebug},
		{level: "INFO", enabled: slog.LevelInfo},
		{level: "Warn", enabled: slog.LevelWarn},
		{level: "error", enabled: slog.LevelError},
		{level: "verbose", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			app := &cli.App{
				Name:   "concierge",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "log-level", Value: "info"}},
				Before: setupLogger,
				Action: func(*cli.Context) error { return nil },
			}
			err := app.Run([]string{"concierge", "--log-level", tt.level})
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid log level")
				return
			}
			require.NoError(t, err)
			ctx := context.Background()
			assert.True(t, slog.Default().Enabled(ctx, tt.enabled))
			assert.False(t, slog.Default().Enabled(ctx, tt.enabled-1))
		})
	}
}

func TestCommands_RequireArguments(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{args: []string{"ask"}, want: "question is required"},
		{args: []string{"search"}, want: "query is required"},
		{args: []string{"feedback", "abc"}, want: "answer id and status are required"},
		{args: []string{"session", "show"}, want: "session id is required"},
		{args: []string{"session", "clear"}, want: "session id is required"},
		{args: []string{"session", "set", "s1", "top_k"}, want: "session id, name and value are required"},
		{args: []string{"ingest"}, want: "at least one file is required"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			err := newApp(&bytes.Buffer{}).Run(append([]string{"concierge"}, tt.args...))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseVar(t *testing.T) {
	assert.Equal(t, true, parseVar("true"))
	assert.Equal(t, 3, parseVar("3"))
	assert.Equal(t, "alice", parseVar("alice"))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "a b", preview("a\n\n b", 10))
	assert.Equal(t, "éé...", preview("ééé", 2))
}

// cliEnv runs commands against a persistent temp data directory with mock AI services.
type cliEnv struct {
	t    *testing.T
	dir  string
	conf string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	original := openSystem
	t.Cleanup(func() { openSystem = original })
	openSystem = func(ctx context.Context, cfg *config.Config, opts ...concierge.Option) (*concierge.System, error) {
		return concierge.Open(ctx, cfg, append(opts, concierge.WithProvider(mock.NewMockProvider()))...)
	}

	dir := t.TempDir()
	conf := filepath.Join(dir, "concierge.yaml")
	require.NoError(t, os.WriteFile(conf, []byte("session:\n  backend: badger\naudit:\n  backend: badger\n"), 0o600))
	return &cliEnv{t: t, dir: dir, conf: conf}
}

func (e *cliEnv) run(args ...string) string {
	e.t.Helper()
	var out bytes.Buffer
	argv := append([]string{"concierge", "-c", e.conf, "--data", filepath.Join(e.dir, "data"), "-l", "error"}, args...)
	require.NoError(e.t, newApp(&out).Run(argv))
	return out.String()
}

func TestCLI_EndToEnd(t *testing.T) {
	env := newCLIEnv(t)
	doc := filepath.Join(env.dir, "bail.txt")
	require.NoError(t, os.WriteFile(doc,
		[]byte("Le loyer mensuel est de 800 €.\n\nLe bail est conclu pour trois ans."), 0o600))

	out := env.run("ingest", doc)
	assert.Contains(t, out, "Ingested 2 chunks")

	out = env.run("reembed", "--batch-size", "1")
	assert.Contains(t, out, "Reembedded 2 chunks")

	out = env.run("search", "--json", "-k", "1", "loyer", "mensuel")
	var hits []core.EvidenceItem
	require.NoError(t, sonic.UnmarshalString(out, &hits))
	require.Len(t, hits, 1)
	assert.Equal(t, "Le loyer mensuel est de 800 €.", hits[0].Text)

	out = env.run("ask", "--json", "-s", "s1", "Quel", "est", "le", "loyer", "?")
	var res core.Result
	require.NoError(t, sonic.UnmarshalString(out, &res))
	assert.Equal(t, core.KindSynthesis, res.Responder)
	require.NotEmpty(t, res.AnswerID)

	out = env.run("session", "show", "s1")
	var s core.Session
	require.NoError(t, sonic.UnmarshalString(out, &s))
	assert.Len(t, s.History, 1)
	assert.NotEmpty(t, s.Sources)

	out = env.run("feedback", "-s", "s1", res.AnswerID, "utile", "très", "clair")
	assert.NotEmpty(t, strings.TrimSpace(out))

	out = env.run("audit", "--kind", "feedback")
	var events []*core.FeedbackEvent
	require.NoError(t, sonic.UnmarshalString(out, &events))
	require.Len(t, events, 1)
	assert.Equal(t, res.AnswerID, events[0].AnswerID)
	assert.Equal(t, "très clair", events[0].Comment)

	env.run("session", "clear", "s1")
	out = env.run("session", "show", "s1")
	s = core.Session{}
	require.NoError(t, sonic.UnmarshalString(out, &s))
	assert.Empty(t, s.History)
}

func TestCLI_AskFromStdin(t *testing.T) {
	env := newCLIEnv(t)
	var out bytes.Buffer
	app := newApp(&out)
	app.Reader = strings.NewReader("feedback:x:bof:\n\nfeedback:y:utile:ok\n")
	argv := []string{"concierge", "-c", env.conf, "--data", filepath.Join(env.dir, "data"), "-l", "error",
		"ask", "--stats", "-"}
	require.NoError(t, app.Run(argv))
	assert.Contains(t, out.String(), "requests=2")
}

func TestCLI_SessionSet(t *testing.T) {
	env := newCLIEnv(t)
	env.run("session", "set", "s2", "top_k", "3")
	env.run("session", "set", "s2", "n8n_webhook", "true")

	out := env.run("session", "show", "s2")
	var s core.Session
	require.NoError(t, sonic.UnmarshalString(out, &s))
	k, ok := s.IntVar("top_k")
	assert.True(t, ok)
	assert.Equal(t, 3, k)
	assert.True(t, s.BoolVar("n8n_webhook"))
}

func TestCLI_AuditInvalidKind(t *testing.T) {
	env := newCLIEnv(t)
	argv := []string{"concierge", "-c", env.conf, "--data", filepath.Join(env.dir, "data"), "audit", "--kind", "logs"}
	err := newApp(&bytes.Buffer{}).Run(argv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid kind")
}
