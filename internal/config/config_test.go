package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
log:
  level: debug
  format: text
quiz:
  time_limit: 20
  tick: 500ms
  question_count: 5
  source: remote
  difficulty: hard
  category: science
scores:
  store: redis
  limit: 5
trivia:
  base_url: https://opentdb.com/api.php
  timeout: 3s
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 20, cfg.Quiz.TimeLimit)
	assert.Equal(t, 5, cfg.Quiz.QuestionCount)
	assert.Equal(t, "remote", cfg.Quiz.Source)
	assert.Equal(t, "redis", cfg.Scores.Store)
	assert.Equal(t, 500*time.Millisecond, TTLDuration(cfg.Quiz.Tick, time.Second))
	assert.Equal(t, 3*time.Second, TTLDuration(cfg.Trivia.Timeout, time.Second))
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"source":     "quiz:\n  source: carrier\n",
		"difficulty": "quiz:\n  difficulty: extreme\n",
		"count":      "quiz:\n  question_count: 99\n",
		"store":      "scores:\n  store: sqlite\n",
		"log format": "log:\n  format: xml\n",
		"yaml":       "quiz: [unclosed\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestTTLDuration(t *testing.T) {
	assert.Equal(t, time.Minute, TTLDuration("", time.Minute))
	assert.Equal(t, time.Minute, TTLDuration("soon", time.Minute))
	assert.Equal(t, 2*time.Hour, TTLDuration("2h", time.Minute))
}
