package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/workforce-engine/config"
)

// isolate runs the test from an empty directory so no stray .env or
// config.yml leaks in.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "workforce.db", cfg.Database.Path)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "0 2 * * 5", cfg.Scheduler.Spec)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	dir := isolate(t)

	// GIVEN: a config file
	yml := `
server:
  port: 9090
  allowed_origins: ["http://localhost:3000"]
database:
  path: ./data/test.db
log:
  level: debug
  format: json
timezone: Europe/Warsaw
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(yml), 0o600))

	// AND: an environment override
	t.Setenv("WFE_DATABASE_PATH", ":memory:")

	// WHEN
	cfg, err := config.Load(dir)

	// THEN: the environment wins over the file
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, "Europe/Warsaw", cfg.Location().String())

	log := cfg.NewLogger()
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)

	// GIVEN: a .env file in the working directory
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("WFE_SERVER_PORT=7070\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("WFE_SERVER_PORT") })

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			Server:    config.ServerConfig{Port: 8080},
			Database:  config.DatabaseConfig{Path: ":memory:"},
			Log:       config.LogConfig{Level: "info", Format: "text"},
			Scheduler: config.SchedulerConfig{Enabled: true, Spec: "0 2 * * 5"},
			Timezone:  "UTC",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"valid", func(*config.Config) {}, ""},
		{"port", func(c *config.Config) { c.Server.Port = 0 }, "server.port"},
		{"database path", func(c *config.Config) { c.Database.Path = "" }, "database.path"},
		{"log level", func(c *config.Config) { c.Log.Level = "loud" }, "log.level"},
		{"log format", func(c *config.Config) { c.Log.Format = "xml" }, "log.format"},
		{"cron spec", func(c *config.Config) { c.Scheduler.Spec = "every friday" }, "scheduler.spec"},
		{"disabled scheduler ignores spec", func(c *config.Config) {
			c.Scheduler.Enabled = false
			c.Scheduler.Spec = "nonsense"
		}, ""},
		{"timezone", func(c *config.Config) { c.Timezone = "Mars/Olympus" }, "timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
