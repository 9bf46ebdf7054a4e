package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rehearsal() RecurringEvent {
	return RecurringEvent{
		RRule:           "FREQ=WEEKLY;BYDAY=TU,TH",
		Title:           "Próba",
		Type:            "rehearsal",
		Location:        "Sala prób",
		StartTime:       "18:00",
		DurationMinutes: 120,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := &Config{
		TeamID:            "zespol",
		TeamName:          "Zespół Pieśni i Tańca",
		HTTPAddr:          ":8080",
		AllowedOrigins:    []string{"http://localhost:5173"},
		StorageBucket:     "folkbase-media",
		GmailUserID:       "me",
		AttendanceSheetID: "sheet123",
		QuizSampleSize:    10,
		RecurringEvents:   []RecurringEvent{rehearsal()},
	}

	assert.NoError(t, Validate(cfg))
}

func TestValidate_MinimalConfig(t *testing.T) {
	cfg := &Config{TeamName: "Zespół"}
	applyDefaults(cfg)

	assert.NoError(t, Validate(cfg))
	assert.Equal(t, DefaultTeamID, cfg.TeamID)
	assert.Equal(t, DefaultHTTPAddr, cfg.HTTPAddr)
	assert.Equal(t, DefaultAttendanceTab, cfg.AttendanceTab)
	assert.Equal(t, DefaultQuizSampleSize, cfg.QuizSampleSize)
}

func TestValidate_MissingTeamName(t *testing.T) {
	err := Validate(&Config{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_InvalidRRule(t *testing.T) {
	event := rehearsal()
	event.RRule = "INVALID_RRULE_SYNTAX"
	cfg := &Config{TeamName: "Zespół", RecurringEvents: []RecurringEvent{event}}

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rrule in recurringEvents[0]")
}

func TestValidate_InvalidEventType(t *testing.T) {
	event := rehearsal()
	event.Type = "party"
	cfg := &Config{TeamName: "Zespół", RecurringEvents: []RecurringEvent{event}}

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_InvalidStartTime(t *testing.T) {
	event := rehearsal()
	event.StartTime = "6pm"
	cfg := &Config{TeamName: "Zespół", RecurringEvents: []RecurringEvent{event}}

	assert.Error(t, Validate(cfg))
}

func TestValidate_InvalidOrigin(t *testing.T) {
	cfg := &Config{TeamName: "Zespół", AllowedOrigins: []string{"not a url"}}
	assert.Error(t, Validate(cfg))
}

func TestLoadFromPath_ValidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "folkbase_config.yaml")

	validConfig := `
teamID: "krakowiacy"
teamName: "Zespół Krakowiacy"
allowedOrigins:
  - "https://folkbase.example.com"
storageBucket: "krakowiacy-media"
gmailUserID: "me"
gmailSender: "zespol@example.com"
attendanceSheetID: "sheet123"
quizSampleSize: 5
recurringEvents:
  - rrule: "FREQ=WEEKLY;BYDAY=TU"
    title: "Próba"
    type: "rehearsal"
    location: "Dom Kultury"
    startTime: "18:30"
    durationMinutes: 90
`
	require.NoError(t, os.WriteFile(configPath, []byte(validConfig), 0644))

	cfg, err := LoadFromPath(configPath)
	require.NoError(t, err)

	assert.Equal(t, "krakowiacy", cfg.TeamID)
	assert.Equal(t, "Zespół Krakowiacy", cfg.TeamName)
	assert.Equal(t, DefaultHTTPAddr, cfg.HTTPAddr)
	assert.Equal(t, []string{"https://folkbase.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, 5, cfg.QuizSampleSize)

	require.Len(t, cfg.RecurringEvents, 1)
	event := cfg.RecurringEvents[0]
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=TU", event.RRule)
	assert.Equal(t, "18:30", event.StartTime)
	assert.Equal(t, 90, event.DurationMinutes)
}

func TestLoadFromPath_InvalidRRule(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid_rrule.yaml")

	invalidConfig := `
teamName: "Zespół"
recurringEvents:
  - rrule: "EVERY TUESDAY"
    title: "Próba"
    type: "rehearsal"
    startTime: "18:00"
    durationMinutes: 90
`
	require.NoError(t, os.WriteFile(configPath, []byte(invalidConfig), 0644))

	_, err := LoadFromPath(configPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rrule")
}

func TestLoadFromPath_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid_yaml.yaml")

	invalidYAML := `
teamName: "Zespół"
  invalid indentation
teamID: "x"
`
	require.NoError(t, os.WriteFile(configPath, []byte(invalidYAML), 0644))

	_, err := LoadFromPath(configPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadFromPath_FileNotFound(t *testing.T) {
	_, err := LoadFromPath("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadEnv_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("FOLKBASE_DATABASE_URL", "postgres://localhost/folkbase")
	t.Setenv("FOLKBASE_SESSION_TTL", "2h")
	t.Setenv("FOLKBASE_LOG_LEVEL", "debug")

	e, err := LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/folkbase", e.DatabaseURL)
	assert.Equal(t, 2*time.Hour, e.SessionTTL)
	assert.Equal(t, "json", e.LogFormat)
	assert.NoError(t, e.RequireDatabase())

	logCfg := e.LoggerConfig()
	assert.Equal(t, "debug", logCfg.Level)
	assert.Equal(t, "stdout", logCfg.Output)
}

func TestLoadEnv_DotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("FOLKBASE_CUSTOM_TOKEN_SECRET=from-file\n"), 0644))
	t.Setenv("FOLKBASE_CUSTOM_TOKEN_SECRET", "")
	os.Unsetenv("FOLKBASE_CUSTOM_TOKEN_SECRET")

	e, err := LoadEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", e.CustomTokenSecret)
}

func TestEnv_RequireSessionSecret(t *testing.T) {
	assert.Error(t, (&Env{SessionSecret: "short"}).RequireSessionSecret())
	assert.NoError(t, (&Env{SessionSecret: "0123456789abcdef0123456789abcdef"}).RequireSessionSecret())
	assert.Error(t, (&Env{}).RequireDatabase())
}

func TestLoadOAuthClientFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oauthClient.json")
	content := `{"installed":{
		"client_id":"id.apps.googleusercontent.com",
		"project_id":"folkbase",
		"auth_uri":"https://accounts.google.com/o/oauth2/auth",
		"token_uri":"https://oauth2.googleapis.com/token",
		"auth_provider_x509_cert_url":"https://www.googleapis.com/oauth2/v1/certs",
		"client_secret":"secret",
		"redirect_uris":["http://localhost"]
	}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadOAuthClientFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "folkbase", cfg.Installed.ProjectID)

	require.NoError(t, os.WriteFile(path, []byte(`{"installed":{"client_id":"id"}}`), 0600))
	_, err = LoadOAuthClientFromPath(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "oauth client validation failed")
}

func TestEnvFileName(t *testing.T) {
	assert.Equal(t, "folkbase_config.yaml", envFileName("folkbase_config", "", "yaml"))
	assert.Equal(t, "folkbase_oauth.prod.json", envFileName("folkbase_oauth", "prod", "json"))
}

func TestLoadOAuthClientWithEnv_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"installed":{
		"client_id":"id.apps.googleusercontent.com",
		"project_id":"zespol",
		"auth_uri":"https://accounts.google.com/o/oauth2/auth",
		"token_uri":"https://oauth2.googleapis.com/token",
		"auth_provider_x509_cert_url":"https://www.googleapis.com/oauth2/v1/certs",
		"client_secret":"secret",
		"redirect_uris":["http://localhost"]
	}}`), 0600))
	t.Setenv(OAuthClientEnvVar, path)

	cfg, err := LoadOAuthClientWithEnv("does-not-exist")
	require.NoError(t, err)
	assert.Equal(t, "zespol", cfg.Installed.ProjectID)
}
