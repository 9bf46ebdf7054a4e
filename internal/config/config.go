package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTeamID         = "folkbase"
	DefaultHTTPAddr       = ":8080"
	DefaultAttendanceTab  = "Frekwencja"
	DefaultQuizSampleSize = 10
)

// RecurringEvent describes a calendar entry that repeats on an rrule schedule,
// e.g. the weekly rehearsal
type RecurringEvent struct {
	RRule           string `yaml:"rrule" validate:"required"`
	Title           string `yaml:"title" validate:"required"`
	Type            string `yaml:"type" validate:"required,oneof=rehearsal concert workshop meeting"`
	Location        string `yaml:"location,omitempty"`
	StartTime       string `yaml:"startTime" validate:"required,datetime=15:04"`
	DurationMinutes int    `yaml:"durationMinutes" validate:"min=1"`
}

// Config represents the application configuration
type Config struct {
	TeamID            string           `yaml:"teamID"`
	TeamName          string           `yaml:"teamName" validate:"required"`
	HTTPAddr          string           `yaml:"httpAddr"`
	AllowedOrigins    []string         `yaml:"allowedOrigins,omitempty" validate:"dive,url"`
	StorageBucket     string           `yaml:"storageBucket,omitempty"`
	GmailUserID       string           `yaml:"gmailUserID,omitempty"`
	GmailSender       string           `yaml:"gmailSender,omitempty"`
	AttendanceSheetID string           `yaml:"attendanceSheetID,omitempty"`
	AttendanceTab     string           `yaml:"attendanceTab,omitempty"`
	PasswordResetURL  string           `yaml:"passwordResetURL,omitempty" validate:"omitempty,url"`
	QuizSampleSize    int              `yaml:"quizSampleSize" validate:"min=0"`
	RecurringEvents   []RecurringEvent `yaml:"recurringEvents,omitempty" validate:"dive"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from folkbase_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads the configuration for an environment.
// For example, env="test" looks for "folkbase_config.test.yaml".
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.TeamID == "" {
		cfg.TeamID = DefaultTeamID
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = DefaultHTTPAddr
	}
	if cfg.AttendanceTab == "" {
		cfg.AttendanceTab = DefaultAttendanceTab
	}
	if cfg.QuizSampleSize == 0 {
		cfg.QuizSampleSize = DefaultQuizSampleSize
	}
}

// Validate validates the configuration struct and checks rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, event := range cfg.RecurringEvents {
		if _, err := rrule.StrToRRule(event.RRule); err != nil {
			return fmt.Errorf("invalid rrule in recurringEvents[%d]: %w", i, err)
		}
	}

	return nil
}

// findConfigFile looks for folkbase_config[.<env>].yaml
func findConfigFile(env string) (string, error) {
	return locateFile(envFileName("folkbase_config", env, "yaml"))
}

func envFileName(base, env, ext string) string {
	if env == "" {
		return base + "." + ext
	}
	return base + "." + env + "." + ext
}

// locateFile searches the current directory, then the home directory
func locateFile(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	inHome := filepath.Join(homeDir, name)
	if _, err := os.Stat(inHome); err == nil {
		return inHome, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", name)
}
