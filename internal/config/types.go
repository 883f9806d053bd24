// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/launchgate/launchgate/pkg/handshake"
)

const (
	// LogLevelDebug logs resolution order and refusal detail.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the default.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs warnings and errors only.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs errors only.
	LogLevelError LogLevel = "error"

	// LogFormatText is human-readable output.
	LogFormatText LogFormat = "text"
	// LogFormatJSON is one JSON object per line.
	LogFormatJSON LogFormat = "json"
	// LogFormatLogfmt is key=value output.
	LogFormatLogfmt LogFormat = "logfmt"
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidLogFormat is returned when a LogFormat value is not recognized.
	ErrInvalidLogFormat = errors.New("invalid log format")
	// ErrInvalidDirPath is returned when a DirPath value is whitespace-only.
	ErrInvalidDirPath = errors.New("invalid directory path")
	// ErrInvalidProfileID is returned when a profile id is empty or padded.
	ErrInvalidProfileID = errors.New("invalid profile id")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel is the minimum level written to stderr.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// LogFormat selects the log line encoding.
	LogFormat string

	// InvalidLogFormatError is returned when a LogFormat value is not recognized.
	InvalidLogFormatError struct {
		Value LogFormat
	}

	// DirPath is a filesystem path. The zero value means "use the default".
	// Non-zero values must not be whitespace-only.
	DirPath string

	// InvalidDirPathError is returned when a DirPath is whitespace-only.
	InvalidDirPathError struct {
		Field string
		Value DirPath
	}

	// ProfileID names a launcher or determinism profile.
	ProfileID string

	// InvalidProfileIDError is returned when a ProfileID is empty or carries
	// surrounding whitespace.
	InvalidProfileIDError struct {
		Field string
		Value ProfileID
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the launcher configuration.
	Config struct {
		// StateRoot holds instances and pack artifacts. Empty means DataDir().
		StateRoot DirPath `json:"state_root" mapstructure:"state_root"`
		// LauncherProfileID is written to every handshake.
		LauncherProfileID ProfileID `json:"launcher_profile_id" mapstructure:"launcher_profile_id"`
		// DeterminismProfileID is written to every handshake.
		DeterminismProfileID ProfileID `json:"determinism_profile_id" mapstructure:"determinism_profile_id"`
		PlatformBackends     []string  `json:"platform_backends" mapstructure:"platform_backends"`
		RendererBackends     []string  `json:"renderer_backends" mapstructure:"renderer_backends"`
		UIBackend            string    `json:"ui_backend" mapstructure:"ui_backend"`
		SafeModeFlags        []string  `json:"safe_mode_flags" mapstructure:"safe_mode_flags"`
		Offline              bool      `json:"offline" mapstructure:"offline"`
		// FeatureEpoch is omitted from the handshake when nil.
		FeatureEpoch *uint32        `json:"feature_epoch,omitempty" mapstructure:"feature_epoch"`
		Log          LogConfig      `json:"log" mapstructure:"log"`
		Metrics      MetricsConfig  `json:"metrics" mapstructure:"metrics"`
		SimCaps      SimCapsConfig  `json:"sim_caps" mapstructure:"sim_caps"`
		PerfCaps     PerfCapsConfig `json:"perf_caps" mapstructure:"perf_caps"`
	}

	// LogConfig configures the stderr logger.
	LogConfig struct {
		Level      LogLevel  `json:"level" mapstructure:"level"`
		Format     LogFormat `json:"format" mapstructure:"format"`
		Timestamps bool      `json:"timestamps" mapstructure:"timestamps"`
	}

	// MetricsConfig configures metric export.
	MetricsConfig struct {
		// Textfile is a node-exporter textfile path. Empty disables export.
		Textfile DirPath `json:"textfile" mapstructure:"textfile"`
	}

	// SimCapsConfig mirrors handshake.SimCaps.
	SimCapsConfig struct {
		TickRateHz   uint32 `json:"tick_rate_hz" mapstructure:"tick_rate_hz"`
		RNGAlgorithm string `json:"rng_algorithm" mapstructure:"rng_algorithm"`
		FixedPoint   bool   `json:"fixed_point" mapstructure:"fixed_point"`
		MaxEntities  uint32 `json:"max_entities" mapstructure:"max_entities"`
	}

	// PerfCapsConfig mirrors handshake.PerfCaps.
	PerfCapsConfig struct {
		WorkerThreads  uint32 `json:"worker_threads" mapstructure:"worker_threads"`
		MemoryBudgetMB uint32 `json:"memory_budget_mb" mapstructure:"memory_budget_mb"`
		Streaming      bool   `json:"streaming" mapstructure:"streaming"`
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LauncherProfileID:    "default",
		DeterminismProfileID: "default",
		PlatformBackends:     []string{},
		RendererBackends:     []string{},
		SafeModeFlags:        []string{},
		Log: LogConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
		SimCaps: SimCapsConfig{
			TickRateHz:   60,
			RNGAlgorithm: "pcg32",
			FixedPoint:   true,
		},
	}
}

// Caps returns the capability set written to handshakes.
func (c *Config) Caps() handshake.Caps {
	return handshake.Caps{
		Sim: handshake.SimCaps{
			TickRateHz:   c.SimCaps.TickRateHz,
			RNGAlgorithm: c.SimCaps.RNGAlgorithm,
			FixedPoint:   c.SimCaps.FixedPoint,
			MaxEntities:  c.SimCaps.MaxEntities,
		},
		Perf: handshake.PerfCaps{
			WorkerThreads:  c.PerfCaps.WorkerThreads,
			MemoryBudgetMB: c.PerfCaps.MemoryBudgetMB,
			Streaming:      c.PerfCaps.Streaming,
		},
		FeatureEpoch: c.FeatureEpoch,
	}
}

// Identity returns the launcher identifiers for one run. Timestamps are left
// to the caller.
func (c *Config) Identity(runID uint64) handshake.Identity {
	return handshake.Identity{
		RunID:                runID,
		LauncherProfileID:    string(c.LauncherProfileID),
		DeterminismProfileID: string(c.DeterminismProfileID),
		PlatformBackends:     c.PlatformBackends,
		RendererBackends:     c.RendererBackends,
		UIBackend:            c.UIBackend,
		SafeModeFlags:        c.SafeModeFlags,
		OfflineMode:          c.Offline,
	}
}

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.StateRoot.isValid("state_root"); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.LauncherProfileID.isValid("launcher_profile_id"); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.DeterminismProfileID.isValid("determinism_profile_id"); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Log.Level.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Log.Format.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Metrics.Textfile.isValid("metrics.textfile"); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s): %v", len(e.FieldErrors), errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// IsValid returns whether the LogFormat is one of the defined formats.
func (f LogFormat) IsValid() (bool, []error) {
	switch f {
	case LogFormatText, LogFormatJSON, LogFormatLogfmt:
		return true, nil
	default:
		return false, []error{&InvalidLogFormatError{Value: f}}
	}
}

func (e *InvalidLogFormatError) Error() string {
	return fmt.Sprintf("invalid log format %q (valid: text, json, logfmt)", e.Value)
}

func (e *InvalidLogFormatError) Unwrap() error { return ErrInvalidLogFormat }

// String returns the string representation of the DirPath.
func (p DirPath) String() string { return string(p) }

func (p DirPath) isValid(field string) (bool, []error) {
	if p == "" {
		return true, nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidDirPathError{Field: field, Value: p}}
	}
	return true, nil
}

func (e *InvalidDirPathError) Error() string {
	return fmt.Sprintf("%s: invalid path %q: non-empty value must not be whitespace-only", e.Field, e.Value)
}

func (e *InvalidDirPathError) Unwrap() error { return ErrInvalidDirPath }

func (id ProfileID) isValid(field string) (bool, []error) {
	if id == "" || strings.TrimSpace(string(id)) != string(id) {
		return false, []error{&InvalidProfileIDError{Field: field, Value: id}}
	}
	return true, nil
}

func (e *InvalidProfileIDError) Error() string {
	return fmt.Sprintf("%s: invalid profile id %q: must be non-empty without surrounding whitespace", e.Field, e.Value)
}

func (e *InvalidProfileIDError) Unwrap() error { return ErrInvalidProfileID }
