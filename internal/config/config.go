// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"

	"github.com/launchgate/launchgate/internal/issue"
	"github.com/launchgate/launchgate/pkg/cueutil"
	"github.com/launchgate/launchgate/pkg/fspath"
)

const (
	// AppName is the application name.
	AppName = "launchgate"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes every environment override, e.g. LAUNCHGATE_LOG_LEVEL.
	EnvPrefix = "LAUNCHGATE"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the launchgate configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// DataDir returns the default state root: %LOCALAPPDATA%\launchgate on
// Windows, ~/Library/Application Support/launchgate/state on macOS and
// $XDG_DATA_HOME/launchgate (defaulting to ~/.local/share) elsewhere.
func DataDir() (string, error) {
	if dataDirOverride != "" {
		return dataDirOverride, nil
	}

	switch runtime.GOOS {
	case "windows":
		base := os.Getenv("LOCALAPPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local")
		}
		return filepath.Join(base, AppName), nil
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support", AppName, "state"), nil
	default:
		base := os.Getenv("XDG_DATA_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			base = filepath.Join(home, ".local", "share")
		}
		return filepath.Join(base, AppName), nil
	}
}

// ResolvedStateRoot returns StateRoot, or DataDir() when it is unset.
func (c *Config) ResolvedStateRoot() (string, error) {
	if c.StateRoot != "" {
		return string(c.StateRoot), nil
	}
	return DataDir()
}

// loadWithOptions performs option-driven config loading. It returns the
// config and the path it was read from ("" when only defaults applied).
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper()

	resolvedPath := ""
	if opts.ConfigFilePath != "" {
		if !fspath.FileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'launchgate config show' to see the default configuration").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
		if err != nil {
			return nil, "", err
		}
		for _, candidate := range []string{
			filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt),
			ConfigFileName + "." + ConfigFileExt,
		} {
			if fspath.FileExists(candidate) {
				resolvedPath = candidate
				break
			}
		}
	}

	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check values overridden through " + EnvPrefix + "_* environment variables").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// newViper returns a Viper instance holding the defaults and wired for
// LAUNCHGATE_* environment overrides. Nested keys map "." to "_".
func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("state_root", defaults.StateRoot)
	v.SetDefault("launcher_profile_id", defaults.LauncherProfileID)
	v.SetDefault("determinism_profile_id", defaults.DeterminismProfileID)
	v.SetDefault("platform_backends", defaults.PlatformBackends)
	v.SetDefault("renderer_backends", defaults.RendererBackends)
	v.SetDefault("ui_backend", defaults.UIBackend)
	v.SetDefault("safe_mode_flags", defaults.SafeModeFlags)
	v.SetDefault("offline", defaults.Offline)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("log.timestamps", defaults.Log.Timestamps)
	v.SetDefault("metrics.textfile", defaults.Metrics.Textfile)
	v.SetDefault("sim_caps.tick_rate_hz", defaults.SimCaps.TickRateHz)
	v.SetDefault("sim_caps.rng_algorithm", defaults.SimCaps.RNGAlgorithm)
	v.SetDefault("sim_caps.fixed_point", defaults.SimCaps.FixedPoint)
	v.SetDefault("sim_caps.max_entities", defaults.SimCaps.MaxEntities)
	v.SetDefault("perf_caps.worker_threads", defaults.PerfCaps.WorkerThreads)
	v.SetDefault("perf_caps.memory_budget_mb", defaults.PerfCaps.MemoryBudgetMB)
	v.SetDefault("perf_caps.streaming", defaults.PerfCaps.Streaming)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// feature_epoch has no default, so AutomaticEnv alone would never see it.
	_ = v.BindEnv("feature_epoch")

	return v
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
//
// Note: This uses manual CUE parsing instead of cueutil.ParseAndDecode because:
// 1. Config decodes to map[string]any (not a struct) for Viper integration
// 2. Uses Concrete(false) because config fields are optional
// 3. Needs to merge into Viper's config map, not return a struct
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	ctx := cuecontext.New()
	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return cueutil.FormatError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return cueutil.FormatError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return cueutil.FormatError(err, path)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// CreateDefaultConfig writes a default config file into dir (ConfigDir() when
// empty) unless one exists. It returns the path and whether a file was written.
func CreateDefaultConfig(dir string) (string, bool, error) {
	cfgDir, err := configDirWithOverride(dir)
	if err != nil {
		return "", false, err
	}
	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if fspath.FileExists(cfgPath) {
		return cfgPath, false, nil
	}
	if err := fspath.WriteAtomic(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}
	return cfgPath, true, nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// launchgate configuration\n\n")

	if cfg.StateRoot != "" {
		fmt.Fprintf(&sb, "state_root: %q\n", cfg.StateRoot)
	}
	fmt.Fprintf(&sb, "launcher_profile_id: %q\n", cfg.LauncherProfileID)
	fmt.Fprintf(&sb, "determinism_profile_id: %q\n", cfg.DeterminismProfileID)
	fmt.Fprintf(&sb, "platform_backends: %s\n", cueList(cfg.PlatformBackends))
	fmt.Fprintf(&sb, "renderer_backends: %s\n", cueList(cfg.RendererBackends))
	if cfg.UIBackend != "" {
		fmt.Fprintf(&sb, "ui_backend: %q\n", cfg.UIBackend)
	}
	fmt.Fprintf(&sb, "safe_mode_flags: %s\n", cueList(cfg.SafeModeFlags))
	fmt.Fprintf(&sb, "offline: %v\n", cfg.Offline)
	if cfg.FeatureEpoch != nil {
		fmt.Fprintf(&sb, "feature_epoch: %d\n", *cfg.FeatureEpoch)
	}

	sb.WriteString("\nlog: {\n")
	fmt.Fprintf(&sb, "\tlevel: %q\n", cfg.Log.Level)
	fmt.Fprintf(&sb, "\tformat: %q\n", cfg.Log.Format)
	fmt.Fprintf(&sb, "\ttimestamps: %v\n", cfg.Log.Timestamps)
	sb.WriteString("}\n")

	if cfg.Metrics.Textfile != "" {
		sb.WriteString("\nmetrics: {\n")
		fmt.Fprintf(&sb, "\ttextfile: %q\n", cfg.Metrics.Textfile)
		sb.WriteString("}\n")
	}

	sb.WriteString("\nsim_caps: {\n")
	fmt.Fprintf(&sb, "\ttick_rate_hz: %d\n", cfg.SimCaps.TickRateHz)
	fmt.Fprintf(&sb, "\trng_algorithm: %q\n", cfg.SimCaps.RNGAlgorithm)
	fmt.Fprintf(&sb, "\tfixed_point: %v\n", cfg.SimCaps.FixedPoint)
	fmt.Fprintf(&sb, "\tmax_entities: %d\n", cfg.SimCaps.MaxEntities)
	sb.WriteString("}\n")

	sb.WriteString("\nperf_caps: {\n")
	fmt.Fprintf(&sb, "\tworker_threads: %d\n", cfg.PerfCaps.WorkerThreads)
	fmt.Fprintf(&sb, "\tmemory_budget_mb: %d\n", cfg.PerfCaps.MemoryBudgetMB)
	fmt.Fprintf(&sb, "\tstreaming: %v\n", cfg.PerfCaps.Streaming)
	sb.WriteString("}\n")

	return sb.String()
}

func cueList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
