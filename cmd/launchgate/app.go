// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/launchgate/launchgate/internal/artifact"
	"github.com/launchgate/launchgate/internal/config"
	"github.com/launchgate/launchgate/internal/logging"
	"github.com/launchgate/launchgate/internal/metrics"
	"github.com/launchgate/launchgate/internal/prelaunch"
	"github.com/launchgate/launchgate/internal/resolver"
	"github.com/launchgate/launchgate/pkg/instance"
)

var _ prelaunch.Observer = (*metrics.Recorder)(nil)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every Cobra handler receives an App reference.
	App struct {
		Config ConfigProvider
		// ConfigDirPath overrides the config directory lookup when set.
		ConfigDirPath string
		// Now supplies wall-clock time for handshake timestamps.
		Now    func() time.Time
		stdout io.Writer
		stderr io.Writer
		start  time.Time
		flags  rootFlags
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config        ConfigProvider
		ConfigDirPath string
		Now           func() time.Time
		Stdout        io.Writer
		Stderr        io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Loaded, error)
	}

	rootFlags struct {
		verbose   bool
		cfgFile   string
		stateRoot string
	}

	// session holds everything a command needs once config is loaded.
	session struct {
		cfg       *config.Config
		source    string
		stateRoot string
		logger    *slog.Logger
		artifacts artifact.FSStore
		instances *instance.DirStore
		resolver  *resolver.Resolver
		metrics   *metrics.Recorder
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	return &App{
		Config:        deps.Config,
		ConfigDirPath: deps.ConfigDirPath,
		Now:           deps.Now,
		stdout:        deps.Stdout,
		stderr:        deps.Stderr,
		start:         deps.Now(),
	}
}

// session loads configuration and builds the stores for one invocation.
// --state-root overrides the configured state root.
func (a *App) session(cmd *cobra.Command) (*session, error) {
	loaded, err := a.Config.Load(cmd.Context(), config.LoadOptions{
		ConfigFilePath: a.flags.cfgFile,
		ConfigDirPath:  a.ConfigDirPath,
	})
	if err != nil {
		return nil, err
	}
	cfg := loaded.Config

	level := string(cfg.Log.Level)
	if a.flags.verbose {
		level = string(config.LogLevelDebug)
	}
	logger, err := logging.New(a.stderr, logging.Options{
		Level:      level,
		Format:     logging.Format(cfg.Log.Format),
		Timestamps: cfg.Log.Timestamps,
	})
	if err != nil {
		return nil, err
	}

	stateRoot := a.flags.stateRoot
	if stateRoot == "" {
		if stateRoot, err = cfg.ResolvedStateRoot(); err != nil {
			return nil, fmt.Errorf("resolving state root: %w", err)
		}
	}
	logger.Debug("session ready", "config", loaded.Source, "state_root", stateRoot)

	return &session{
		cfg:       cfg,
		source:    loaded.Source,
		stateRoot: stateRoot,
		logger:    logger,
		artifacts: artifact.FSStore{},
		instances: instance.NewDirStore(stateRoot),
		resolver:  resolver.New(artifact.FSStore{}, stateRoot, logger),
		metrics:   metrics.NewRecorder(),
	}, nil
}

// flushMetrics writes the textfile when one is configured. Failures are
// logged, never returned.
func (s *session) flushMetrics() {
	path := string(s.cfg.Metrics.Textfile)
	if err := s.metrics.WriteTextfile(path); err != nil {
		s.logger.Warn("failed to write metrics textfile", "path", path, "error", err)
	}
}
