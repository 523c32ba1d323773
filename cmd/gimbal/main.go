// gimbal - 3D math and camera toolbox
//
// Inspect models, convert Euler angles, project points through a
// configured camera, evaluate skeleton poses and write wireframe
// snapshots.
package main

import (
	"context"
	"fmt"
	"os"

	"fortio.org/log"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/taigrr/gimbal/internal/config"
)

var version = "dev"

// app holds the state shared by every subcommand once the root
// PersistentPreRunE has resolved it.
type app struct {
	configPath string
	flags      config.Flags
	cfg        config.Config
	logFile    *lumberjack.Logger
}

func main() {
	if err := fang.Execute(context.Background(), newRootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "gimbal",
		Short: "3D math and camera toolbox",
		Long: `gimbal - 3D math and camera toolbox

Scene settings come from an optional YAML file (--config) and are
overridden by the flags below.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "Scene config file (YAML)")
	pf.IntVar(&a.flags.Width, "width", 0, "Viewport width in pixels")
	pf.IntVar(&a.flags.Height, "height", 0, "Viewport height in pixels")
	pf.Float32Var(&a.flags.FOV, "fov", 0, "Vertical field of view in degrees")
	pf.BoolVar(&a.flags.Orthographic, "ortho", false, "Use an orthographic projection")
	pf.StringVar(&a.flags.EulerOrder, "order", "", "Euler order name (XYZ, ZXY, ...)")
	pf.StringVar(&a.flags.LogLevel, "log-level", "", "Log level (debug, verbose, info, warning, error)")
	pf.StringVar(&a.flags.LogFile, "log-file", "", "Write logs to a rotated file instead of stderr")

	cmd.AddCommand(
		a.infoCmd(),
		a.eulerCmd(),
		a.projectCmd(),
		a.unprojectCmd(),
		a.poseCmd(),
		a.snapshotCmd(),
	)
	return cmd
}

func (a *app) setup() error {
	cfg := config.Defaults()
	if a.configPath != "" {
		var err error
		if cfg, err = config.Load(a.configPath); err != nil {
			return err
		}
	}
	cfg.Resolve(a.flags)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	a.cfg = cfg

	if err := log.SetLogLevelStr(cfg.Logging.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if cfg.Logging.File != "" {
		a.logFile = &lumberjack.Logger{
			Filename:   cfg.Logging.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		log.SetOutput(a.logFile)
	}
	log.Debugf("config %q: viewport %dx%d, fov %v, order %s",
		a.configPath, cfg.Viewport.Width, cfg.Viewport.Height, cfg.Camera.FOV, cfg.EulerOrder)
	return nil
}

func (a *app) close() {
	if a.logFile == nil {
		return
	}
	log.SetOutput(os.Stderr)
	if err := a.logFile.Close(); err != nil {
		log.Errf("close log file: %v", err)
	}
	a.logFile = nil
}
