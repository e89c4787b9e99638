package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"img2stl/internal/config"
	"img2stl/internal/convert"
	"img2stl/internal/logger"
)

var (
	configPath string
	logLevel   string
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:           "img2stl",
	Short:         "img2stl extrudes grayscale images into watertight STL reliefs.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to a YAML or JSON config file (default: ./"+config.DefaultFile+" if present)")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&logFile, "log-file", "", "Also write logs to this rotating file")
}

// ExecuteContext runs the command line and returns the process exit code.
func ExecuteContext(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	logger.Sync()
	if err == nil {
		return 0
	}
	var ce *convert.Error
	if errors.As(err, &ce) && ce.Kind == convert.KindNotFound {
		fmt.Fprintf(os.Stderr, "img2stl: input not found: %s\n", ce.Path)
		return 1
	}
	fmt.Fprintf(os.Stderr, "img2stl: %v\n", err)
	return 1
}

// reliefFlags are the conversion overrides shared by every subcommand.
type reliefFlags struct {
	min, max, base float64
	format         string
	maxSide        int
	preview        bool
}

func (r *reliefFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&r.min, "min", 0, "Relief thickness of white pixels")
	f.Float64Var(&r.max, "max", 0, "Relief thickness of black pixels")
	f.Float64Var(&r.base, "base", 0, "Height of the solid base under the relief")
	f.StringVar(&r.format, "format", "", "STL flavour: binary or ascii")
	f.IntVar(&r.maxSide, "max-side", 0, "Downscale images so the longer side is at most this many pixels")
	f.BoolVar(&r.preview, "preview", false, "Also write a shaded WebP preview next to each STL")
}

func (r *reliefFlags) overrides(cmd *cobra.Command) config.Flags {
	f := cmd.Flags()
	fl := config.Flags{
		Format:   r.format,
		LogLevel: logLevel,
		LogFile:  logFile,
	}
	if f.Changed("min") {
		fl.MinThickness = &r.min
	}
	if f.Changed("max") {
		fl.MaxThickness = &r.max
	}
	if f.Changed("base") {
		fl.BaseHeight = &r.base
	}
	if f.Changed("max-side") {
		fl.MaxSide = &r.maxSide
	}
	if f.Changed("preview") {
		fl.Preview = &r.preview
	}
	return fl
}

// setup loads the config file, applies flag overrides and starts logging.
func setup(fl config.Flags) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg.Resolve(fl)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, err
	}
	return cfg, nil
}
