// Package main implements the jsonform CLI for serialising form descriptors
// into JSON request bodies.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tomasbasham/jsonform"
	"github.com/tomasbasham/jsonform/internal/config"
	"github.com/tomasbasham/jsonform/internal/logging"
)

var version = "dev"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
}

func (a *app) options() []jsonform.Option {
	return []jsonform.Option{
		jsonform.WithLogger(a.logger),
		jsonform.WithChunkSize(a.cfg.Files.ChunkSize),
		jsonform.WithMaxConcurrentReads(a.cfg.Files.MaxConcurrentReads),
		jsonform.WithDefaultSizeLimit(a.cfg.Limits.DefaultSizeLimit),
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "jsonform",
		Short: "Serialise HTML-style forms into JSON request bodies",
		Long: `jsonform reads form descriptors (YAML or JSON documents listing a form's
controls in document order) and produces the JSON body a JSON form submits.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.logLevel != "" {
				cfg.Log.Level = a.logLevel
			}
			logger, err := logging.NewWithWriter(logging.Config{
				Level:  cfg.Log.Level,
				Format: cfg.Log.Format,
			}, stderr)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newEncodeCmd(a))
	rootCmd.AddCommand(newCheckCmd(a))
	rootCmd.AddCommand(newQueryCmd(a))
	return rootCmd
}

// openInput opens the named file, or stdin for "-".
func openInput(cmd *cobra.Command, name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return f, nil
}
