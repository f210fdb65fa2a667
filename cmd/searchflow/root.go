package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/smallnest/searchflow/config"
	"github.com/smallnest/searchflow/log"
)

type app struct {
	configPath string
	logLevel   string

	cfg config.Config

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "searchflow",
		Short:         "Incremental, paginated profile search",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "searchflow.yaml", "path to the YAML configuration")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log level (debug, info, warn, error, none)")

	root.AddCommand(newSearchCmd(a), newSnapshotCmd(a))
	return root
}

// setup loads the configuration and installs the package logger.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg

	logger := log.NewGologLoggerWithLevel(cfg.Level())
	logger.SetOutput(a.stderr)
	log.SetDefaultLogger(logger)
	return nil
}
