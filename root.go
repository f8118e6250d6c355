package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"focus_group_generator/config"
	"focus_group_generator/generator"
	"focus_group_generator/provider"
)

var version = "dev"

// newGateway is a test hook for swapping provider clients.
var newGateway = provider.NewGateway

// app carries what every subcommand shares once the root has loaded settings.
type app struct {
	configPath string
	debug      bool

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "focus-group",
		Short: "Generate synthetic focus-group transcripts with LLM providers",
		Long: `focus-group composes a research prompt from a study description, sends it to
one of several text-generation providers and returns a timestamped transcript
with a quality report.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", os.Getenv("FOCUS_GROUP_CONFIG"), "Path to a .json, .yaml or .toml config file")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.setup(cmd)
	}

	cmd.AddCommand(newProvidersCommand(a))
	cmd.AddCommand(newPromptCommand(a))
	cmd.AddCommand(newGenerateCommand(a))
	cmd.AddCommand(newAuditCommand(a))
	cmd.AddCommand(newServeCommand(a))

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return &settingsError{err: err}
	}
	if err := cfg.Validate(); err != nil {
		return &settingsError{err: err}
	}

	level := cfg.SlogLevel()
	if a.debug {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)
	a.cfg = cfg
	return nil
}

func (a *app) tables() (*generator.Tables, error) {
	if a.cfg.TablesPath == "" {
		return generator.DefaultTables(), nil
	}
	t, err := generator.LoadTables(a.cfg.TablesPath)
	if err != nil {
		return nil, &settingsError{err: err}
	}
	return t, nil
}

func (a *app) gateway() *provider.Gateway {
	opts := append(a.cfg.GatewayOptions(), provider.WithLogger(a.logger))
	return newGateway(opts...)
}

func loadStudy(path string) (generator.Study, error) {
	if path == "" {
		return generator.Study{}, errors.New("--study is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return generator.Study{}, fmt.Errorf("reading study file: %w", err)
	}
	return generator.ParseStudy(data)
}
