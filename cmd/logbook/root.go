package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yanqian/familylog/internal/domain/advice"
	"github.com/yanqian/familylog/internal/domain/classifier"
	"github.com/yanqian/familylog/internal/domain/shopping"
	"github.com/yanqian/familylog/internal/infra/config"
	"github.com/yanqian/familylog/pkg/logger"
)

var (
	verbose    bool
	configPath string
	cliLogger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "logbook",
	Short: "Operator tools for the family logbook engine",
	Long: `logbook runs the note classifier, advice engine, shopping formatter,
vaccination calendar and reminder tick from the command line, using the same
rules and storage as the server.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "info"
		if verbose {
			level = "debug"
		}
		cliLogger = logger.NewWithWriter(os.Stderr, level)
		if configPath != "" {
			_ = os.Setenv("CONFIG_PATH", configPath)
		}
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (overrides CONFIG_PATH)")
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// engine is the rule driven part of the system, built from the embedded rules.
type engine struct {
	classifier *classifier.Classifier
	formatter  *shopping.Formatter
	advice     advice.Service
}

func newEngine(searcher advice.DealSearcher) engine {
	formatter := shopping.NewFormatter(shopping.DefaultVocabulary())
	return engine{
		classifier: classifier.New(classifier.DefaultRules()),
		formatter:  formatter,
		advice:     advice.NewService(advice.DefaultConfig(), advice.DefaultCatalog(), formatter, searcher, cliLogger),
	}
}
