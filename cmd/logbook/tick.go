package main

import (
	"github.com/spf13/cobra"

	"github.com/yanqian/familylog/internal/domain/auth"
	"github.com/yanqian/familylog/internal/domain/reminder"
	"github.com/yanqian/familylog/internal/infra/logbookrepo"
	"github.com/yanqian/familylog/internal/infra/notifysink"
)

var tickIgnoreSession bool

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Run one reminder pass against the configured storage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		repo, closeRepo, err := logbookrepo.Open(cfg.Storage, cliLogger)
		if err != nil {
			return err
		}
		defer closeRepo()
		sink, closeSink := notifysink.Open(cfg.Storage.Valkey, cfg.Reminders.DedupTTL, cliLogger)
		defer closeSink()

		var sessions reminder.SessionSource
		if !tickIgnoreSession {
			sessions = auth.NewService(auth.Config{
				Secret:      cfg.Auth.Secret,
				Issuer:      cfg.Auth.Issuer,
				DeviceToken: cfg.Auth.DeviceToken,
			}, cliLogger)
		}
		svc := reminder.NewService(reminder.Config{
			FeedingAfter:      cfg.Reminders.FeedingAfter,
			FeedingUrgentFrom: cfg.Reminders.FeedingUrgentFrom,
			FeedingGiveUp:     cfg.Reminders.FeedingGiveUp,
		}, repo, sessions, sink, cliLogger)

		stats, err := svc.Tick(cmd.Context())
		if perr := printJSON(cmd, stats); perr != nil {
			return perr
		}
		return err
	},
}

func init() {
	tickCmd.Flags().BoolVar(&tickIgnoreSession, "ignore-session", false, "Deliver even without a valid device session")
	rootCmd.AddCommand(tickCmd)
}
