package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/yanqian/familylog/internal/domain/advice"
	"github.com/yanqian/familylog/internal/domain/auth"
	"github.com/yanqian/familylog/internal/domain/classifier"
	"github.com/yanqian/familylog/internal/domain/journal"
	"github.com/yanqian/familylog/internal/domain/logbook"
	"github.com/yanqian/familylog/internal/domain/reminder"
	"github.com/yanqian/familylog/internal/domain/shopping"
	"github.com/yanqian/familylog/internal/domain/vaccination"
	"github.com/yanqian/familylog/internal/infra/config"
	"github.com/yanqian/familylog/internal/infra/dealsearch/googlecse"
	"github.com/yanqian/familylog/internal/infra/logbookrepo"
	"github.com/yanqian/familylog/internal/infra/notifysink"
	"github.com/yanqian/familylog/internal/infra/rulestore"
	httpiface "github.com/yanqian/familylog/internal/interface/http"
)

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:      cfg.Auth.Secret,
		Issuer:      cfg.Auth.Issuer,
		TokenTTL:    cfg.Auth.TokenTTL,
		DeviceToken: cfg.Auth.DeviceToken,
	}
}

func provideReminderConfig(cfg *config.Config) reminder.Config {
	return reminder.Config{
		Interval:          cfg.Reminders.Interval,
		FeedingAfter:      cfg.Reminders.FeedingAfter,
		FeedingUrgentFrom: cfg.Reminders.FeedingUrgentFrom,
		FeedingGiveUp:     cfg.Reminders.FeedingGiveUp,
	}
}

func provideAdviceConfig(cfg *config.Config) advice.Config {
	c := advice.DefaultConfig()
	if cfg.DealSearch.MaxItems > 0 {
		c.MaxItems = cfg.DealSearch.MaxItems
	}
	c.SearchTimeout = cfg.DealSearch.Timeout
	return c
}

func provideHandlerConfig(cfg *config.Config) httpiface.HandlerConfig {
	return httpiface.HandlerConfig{DefaultLocation: cfg.DealSearch.DefaultLocation}
}

func provideCalendar(cfg *config.Config) *vaccination.Calendar {
	return vaccination.NewCalendar(cfg.Location())
}

func provideRuleBundle(cfg *config.Config, logger *slog.Logger) rulestore.Bundle {
	keys := rulestore.Keys{
		Classifier: cfg.Rules.ClassifierKey,
		Advice:     cfg.Rules.AdviceKey,
		Shopping:   cfg.Rules.ShoppingKey,
	}
	if !cfg.Rules.Enabled {
		return rulestore.Defaults()
	}
	reader, err := rulestore.NewMinioReader(cfg.Rules.Endpoint, cfg.Rules.AccessKey, cfg.Rules.SecretKey, cfg.Rules.Bucket, cfg.Rules.UseSSL)
	if err != nil {
		logger.Error("rule storage unavailable, using embedded rules", "error", err)
		return rulestore.Defaults()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return rulestore.Load(ctx, reader, keys, logger)
}

func provideClassifier(bundle rulestore.Bundle) *classifier.Classifier {
	return classifier.New(bundle.Rules)
}

func provideFormatter(bundle rulestore.Bundle) *shopping.Formatter {
	return shopping.NewFormatter(bundle.Vocabulary)
}

func provideCatalog(bundle rulestore.Bundle) advice.Catalog {
	return bundle.Catalog
}

func provideDealSearcher(cfg *config.Config, logger *slog.Logger) advice.DealSearcher {
	client := googlecse.NewClient(googlecse.Config{
		APIKey:   cfg.DealSearch.APIKey,
		EngineID: cfg.DealSearch.EngineID,
		BaseURL:  cfg.DealSearch.BaseURL,
		Timeout:  cfg.DealSearch.Timeout,
		Breaker: googlecse.BreakerConfig{
			Enabled:          cfg.DealSearch.Breaker.Enabled,
			MaxRequests:      cfg.DealSearch.Breaker.MaxRequests,
			Interval:         cfg.DealSearch.Breaker.Interval,
			Timeout:          cfg.DealSearch.Breaker.Timeout,
			FailureThreshold: cfg.DealSearch.Breaker.FailureThreshold,
		},
	}, logger)
	if !client.Configured() {
		logger.Info("deal search credentials not set, shopping deals disabled")
	}
	return client
}

func provideLogbookRepository(cfg *config.Config, logger *slog.Logger) (logbook.Repository, func(), error) {
	return logbookrepo.Open(cfg.Storage, logger)
}

func provideReminderSink(cfg *config.Config, logger *slog.Logger) (reminder.Sink, func(), error) {
	sink, cleanup := notifysink.Open(cfg.Storage.Valkey, cfg.Reminders.DedupTTL, logger)
	return sink, cleanup, nil
}

func provideSessionSource(svc auth.Service) reminder.SessionSource {
	return svc
}

func provideReminderCanceller(svc reminder.Service) journal.ReminderCanceller {
	return svc
}
