//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/familylog/internal/bootstrap"
	"github.com/yanqian/familylog/internal/domain/advice"
	"github.com/yanqian/familylog/internal/domain/auth"
	"github.com/yanqian/familylog/internal/domain/journal"
	"github.com/yanqian/familylog/internal/domain/reminder"
	"github.com/yanqian/familylog/internal/infra/config"
	httpiface "github.com/yanqian/familylog/internal/interface/http"
	"github.com/yanqian/familylog/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAuthConfig,
		provideReminderConfig,
		provideAdviceConfig,
		provideHandlerConfig,
		provideCalendar,
		provideRuleBundle,
		provideClassifier,
		provideFormatter,
		provideCatalog,
		provideDealSearcher,
		provideLogbookRepository,
		provideReminderSink,
		provideSessionSource,
		provideReminderCanceller,
		auth.NewService,
		advice.NewService,
		reminder.NewService,
		reminder.NewScheduler,
		journal.NewService,
		wire.Bind(new(httpiface.ReminderTrigger), new(*reminder.Scheduler)),
		wire.Bind(new(bootstrap.Scheduler), new(*reminder.Scheduler)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
