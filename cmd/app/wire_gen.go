// Injector implementation for wire.go, written in the form wire emits.
// Keep it in sync with the provider set; go generate replaces it with wire output.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package main

import (
	"github.com/yanqian/familylog/internal/bootstrap"
	"github.com/yanqian/familylog/internal/domain/advice"
	"github.com/yanqian/familylog/internal/domain/auth"
	"github.com/yanqian/familylog/internal/domain/journal"
	"github.com/yanqian/familylog/internal/domain/reminder"
	"github.com/yanqian/familylog/internal/infra/config"
	"github.com/yanqian/familylog/internal/interface/http"
	"github.com/yanqian/familylog/pkg/logger"
)

// Injectors from wire.go:

func initializeApp() (*bootstrap.App, func(), error) {
	configConfig, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	slogLogger := logger.New()
	httpHandlerConfig := provideHandlerConfig(configConfig)
	repository, cleanup, err := provideLogbookRepository(configConfig, slogLogger)
	if err != nil {
		return nil, nil, err
	}
	bundle := provideRuleBundle(configConfig, slogLogger)
	classifierClassifier := provideClassifier(bundle)
	formatter := provideFormatter(bundle)
	calendar := provideCalendar(configConfig)
	adviceConfig := provideAdviceConfig(configConfig)
	catalog := provideCatalog(bundle)
	dealSearcher := provideDealSearcher(configConfig, slogLogger)
	service := advice.NewService(adviceConfig, catalog, formatter, dealSearcher, slogLogger)
	reminderConfig := provideReminderConfig(configConfig)
	authConfig := provideAuthConfig(configConfig)
	authService := auth.NewService(authConfig, slogLogger)
	sessionSource := provideSessionSource(authService)
	sink, cleanup2, err := provideReminderSink(configConfig, slogLogger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	reminderService := reminder.NewService(reminderConfig, repository, sessionSource, sink, slogLogger)
	reminderCanceller := provideReminderCanceller(reminderService)
	journalService := journal.NewService(repository, classifierClassifier, formatter, calendar, service, reminderCanceller, slogLogger)
	scheduler := reminder.NewScheduler(reminderConfig, reminderService, slogLogger)
	handler := http.NewHandler(httpHandlerConfig, journalService, service, formatter, scheduler, slogLogger)
	server := http.NewRouter(configConfig, handler, authService, slogLogger)
	app := bootstrap.NewApp(configConfig, slogLogger, server, scheduler)
	return app, func() {
		cleanup2()
		cleanup()
	}, nil
}
