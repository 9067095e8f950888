//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/tempcast/internal/bootstrap"
	"github.com/yanqian/tempcast/internal/domain/outlook"
	"github.com/yanqian/tempcast/internal/infra/config"
	httpiface "github.com/yanqian/tempcast/internal/interface/http"
	"github.com/yanqian/tempcast/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideOutlookConfig,
		provideHistoryClient,
		provideConditionsClient,
		provideSeriesCache,
		provideReportRepository,
		provideCurveArchive,
		provideNarrator,
		outlook.NewService,
		provideScheduler,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
