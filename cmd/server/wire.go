//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"context"

	"github.com/bionicotaku/lingo-services-feed/internal/conf"
	"github.com/bionicotaku/lingo-services-feed/internal/controllers"
	"github.com/bionicotaku/lingo-services-feed/internal/infrastructure/database"
	"github.com/bionicotaku/lingo-services-feed/internal/infrastructure/gcs"
	"github.com/bionicotaku/lingo-services-feed/internal/infrastructure/genai"
	"github.com/bionicotaku/lingo-services-feed/internal/repositories"
	"github.com/bionicotaku/lingo-services-feed/internal/server"
	"github.com/bionicotaku/lingo-services-feed/internal/services"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// wireApp init kratos application.
func wireApp(context.Context, *conf.Bootstrap, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(
		provideServer,
		provideData,
		provideStorage,
		provideAI,
		provideRecommend,
		database.ProviderSet,
		gcs.NewBlobStore,
		genai.NewClient,
		repositories.ProviderSet,
		services.ProviderSet,
		provideVideoService,
		controllers.ProviderSet,
		server.ProviderSet,
		wire.Bind(new(services.InteractionLedger), new(*repositories.InteractionRepository)),
		wire.Bind(new(services.AnalyticsCounter), new(*repositories.AnalyticsRepository)),
		wire.Bind(new(services.CommentWriter), new(*repositories.CommentRepository)),
		wire.Bind(new(services.VideoLookup), new(*repositories.VideoRepository)),
		wire.Bind(new(services.FeedCandidateSource), new(*repositories.VideoRepository)),
		wire.Bind(new(services.FeedSignalSource), new(*repositories.InteractionRepository)),
		wire.Bind(new(services.FeedProfileSource), new(*repositories.UserRepository)),
		wire.Bind(new(services.UserRepo), new(*repositories.UserRepository)),
		wire.Bind(new(services.Embedder), new(*genai.Client)),
		newApp,
	))
}
