package main

import (
	"github.com/bionicotaku/lingo-services-feed/internal/conf"
	"github.com/bionicotaku/lingo-services-feed/internal/infrastructure/gcs"
	"github.com/bionicotaku/lingo-services-feed/internal/infrastructure/genai"
	"github.com/bionicotaku/lingo-services-feed/internal/repositories"
	"github.com/bionicotaku/lingo-services-feed/internal/services"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
)

// 配置切片 Provider：把 Bootstrap 拆成各层需要的片段。
func provideServer(bc *conf.Bootstrap) *conf.Server       { return bc.Server }
func provideData(bc *conf.Bootstrap) *conf.Data           { return bc.Data }
func provideStorage(bc *conf.Bootstrap) *conf.Storage     { return bc.Storage }
func provideAI(bc *conf.Bootstrap) *conf.AI               { return bc.AI }
func provideRecommend(bc *conf.Bootstrap) *conf.Recommend { return bc.Recommend }

// provideVideoService 手工组装视频服务：两个级联依赖类型相同，Wire 无法自动区分。
func provideVideoService(
	videos *repositories.VideoRepository,
	interactions *repositories.InteractionRepository,
	comments *repositories.CommentRepository,
	analytics *repositories.AnalyticsRepository,
	users *repositories.UserRepository,
	blobs *gcs.BlobStore,
	ai *genai.Client,
	tx txmanager.Manager,
	aiConf *conf.AI,
	logger log.Logger,
) *services.VideoService {
	return services.NewVideoService(services.VideoServiceDeps{
		Videos:       videos,
		Interactions: interactions,
		Comments:     comments,
		Analytics:    analytics,
		Authors:      users,
		Blobs:        blobs,
		Analyzer:     ai,
		Embedder:     ai,
		TxManager:    tx,
		AI:           aiConf,
		Logger:       logger,
	})
}
