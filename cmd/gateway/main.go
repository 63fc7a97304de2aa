package main

import (
	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/remote"
	"storefront/internal/server"
	"storefront/internal/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	//.envは無くてもよい（コンテナでは環境変数を直接渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	var logger *zap.Logger
	if cfg.GoEnv == "prod" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	//リモートストアのHTTPクライアント
	store := remote.NewClient(cfg, logger)

	//セッション管理（ユーザーごとのキャッシュ＋コーディネータ）
	sessions := usecase.NewSessionManager(store, store.Wishlist(), store, logger)

	//Usecase生成
	orderUC := usecase.NewOrderUsecase(store)
	recUC := usecase.NewRecommendationUsecase(store)

	//Handler生成
	h := server.Handlers{
		Cart:           handler.NewCartHandler(sessions),
		Wishlist:       handler.NewWishlistHandler(sessions),
		Order:          handler.NewOrderHandler(sessions, orderUC),
		Recommendation: handler.NewRecommendationHandler(recUC),
		Session:        handler.NewSessionHandler(sessions),
	}

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	e := server.New(cfg, h)
	logger.Info("gateway starting", zap.String("addr", addr), zap.String("store", cfg.StoreBaseURL))
	if err := server.Start(e, addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
