package usecase

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// レコメンドは不透明な読み取り専用フィード。ランキングのロジックはサーバー側。
type RecommendationUsecase struct {
	store repo.RecommendationStore
}

func NewRecommendationUsecase(store repo.RecommendationStore) *RecommendationUsecase {
	return &RecommendationUsecase{store: store}
}

func (u *RecommendationUsecase) List(ctx context.Context) ([]model.Product, error) {
	return u.store.FetchRecommendations(ctx)
}
