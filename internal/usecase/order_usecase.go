package usecase

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// 注文履歴の読み取り。注文はサーバー所有なのでキャッシュせず毎回取りに行く。
type OrderUsecase struct {
	store repo.OrderStore
}

func NewOrderUsecase(store repo.OrderStore) *OrderUsecase {
	return &OrderUsecase{store: store}
}

func (u *OrderUsecase) ListOrders(ctx context.Context) ([]model.Order, error) {
	return u.store.ListOrders(ctx)
}

func (u *OrderUsecase) OrderDetail(ctx context.Context, orderID string) (model.Order, error) {
	return u.store.FindOrder(ctx, orderID)
}
