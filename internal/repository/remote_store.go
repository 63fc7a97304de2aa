package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// リモートストア（権威サーバー）のポート。実装はinternal/infra/remote。
// 返ってきた値が常に正で、ローカルは無条件に上書きする。

type CartStore interface {
	FetchCart(ctx context.Context) ([]model.LineItem, error)
	// 同一商品はサーバー側で数量加算にマージされる
	AddItem(ctx context.Context, productID string, quantity int64) (model.LineItem, error)
	UpdateItemQuantity(ctx context.Context, itemID int64, quantity int64) (model.LineItem, error)
	RemoveItem(ctx context.Context, itemID int64) error
}

type WishlistStore interface {
	FetchWishlist(ctx context.Context) ([]model.LineItem, error)
	AddItem(ctx context.Context, productID string) (model.LineItem, error)
	RemoveItem(ctx context.Context, itemID int64) error
}

type OrderStore interface {
	// 冪等性はサーバー側で保証されない。二重送信防止はクライアント側のsingle-flightのみ。
	PlaceOrder(ctx context.Context, items []model.OrderItem) (model.Order, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	FindOrder(ctx context.Context, orderID string) (model.Order, error)
}

type RecommendationStore interface {
	FetchRecommendations(ctx context.Context) ([]model.Product, error)
}
