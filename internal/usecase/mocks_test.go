package usecase_test

import (
	"context"
	"testing"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =====================
// Mocks（repositoryのStore群）
// =====================

type CartStoreMock struct{ mock.Mock }

func (m *CartStoreMock) FetchCart(ctx context.Context) ([]model.LineItem, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.LineItem)
	return items, args.Error(1)
}

func (m *CartStoreMock) AddItem(ctx context.Context, productID string, quantity int64) (model.LineItem, error) {
	args := m.Called(ctx, productID, quantity)
	it, _ := args.Get(0).(model.LineItem)
	return it, args.Error(1)
}

func (m *CartStoreMock) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int64) (model.LineItem, error) {
	args := m.Called(ctx, itemID, quantity)
	it, _ := args.Get(0).(model.LineItem)
	return it, args.Error(1)
}

func (m *CartStoreMock) RemoveItem(ctx context.Context, itemID int64) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

type WishlistStoreMock struct{ mock.Mock }

func (m *WishlistStoreMock) FetchWishlist(ctx context.Context) ([]model.LineItem, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.LineItem)
	return items, args.Error(1)
}

func (m *WishlistStoreMock) AddItem(ctx context.Context, productID string) (model.LineItem, error) {
	args := m.Called(ctx, productID)
	it, _ := args.Get(0).(model.LineItem)
	return it, args.Error(1)
}

func (m *WishlistStoreMock) RemoveItem(ctx context.Context, itemID int64) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

type OrderStoreMock struct{ mock.Mock }

func (m *OrderStoreMock) PlaceOrder(ctx context.Context, items []model.OrderItem) (model.Order, error) {
	args := m.Called(ctx, items)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderStoreMock) ListOrders(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *OrderStoreMock) FindOrder(ctx context.Context, orderID string) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

type RecommendationStoreMock struct{ mock.Mock }

func (m *RecommendationStoreMock) FetchRecommendations(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Error(1)
}

// =====================
// ヘルパ
// =====================

func lineItem(id int64, productID string, price string, qty int64) model.LineItem {
	return model.LineItem{
		ID:          id,
		ProductID:   productID,
		ProductName: "Item " + productID,
		UnitPrice:   decimal.RequireFromString(price),
		Quantity:    qty,
		SyncState:   model.SyncStateConfirmed,
	}
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}

// 巻き戻し検証用の構造的比較（id・数量・価格）
func assertSameItems(t *testing.T, want []model.LineItem, got []model.LineItem) {
	t.Helper()

	require.Len(t, got, len(want))
	for i := range want {
		require.Equal(t, want[i].ID, got[i].ID, "item %d: id", i)
		require.Equal(t, want[i].ProductID, got[i].ProductID, "item %d: product_id", i)
		require.Equal(t, want[i].Quantity, got[i].Quantity, "item %d: quantity", i)
		require.True(t, want[i].UnitPrice.Equal(got[i].UnitPrice), "item %d: unit price", i)
	}
}
