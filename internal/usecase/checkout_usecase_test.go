package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCheckout(t *testing.T, cartItems []model.LineItem) (*usecase.CheckoutUsecase, *usecase.CartSession, *OrderStoreMock) {
	t.Helper()

	cartStore := new(CartStoreMock)
	cart := loadedCart(t, cartStore, cartItems)
	orderStore := new(OrderStoreMock)
	return usecase.NewCheckoutUsecase(cart, orderStore, nopLogger()), cart, orderStore
}

func TestCheckout_EmptyCart_FailsWithoutNetworkCall(t *testing.T) {
	co, _, orderStore := newCheckout(t, nil)

	_, err := co.PlaceOrder(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cart is empty")
	assert.ErrorIs(t, err, repo.ErrValidationRejected)

	orderStore.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
	//結果を返したらIdleへ戻っている（再試行可能）
	assert.Equal(t, usecase.CheckoutStateIdle, co.State())
}

// 空カートではPlacingへの遷移自体が起こらない
func TestCheckout_EmptyCart_NeverEntersPlacing(t *testing.T) {
	co, _, _ := newCheckout(t, nil)

	stop := make(chan struct{})
	sawPlacing := make(chan bool, 1)
	go func() {
		for {
			select {
			case <-stop:
				sawPlacing <- false
				return
			default:
				if co.State() == usecase.CheckoutStatePlacing {
					sawPlacing <- true
					return
				}
			}
		}
	}()

	for i := 0; i < 100; i++ {
		_, err := co.PlaceOrder(context.Background())
		require.Error(t, err)
	}
	close(stop)

	assert.False(t, <-sawPlacing, "state must stay IDLE for an empty cart")
}

func TestCheckout_Success_ClearsCartAndReturnsMatchingOrder(t *testing.T) {
	items := []model.LineItem{
		lineItem(1, "P1", "10.00", 2),
		lineItem(2, "P2", "5.00", 1),
	}
	co, cart, orderStore := newCheckout(t, items)

	placed := model.Order{
		ID:     "ord_1",
		Status: model.OrderStatusPending,
		Items: []model.OrderItem{
			{ProductID: "P1", UnitPriceSnapshot: decimal.RequireFromString("10.00"), Quantity: 2},
			{ProductID: "P2", UnitPriceSnapshot: decimal.RequireFromString("5.00"), Quantity: 1},
		},
		TotalAmount: decimal.RequireFromString("25.00"),
		CreatedAt:   time.Now(),
	}
	orderStore.On("PlaceOrder", mock.Anything, mock.Anything).Return(placed, nil).Once()

	order, err := co.PlaceOrder(context.Background())
	require.NoError(t, err)

	//注文の中身はチェックアウト前のカートと一致する
	require.Len(t, order.Items, 2)
	assert.Equal(t, "P1", order.Items[0].ProductID)
	assert.Equal(t, int64(2), order.Items[0].Quantity)
	assert.Equal(t, "P2", order.Items[1].ProductID)
	assert.Equal(t, int64(1), order.Items[1].Quantity)

	//成功でカートは空になる
	assert.Empty(t, cart.Snapshot())
	assert.Equal(t, usecase.CheckoutStateIdle, co.State())
}

func TestCheckout_Failure_LeavesCartUnchangedAndReturnsNoOrder(t *testing.T) {
	items := []model.LineItem{lineItem(1, "P1", "10.00", 2)}
	co, cart, orderStore := newCheckout(t, items)

	orderStore.On("PlaceOrder", mock.Anything, mock.Anything).
		Return(model.Order{}, fmt.Errorf("%w: item no longer available", repo.ErrValidationRejected)).Once()

	order, err := co.PlaceOrder(context.Background())
	require.Error(t, err)
	assert.Empty(t, order.ID)

	//カートはクリア済みと仮定しない
	assertSameItems(t, items, cart.Snapshot())
	assert.Equal(t, usecase.CheckoutStateIdle, co.State())
}

func TestCheckout_NetworkError_IsRetryable(t *testing.T) {
	items := []model.LineItem{lineItem(1, "P1", "10.00", 1)}
	co, cart, orderStore := newCheckout(t, items)

	orderStore.On("PlaceOrder", mock.Anything, mock.Anything).
		Return(model.Order{}, fmt.Errorf("%w: timeout", repo.ErrNetwork)).Once()
	orderStore.On("PlaceOrder", mock.Anything, mock.Anything).
		Return(model.Order{ID: "ord_2", Items: []model.OrderItem{{ProductID: "P1", Quantity: 1}}}, nil).Once()

	_, err := co.PlaceOrder(context.Background())
	require.Error(t, err)
	assertSameItems(t, items, cart.Snapshot())

	order, err := co.PlaceOrder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ord_2", order.ID)
	assert.Empty(t, cart.Snapshot())
}

// ダブルクリックで注文が2回飛ばない（single-flight）
func TestCheckout_DoubleTrigger_PlacesSingleOrder(t *testing.T) {
	items := []model.LineItem{lineItem(1, "P1", "10.00", 1)}
	co, _, orderStore := newCheckout(t, items)

	orderStore.On("PlaceOrder", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { time.Sleep(50 * time.Millisecond) }).
		Return(model.Order{ID: "ord_1"}, nil)

	start := make(chan struct{})
	var wg sync.WaitGroup
	results := make([]string, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			order, err := co.PlaceOrder(context.Background())
			results[i], errs[i] = order.ID, err
		}(i)
	}
	close(start)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, "ord_1", results[0])
	assert.Equal(t, "ord_1", results[1])
	orderStore.AssertNumberOfCalls(t, "PlaceOrder", 1)
}
