package usecase

import (
	"context"
	"fmt"
	"sync"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type CheckoutState string

const (
	CheckoutStateIdle    CheckoutState = "IDLE"
	CheckoutStatePlacing CheckoutState = "PLACING"
)

// CheckoutUsecase はカートを注文へ変換する一回限りのトランザクション。
// Idle → Placing → Succeeded|Failed で、結果を呼び出し元へ返したら即Idleへ戻る。
//
// サーバー側は注文作成の冪等性を保証しないため、二重注文を防ぐのは
// このsingle-flightガードだけ（ダブルクリックで2回目はin-flightの結果に相乗りする）。
// クライアントがクラッシュして再試行した場合の重複リスクは残る（既知のギャップ）。
type CheckoutUsecase struct {
	cart  *CartSession
	store repo.OrderStore
	log   *zap.Logger

	mu    sync.Mutex
	state CheckoutState

	sfg singleflight.Group
}

func NewCheckoutUsecase(cart *CartSession, store repo.OrderStore, log *zap.Logger) *CheckoutUsecase {
	return &CheckoutUsecase{
		cart:  cart,
		store: store,
		log:   log,
		state: CheckoutStateIdle,
	}
}

func (u *CheckoutUsecase) State() CheckoutState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// PlaceOrder はカートの中身で注文を確定する。
//   - 空カートはリモートを呼ばずに失敗
//   - 成功: キャッシュは空になり、Orderを返す
//   - 失敗: キャッシュは一切触らない（クリア済みとは仮定しない）。再試行可能。
func (u *CheckoutUsecase) PlaceOrder(ctx context.Context) (model.Order, error) {
	v, err, _ := u.sfg.Do("checkout", func() (any, error) {
		// 空カートはPlacingへ遷移させない（リモートも呼ばない）
		snap := u.cart.Snapshot()
		if len(snap) == 0 {
			return model.Order{}, fmt.Errorf("%w: cart is empty", repo.ErrValidationRejected)
		}

		u.mu.Lock()
		u.state = CheckoutStatePlacing
		u.mu.Unlock()

		defer func() {
			// 終端状態は保持しない。結果を返したらIdleへ。
			u.mu.Lock()
			u.state = CheckoutStateIdle
			u.mu.Unlock()
		}()

		items := make([]model.OrderItem, 0, len(snap))
		for _, it := range snap {
			items = append(items, model.OrderItem{
				ProductID:           it.ProductID,
				ProductNameSnapshot: it.ProductName,
				UnitPriceSnapshot:   it.UnitPrice,
				Quantity:            it.Quantity,
			})
		}

		order, err := u.store.PlaceOrder(ctx, items)
		if err != nil {
			u.log.Warn("checkout failed", zap.Error(err))
			return model.Order{}, err
		}

		u.cart.Clear()
		u.log.Info("order placed",
			zap.String("order_id", order.ID),
			zap.Int("item_count", len(order.Items)),
		)
		return order, nil
	})
	if err != nil {
		return model.Order{}, err
	}
	return v.(model.Order), nil
}
