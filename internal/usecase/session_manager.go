package usecase

import (
	"sync"

	repo "storefront/internal/repository"

	"go.uber.org/zap"
)

// 1ユーザー分のセッション一式。
// 隠れたシングルトンにせず、SessionManagerが所有して明示的に作る・壊す。
type UserSession struct {
	Cart     *CartSession
	Wishlist *WishlistSession
	Checkout *CheckoutUsecase
}

// SessionManager はユーザーIDごとのUserSessionを管理する。
// 初回の認証済みアクセスで作り、ログアウトで破棄する。
type SessionManager struct {
	cartStore repo.CartStore
	wishStore repo.WishlistStore
	orders    repo.OrderStore
	log       *zap.Logger

	mu       sync.Mutex
	sessions map[string]*UserSession
}

func NewSessionManager(
	cartStore repo.CartStore,
	wishStore repo.WishlistStore,
	orders repo.OrderStore,
	log *zap.Logger,
) *SessionManager {
	return &SessionManager{
		cartStore: cartStore,
		wishStore: wishStore,
		orders:    orders,
		log:       log,
		sessions:  map[string]*UserSession{},
	}
}

func (m *SessionManager) Get(userID string) *UserSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[userID]; ok {
		return s
	}

	cart := NewCartSession(m.cartStore, m.log)
	s := &UserSession{
		Cart:     cart,
		Wishlist: NewWishlistSession(m.wishStore, m.log),
		Checkout: NewCheckoutUsecase(cart, m.orders, m.log),
	}
	m.sessions[userID] = s
	m.log.Info("session created", zap.String("user_id", userID))
	return s
}

// Drop はログアウト時のteardown。ローカルキャッシュごと破棄する。
func (m *SessionManager) Drop(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[userID]; ok {
		s.Cart.Reset()
		s.Wishlist.Reset()
		delete(m.sessions, userID)
		m.log.Info("session dropped", zap.String("user_id", userID))
	}
}
