package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// WishlistSession はウィッシュリスト版のローカルキャッシュ。
// カートと同じ構造だが数量を持たない（常に1）。addは冪等で、
// 既にある商品の再追加は何もしない。
type WishlistSession struct {
	store repo.WishlistStore
	log   *zap.Logger

	mu     sync.RWMutex
	items  []model.LineItem
	stale  bool
	loaded bool

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	loadGroup singleflight.Group
}

func NewWishlistSession(store repo.WishlistStore, log *zap.Logger) *WishlistSession {
	return &WishlistSession{
		store: store,
		log:   log,
		locks: map[string]*sync.Mutex{},
	}
}

func (s *WishlistSession) keyLock(key string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

func (s *WishlistSession) Snapshot() []model.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *WishlistSession) Stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stale
}

func (s *WishlistSession) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *WishlistSession) publish(mutate func(items []model.LineItem) []model.LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := make([]model.LineItem, len(s.items))
	copy(work, s.items)
	s.items = mutate(work)
}

func (s *WishlistSession) Load(ctx context.Context) error {
	_, err, _ := s.loadGroup.Do("load", func() (any, error) {
		items, err := s.store.FetchWishlist(ctx)
		if err != nil {
			s.mu.Lock()
			s.stale = true
			s.mu.Unlock()
			return nil, err
		}

		s.mu.Lock()
		s.items = items
		s.stale = false
		s.loaded = true
		s.mu.Unlock()
		return nil, nil
	})
	return err
}

func (s *WishlistSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.stale = false
	s.loaded = false
}

// AddItem は冪等。既にある商品ならリモートを呼ばずに成功扱い。
func (s *WishlistSession) AddItem(ctx context.Context, productID string) error {
	if productID == "" {
		return fmt.Errorf("%w: product_id is required", repo.ErrValidationRejected)
	}

	l := s.keyLock("product:" + productID)
	l.Lock()
	defer l.Unlock()

	if _, ok := s.findByProduct(productID); ok {
		return nil
	}

	created, err := s.store.AddItem(ctx, productID)
	if err != nil {
		s.log.Warn("wishlist add failed", zap.String("product_id", productID), zap.Error(err))
		return err
	}

	s.publish(func(items []model.LineItem) []model.LineItem {
		for i := range items {
			if items[i].ID == created.ID || items[i].ProductID == created.ProductID {
				items[i] = created
				return items
			}
		}
		return append(items, created)
	})
	return nil
}

// RemoveItem はカートと同じ暫定削除＋正確な差し戻し。
func (s *WishlistSession) RemoveItem(ctx context.Context, itemID int64) error {
	l := s.keyLock(fmt.Sprintf("item:%d", itemID))
	l.Lock()
	defer l.Unlock()

	prev, idx, ok := s.findByID(itemID)
	if !ok {
		return fmt.Errorf("%w: wishlist item %d", repo.ErrNotFound, itemID)
	}

	s.publish(func(items []model.LineItem) []model.LineItem {
		out := items[:0]
		for _, it := range items {
			if it.ID != itemID {
				out = append(out, it)
			}
		}
		return out
	})

	err := s.store.RemoveItem(ctx, itemID)
	if err == nil {
		return nil
	}

	if errors.Is(err, repo.ErrNotFound) {
		return err
	}

	s.log.Warn("wishlist remove rolled back", zap.Int64("item_id", itemID), zap.Error(err))
	restored := prev
	restored.SyncState = model.SyncStateFailed
	restored.FailReason = err.Error()
	s.publish(func(items []model.LineItem) []model.LineItem {
		pos := idx
		if pos > len(items) {
			pos = len(items)
		}
		items = append(items, model.LineItem{})
		copy(items[pos+1:], items[pos:])
		items[pos] = restored
		return items
	})
	return err
}

func (s *WishlistSession) findByID(itemID int64) (model.LineItem, int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, it := range s.items {
		if it.ID == itemID {
			return it, i, true
		}
	}
	return model.LineItem{}, -1, false
}

func (s *WishlistSession) findByProduct(productID string) (model.LineItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, it := range s.items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return model.LineItem{}, false
}
