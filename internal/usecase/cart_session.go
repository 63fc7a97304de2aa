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

// CartSession は1ユーザー分のカートのローカルキャッシュと、その唯一の書き手。
// すべての変更は 楽観的intent → リモート呼び出し → reconcile の形を取り、
// 公開されるのは常にreconcile済みの状態だけ。
//
// 直列化の規律:
//   - 同じ明細(itemID)への操作はキー単位のロックで投入順に直列化する。
//     後続はロック獲得後（＝前のreconcile完了後）にスナップショットを取る。
//   - 異なる明細への操作は並行に走ってよい。
type CartSession struct {
	store repo.CartStore
	log   *zap.Logger

	mu     sync.RWMutex
	items  []model.LineItem
	stale  bool
	loaded bool

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	// 同時Loadを1回のfetchにまとめる
	loadGroup singleflight.Group
}

func NewCartSession(store repo.CartStore, log *zap.Logger) *CartSession {
	return &CartSession{
		store: store,
		log:   log,
		locks: map[string]*sync.Mutex{},
	}
}

// ---- キー単位の直列化 ----

func (s *CartSession) keyLock(key string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

func itemKey(itemID int64) string {
	return fmt.Sprintf("item:%d", itemID)
}

func productKey(productID string) string {
	return "product:" + productID
}

// ---- 読み取り ----

// Snapshot はreconcile済み状態のコピーを返す。途中状態は決して見えない。
func (s *CartSession) Snapshot() []model.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *CartSession) Stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stale
}

func (s *CartSession) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// ---- 書き込み（公開は必ずここを通す）----

func (s *CartSession) publish(mutate func(items []model.LineItem) []model.LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := make([]model.LineItem, len(s.items))
	copy(work, s.items)
	s.items = mutate(work)
}

// ---- 操作 ----

// Load はリモートから全量を取り直してキャッシュを丸ごと差し替える。
// 失敗時は旧キャッシュを残したままstaleを立てる。
func (s *CartSession) Load(ctx context.Context) error {
	_, err, _ := s.loadGroup.Do("load", func() (any, error) {
		items, err := s.store.FetchCart(ctx)
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

// Reset はログアウト時のteardown。ローカル状態だけを破棄する。
func (s *CartSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.stale = false
	s.loaded = false
}

// Clear はチェックアウト成功後の空カートへの遷移。
func (s *CartSession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = []model.LineItem{}
	s.stale = false
}

// AddItem は商品を追加する。同一商品が既にあれば数量加算に合流させる
// （重複エントリは作らない）。新規追加は楽観的insertをしないので、
// 失敗してもゴースト行は残らない。
func (s *CartSession) AddItem(ctx context.Context, productID string, quantity int64) error {
	if productID == "" {
		return fmt.Errorf("%w: product_id is required", repo.ErrValidationRejected)
	}
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", repo.ErrValidationRejected)
	}

	// 同一商品への同時addを直列化
	pl := s.keyLock(productKey(productID))
	pl.Lock()
	defer pl.Unlock()

	if existing, _, ok := s.findByProduct(productID); ok {
		// 既存明細の数量加算として扱う（ロック順は常にproduct→item）
		il := s.keyLock(itemKey(existing.ID))
		il.Lock()
		// 加算の起点はロック獲得後に取り直す。待っている間に先行操作の
		// reconcileで数量が変わっていても、その結果に積む。
		if fresh, _, still := s.findByID(existing.ID); still {
			defer il.Unlock()
			return s.updateLocked(ctx, existing.ID, fresh.Quantity+quantity)
		}
		// 待っている間に明細が消えていたら新規作成に切り替える
		il.Unlock()
	}

	created, err := s.store.AddItem(ctx, productID, quantity)
	if err != nil {
		// キャッシュは呼び出し前のまま
		s.log.Warn("add item failed", zap.String("product_id", productID), zap.Error(err))
		return err
	}

	// サーバーが正（採番されたidと価格）
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

// UpdateQuantity は数量を変更する。1未満はリモートを呼ばずにローカルで拒否。
func (s *CartSession) UpdateQuantity(ctx context.Context, itemID int64, quantity int64) error {
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", repo.ErrValidationRejected)
	}

	l := s.keyLock(itemKey(itemID))
	l.Lock()
	defer l.Unlock()
	return s.updateLocked(ctx, itemID, quantity)
}

// 前提: itemKey(itemID)のロックを保持していること。
// スナップショットはロック獲得後に取るので、前の操作のreconcile結果を必ず見る。
func (s *CartSession) updateLocked(ctx context.Context, itemID int64, quantity int64) error {
	prev, _, ok := s.findByID(itemID)
	if !ok {
		return fmt.Errorf("%w: cart item %d", repo.ErrNotFound, itemID)
	}

	s.markPending(itemID)

	updated, err := s.store.UpdateItemQuantity(ctx, itemID, quantity)
	if err == nil {
		s.publish(func(items []model.LineItem) []model.LineItem {
			for i := range items {
				if items[i].ID == itemID {
					items[i] = updated
				}
			}
			return items
		})
		return nil
	}

	if errors.Is(err, repo.ErrNotFound) {
		// サーバーに無いなら消えたのが正
		s.dropItem(itemID)
		return err
	}

	// 巻き戻し: 呼び出し前の数量へ復元
	s.log.Warn("update quantity rolled back",
		zap.Int64("item_id", itemID),
		zap.Int64("quantity", quantity),
		zap.Error(err),
	)
	s.restoreFailed(prev, err)
	return err
}

// RemoveItem は体感を優先して先にローカルから消す（暫定削除）。
// リモートが失敗したら元の位置・元の数量で戻す。
func (s *CartSession) RemoveItem(ctx context.Context, itemID int64) error {
	l := s.keyLock(itemKey(itemID))
	l.Lock()
	defer l.Unlock()

	prev, idx, ok := s.findByID(itemID)
	if !ok {
		return fmt.Errorf("%w: cart item %d", repo.ErrNotFound, itemID)
	}

	// 楽観的削除
	s.dropItem(itemID)

	err := s.store.RemoveItem(ctx, itemID)
	if err == nil {
		return nil
	}

	if errors.Is(err, repo.ErrNotFound) {
		// 既に無いなら削除済みのまま。エラー自体は通知する。
		return err
	}

	// 元の位置へ差し戻す
	s.log.Warn("remove item rolled back", zap.Int64("item_id", itemID), zap.Error(err))
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

// ---- 内部ヘルパ ----

func (s *CartSession) findByID(itemID int64) (model.LineItem, int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, it := range s.items {
		if it.ID == itemID {
			return it, i, true
		}
	}
	return model.LineItem{}, -1, false
}

func (s *CartSession) findByProduct(productID string) (model.LineItem, int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, it := range s.items {
		if it.ProductID == productID {
			return it, i, true
		}
	}
	return model.LineItem{}, -1, false
}

func (s *CartSession) markPending(itemID int64) {
	s.publish(func(items []model.LineItem) []model.LineItem {
		for i := range items {
			if items[i].ID == itemID {
				items[i].SyncState = model.SyncStatePending
				items[i].FailReason = ""
			}
		}
		return items
	})
}

func (s *CartSession) dropItem(itemID int64) {
	s.publish(func(items []model.LineItem) []model.LineItem {
		out := items[:0]
		for _, it := range items {
			if it.ID != itemID {
				out = append(out, it)
			}
		}
		return out
	})
}

func (s *CartSession) restoreFailed(prev model.LineItem, cause error) {
	restored := prev
	restored.SyncState = model.SyncStateFailed
	restored.FailReason = cause.Error()
	s.publish(func(items []model.LineItem) []model.LineItem {
		for i := range items {
			if items[i].ID == prev.ID {
				items[i] = restored
			}
		}
		return items
	})
}
