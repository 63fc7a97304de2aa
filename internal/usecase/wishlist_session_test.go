package usecase_test

import (
	"context"
	"fmt"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func loadedWishlist(t *testing.T, store *WishlistStoreMock, items []model.LineItem) *usecase.WishlistSession {
	t.Helper()

	s := usecase.NewWishlistSession(store, nopLogger())
	store.On("FetchWishlist", mock.Anything).Return(items, nil).Once()
	require.NoError(t, s.Load(context.Background()))
	return s
}

func TestWishlistSession_AddItem(t *testing.T) {
	store := new(WishlistStoreMock)
	s := loadedWishlist(t, store, nil)

	created := lineItem(5, "P1", "89.99", 1)
	store.On("AddItem", mock.Anything, "P1").Return(created, nil).Once()

	require.NoError(t, s.AddItem(context.Background(), "P1"))

	snap := s.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, int64(5), snap[0].ID)
	//数量は持たない（常に1）
	assert.Equal(t, int64(1), snap[0].Quantity)
}

// 既にある商品の再追加は何もしない（冪等）
func TestWishlistSession_AddItem_ExistingProductIsNoop(t *testing.T) {
	store := new(WishlistStoreMock)
	s := loadedWishlist(t, store, []model.LineItem{lineItem(5, "P1", "89.99", 1)})

	require.NoError(t, s.AddItem(context.Background(), "P1"))

	store.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything)
	require.Len(t, s.Snapshot(), 1)
}

func TestWishlistSession_RemoveItem_FailureRestoresOriginalPosition(t *testing.T) {
	store := new(WishlistStoreMock)
	before := []model.LineItem{
		lineItem(1, "P1", "10.00", 1),
		lineItem(2, "P2", "20.00", 1),
		lineItem(3, "P3", "30.00", 1),
	}
	s := loadedWishlist(t, store, before)

	store.On("RemoveItem", mock.Anything, int64(2)).
		Return(fmt.Errorf("%w: timeout", repo.ErrNetwork)).Once()

	err := s.RemoveItem(context.Background(), 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, repo.ErrNetwork)

	assertSameItems(t, before, s.Snapshot())
}

func TestWishlistSession_Load_FailureMarksStale(t *testing.T) {
	store := new(WishlistStoreMock)
	before := []model.LineItem{lineItem(1, "P1", "10.00", 1)}
	s := loadedWishlist(t, store, before)

	store.On("FetchWishlist", mock.Anything).
		Return(nil, fmt.Errorf("%w: connection refused", repo.ErrNetwork)).Once()

	require.Error(t, s.Load(context.Background()))
	assertSameItems(t, before, s.Snapshot())
	assert.True(t, s.Stale())
}
