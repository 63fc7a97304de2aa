package usecase_test

import (
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSessionFeed_SubtotalAndCount(t *testing.T) {
	items := []model.LineItem{
		lineItem(1, "P1", "89.99", 1),
		lineItem(2, "P2", "249.99", 2),
	}

	//subtotal = Σ(quantity × unitPrice)
	assert.True(t, decimal.RequireFromString("589.97").Equal(usecase.Subtotal(items)))
	assert.Equal(t, int64(3), usecase.Count(items))
}

// 間に変更が無ければ2回読んでも同じ値（冪等な読み取り）
func TestSessionFeed_ReadsAreIdempotent(t *testing.T) {
	items := []model.LineItem{lineItem(1, "P1", "10.00", 2)}

	first := usecase.BuildCartSummary(items, false)
	second := usecase.BuildCartSummary(items, false)

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.Tax.Equal(second.Tax))
	assert.True(t, first.Total.Equal(second.Total))
	assert.Equal(t, first.Count, second.Count)
}

func TestSessionFeed_SummaryBreakdown(t *testing.T) {
	items := []model.LineItem{lineItem(1, "P1", "10.00", 2)}

	out := usecase.BuildCartSummary(items, false)

	//送料一律9.99、税8%
	assert.True(t, decimal.RequireFromString("20.00").Equal(out.Subtotal))
	assert.True(t, decimal.RequireFromString("9.99").Equal(out.Shipping))
	assert.True(t, decimal.RequireFromString("1.60").Equal(out.Tax))
	assert.True(t, decimal.RequireFromString("31.59").Equal(out.Total))
	assert.Equal(t, int64(2), out.Count)
}

func TestSessionFeed_EmptyCartIsAllZero(t *testing.T) {
	out := usecase.BuildCartSummary(nil, false)

	assert.True(t, out.Subtotal.IsZero())
	assert.True(t, out.Shipping.IsZero())
	assert.True(t, out.Tax.IsZero())
	assert.True(t, out.Total.IsZero())
	assert.Equal(t, int64(0), out.Count)
	assert.Empty(t, out.Items)
}

func TestSessionFeed_StaleFlagPassesThrough(t *testing.T) {
	out := usecase.BuildCartSummary(nil, true)
	assert.True(t, out.Stale)
}
