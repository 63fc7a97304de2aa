package usecase

import (
	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

// Session Feed: キャッシュから毎回計算する純粋な射影。
// 計算結果は一切キャッシュしない（部分更新とズレる余地を残さないため）。

// 送料は一律、税は小計の8%（Cartページの内訳と同じ）
var (
	flatShipping = decimal.RequireFromString("9.99")
	taxRate      = decimal.RequireFromString("0.08")
)

type LineItemOutput struct {
	ID         int64           `json:"id"`
	ProductID  string          `json:"product_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int64           `json:"quantity"`
	ImageURL   string          `json:"image_url,omitempty"`
	SyncState  string          `json:"sync_state"`
	FailReason string          `json:"fail_reason,omitempty"`
}

type CartSummaryOutput struct {
	Items    []LineItemOutput `json:"items"`
	Subtotal decimal.Decimal  `json:"subtotal"`
	Shipping decimal.Decimal  `json:"shipping"`
	Tax      decimal.Decimal  `json:"tax"`
	Total    decimal.Decimal  `json:"total"`
	Count    int64            `json:"count"`
	Stale    bool             `json:"stale"`
}

type WishlistOutput struct {
	Items []LineItemOutput `json:"items"`
	Count int64            `json:"count"`
	Stale bool             `json:"stale"`
}

// Subtotal はΣ(quantity × unitPrice)。
func Subtotal(items []model.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity)))
	}
	return sum
}

// Count はΣ(quantity)。
func Count(items []model.LineItem) int64 {
	var n int64
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

func toLineItemOutputs(items []model.LineItem) []LineItemOutput {
	out := make([]LineItemOutput, 0, len(items))
	for _, it := range items {
		out = append(out, LineItemOutput{
			ID:         it.ID,
			ProductID:  it.ProductID,
			Name:       it.ProductName,
			Price:      it.UnitPrice,
			Quantity:   it.Quantity,
			ImageURL:   it.ImageURL,
			SyncState:  string(it.SyncState),
			FailReason: it.FailReason,
		})
	}
	return out
}

// BuildCartSummary は同じ入力に対して常に同じ出力を返す（冪等な読み取り）。
// 空カートはすべてゼロ（送料も掛からない）。
func BuildCartSummary(items []model.LineItem, stale bool) CartSummaryOutput {
	subtotal := Subtotal(items)
	count := Count(items)

	shipping := decimal.Zero
	tax := decimal.Zero
	if count > 0 {
		shipping = flatShipping
		tax = subtotal.Mul(taxRate).Round(2)
	}

	return CartSummaryOutput{
		Items:    toLineItemOutputs(items),
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
		Count:    count,
		Stale:    stale,
	}
}

func BuildWishlistOutput(items []model.LineItem, stale bool) WishlistOutput {
	return WishlistOutput{
		Items: toLineItemOutputs(items),
		Count: int64(len(items)),
		Stale: stale,
	}
}

// Summary は現在のカートの派生値ビュー。
func (s *CartSession) Summary() CartSummaryOutput {
	return BuildCartSummary(s.Snapshot(), s.Stale())
}

// Summary は現在のウィッシュリストのビュー。
func (s *WishlistSession) Summary() WishlistOutput {
	return BuildWishlistOutput(s.Snapshot(), s.Stale())
}
