package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type SyncState string

const (
	SyncStateConfirmed SyncState = "CONFIRMED"
	SyncStatePending   SyncState = "PENDING"
	SyncStateFailed    SyncState = "FAILED"
)

// カート／ウィッシュリストの明細。
// IDはサーバーが採番する。UnitPriceは最終同期時点の価格スナップショット。
type LineItem struct {
	ID          int64           `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	ImageURL    string          `json:"image_url,omitempty"`
	SyncState   SyncState       `json:"sync_state"`
	AddedAt     time.Time       `json:"added_at,omitempty"`

	// 直近の失敗理由（SyncState=FAILEDのときのみ）
	FailReason string `json:"fail_reason,omitempty"`
}
