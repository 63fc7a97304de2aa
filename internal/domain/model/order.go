package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// サーバーが所有する注文。クライアント側は読み取り専用の写しだけを持つ。
// statusの遷移もサーバー主導。
type Order struct {
	ID          string          `json:"id"`
	Status      OrderStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []OrderItem     `json:"items"`
	CreatedAt   time.Time       `json:"created_at"`
}

// 購入時点のスナップショット（価格は凍結）
type OrderItem struct {
	ProductID           string          `json:"product_id"`
	ProductNameSnapshot string          `json:"name"`
	UnitPriceSnapshot   decimal.Decimal `json:"price"`
	Quantity            int64           `json:"quantity"`
}
