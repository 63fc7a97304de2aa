package model

import "github.com/shopspring/decimal"

// カタログ商品のスナップショット（レコメンド表示用の読み取り専用ビュー）。
// カタログ本体は外部サービスの所有。
type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	ImageURL     string          `json:"image_url,omitempty"`
	Rating       float64         `json:"rating,omitempty"`
	CategoryName string          `json:"category_name,omitempty"`
}
