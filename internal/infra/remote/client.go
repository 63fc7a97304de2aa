package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 権威サーバーのHTTPクライアント。repositoryの各Storeを実装する。
// ステータスコードはここでエラー種別に変換し、上の層へは漏らさない。
type Client struct {
	baseURL string
	httpc   *http.Client
	timeout time.Duration
	log     *zap.Logger
}

func NewClient(cfg config.Config, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.StoreBaseURL, "/"),
		httpc:   &http.Client{},
		timeout: cfg.StoreTimeout,
		log:     log,
	}
}

// ---- wire DTO ----

type lineItemDTO struct {
	ID        int64           `json:"id"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	ImageURL  string          `json:"image_url"`
}

type cartResponseDTO struct {
	Items []lineItemDTO `json:"items"`
}

type orderItemDTO struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
}

type orderDTO struct {
	ID          string          `json:"id"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []orderItemDTO  `json:"items"`
	CreatedAt   time.Time       `json:"created_at"`
}

type ordersResponseDTO struct {
	Orders []orderDTO `json:"orders"`
}

type recommendationsDTO struct {
	Recommendations []model.Product `json:"recommendations"`
}

type errorBodyDTO struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (d lineItemDTO) toModel() model.LineItem {
	qty := d.Quantity
	if qty < 1 {
		// ウィッシュリストは数量を持たない
		qty = 1
	}

	return model.LineItem{
		ID:          d.ID,
		ProductID:   d.ProductID,
		ProductName: d.Name,
		UnitPrice:   d.Price,
		Quantity:    qty,
		ImageURL:    d.ImageURL,
		SyncState:   model.SyncStateConfirmed,
	}
}

func (d orderDTO) toModel() model.Order {
	items := make([]model.OrderItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, model.OrderItem{
			ProductID:           it.ProductID,
			ProductNameSnapshot: it.Name,
			UnitPriceSnapshot:   it.Price,
			Quantity:            it.Quantity,
		})
	}

	return model.Order{
		ID:          d.ID,
		Status:      model.OrderStatus(d.Status),
		TotalAmount: d.TotalAmount,
		Items:       items,
		CreatedAt:   d.CreatedAt,
	}
}

// ---- CartStore ----

func (c *Client) FetchCart(ctx context.Context) ([]model.LineItem, error) {
	var out cartResponseDTO
	if err := c.do(ctx, http.MethodGet, "/api/cart", nil, &out); err != nil {
		return nil, err
	}
	return toLineItems(out.Items), nil
}

func (c *Client) AddItem(ctx context.Context, productID string, quantity int64) (model.LineItem, error) {
	body := map[string]any{"product_id": productID, "quantity": quantity}

	var out lineItemDTO
	if err := c.do(ctx, http.MethodPost, "/api/cart", body, &out); err != nil {
		return model.LineItem{}, err
	}
	return out.toModel(), nil
}

func (c *Client) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int64) (model.LineItem, error) {
	body := map[string]any{"quantity": quantity}

	var out lineItemDTO
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/cart/%d", itemID), body, &out); err != nil {
		return model.LineItem{}, err
	}
	return out.toModel(), nil
}

func (c *Client) RemoveItem(ctx context.Context, itemID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/cart/%d", itemID), nil, nil)
}

// ---- WishlistStore ----

type wishlistClient struct{ c *Client }

// Wishlist はWishlistStoreとしてのビューを返す（AddItemのシグネチャが衝突するため分ける）。
func (c *Client) Wishlist() repo.WishlistStore {
	return &wishlistClient{c: c}
}

func (w *wishlistClient) FetchWishlist(ctx context.Context) ([]model.LineItem, error) {
	var out cartResponseDTO
	if err := w.c.do(ctx, http.MethodGet, "/api/wishlist", nil, &out); err != nil {
		return nil, err
	}
	return toLineItems(out.Items), nil
}

func (w *wishlistClient) AddItem(ctx context.Context, productID string) (model.LineItem, error) {
	body := map[string]any{"product_id": productID}

	var out lineItemDTO
	if err := w.c.do(ctx, http.MethodPost, "/api/wishlist", body, &out); err != nil {
		return model.LineItem{}, err
	}
	return out.toModel(), nil
}

func (w *wishlistClient) RemoveItem(ctx context.Context, itemID int64) error {
	return w.c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/wishlist/%d", itemID), nil, nil)
}

// ---- OrderStore ----

func (c *Client) PlaceOrder(ctx context.Context, items []model.OrderItem) (model.Order, error) {
	draft := make([]map[string]any, 0, len(items))
	for _, it := range items {
		draft = append(draft, map[string]any{
			"product_id": it.ProductID,
			"quantity":   it.Quantity,
		})
	}
	body := map[string]any{"items": draft}

	var out orderDTO
	if err := c.do(ctx, http.MethodPost, "/api/orders", body, &out); err != nil {
		return model.Order{}, err
	}
	return out.toModel(), nil
}

func (c *Client) ListOrders(ctx context.Context) ([]model.Order, error) {
	var out ordersResponseDTO
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, &out); err != nil {
		return nil, err
	}

	orders := make([]model.Order, 0, len(out.Orders))
	for _, o := range out.Orders {
		orders = append(orders, o.toModel())
	}
	return orders, nil
}

func (c *Client) FindOrder(ctx context.Context, orderID string) (model.Order, error) {
	var out orderDTO
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+orderID, nil, &out); err != nil {
		return model.Order{}, err
	}
	return out.toModel(), nil
}

// ---- RecommendationStore ----

func (c *Client) FetchRecommendations(ctx context.Context) ([]model.Product, error) {
	var out recommendationsDTO
	if err := c.do(ctx, http.MethodGet, "/api/recommendations", nil, &out); err != nil {
		return nil, err
	}
	return out.Recommendations, nil
}

// ---- 共通処理 ----

func toLineItems(dtos []lineItemDTO) []model.LineItem {
	items := make([]model.LineItem, 0, len(dtos))
	for _, d := range dtos {
		items = append(items, d.toModel())
	}
	return items
}

func (c *Client) do(ctx context.Context, method string, path string, body any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: marshal request: %v", repo.ErrNetwork, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", repo.ErrNetwork, err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token, ok := repo.TokenFromContext(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		// タイムアウト含む。適用されなかったものとして扱い、呼び出し側が巻き戻す。
		c.log.Warn("store call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %s %s: %v", repo.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", repo.ErrNetwork, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(raw) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%w: decode response: %v", repo.ErrNetwork, err)
		}
		return nil
	}

	return c.mapError(method, path, resp.StatusCode, raw)
}

// ステータス→エラー種別の変換。生のステータスは上の層に見せない。
func (c *Client) mapError(method string, path string, status int, raw []byte) error {
	var eb errorBodyDTO
	_ = json.Unmarshal(raw, &eb)

	msg := eb.Message
	if msg == "" {
		msg = eb.Error
	}
	if msg == "" {
		msg = "store rejected the request"
	}

	var kind error
	switch {
	case status == http.StatusUnauthorized:
		kind = repo.ErrUnauthenticated
	case status == http.StatusNotFound:
		kind = repo.ErrNotFound
	case status == http.StatusBadRequest,
		status == http.StatusConflict,
		status == http.StatusUnprocessableEntity:
		kind = repo.ErrValidationRejected
	default:
		kind = repo.ErrNetwork
	}

	c.log.Warn("store rejected call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.String("message", msg),
	)

	return fmt.Errorf("%w: %s", kind, msg)
}
