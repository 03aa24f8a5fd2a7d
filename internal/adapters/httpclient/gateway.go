// internal/adapters/httpclient/gateway.go
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/twinkleshop/shopapp-orders/internal/domain"
	"github.com/twinkleshop/shopapp-orders/internal/ports"
	"github.com/twinkleshop/shopapp-orders/pkg/auth"
)

// Gateway implements ports.OrderGatewayPort over the storefront REST API.
// The bearer credential is attached by a RoundTripper, and responses are
// mapped onto the domain failure kinds. No retries here: the caller decides.
type Gateway struct {
	baseURL string
	client  *http.Client
	store   *auth.TokenStore
	log     zerolog.Logger
}

func NewGateway(baseURL string, store *auth.TokenStore, log zerolog.Logger) *Gateway {
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Transport: &bearerTransport{store: store, next: http.DefaultTransport},
			Timeout:   15 * time.Second,
		},
		store: store,
		log:   log,
	}
}

// bearerTransport attaches the stored credential to every outgoing request.
type bearerTransport struct {
	store *auth.TokenStore
	next  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if cred, ok := t.store.Credential(); ok {
		clone := req.Clone(req.Context())
		clone.Header.Set("Authorization", "Bearer "+cred.AccessToken)
		return t.next.RoundTrip(clone)
	}
	return t.next.RoundTrip(req)
}

func (g *Gateway) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	var dtos []orderDTO
	err := g.do(ctx, http.MethodGet, "/api/v1/orders/status/"+status.String(), nil, &dtos)
	if err != nil {
		return nil, err
	}
	return ordersFromDTOs(dtos)
}

func (g *Gateway) ListByPhone(ctx context.Context, phoneNumber string) ([]domain.Order, error) {
	var dtos []orderDTO
	err := g.do(ctx, http.MethodGet, "/api/v1/orders/history/"+phoneNumber, nil, &dtos)
	if err != nil {
		return nil, err
	}
	return ordersFromDTOs(dtos)
}

func (g *Gateway) ApplyTransition(ctx context.Context, orderID int64, target domain.OrderStatus) (*domain.Order, error) {
	body := map[string]string{"status": target.String()}
	var dto orderDTO
	err := g.do(ctx, http.MethodPatch, fmt.Sprintf("/api/v1/orders/%d/status", orderID), body, &dto)
	if err != nil {
		return nil, err
	}
	order, err := dto.toDomain()
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Login exchanges credentials for a bearer token and stores it.
func (g *Gateway) Login(ctx context.Context, phoneNumber, password string) (auth.Credential, error) {
	body := map[string]string{"phone_number": phoneNumber, "password": password}
	var resp struct {
		TokenType   string `json:"token_type"`
		AccessToken string `json:"access_token"`
	}
	if err := g.do(ctx, http.MethodPost, "/api/v1/users/login", body, &resp); err != nil {
		return auth.Credential{}, err
	}
	cred := auth.Credential{AccessToken: resp.AccessToken, TokenType: resp.TokenType}
	if err := g.store.SetCredential(cred); err != nil {
		return auth.Credential{}, err
	}
	return cred, nil
}

func (g *Gateway) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// Server-signaled stale credential: drop it so the guards send the
		// operator back through login.
		if err := g.store.Clear(); err != nil {
			g.log.Warn().Err(err).Msg("failed to clear credential after 401")
		}
		return fmt.Errorf("%w: credential rejected", domain.ErrAuth)
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: insufficient role", domain.ErrAuth)
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: order changed server-side", domain.ErrConflict)
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: unexpected status %d", domain.ErrNetwork, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	return nil
}

type orderDTO struct {
	ID               int64         `json:"id"`
	Status           string        `json:"status"`
	OrderDate        time.Time     `json:"order_date"`
	ShippingDate     *time.Time    `json:"shipping_date"`
	PhoneNumber      string        `json:"phone_number"`
	RecipientName    string        `json:"recipient_name"`
	RecipientAddress string        `json:"recipient_address"`
	TotalMoney       float64       `json:"total_money"`
	Items            []lineItemDTO `json:"order_details"`
}

type lineItemDTO struct {
	ProductID int64   `json:"product_id"`
	Quantity  int64   `json:"quantity"`
	Price     float64 `json:"price"`
	Thumbnail string  `json:"thumbnail"`
}

func (d orderDTO) toDomain() (domain.Order, error) {
	status, err := domain.ParseStatus(d.Status)
	if err != nil {
		return domain.Order{}, err
	}
	order := domain.Order{
		ID:               d.ID,
		Status:           status,
		OrderDate:        d.OrderDate,
		ShippingDate:     d.ShippingDate,
		PhoneNumber:      d.PhoneNumber,
		RecipientName:    d.RecipientName,
		RecipientAddress: d.RecipientAddress,
		TotalMoney:       d.TotalMoney,
	}
	for _, item := range d.Items {
		order.Items = append(order.Items, domain.LineItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
			Thumbnail: item.Thumbnail,
		})
	}
	return order, nil
}

func ordersFromDTOs(dtos []orderDTO) ([]domain.Order, error) {
	orders := make([]domain.Order, 0, len(dtos))
	for _, d := range dtos {
		order, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

var _ ports.OrderGatewayPort = (*Gateway)(nil)
