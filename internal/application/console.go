// internal/application/console.go
package application

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/twinkleshop/shopapp-orders/internal/domain"
	"github.com/twinkleshop/shopapp-orders/internal/ports"
	"github.com/twinkleshop/shopapp-orders/pkg/auth"
)

// FailureMessage is the single generic notification for any gateway-side
// confirmation failure. The operator re-triggers manually, which reloads
// before deciding again.
const FailureMessage = "order confirmation failed"

// OrderRow is one order prepared for operator display.
type OrderRow struct {
	Order        domain.Order
	OrderDate    string
	ShippingDate string
	Thumbnails   []string
	Expanded     bool
}

// Console orchestrates the privileged confirm/ship/deliver/cancel workflow:
// load orders by status filter, run transitions through the state machine,
// and resynchronize from the server after every confirmed transition instead
// of mutating the loaded list in place.
type Console struct {
	gateway ports.OrderGatewayPort
	machine *StateMachine
	store   *auth.TokenStore
	log     zerolog.Logger
	baseURL string

	mu       sync.Mutex
	status   domain.OrderStatus
	rows     []OrderRow
	expanded map[int64]bool
	// generation invalidates results of calls started before the latest
	// reload; a stale completion is dropped, not applied.
	generation uint64
}

func NewConsole(gateway ports.OrderGatewayPort, store *auth.TokenStore, baseURL string, log zerolog.Logger) *Console {
	return &Console{
		gateway:  gateway,
		machine:  NewStateMachine(gateway, log),
		store:    store,
		log:      log,
		baseURL:  baseURL,
		expanded: make(map[int64]bool),
	}
}

// Load fetches orders for the route's status parameter. An absent or
// unrecognized parameter falls back to pending.
func (c *Console) Load(ctx context.Context, statusParam string) ([]OrderRow, error) {
	status, err := domain.ParseStatus(statusParam)
	if err != nil {
		status = domain.StatusPending
	}

	orders, err := c.gateway.ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
	c.generation++
	c.rows = c.buildRows(orders)
	return append([]OrderRow(nil), c.rows...), nil
}

// Confirm requests a transition on a loaded order. On server confirmation it
// returns the status-specific acknowledgement and reloads the list; on any
// failure it returns FailureMessage and leaves the list untouched.
func (c *Console) Confirm(ctx context.Context, orderID int64, target domain.OrderStatus) (string, error) {
	c.mu.Lock()
	order, ok := c.findOrder(orderID)
	gen := c.generation
	c.mu.Unlock()
	if !ok {
		return FailureMessage, domain.ErrNotFound
	}

	res, err := c.machine.RequestTransition(ctx, order, target)
	if err != nil {
		return FailureMessage, err
	}

	c.mu.Lock()
	stale := gen != c.generation
	status := c.status
	c.mu.Unlock()
	if stale {
		// The operator reloaded (or navigated) while this call was in
		// flight; the result is dropped, the fresh load already owns the
		// screen.
		c.log.Debug().Int64("order_id", orderID).Msg("dropping stale transition result")
		return res.Ack, nil
	}

	if _, err := c.Load(ctx, status.String()); err != nil {
		// The transition is committed server-side; a failed refresh only
		// degrades the view.
		c.log.Warn().Err(err).Msg("reload after confirmation failed")
	}
	return res.Ack, nil
}

// History lists the signed-in identity's own orders.
func (c *Console) History(ctx context.Context) ([]OrderRow, error) {
	claims, err := c.store.Claims()
	if err != nil {
		return nil, err
	}
	orders, err := c.gateway.ListByPhone(ctx, claims.PhoneNumber)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buildRows(orders), nil
}

// ToggleExpand flips the per-order detail expansion and returns the new
// state. Selecting the already-expanded order collapses it.
func (c *Console) ToggleExpand(orderID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expanded[orderID] = !c.expanded[orderID]
	for i := range c.rows {
		if c.rows[i].Order.ID == orderID {
			c.rows[i].Expanded = c.expanded[orderID]
		}
	}
	return c.expanded[orderID]
}

// Status returns the active filter.
func (c *Console) Status() domain.OrderStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Console) findOrder(orderID int64) (domain.Order, bool) {
	for _, row := range c.rows {
		if row.Order.ID == orderID {
			return row.Order, true
		}
	}
	return domain.Order{}, false
}

func (c *Console) buildRows(orders []domain.Order) []OrderRow {
	rows := make([]OrderRow, 0, len(orders))
	for _, o := range orders {
		row := OrderRow{
			Order:     o,
			OrderDate: domain.FormatOrderTime(o.OrderDate),
			Expanded:  c.expanded[o.ID],
		}
		if o.ShippingDate != nil {
			row.ShippingDate = domain.FormatOrderTime(*o.ShippingDate)
		}
		for _, item := range o.Items {
			if item.Thumbnail != "" {
				row.Thumbnails = append(row.Thumbnails, ResolveThumbnail(c.baseURL, item.Thumbnail))
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// ResolveThumbnail composes the displayable image URL from the configured
// API base and a stored filename.
func ResolveThumbnail(baseURL, filename string) string {
	return strings.TrimRight(baseURL, "/") + "/api/v1/products/images/" + filename
}
