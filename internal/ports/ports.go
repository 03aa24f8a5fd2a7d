// internal/ports/ports.go
package ports

import (
	"context"

	"github.com/twinkleshop/shopapp-orders/internal/domain"
)

// OrderGatewayPort is the client-side boundary for order operations.
// Transport failures are wrapped into the domain failure kinds; the gateway
// never retries on its own.
type OrderGatewayPort interface {
	ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	ListByPhone(ctx context.Context, phoneNumber string) ([]domain.Order, error)
	ApplyTransition(ctx context.Context, orderID int64, target domain.OrderStatus) (*domain.Order, error)
}

// OrderRepositoryPort is the server-side persistence boundary.
type OrderRepositoryPort interface {
	CreateUser(ctx context.Context, phoneNumber, hashedPassword, role string) (*domain.User, error)
	FindUserByPhone(ctx context.Context, phoneNumber string) (*domain.User, error)
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, orderID int64) (*domain.Order, error)
	ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	ListByPhone(ctx context.Context, phoneNumber string) ([]domain.Order, error)
	// UpdateStatus applies from -> to conditionally: the row must still be in
	// the from status, otherwise domain.ErrConflict is returned.
	UpdateStatus(ctx context.Context, orderID int64, from, to domain.OrderStatus) (*domain.Order, error)
}

type CachePort interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value interface{}) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Ping(ctx context.Context) error
}
