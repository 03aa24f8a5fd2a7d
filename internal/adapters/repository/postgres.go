// internal/adapters/repository/postgres.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/twinkleshop/shopapp-orders/internal/domain"
	"github.com/twinkleshop/shopapp-orders/internal/ports"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) ports.OrderRepositoryPort {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateUser(ctx context.Context, phoneNumber, hashedPassword, role string) (*domain.User, error) {
	user := &domain.User{PhoneNumber: phoneNumber, Password: hashedPassword, Role: role}
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO users (phone_number, password, role) VALUES ($1, $2, $3) RETURNING id",
		phoneNumber, hashedPassword, role,
	).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, errors.New("phone number already registered")
		}
		return nil, err
	}
	return user, nil
}

func (r *PostgresRepository) FindUserByPhone(ctx context.Context, phoneNumber string) (*domain.User, error) {
	user := &domain.User{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, phone_number, password, role FROM users WHERE phone_number = $1",
		phoneNumber,
	).Scan(&user.ID, &user.PhoneNumber, &user.Password, &user.Role)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *PostgresRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (status, order_date, shipping_date, phone_number, recipient_name, recipient_address, total_money)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id
	`, order.Status.String(), order.OrderDate, order.ShippingDate, order.PhoneNumber,
		order.RecipientName, order.RecipientAddress, order.TotalMoney,
	).Scan(&order.ID)
	if err != nil {
		return err
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price, thumbnail)
			VALUES ($1, $2, $3, $4, $5)
		`, order.ID, item.ProductID, item.Quantity, item.UnitPrice, item.Thumbnail)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *PostgresRepository) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	o := &domain.Order{}
	var status string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, status, order_date, shipping_date, phone_number, recipient_name, recipient_address, total_money
		FROM orders WHERE id = $1
	`, orderID).Scan(&o.ID, &status, &o.OrderDate, &o.ShippingDate, &o.PhoneNumber,
		&o.RecipientName, &o.RecipientAddress, &o.TotalMoney)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: order %d", domain.ErrNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)

	items, err := r.loadItems(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

func (r *PostgresRepository) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	return r.list(ctx, "status = $1", status.String())
}

func (r *PostgresRepository) ListByPhone(ctx context.Context, phoneNumber string) ([]domain.Order, error) {
	return r.list(ctx, "phone_number = $1", phoneNumber)
}

func (r *PostgresRepository) list(ctx context.Context, where string, arg interface{}) ([]domain.Order, error) {
	query := `
		SELECT id, status, order_date, shipping_date, phone_number, recipient_name, recipient_address, total_money
		FROM orders WHERE ` + where + ` ORDER BY order_date DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	var ids []int64
	for rows.Next() {
		o := domain.Order{}
		var status string
		err := rows.Scan(&o.ID, &status, &o.OrderDate, &o.ShippingDate, &o.PhoneNumber,
			&o.RecipientName, &o.RecipientAddress, &o.TotalMoney)
		if err != nil {
			return nil, err
		}
		o.Status = domain.OrderStatus(status)
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return orders, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

func (r *PostgresRepository) loadItems(ctx context.Context, orderIDs []int64) (map[int64][]domain.LineItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, product_id, quantity, price, thumbnail
		FROM order_items WHERE order_id = ANY($1) ORDER BY id
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[int64][]domain.LineItem)
	for rows.Next() {
		var orderID int64
		item := domain.LineItem{}
		if err := rows.Scan(&orderID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.Thumbnail); err != nil {
			return nil, err
		}
		items[orderID] = append(items[orderID], item)
	}
	return items, rows.Err()
}

// UpdateStatus advances the order in a single conditional statement. Zero
// rows affected means another actor got there first or the order is already
// terminal: the caller sees ErrConflict, or ErrNotFound if the order does
// not exist at all. Entering shipping stamps the shipping date if unset.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, orderID int64, from, to domain.OrderStatus) (*domain.Order, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $3,
			shipping_date = CASE WHEN $3 = 'shipping' THEN COALESCE(shipping_date, NOW()) ELSE shipping_date END
		WHERE id = $1 AND status = $2
	`, orderID, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)", orderID).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: order %d", domain.ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("%w: order %d is no longer %s", domain.ErrConflict, orderID, from)
	}
	return r.GetOrder(ctx, orderID)
}
