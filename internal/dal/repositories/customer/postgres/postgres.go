package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/openmagecz/roivenue-export/internal/dal/postgres"
	"github.com/openmagecz/roivenue-export/internal/service/models/customer"
)

// PostgresCustomerRepository resolves customers and customer groups for
// non-guest orders.
type PostgresCustomerRepository struct {
	client *postgres.Client
}

func NewPostgresCustomerRepository(client *postgres.Client) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{
		client: client,
	}
}

// GetCustomer loads one customer by id.
func (r *PostgresCustomerRepository) GetCustomer(ctx context.Context, id int64) (*customer.Customer, error) {
	query, args, err := sq.Select("id", "created_at").
		From("customers").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build customer query: %w", err)
	}

	var c customer.Customer
	row := r.client.Pool().QueryRow(ctx, query, args...)
	if err := row.Scan(&c.ID, &c.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to load customer %d: %w", id, err)
	}

	return &c, nil
}

// GetGroup loads one customer group by id.
func (r *PostgresCustomerRepository) GetGroup(ctx context.Context, id int64) (*customer.Group, error) {
	query, args, err := sq.Select("id", "code").
		From("customer_groups").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build customer group query: %w", err)
	}

	var g customer.Group
	row := r.client.Pool().QueryRow(ctx, query, args...)
	if err := row.Scan(&g.ID, &g.Code); err != nil {
		return nil, fmt.Errorf("failed to load customer group %d: %w", id, err)
	}

	return &g, nil
}
