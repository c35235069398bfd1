package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/openmagecz/roivenue-export/internal/dal/postgres"
	"github.com/openmagecz/roivenue-export/internal/service/models/order"
	"github.com/openmagecz/roivenue-export/internal/service/models/window"
)

// OrderDal represents the order data access layer model. The shipping
// address is joined into the same row so the order comes back populated in
// one pass.
type OrderDal struct {
	Id                  int64
	IncrementId         string
	StoreId             int64
	CreatedAt           time.Time
	CurrencyCode        string
	GrandTotal          float64
	Subtotal            float64
	DiscountAmount      float64
	ShippingInclTax     float64
	Status              string
	StatusLabel         string
	CustomerId          *int64
	CustomerIsGuest     bool
	CustomerGroupId     *int64
	CustomerEmail       string
	BillingTelephone    string
	PaymentMethodTitle  string
	ShippingDescription string
	CountryCode         *string
	City                *string
	Street              *string
	PostalCode          *string
}

// ToModel converts OrderDal to the service layer Order model.
func (o *OrderDal) ToModel() *order.Order {
	return &order.Order{
		IncrementID:         o.IncrementId,
		StoreID:             o.StoreId,
		CreatedAt:           o.CreatedAt,
		CurrencyCode:        o.CurrencyCode,
		GrandTotal:          o.GrandTotal,
		Subtotal:            o.Subtotal,
		DiscountAmount:      o.DiscountAmount,
		ShippingInclTax:     o.ShippingInclTax,
		Status:              o.Status,
		StatusLabel:         o.StatusLabel,
		CustomerID:          o.CustomerId,
		CustomerIsGuest:     o.CustomerIsGuest,
		CustomerGroupID:     o.CustomerGroupId,
		CustomerEmail:       o.CustomerEmail,
		BillingTelephone:    o.BillingTelephone,
		PaymentMethodTitle:  o.PaymentMethodTitle,
		ShippingDescription: o.ShippingDescription,
		ShippingAddress: order.Address{
			CountryCode: deref(o.CountryCode),
			City:        deref(o.City),
			Street:      deref(o.Street),
			PostalCode:  deref(o.PostalCode),
		},
		Items:         []order.Item{},
		StatusHistory: []order.StatusEvent{},
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type PostgresOrderRepository struct {
	client *postgres.Client
}

func NewPostgresOrderRepository(client *postgres.Client) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		client: client,
	}
}

// ListByWindow retrieves all orders of one store created inside the window,
// ascending by creation time, with address, line items and status history
// populated.
func (r *PostgresOrderRepository) ListByWindow(
	ctx context.Context,
	storeID int64,
	win window.Window,
) ([]order.Order, error) {
	query, args, err := sq.Select(
		"o.id",
		"o.increment_id",
		"o.store_id",
		"o.created_at",
		"o.order_currency_code",
		"o.grand_total",
		"o.subtotal",
		"o.discount_amount",
		"o.shipping_incl_tax",
		"o.status",
		"o.status_label",
		"o.customer_id",
		"o.customer_is_guest",
		"o.customer_group_id",
		"o.customer_email",
		"o.billing_telephone",
		"o.payment_method_title",
		"o.shipping_description",
		"a.country_code",
		"a.city",
		"a.street",
		"a.postal_code",
	).
		From("orders o").
		LeftJoin("order_addresses a ON a.order_id = o.id AND a.address_type = 'shipping'").
		Where(sq.Eq{"o.store_id": storeID}).
		Where(sq.GtOrEq{"o.created_at": win.From}).
		Where(sq.Lt{"o.created_at": win.To}).
		OrderBy("o.created_at ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build orders query: %w", err)
	}

	rows, err := r.client.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	var ids []int64
	index := make(map[int64]int)
	for rows.Next() {
		var dal OrderDal
		err := rows.Scan(
			&dal.Id,
			&dal.IncrementId,
			&dal.StoreId,
			&dal.CreatedAt,
			&dal.CurrencyCode,
			&dal.GrandTotal,
			&dal.Subtotal,
			&dal.DiscountAmount,
			&dal.ShippingInclTax,
			&dal.Status,
			&dal.StatusLabel,
			&dal.CustomerId,
			&dal.CustomerIsGuest,
			&dal.CustomerGroupId,
			&dal.CustomerEmail,
			&dal.BillingTelephone,
			&dal.PaymentMethodTitle,
			&dal.ShippingDescription,
			&dal.CountryCode,
			&dal.City,
			&dal.Street,
			&dal.PostalCode,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		index[dal.Id] = len(result)
		ids = append(ids, dal.Id)
		result = append(result, *dal.ToModel())
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	if len(result) == 0 {
		return []order.Order{}, nil
	}

	if err := r.loadItems(ctx, ids, index, result); err != nil {
		return nil, err
	}
	if err := r.loadStatusHistory(ctx, ids, index, result); err != nil {
		return nil, err
	}

	return result, nil
}

// loadItems attaches line items to the already fetched orders.
func (r *PostgresOrderRepository) loadItems(
	ctx context.Context,
	ids []int64,
	index map[int64]int,
	result []order.Order,
) error {
	query, args, err := sq.Select(
		"order_id",
		"sku",
		"name",
		"qty_ordered",
		"row_total",
		"tax_amount",
	).
		From("order_items").
		Where(sq.Eq{"order_id": ids}).
		OrderBy("order_id ASC", "id ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build order items query: %w", err)
	}

	rows, err := r.client.Pool().Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int64
		var item order.Item
		err := rows.Scan(
			&orderID,
			&item.SKU,
			&item.Name,
			&item.Qty,
			&item.RowTotal,
			&item.TaxAmount,
		)
		if err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if i, ok := index[orderID]; ok {
			result[i].Items = append(result[i].Items, item)
		}
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("rows iteration error: %w", err)
	}

	return nil
}

// loadStatusHistory attaches status history entries, ascending by creation
// time per order.
func (r *PostgresOrderRepository) loadStatusHistory(
	ctx context.Context,
	ids []int64,
	index map[int64]int,
	result []order.Order,
) error {
	query, args, err := sq.Select(
		"order_id",
		"status",
		"created_at",
	).
		From("order_status_history").
		Where(sq.Eq{"order_id": ids}).
		OrderBy("order_id ASC", "created_at ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build status history query: %w", err)
	}

	rows, err := r.client.Pool().Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int64
		var event order.StatusEvent
		if err := rows.Scan(&orderID, &event.Status, &event.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan status history entry: %w", err)
		}
		if i, ok := index[orderID]; ok {
			result[i].StatusHistory = append(result[i].StatusHistory, event)
		}
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("rows iteration error: %w", err)
	}

	return nil
}
