package icustomerrepo

import (
	"context"

	"github.com/openmagecz/roivenue-export/internal/service/models/customer"
)

// ICustomerRepository is an interface for customer and customer-group lookups.
type ICustomerRepository interface {
	GetCustomer(ctx context.Context, id int64) (*customer.Customer, error)
	GetGroup(ctx context.Context, id int64) (*customer.Group, error)
}
