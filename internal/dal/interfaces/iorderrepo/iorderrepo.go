package iorderrepo

import (
	"context"

	"github.com/openmagecz/roivenue-export/internal/service/models/order"
	"github.com/openmagecz/roivenue-export/internal/service/models/window"
)

// IOrderRepository is an interface for the order postgres repository.
type IOrderRepository interface {
	ListByWindow(ctx context.Context, storeID int64, win window.Window) ([]order.Order, error)
}
