package feedsvc

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/openmagecz/roivenue-export/internal/config"
	"github.com/openmagecz/roivenue-export/internal/service/models/customer"
	"github.com/openmagecz/roivenue-export/internal/service/models/order"
	"github.com/openmagecz/roivenue-export/internal/service/models/window"
)

// SchemaVersion is the fixed feed schema tag expected by the consumer.
const SchemaVersion = "5.2"

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02T15:04:05"

	salesChannel       = "online"
	sourceSystemPrefix = "MAGENTO "
	segmentNotLoggedIn = "NOT LOGGED IN"
	typeMaxLen         = 50
)

// Encryptor pseudonymizes PII values. The ciphertext doubles as a stable
// pseudo id when an order carries no customer id.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
}

// CustomerProvider resolves customers and groups for non-guest orders.
type CustomerProvider interface {
	GetCustomer(ctx context.Context, id int64) (*customer.Customer, error)
	GetGroup(ctx context.Context, id int64) (*customer.Group, error)
}

// Feed is one assembled document together with the values shared between
// the file name and the root element attributes.
type Feed struct {
	FileName   string
	Body       []byte
	StartDate  string
	EndDate    string
	OrderCount int
}

// FeedService maps an ordered collection of orders into one feed document.
// It is a pure function of (orders, lookups, encryptor, config); it holds no
// state between builds.
type FeedService struct {
	cfg       config.Export
	encryptor Encryptor
	customers CustomerProvider
}

// option is a function that configures the FeedService.
type option func(*FeedService)

// MustNewFeedService creates a new FeedService.
func MustNewFeedService(opts ...option) *FeedService {
	s := &FeedService{}
	for _, opt := range opts {
		opt(s)
	}
	if s.encryptor == nil {
		panic("feedsvc: encryptor is required")
	}
	if s.customers == nil {
		panic("feedsvc: customer provider is required")
	}

	return s
}

// WithConfig sets the deployment constants for the FeedService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithConfig(cfg config.Export) option {
	return func(s *FeedService) {
		s.cfg = cfg
	}
}

// WithEncryptor sets the PII encryptor for the FeedService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithEncryptor(enc Encryptor) option {
	return func(s *FeedService) {
		s.encryptor = enc
	}
}

// WithCustomerProvider sets the customer lookup for the FeedService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCustomerProvider(provider CustomerProvider) option {
	return func(s *FeedService) {
		s.customers = provider
	}
}

// Build assembles the feed for one run. Record order equals input order;
// nothing is filtered, deduplicated or reordered here. An empty input still
// yields a valid document whose dates fall back to the window bounds.
func (s *FeedService) Build(ctx context.Context, orders []order.Order, win window.Window) (*Feed, error) {
	startDate, endDate := boundaryDates(orders, win)

	doc := document{
		Version:      SchemaVersion,
		PropertyCode: s.cfg.PropertyCode,
		StartDate:    startDate,
		EndDate:      endDate,
	}

	groupCodes := make(map[int64]string)
	for i := range orders {
		rec, err := s.buildRecord(ctx, &orders[i], groupCodes)
		if err != nil {
			return nil, fmt.Errorf("failed to build record for order %s: %w", orders[i].IncrementID, err)
		}
		doc.Orders = append(doc.Orders, rec)
	}

	body, err := doc.encode()
	if err != nil {
		return nil, err
	}

	return &Feed{
		FileName:   FileName(s.cfg.PropertyCode, startDate, endDate),
		Body:       body,
		StartDate:  startDate,
		EndDate:    endDate,
		OrderCount: len(orders),
	}, nil
}

// boundaryDates picks the observed span: first and last order creation
// dates, or the requested window bounds when no orders matched.
func boundaryDates(orders []order.Order, win window.Window) (string, string) {
	if len(orders) == 0 {
		return win.From.Format(dateLayout), win.To.Format(dateLayout)
	}
	return orders[0].CreatedAt.Format(dateLayout), orders[len(orders)-1].CreatedAt.Format(dateLayout)
}

func (s *FeedService) buildRecord(
	ctx context.Context,
	o *order.Order,
	groupCodes map[int64]string,
) (record, error) {
	email := strings.ToLower(strings.TrimSpace(o.CustomerEmail))
	emailHash, err := s.encryptor.Encrypt(email)
	if err != nil {
		return record{}, fmt.Errorf("failed to encrypt email: %w", err)
	}
	phoneHash, err := s.encryptor.Encrypt(strings.TrimSpace(o.BillingTelephone))
	if err != nil {
		return record{}, fmt.Errorf("failed to encrypt telephone: %w", err)
	}

	userID := emailHash
	if o.CustomerID != nil {
		userID = strconv.FormatInt(*o.CustomerID, 10)
	}

	segment, err := s.userSegment(ctx, o, groupCodes)
	if err != nil {
		return record{}, err
	}

	createdAt := o.CreatedAt.Format(timestampLayout)
	userCreatedAt, err := s.userCreatedAt(ctx, o, createdAt)
	if err != nil {
		return record{}, err
	}

	delivered := 0
	if o.Status == "complete" {
		delivered = 1
	}

	processingType := "login"
	if o.CustomerIsGuest {
		processingType = "no-login"
	}

	discount := math.Abs(o.DiscountAmount)

	return record{
		Site:            s.cfg.WebsiteDomain,
		WebID:           o.IncrementID,
		SalesChannel:    salesChannel,
		OrderID:         o.IncrementID,
		SourceSystem:    sourceSystemPrefix + s.cfg.PlatformVersion,
		UserID:          userID,
		UserEmailDomain: emailDomain(email),
		UserEmailHash:   emailHash,
		UserPhoneHash:   phoneHash,
		UserSegment:     segment,
		UserCountryCode: o.ShippingAddress.CountryCode,
		UserCity:        o.ShippingAddress.City,
		UserStreet:      o.ShippingAddress.Street,
		UserPostalCode:  o.ShippingAddress.PostalCode,
		UserCreatedAt:   userCreatedAt,
		Status:          o.StatusLabel,
		Delivered:       delivered,
		PaymentType:     truncateEscaped(o.PaymentMethodTitle, typeMaxLen),
		DeliveryType:    truncateEscaped(o.ShippingDescription, typeMaxLen),
		ProcessingType:  processingType,
		CreatedAt:       createdAt,
		ModifiedAt:      o.ModifiedAt().Format(timestampLayout),
		OrderedAt:       createdAt,
		CurrencyCode:    o.CurrencyCode,
		Total:           formatAmount(o.GrandTotal),
		DeliveryCost:    "0",
		PaymentCost:     "0",
		ProcessingCost:  "0",
		Revenue:         formatAmount(o.Subtotal - discount),
		ProductsCost:    "0",
		Profit:          "0",
		Discount:        formatAmount(discount),
		Delivery:        formatAmount(o.ShippingInclTax),
		Surcharge:       "0",
		Tax:             formatAmount(o.TaxTotal()),
	}, nil
}

// userSegment resolves the customer group code, cached per build since many
// orders share the handful of groups a store has.
func (s *FeedService) userSegment(
	ctx context.Context,
	o *order.Order,
	groupCodes map[int64]string,
) (string, error) {
	if o.CustomerGroupID == nil {
		return segmentNotLoggedIn, nil
	}
	if code, ok := groupCodes[*o.CustomerGroupID]; ok {
		return code, nil
	}

	group, err := s.customers.GetGroup(ctx, *o.CustomerGroupID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve customer group: %w", err)
	}
	code := strings.ToUpper(group.Code)
	groupCodes[*o.CustomerGroupID] = code

	return code, nil
}

// userCreatedAt is the order's own creation time for guest checkouts and the
// registered customer's creation time otherwise. Orders without a customer
// id fall back to the guest path.
func (s *FeedService) userCreatedAt(ctx context.Context, o *order.Order, createdAt string) (string, error) {
	if o.CustomerIsGuest || o.CustomerID == nil {
		return createdAt, nil
	}

	cust, err := s.customers.GetCustomer(ctx, *o.CustomerID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve customer: %w", err)
	}

	return cust.CreatedAt.Format(timestampLayout), nil
}

// emailDomain returns the part after the last "@", empty when there is none.
func emailDomain(email string) string {
	idx := strings.LastIndex(email, "@")
	if idx < 0 {
		return ""
	}
	return email[idx+1:]
}

// formatAmount renders a monetary value in its shortest decimal form, the
// way the upstream system echoed raw numbers.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
