package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/shopfront/internal/app/model"
	"github.com/ikkim/shopfront/internal/app/repository"
	"github.com/ikkim/shopfront/internal/events"
	"github.com/ikkim/shopfront/internal/gateway"
	"github.com/ikkim/shopfront/pkg/logger"
	"github.com/ikkim/shopfront/pkg/money"
	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"
)

const defaultMaxParallelOrders = 4

type CheckoutRequest struct {
	Form          *AddressForm
	PaymentMethod model.PaymentMethod
	SaveAddress   bool   // add a manually entered address to the address book
	TraceID       string // request id, carried onto events
}

// SellerOutcome is the result of one seller's order within a checkout.
type SellerOutcome struct {
	SellerID    string       `json:"seller_id"`
	SellerName  string       `json:"seller_name"`
	Subtotal    float64      `json:"subtotal"`
	ItemCount   int          `json:"item_count"`
	Succeeded   bool         `json:"succeeded"`
	Order       *model.Order `json:"order,omitempty"`
	Error       string       `json:"error,omitempty"`
	CartCleared bool         `json:"cart_cleared"`
}

type CheckoutResult struct {
	CheckoutID    string              `json:"checkout_id"`
	CheckedOutAt  time.Time           `json:"checked_out_at"`
	Address       string              `json:"address"`
	Phone         string              `json:"phone"`
	PostalCode    string              `json:"postal_code,omitempty"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
	AddressSaved  bool                `json:"address_saved"`
	Outcomes      []SellerOutcome     `json:"outcomes"`
}

// Succeeded returns the outcomes whose order was created.
func (r *CheckoutResult) Succeeded() []SellerOutcome {
	out := make([]SellerOutcome, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.Succeeded {
			out = append(out, o)
		}
	}
	return out
}

// CheckoutService turns a seller-partitioned cart into one order per seller.
type CheckoutService interface {
	// Checkout returns a result whenever orders were attempted. The error is
	// nil if every seller succeeded, ErrPartialCheckoutFailure for a mix, and
	// ErrNetworkFailure if none did.
	Checkout(ctx context.Context, store *CartStore, req CheckoutRequest) (*CheckoutResult, error)
}

type checkoutService struct {
	orders      gateway.OrderGateway
	addresses   gateway.AddressGateway
	ledger      repository.CheckoutRepository
	publisher   events.Publisher
	maxParallel int
	now         func() time.Time
}

// NewCheckoutService creates a checkout service. ledger and publisher may be nil.
func NewCheckoutService(
	orders gateway.OrderGateway,
	addresses gateway.AddressGateway,
	ledger repository.CheckoutRepository,
	publisher events.Publisher,
	maxParallel int,
) CheckoutService {
	if maxParallel <= 0 {
		maxParallel = defaultMaxParallelOrders
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &checkoutService{
		orders:      orders,
		addresses:   addresses,
		ledger:      ledger,
		publisher:   publisher,
		maxParallel: maxParallel,
		now:         time.Now,
	}
}

func (s *checkoutService) Checkout(ctx context.Context, store *CartStore, req CheckoutRequest) (*CheckoutResult, error) {
	ctx, userID, err := store.credentials(ctx)
	if err != nil {
		return nil, err
	}

	view := store.View()
	if view.Cart == nil || len(view.Partitions) == 0 {
		return nil, ErrEmptyCart
	}
	if req.Form == nil {
		return nil, ErrIncompleteAddress
	}
	addr, err := req.Form.Resolve()
	if err != nil {
		logger.Warn("Checkout rejected", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return nil, err
	}
	if !req.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	result := &CheckoutResult{
		CheckoutID:    uuid.NewString(),
		CheckedOutAt:  s.now().UTC(),
		Address:       addr.Full,
		Phone:         addr.Phone,
		PostalCode:    addr.PostalCode,
		PaymentMethod: req.PaymentMethod,
		Outcomes:      make([]SellerOutcome, len(view.Partitions)),
	}

	logger.Info("Starting checkout", map[string]interface{}{
		"user_id":        userID,
		"checkout_id":    result.CheckoutID,
		"seller_count":   len(view.Partitions),
		"payment_method": req.PaymentMethod,
	})

	if req.SaveAddress && !addr.FromSaved {
		result.AddressSaved = s.saveAddress(ctx, userID, addr)
	}

	s.submitOrders(ctx, userID, view.Partitions, addr, req.PaymentMethod, result)

	// one seller at a time; each removal reloads the cart
	for i := range result.Outcomes {
		o := &result.Outcomes[i]
		if !o.Succeeded {
			continue
		}
		if err := store.RemoveSellerItems(ctx, o.SellerID); err != nil {
			logger.Warn("Order placed but seller items were not cleared", map[string]interface{}{
				"user_id":   userID,
				"seller_id": o.SellerID,
				"error":     err.Error(),
			})
			continue
		}
		o.CartCleared = true
	}

	s.recordLedger(userID, result)
	s.publishEvents(ctx, userID, req.TraceID, result)

	succeeded := len(result.Succeeded())
	logger.Info("Checkout finished", map[string]interface{}{
		"user_id":     userID,
		"checkout_id": result.CheckoutID,
		"succeeded":   succeeded,
		"failed":      len(result.Outcomes) - succeeded,
	})

	switch {
	case succeeded == len(result.Outcomes):
		return result, nil
	case succeeded == 0:
		return result, fmt.Errorf("checkout %s: %w: every seller order failed", result.CheckoutID, ErrNetworkFailure)
	default:
		return result, fmt.Errorf("checkout %s: %w", result.CheckoutID, ErrPartialCheckoutFailure)
	}
}

// submitOrders creates one order per partition, bounded by maxParallel.
// Failures are recorded on the outcome and never stop the other sellers.
func (s *checkoutService) submitOrders(
	ctx context.Context,
	userID string,
	partitions []model.SellerPartition,
	addr ResolvedAddress,
	method model.PaymentMethod,
	result *CheckoutResult,
) {
	var g errgroup.Group
	g.SetLimit(s.maxParallel)

	for i, p := range partitions {
		result.Outcomes[i] = SellerOutcome{
			SellerID:   p.SellerID,
			SellerName: p.SellerName,
			Subtotal:   p.Subtotal,
			ItemCount:  len(p.Items),
		}

		g.Go(func() error {
			order, err := s.orders.CreateOrder(ctx, gateway.CreateOrderRequest{
				UserID:        userID,
				SellerID:      p.SellerID,
				Items:         orderItems(p.Items),
				Address:       addr.Full,
				Phone:         addr.Phone,
				PostalCode:    addr.PostalCode,
				PaymentMethod: method,
				TotalPrice:    p.Subtotal,
				CheckoutAt:    result.CheckedOutAt,
			})

			// each goroutine owns outcome i
			o := &result.Outcomes[i]
			if err != nil {
				o.Error = networkError("create order", err).Error()
				logger.Error("Seller order failed", err, map[string]interface{}{
					"user_id":     userID,
					"seller_id":   p.SellerID,
					"checkout_id": result.CheckoutID,
				})
				return nil
			}
			o.Succeeded = true
			o.Order = order
			return nil
		})
	}
	_ = g.Wait()
}

func orderItems(items []model.CartLineItem) []model.OrderItem {
	out := make([]model.OrderItem, 0, len(items))
	for i := range items {
		out = append(out, model.OrderItem{
			SizeStockID: items[i].SizeStock.ID,
			Quantity:    items[i].Quantity,
			Price:       items[i].UnitPrice(),
		})
	}
	return out
}

// saveAddress is best-effort; a failure never blocks checkout.
func (s *checkoutService) saveAddress(ctx context.Context, userID string, addr ResolvedAddress) bool {
	if s.addresses == nil {
		return false
	}
	_, err := s.addresses.CreateAddress(ctx, &model.DeliveryAddress{
		OwnerUserID: userID,
		Street:      addr.Parts.Street,
		Ward:        addr.Parts.Ward,
		District:    addr.Parts.District,
		Province:    addr.Parts.Province,
		FullAddress: addr.Full,
		Phone:       addr.Phone,
		PostalCode:  addr.PostalCode,
	})
	if err != nil {
		logger.Warn("Failed to save checkout address; continuing", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return false
	}
	return true
}

func (s *checkoutService) recordLedger(userID string, result *CheckoutResult) {
	if s.ledger == nil {
		return
	}

	record := &model.CheckoutRecord{
		CheckoutID:      result.CheckoutID,
		UserID:          userID,
		Address:         result.Address,
		Phone:           result.Phone,
		PostalCode:      result.PostalCode,
		PaymentMethod:   result.PaymentMethod,
		SellerCount:     len(result.Outcomes),
		FailedSellerIDs: pq.StringArray{},
		CheckedOutAt:    result.CheckedOutAt,
		Outcomes:        make([]model.CheckoutOutcome, 0, len(result.Outcomes)),
	}
	subtotals := make([]float64, 0, len(result.Outcomes))
	for _, o := range result.Outcomes {
		row := model.CheckoutOutcome{
			SellerID:    o.SellerID,
			SellerName:  o.SellerName,
			Subtotal:    o.Subtotal,
			Succeeded:   o.Succeeded,
			Error:       o.Error,
			CartCleared: o.CartCleared,
		}
		if o.Order != nil {
			row.OrderID = o.Order.ID
		}
		if !o.Succeeded {
			record.FailedSellerIDs = append(record.FailedSellerIDs, o.SellerID)
		}
		subtotals = append(subtotals, o.Subtotal)
		record.Outcomes = append(record.Outcomes, row)
	}
	record.TotalPrice = money.Sum(subtotals...)

	if err := s.ledger.Create(record); err != nil {
		logger.Warn("Failed to record checkout in ledger", map[string]interface{}{
			"checkout_id": result.CheckoutID,
			"error":       err.Error(),
		})
	}
}

func (s *checkoutService) publishEvents(ctx context.Context, userID, traceID string, result *CheckoutResult) {
	evs := make([]events.Envelope, 0, len(result.Outcomes))
	for _, o := range result.Outcomes {
		payload := events.SellerOrderPayload{
			CheckoutID:    result.CheckoutID,
			UserID:        userID,
			SellerID:      o.SellerID,
			Subtotal:      o.Subtotal,
			ItemCount:     o.ItemCount,
			PaymentMethod: string(result.PaymentMethod),
			Error:         o.Error,
		}
		if o.Order != nil {
			payload.OrderID = o.Order.ID
		}
		ev, err := events.NewSellerOrderEvent(payload, o.Succeeded, traceID, result.CheckedOutAt)
		if err != nil {
			logger.Warn("Failed to build checkout event", map[string]interface{}{
				"checkout_id": result.CheckoutID,
				"error":       err.Error(),
			})
			continue
		}
		evs = append(evs, ev)
	}

	if err := s.publisher.Publish(ctx, result.CheckoutID, evs...); err != nil {
		logger.Warn("Failed to publish checkout events", map[string]interface{}{
			"checkout_id": result.CheckoutID,
			"error":       err.Error(),
		})
	}
}
