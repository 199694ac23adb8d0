// Package events publishes checkout events for downstream consumers.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	EventSellerOrderPlaced = "checkout.seller_order_placed"
	EventSellerOrderFailed = "checkout.seller_order_failed"

	producerName = "shopfront"
	eventVersion = 1
)

// Envelope wraps every event payload.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // checkout id
	Payload       json.RawMessage `json:"payload"`
}

// SellerOrderPayload is one seller's result within a checkout.
type SellerOrderPayload struct {
	CheckoutID    string  `json:"checkout_id"`
	UserID        string  `json:"user_id"`
	SellerID      string  `json:"seller_id"`
	OrderID       string  `json:"order_id,omitempty"`
	Subtotal      float64 `json:"subtotal"`
	ItemCount     int     `json:"item_count"`
	PaymentMethod string  `json:"payment_method"`
	Error         string  `json:"error,omitempty"`
}

// NewSellerOrderEvent builds the envelope for one seller outcome.
func NewSellerOrderEvent(p SellerOrderPayload, succeeded bool, traceID string, at time.Time) (Envelope, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode payload: %w", err)
	}
	eventType := EventSellerOrderPlaced
	if !succeeded {
		eventType = EventSellerOrderFailed
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  eventVersion,
		OccurredAt:    at.UTC(),
		Producer:      producerName,
		TraceID:       traceID,
		CorrelationID: p.CheckoutID,
		Payload:       raw,
	}, nil
}

// DecodePayload unpacks an envelope payload.
func DecodePayload[T any](e Envelope) (T, error) {
	var t T
	if err := json.Unmarshal(e.Payload, &t); err != nil {
		return t, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}
