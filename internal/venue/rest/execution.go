package rest

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/betbot/mmbot/internal/domain"
	"github.com/betbot/mmbot/internal/venue"
)

type submitOrderRequest struct {
	ClientOrderID string `json:"clientOrderId"`
	Side          string `json:"side"`
	BaseAsset     string `json:"baseAsset"`
	QuoteAsset    string `json:"quoteAsset"`
	Quantity      string `json:"quantity"`
	Price         string `json:"price,omitempty"`
	Type          string `json:"type"`
	STPMode       string `json:"stpMode,omitempty"`
}

type submitOrderResponse struct {
	OrderIDs []string `json:"orderIds"`
}

type cancelOrdersRequest struct {
	OrderIDs []string `json:"orderIds"`
}

type cancelOrdersResponse struct {
	Canceled int `json:"canceled"`
}

// Execution is the venue's authenticated order-execution client.
type Execution struct {
	client *Client

	mu            sync.RWMutex
	authenticated bool
}

// NewExecution creates an execution client for the given host.
// Initialize must succeed before any order call.
func NewExecution(host string) *Execution {
	return &Execution{client: NewClient(host)}
}

// Initialize authenticates against the venue. Failure is fatal to the
// owning agent: it cannot run without authentication.
func (e *Execution) Initialize(ctx context.Context, cred venue.Credential) error {
	if cred.APIKey == "" || cred.APISecret == "" {
		return errors.New("missing api credentials")
	}
	e.client.SetSigner(NewSigner(cred.APIKey, cred.APISecret))

	var out struct {
		AccountID string `json:"accountId"`
	}
	if err := e.client.PostSigned(ctx, "/api/v1/auth/verify", struct{}{}, &out); err != nil {
		return errors.Wrap(err, "verify credentials")
	}

	e.mu.Lock()
	e.authenticated = true
	e.mu.Unlock()
	return nil
}

// IsAuthenticated reports whether Initialize has completed successfully.
func (e *Execution) IsAuthenticated() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.authenticated
}

// SubmitOrder submits one order and returns the venue-assigned order ids.
func (e *Execution) SubmitOrder(ctx context.Context, req venue.SubmitRequest) ([]string, error) {
	if !e.IsAuthenticated() {
		return nil, venue.ErrNotAuthenticated
	}

	body := submitOrderRequest{
		ClientOrderID: req.ClientOrderID,
		Side:          string(req.Side),
		BaseAsset:     req.BaseAsset,
		QuoteAsset:    req.QuoteAsset,
		Quantity:      req.Quantity.String(),
		Type:          string(req.Kind),
		STPMode:       string(req.STPMode),
	}
	if req.Kind == domain.OrderKindLimit && req.HasPrice {
		body.Price = req.Price.String()
	}

	var out submitOrderResponse
	if err := e.client.PostSigned(ctx, "/api/v1/orders", body, &out); err != nil {
		return nil, errors.Wrap(err, "submit order")
	}
	if len(out.OrderIDs) == 0 {
		return nil, errors.New("venue returned no order ids")
	}
	return out.OrderIDs, nil
}

// CancelOrders batch-cancels orders. The call is all-or-nothing from the
// caller's perspective: on error none of the ids may be assumed removed.
func (e *Execution) CancelOrders(ctx context.Context, ids []string) error {
	if !e.IsAuthenticated() {
		return venue.ErrNotAuthenticated
	}
	if len(ids) == 0 {
		return nil
	}

	var out cancelOrdersResponse
	if err := e.client.PostSigned(ctx, "/api/v1/orders/cancel", cancelOrdersRequest{OrderIDs: ids}, &out); err != nil {
		return errors.Wrap(err, "cancel orders")
	}
	if out.Canceled != len(ids) {
		return errors.Errorf("partial cancel: %d of %d", out.Canceled, len(ids))
	}
	return nil
}
