package domain

import (
	apperrors "github.com/vetty/storefront/pkg/errors"
)

// OrderItem is one line of an order-creation request. The unit price is
// snapshotted at submission time so later catalog price drift cannot change
// a placed order.
type OrderItem struct {
	Kind      ItemKind `json:"kind"`
	ItemID    string   `json:"item_id"`
	Quantity  int      `json:"quantity"`
	UnitPrice int64    `json:"unit_price"` // cents, at submission
}

// OrderRequest is the payload handed off to the backend for order creation.
type OrderRequest struct {
	Items []OrderItem `json:"items"`
	Total int64       `json:"total"` // cents
}

// BuildOrderRequest snapshots a cart summary into an order-creation request.
// It refuses to build a request from an empty cart, and from a summary with
// unresolved lines: phantom-priced items must never reach the backend.
func BuildOrderRequest(summary CartSummary) (*OrderRequest, error) {
	if len(summary.Lines) == 0 {
		return nil, apperrors.EmptyCart()
	}
	if summary.HasUnresolvedLines {
		return nil, apperrors.UnresolvedLines()
	}

	req := &OrderRequest{
		Items: make([]OrderItem, len(summary.Lines)),
		Total: summary.Total,
	}
	for i, line := range summary.Lines {
		req.Items[i] = OrderItem{
			Kind:      line.Kind,
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}
	}

	return req, nil
}
