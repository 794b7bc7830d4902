package erp

import (
	"context"
	"fmt"
)

// Order is the subset of a sales order the back-office tool reads.
type Order struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Partner   string  `json:"partner_name,omitempty"`
	State     string  `json:"state"`
	AmountDue float64 `json:"amount_total,omitempty"`
}

// FieldsGet returns the model's field definitions, optionally narrowed to
// the given attributes.
func (c *Client) FieldsGet(ctx context.Context, model string, attributes []string) (map[string]map[string]any, error) {
	kwargs := map[string]any{}
	if len(attributes) > 0 {
		kwargs["attributes"] = attributes
	}
	var out map[string]map[string]any
	if err := c.callKwRetrying(ctx, model, "fields_get", nil, kwargs, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchRead runs a domain query against a model and decodes the matching
// records into out.
func (c *Client) SearchRead(ctx context.Context, model string, domain []any, fields []string, limit int, out any) error {
	kwargs := map[string]any{"fields": fields}
	if limit > 0 {
		kwargs["limit"] = limit
	}
	return c.callKwRetrying(ctx, model, "search_read", []any{domain}, kwargs, out)
}

// SearchOrders lists sale orders matching the given state ("" for all).
func (c *Client) SearchOrders(ctx context.Context, state string, limit int) ([]Order, error) {
	domain := []any{}
	if state != "" {
		domain = append(domain, []any{"state", "=", state})
	}
	var orders []Order
	err := c.SearchRead(ctx, "sale.order", domain, []string{"id", "name", "state", "amount_total"}, limit, &orders)
	if err != nil {
		return nil, fmt.Errorf("searching orders: %w", err)
	}
	return orders, nil
}

// Write updates fields on the given record ids.
func (c *Client) Write(ctx context.Context, model string, ids []int64, values map[string]any) error {
	args := []any{ids, values}
	return c.CallKw(ctx, model, "write", args, nil, nil)
}

// ButtonValidate triggers the validate workflow button on a record, e.g.
// confirming a stock picking during fulfilment.
func (c *Client) ButtonValidate(ctx context.Context, model string, id int64) error {
	return c.CallKw(ctx, model, "button_validate", []any{[]int64{id}}, nil, nil)
}

// MessagePost appends a chatter note to a record.
func (c *Client) MessagePost(ctx context.Context, model string, id int64, body string) error {
	kwargs := map[string]any{"body": body, "message_type": "comment"}
	return c.CallKw(ctx, model, "message_post", []any{[]int64{id}}, kwargs, nil)
}
