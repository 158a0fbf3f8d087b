package tevo

import (
	"context"

	"github.com/cockroachdb/errors"
)

// Order resources.
var (
	OrdersResource    = Resource{Type: "Orders", Plural: "orders", Singular: "order"}
	ShipmentsResource = Resource{Type: "Shipments", Plural: "shipments", Singular: "shipment"}
)

func init() {
	RegisterSingular(OrdersResource, func() Model { return &Order{} })
	RegisterSingular(ShipmentsResource, func() Model { return &Shipment{} })
}

// OrderItemRequest is one line of a new order.
type OrderItemRequest struct {
	TicketGroupID int64   `json:"ticket_group_id"`
	Quantity      int     `json:"quantity"`
	Price         float64 `json:"price"`
}

// OrderRequest creates or updates an order.
type OrderRequest struct {
	ClientID          int64              `json:"client_id,omitempty"`
	SellerID          int64              `json:"seller_id,omitempty"`
	BillingAddressID  int64              `json:"billing_address_id,omitempty"`
	ShippingAddressID int64              `json:"shipping_address_id,omitempty"`
	Items             []OrderItemRequest `json:"items,omitempty"`
	Instructions      string             `json:"instructions,omitempty"`
	ExternalNotes     string             `json:"external_notes,omitempty"`
	InternalNotes     string             `json:"internal_notes,omitempty"`
}

// ShipmentRequest creates or updates a shipment.
type ShipmentRequest struct {
	OrderID        int64  `json:"order_id,omitempty"`
	Type           string `json:"type,omitempty"`
	ServiceType    string `json:"service_type,omitempty"`
	TrackingNumber string `json:"tracking_number,omitempty"`
}

// Orders is the /orders endpoint.
type Orders struct{ *Endpoint }

// Orders returns the orders endpoint.
func (c *Connection) Orders() *Orders {
	return &Orders{newChild(OrdersResource, c, "")}
}

// List lists orders.
func (e *Orders) List(ctx context.Context, params *QueryParams) (*Collection[*Order], error) {
	list, err := listAction[*Order](ctx, e.Endpoint, "", params.Params())
	if err != nil {
		return nil, errors.Wrap(err, "listing orders")
	}

	return list, nil
}

// Show fetches one order.
func (e *Orders) Show(ctx context.Context, id int64) (*Order, error) {
	order, err := showAction[*Order](ctx, e.Endpoint, id)
	if err != nil {
		return nil, errors.Wrap(err, "getting order")
	}

	return order, nil
}

// Create places orders.
func (e *Orders) Create(ctx context.Context, requests ...*OrderRequest) ([]*Order, error) {
	created, err := createAction[*Order](ctx, e.Endpoint, asRecords(requests)...)
	if err != nil {
		return nil, errors.Wrap(err, "creating orders")
	}

	return created, nil
}

// Update updates one order.
func (e *Orders) Update(ctx context.Context, id int64, request *OrderRequest) (*Order, error) {
	order, err := updateAction[*Order](ctx, e.Endpoint, id, request)
	if err != nil {
		return nil, errors.Wrap(err, "updating order")
	}

	return order, nil
}

// Accept accepts a pending order on behalf of reviewerID.
func (e *Orders) Accept(ctx context.Context, id, reviewerID int64) (*Order, error) {
	order, err := e.transition(ctx, id, "accept", Params{"reviewer_id": reviewerID})
	if err != nil {
		return nil, errors.Wrap(err, "accepting order")
	}

	return order, nil
}

// Reject rejects a pending order with a reason.
func (e *Orders) Reject(ctx context.Context, id, reviewerID int64, reason string) (*Order, error) {
	order, err := e.transition(ctx, id, "reject", Params{
		"reviewer_id":      reviewerID,
		"rejection_reason": reason,
	})
	if err != nil {
		return nil, errors.Wrap(err, "rejecting order")
	}

	return order, nil
}

// Complete marks an order as completed.
func (e *Orders) Complete(ctx context.Context, id int64) (*Order, error) {
	order, err := e.transition(ctx, id, "complete", nil)
	if err != nil {
		return nil, errors.Wrap(err, "completing order")
	}

	return order, nil
}

// Email sends the order confirmation to recipients.
func (e *Orders) Email(ctx context.Context, id int64, recipients ...string) error {
	if len(recipients) == 0 {
		return errors.Wrap(ErrInvalidParam, "at least one recipient is required")
	}

	_, err := call(ctx, e.Endpoint, MethodPost, idPath(id)+"/email", Params{"recipients": recipients})
	if err != nil {
		return errors.Wrap(err, "emailing order")
	}

	return nil
}

func (e *Orders) transition(ctx context.Context, id int64, action string, params Params) (*Order, error) {
	env, err := call(ctx, e.Endpoint, MethodPost, idPath(id)+"/"+action, params)
	if err != nil {
		return nil, err
	}

	return hydrate[*Order](env, e.resource, env.Body)
}

// Shipments is the /shipments endpoint.
type Shipments struct{ *Endpoint }

// Shipments returns the shipments endpoint.
func (c *Connection) Shipments() *Shipments {
	return &Shipments{newChild(ShipmentsResource, c, "")}
}

// List lists shipments.
func (e *Shipments) List(ctx context.Context, params *QueryParams) (*Collection[*Shipment], error) {
	list, err := listAction[*Shipment](ctx, e.Endpoint, "", params.Params())
	if err != nil {
		return nil, errors.Wrap(err, "listing shipments")
	}

	return list, nil
}

// Show fetches one shipment.
func (e *Shipments) Show(ctx context.Context, id int64) (*Shipment, error) {
	shipment, err := showAction[*Shipment](ctx, e.Endpoint, id)
	if err != nil {
		return nil, errors.Wrap(err, "getting shipment")
	}

	return shipment, nil
}

// Create creates shipments.
func (e *Shipments) Create(ctx context.Context, requests ...*ShipmentRequest) ([]*Shipment, error) {
	created, err := createAction[*Shipment](ctx, e.Endpoint, asRecords(requests)...)
	if err != nil {
		return nil, errors.Wrap(err, "creating shipments")
	}

	return created, nil
}

// Update updates one shipment.
func (e *Shipments) Update(ctx context.Context, id int64, request *ShipmentRequest) (*Shipment, error) {
	shipment, err := updateAction[*Shipment](ctx, e.Endpoint, id, request)
	if err != nil {
		return nil, errors.Wrap(err, "updating shipment")
	}

	return shipment, nil
}
