package tevo

import (
	"context"
	"strconv"

	"github.com/cockroachdb/errors"
)

// Client resources. The nested ones live under /clients/{id}.
var (
	ClientsResource              = Resource{Type: "Clients", Plural: "clients", Singular: "client"}
	ClientAddressesResource      = Resource{Type: "ClientAddresses", Plural: "addresses", Singular: "address"}
	ClientEmailAddressesResource = Resource{Type: "ClientEmailAddresses", Plural: "email_addresses", Singular: "email_address"}
	ClientPhoneNumbersResource   = Resource{Type: "ClientPhoneNumbers", Plural: "phone_numbers", Singular: "phone_number"}
	ClientCreditCardsResource    = Resource{Type: "ClientCreditCards", Plural: "credit_cards", Singular: "credit_card"}
)

func init() {
	RegisterSingular(ClientsResource, func() Model { return &Client{} })
	RegisterSingular(ClientAddressesResource, func() Model { return &Address{} })
	RegisterSingular(ClientEmailAddressesResource, func() Model { return &EmailAddress{} })
	RegisterSingular(ClientPhoneNumbersResource, func() Model { return &PhoneNumber{} })
	RegisterSingular(ClientCreditCardsResource, func() Model { return &CreditCard{} })
}

// ClientRequest creates or updates a client.
type ClientRequest struct {
	Name     string   `json:"name,omitempty"`
	OfficeID int64    `json:"office_id,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}

// AddressRequest creates or updates a client address.
type AddressRequest struct {
	Label           string `json:"label,omitempty"`
	Name            string `json:"name,omitempty"`
	Company         string `json:"company,omitempty"`
	StreetAddress   string `json:"street_address,omitempty"`
	ExtendedAddress string `json:"extended_address,omitempty"`
	Locality        string `json:"locality,omitempty"`
	Region          string `json:"region,omitempty"`
	PostalCode      string `json:"postal_code,omitempty"`
	CountryCode     string `json:"country_code,omitempty"`
	Primary         bool   `json:"primary,omitempty"`
}

// EmailAddressRequest creates or updates a client email address.
type EmailAddressRequest struct {
	Label   string `json:"label,omitempty"`
	Address string `json:"address,omitempty"`
	Primary bool   `json:"primary,omitempty"`
}

// PhoneNumberRequest creates or updates a client phone number.
type PhoneNumberRequest struct {
	Label       string `json:"label,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	Number      string `json:"number,omitempty"`
	Extension   string `json:"extension,omitempty"`
	Primary     bool   `json:"primary,omitempty"`
}

// CreditCardRequest stores a client card.
type CreditCardRequest struct {
	Label            string `json:"label,omitempty"`
	Name             string `json:"name"`
	Number           string `json:"number"`
	ExpirationMonth  string `json:"expiration_month"`
	ExpirationYear   string `json:"expiration_year"`
	VerificationCode string `json:"verification_code,omitempty"`
	AddressID        int64  `json:"address_id,omitempty"`
	PhoneNumberID    int64  `json:"phone_number_id,omitempty"`
	IPAddress        string `json:"ip_address,omitempty"`
}

// Clients is the /clients endpoint.
type Clients struct{ *Endpoint }

// Clients returns the clients endpoint.
func (c *Connection) Clients() *Clients {
	return &Clients{newChild(ClientsResource, c, "")}
}

// List lists clients.
func (e *Clients) List(ctx context.Context, params *QueryParams) (*Collection[*Client], error) {
	list, err := listAction[*Client](ctx, e.Endpoint, "", params.Params())
	if err != nil {
		return nil, errors.Wrap(err, "listing clients")
	}

	return list, nil
}

// Show fetches one client.
func (e *Clients) Show(ctx context.Context, id int64) (*Client, error) {
	client, err := showAction[*Client](ctx, e.Endpoint, id)
	if err != nil {
		return nil, errors.Wrap(err, "getting client")
	}

	return client, nil
}

// Create creates clients.
func (e *Clients) Create(ctx context.Context, requests ...*ClientRequest) ([]*Client, error) {
	created, err := createAction[*Client](ctx, e.Endpoint, asRecords(requests)...)
	if err != nil {
		return nil, errors.Wrap(err, "creating clients")
	}

	return created, nil
}

// Update updates one client.
func (e *Clients) Update(ctx context.Context, id int64, request *ClientRequest) (*Client, error) {
	client, err := updateAction[*Client](ctx, e.Endpoint, id, request)
	if err != nil {
		return nil, errors.Wrap(err, "updating client")
	}

	return client, nil
}

// owner returns a clients endpoint pinned to one client, the parent of the
// nested resources.
func (e *Clients) owner(clientID int64) *Endpoint {
	return newChild(ClientsResource, e.parent, strconv.FormatInt(clientID, 10))
}

// Addresses returns /clients/{clientID}/addresses.
func (e *Clients) Addresses(clientID int64) *ClientAddresses {
	return &ClientAddresses{newChild(ClientAddressesResource, e.owner(clientID), "")}
}

// EmailAddresses returns /clients/{clientID}/email_addresses.
func (e *Clients) EmailAddresses(clientID int64) *ClientEmailAddresses {
	return &ClientEmailAddresses{newChild(ClientEmailAddressesResource, e.owner(clientID), "")}
}

// PhoneNumbers returns /clients/{clientID}/phone_numbers.
func (e *Clients) PhoneNumbers(clientID int64) *ClientPhoneNumbers {
	return &ClientPhoneNumbers{newChild(ClientPhoneNumbersResource, e.owner(clientID), "")}
}

// CreditCards returns /clients/{clientID}/credit_cards.
func (e *Clients) CreditCards(clientID int64) *ClientCreditCards {
	return &ClientCreditCards{newChild(ClientCreditCardsResource, e.owner(clientID), "")}
}

// ClientAddresses is the /clients/{id}/addresses endpoint.
type ClientAddresses struct{ *Endpoint }

// List lists the client's addresses.
func (e *ClientAddresses) List(ctx context.Context, params *QueryParams) (*Collection[*Address], error) {
	list, err := listAction[*Address](ctx, e.Endpoint, "", params.Params())
	if err != nil {
		return nil, errors.Wrap(err, "listing client addresses")
	}

	return list, nil
}

// Show fetches one address.
func (e *ClientAddresses) Show(ctx context.Context, id int64) (*Address, error) {
	address, err := showAction[*Address](ctx, e.Endpoint, id)
	if err != nil {
		return nil, errors.Wrap(err, "getting client address")
	}

	return address, nil
}

// Create adds addresses.
func (e *ClientAddresses) Create(ctx context.Context, requests ...*AddressRequest) ([]*Address, error) {
	created, err := createAction[*Address](ctx, e.Endpoint, asRecords(requests)...)
	if err != nil {
		return nil, errors.Wrap(err, "creating client addresses")
	}

	return created, nil
}

// Update updates one address.
func (e *ClientAddresses) Update(ctx context.Context, id int64, request *AddressRequest) (*Address, error) {
	address, err := updateAction[*Address](ctx, e.Endpoint, id, request)
	if err != nil {
		return nil, errors.Wrap(err, "updating client address")
	}

	return address, nil
}

// ClientEmailAddresses is the /clients/{id}/email_addresses endpoint.
type ClientEmailAddresses struct{ *Endpoint }

// List lists the client's email addresses.
func (e *ClientEmailAddresses) List(ctx context.Context, params *QueryParams) (*Collection[*EmailAddress], error) {
	list, err := listAction[*EmailAddress](ctx, e.Endpoint, "", params.Params())
	if err != nil {
		return nil, errors.Wrap(err, "listing client email addresses")
	}

	return list, nil
}

// Show fetches one email address.
func (e *ClientEmailAddresses) Show(ctx context.Context, id int64) (*EmailAddress, error) {
	email, err := showAction[*EmailAddress](ctx, e.Endpoint, id)
	if err != nil {
		return nil, errors.Wrap(err, "getting client email address")
	}

	return email, nil
}

// Create adds email addresses.
func (e *ClientEmailAddresses) Create(ctx context.Context, requests ...*EmailAddressRequest) ([]*EmailAddress, error) {
	created, err := createAction[*EmailAddress](ctx, e.Endpoint, asRecords(requests)...)
	if err != nil {
		return nil, errors.Wrap(err, "creating client email addresses")
	}

	return created, nil
}

// Update updates one email address.
func (e *ClientEmailAddresses) Update(ctx context.Context, id int64, request *EmailAddressRequest) (*EmailAddress, error) {
	email, err := updateAction[*EmailAddress](ctx, e.Endpoint, id, request)
	if err != nil {
		return nil, errors.Wrap(err, "updating client email address")
	}

	return email, nil
}

// ClientPhoneNumbers is the /clients/{id}/phone_numbers endpoint.
type ClientPhoneNumbers struct{ *Endpoint }

// List lists the client's phone numbers.
func (e *ClientPhoneNumbers) List(ctx context.Context, params *QueryParams) (*Collection[*PhoneNumber], error) {
	list, err := listAction[*PhoneNumber](ctx, e.Endpoint, "", params.Params())
	if err != nil {
		return nil, errors.Wrap(err, "listing client phone numbers")
	}

	return list, nil
}

// Show fetches one phone number.
func (e *ClientPhoneNumbers) Show(ctx context.Context, id int64) (*PhoneNumber, error) {
	phone, err := showAction[*PhoneNumber](ctx, e.Endpoint, id)
	if err != nil {
		return nil, errors.Wrap(err, "getting client phone number")
	}

	return phone, nil
}

// Create adds phone numbers.
func (e *ClientPhoneNumbers) Create(ctx context.Context, requests ...*PhoneNumberRequest) ([]*PhoneNumber, error) {
	created, err := createAction[*PhoneNumber](ctx, e.Endpoint, asRecords(requests)...)
	if err != nil {
		return nil, errors.Wrap(err, "creating client phone numbers")
	}

	return created, nil
}

// Update updates one phone number.
func (e *ClientPhoneNumbers) Update(ctx context.Context, id int64, request *PhoneNumberRequest) (*PhoneNumber, error) {
	phone, err := updateAction[*PhoneNumber](ctx, e.Endpoint, id, request)
	if err != nil {
		return nil, errors.Wrap(err, "updating client phone number")
	}

	return phone, nil
}

// ClientCreditCards is the /clients/{id}/credit_cards endpoint.
type ClientCreditCards struct{ *Endpoint }

// List lists the client's stored cards.
func (e *ClientCreditCards) List(ctx context.Context, params *QueryParams) (*Collection[*CreditCard], error) {
	list, err := listAction[*CreditCard](ctx, e.Endpoint, "", params.Params())
	if err != nil {
		return nil, errors.Wrap(err, "listing client credit cards")
	}

	return list, nil
}

// Create stores cards.
func (e *ClientCreditCards) Create(ctx context.Context, requests ...*CreditCardRequest) ([]*CreditCard, error) {
	created, err := createAction[*CreditCard](ctx, e.Endpoint, asRecords(requests)...)
	if err != nil {
		return nil, errors.Wrap(err, "creating client credit cards")
	}

	return created, nil
}

func asRecords[T any](requests []*T) []interface{} {
	records := make([]interface{}, 0, len(requests))
	for _, request := range requests {
		if request != nil {
			records = append(records, request)
		}
	}

	return records
}
