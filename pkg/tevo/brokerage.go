package tevo

import (
	"context"

	"github.com/cockroachdb/errors"
)

// Brokerage resources.
var (
	AccountsResource   = Resource{Type: "Accounts", Plural: "accounts", Singular: "account"}
	BrokeragesResource = Resource{Type: "Brokerages", Plural: "brokerages", Singular: "brokerage"}
	OfficesResource    = Resource{Type: "Offices", Plural: "offices", Singular: "office"}
	UsersResource      = Resource{Type: "Users", Plural: "users", Singular: "user"}
)

func init() {
	RegisterSingular(AccountsResource, func() Model { return &Account{} })
	RegisterSingular(BrokeragesResource, func() Model { return &Brokerage{} })
	RegisterSingular(OfficesResource, func() Model { return &Office{} })
	RegisterSingular(UsersResource, func() Model { return &User{} })
}

// Accounts is the /accounts endpoint.
type Accounts struct{ *Endpoint }

// Accounts returns the accounts endpoint.
func (c *Connection) Accounts() *Accounts {
	return &Accounts{newChild(AccountsResource, c, "")}
}

// List lists the brokerage's accounts.
func (e *Accounts) List(ctx context.Context, params *QueryParams) (*Collection[*Account], error) {
	list, err := listAction[*Account](ctx, e.Endpoint, "", params.Params())
	if err != nil {
		return nil, errors.Wrap(err, "listing accounts")
	}

	return list, nil
}

// Show fetches one account.
func (e *Accounts) Show(ctx context.Context, id int64) (*Account, error) {
	account, err := showAction[*Account](ctx, e.Endpoint, id)
	if err != nil {
		return nil, errors.Wrap(err, "getting account")
	}

	return account, nil
}

// Brokerages is the /brokerages endpoint.
type Brokerages struct{ *Endpoint }

// Brokerages returns the brokerages endpoint.
func (c *Connection) Brokerages() *Brokerages {
	return &Brokerages{newChild(BrokeragesResource, c, "")}
}

// List lists brokerages.
func (e *Brokerages) List(ctx context.Context, params *QueryParams) (*Collection[*Brokerage], error) {
	list, err := listAction[*Brokerage](ctx, e.Endpoint, "", params.Params())
	if err != nil {
		return nil, errors.Wrap(err, "listing brokerages")
	}

	return list, nil
}

// Show fetches one brokerage.
func (e *Brokerages) Show(ctx context.Context, id int64) (*Brokerage, error) {
	brokerage, err := showAction[*Brokerage](ctx, e.Endpoint, id)
	if err != nil {
		return nil, errors.Wrap(err, "getting brokerage")
	}

	return brokerage, nil
}

// Search finds brokerages by name.
func (e *Brokerages) Search(ctx context.Context, query string, params *QueryParams) (*Collection[*Brokerage], error) {
	list, err := searchAction[*Brokerage](ctx, e.Endpoint, query, params.Params())
	if err != nil {
		return nil, errors.Wrap(err, "searching brokerages")
	}

	return list, nil
}

// Offices is the /offices endpoint.
type Offices struct{ *Endpoint }

// Offices returns the offices endpoint.
func (c *Connection) Offices() *Offices {
	return &Offices{newChild(OfficesResource, c, "")}
}

// List lists offices.
func (e *Offices) List(ctx context.Context, params *QueryParams) (*Collection[*Office], error) {
	list, err := listAction[*Office](ctx, e.Endpoint, "", params.Params())
	if err != nil {
		return nil, errors.Wrap(err, "listing offices")
	}

	return list, nil
}

// Show fetches one office.
func (e *Offices) Show(ctx context.Context, id int64) (*Office, error) {
	office, err := showAction[*Office](ctx, e.Endpoint, id)
	if err != nil {
		return nil, errors.Wrap(err, "getting office")
	}

	return office, nil
}

// Search finds offices by name.
func (e *Offices) Search(ctx context.Context, query string, params *QueryParams) (*Collection[*Office], error) {
	list, err := searchAction[*Office](ctx, e.Endpoint, query, params.Params())
	if err != nil {
		return nil, errors.Wrap(err, "searching offices")
	}

	return list, nil
}

// Users is the /users endpoint.
type Users struct{ *Endpoint }

// Users returns the users endpoint.
func (c *Connection) Users() *Users {
	return &Users{newChild(UsersResource, c, "")}
}

// List lists users.
func (e *Users) List(ctx context.Context, params *QueryParams) (*Collection[*User], error) {
	list, err := listAction[*User](ctx, e.Endpoint, "", params.Params())
	if err != nil {
		return nil, errors.Wrap(err, "listing users")
	}

	return list, nil
}

// Show fetches one user.
func (e *Users) Show(ctx context.Context, id int64) (*User, error) {
	user, err := showAction[*User](ctx, e.Endpoint, id)
	if err != nil {
		return nil, errors.Wrap(err, "getting user")
	}

	return user, nil
}

// Search finds users by name or email.
func (e *Users) Search(ctx context.Context, query string, params *QueryParams) (*Collection[*User], error) {
	list, err := searchAction[*User](ctx, e.Endpoint, query, params.Params())
	if err != nil {
		return nil, errors.Wrap(err, "searching users")
	}

	return list, nil
}
