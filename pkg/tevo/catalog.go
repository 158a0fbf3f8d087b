package tevo

import (
	"context"
	"strconv"

	"github.com/cockroachdb/errors"
)

// Catalog resources.
var (
	CategoriesResource     = Resource{Type: "Categories", Plural: "categories", Singular: "category"}
	ConfigurationsResource = Resource{Type: "Configurations", Plural: "configurations", Singular: "configuration"}
	EventsResource         = Resource{Type: "Events", Plural: "events", Singular: "event"}
	PerformersResource     = Resource{Type: "Performers", Plural: "performers", Singular: "performer"}
	TicketGroupsResource   = Resource{Type: "TicketGroups", Plural: "ticket_groups", Singular: "ticket_group"}
	VenuesResource         = Resource{Type: "Venues", Plural: "venues", Singular: "venue"}
)

func init() {
	RegisterSingular(CategoriesResource, func() Model { return &Category{} })
	RegisterSingular(ConfigurationsResource, func() Model { return &Configuration{} })
	RegisterSingular(EventsResource, func() Model { return &Event{} })
	RegisterSingular(PerformersResource, func() Model { return &Performer{} })
	RegisterSingular(TicketGroupsResource, func() Model { return &TicketGroup{} })
	RegisterSingular(VenuesResource, func() Model { return &Venue{} })
}

// Categories is the /categories endpoint.
type Categories struct{ *Endpoint }

// Categories returns the categories endpoint.
func (c *Connection) Categories() *Categories {
	return &Categories{newChild(CategoriesResource, c, "")}
}

// List lists categories.
func (e *Categories) List(ctx context.Context, params *QueryParams) (*Collection[*Category], error) {
	list, err := listAction[*Category](ctx, e.Endpoint, "", params.Params())
	if err != nil {
		return nil, errors.Wrap(err, "listing categories")
	}

	return list, nil
}

// Show fetches one category.
func (e *Categories) Show(ctx context.Context, id int64) (*Category, error) {
	category, err := showAction[*Category](ctx, e.Endpoint, id)
	if err != nil {
		return nil, errors.Wrap(err, "getting category")
	}

	return category, nil
}

// Deleted lists deleted categories.
func (e *Categories) Deleted(ctx context.Context, params *QueryParams) (*Collection[*Category], error) {
	list, err := deletedAction[*Category](ctx, e.Endpoint, params.Params())
	if err != nil {
		return nil, errors.Wrap(err, "listing deleted categories")
	}

	return list, nil
}

// Configurations is the /configurations endpoint.
type Configurations struct{ *Endpoint }

// Configurations returns the venue configurations endpoint.
func (c *Connection) Configurations() *Configurations {
	return &Configurations{newChild(ConfigurationsResource, c, "")}
}

// List lists configurations, usually filtered by venue_id.
func (e *Configurations) List(ctx context.Context, params *QueryParams) (*Collection[*Configuration], error) {
	list, err := listAction[*Configuration](ctx, e.Endpoint, "", params.Params())
	if err != nil {
		return nil, errors.Wrap(err, "listing configurations")
	}

	return list, nil
}

// Show fetches one configuration.
func (e *Configurations) Show(ctx context.Context, id int64) (*Configuration, error) {
	configuration, err := showAction[*Configuration](ctx, e.Endpoint, id)
	if err != nil {
		return nil, errors.Wrap(err, "getting configuration")
	}

	return configuration, nil
}

// Events is the /events endpoint.
type Events struct{ *Endpoint }

// Events returns the events endpoint.
func (c *Connection) Events() *Events {
	return &Events{newChild(EventsResource, c, "")}
}

// List lists events.
func (e *Events) List(ctx context.Context, params *QueryParams) (*Collection[*Event], error) {
	list, err := listAction[*Event](ctx, e.Endpoint, "", params.Params())
	if err != nil {
		return nil, errors.Wrap(err, "listing events")
	}

	return list, nil
}

// Show fetches one event.
func (e *Events) Show(ctx context.Context, id int64) (*Event, error) {
	event, err := showAction[*Event](ctx, e.Endpoint, id)
	if err != nil {
		return nil, errors.Wrap(err, "getting event")
	}

	return event, nil
}

// Deleted lists deleted events.
func (e *Events) Deleted(ctx context.Context, params *QueryParams) (*Collection[*Event], error) {
	list, err := deletedAction[*Event](ctx, e.Endpoint, params.Params())
	if err != nil {
		return nil, errors.Wrap(err, "listing deleted events")
	}

	return list, nil
}

// Performers is the /performers endpoint.
type Performers struct{ *Endpoint }

// Performers returns the performers endpoint.
func (c *Connection) Performers() *Performers {
	return &Performers{newChild(PerformersResource, c, "")}
}

// List lists performers.
func (e *Performers) List(ctx context.Context, params *QueryParams) (*Collection[*Performer], error) {
	list, err := listAction[*Performer](ctx, e.Endpoint, "", params.Params())
	if err != nil {
		return nil, errors.Wrap(err, "listing performers")
	}

	return list, nil
}

// Show fetches one performer.
func (e *Performers) Show(ctx context.Context, id int64) (*Performer, error) {
	performer, err := showAction[*Performer](ctx, e.Endpoint, id)
	if err != nil {
		return nil, errors.Wrap(err, "getting performer")
	}

	return performer, nil
}

// Deleted lists deleted performers.
func (e *Performers) Deleted(ctx context.Context, params *QueryParams) (*Collection[*Performer], error) {
	list, err := deletedAction[*Performer](ctx, e.Endpoint, params.Params())
	if err != nil {
		return nil, errors.Wrap(err, "listing deleted performers")
	}

	return list, nil
}

// Search finds performers by name.
func (e *Performers) Search(ctx context.Context, query string, params *QueryParams) (*Collection[*Performer], error) {
	list, err := searchAction[*Performer](ctx, e.Endpoint, query, params.Params())
	if err != nil {
		return nil, errors.Wrap(err, "searching performers")
	}

	return list, nil
}

// TicketGroups is the /ticket_groups endpoint.
type TicketGroups struct{ *Endpoint }

// TicketGroups returns the ticket groups endpoint.
func (c *Connection) TicketGroups() *TicketGroups {
	return &TicketGroups{newChild(TicketGroupsResource, c, "")}
}

// List lists the ticket groups of an event.
func (e *TicketGroups) List(ctx context.Context, eventID int64, params *QueryParams) (*Collection[*TicketGroup], error) {
	if eventID <= 0 {
		return nil, errors.Wrap(ErrInvalidParam, "event id is required to list ticket groups")
	}

	merged := params.Params()
	if merged == nil {
		merged = Params{}
	}

	merged["event_id"] = strconv.FormatInt(eventID, 10)

	list, err := listAction[*TicketGroup](ctx, e.Endpoint, "", merged)
	if err != nil {
		return nil, errors.Wrap(err, "listing ticket groups")
	}

	return list, nil
}

// Show fetches one ticket group.
func (e *TicketGroups) Show(ctx context.Context, id int64) (*TicketGroup, error) {
	group, err := showAction[*TicketGroup](ctx, e.Endpoint, id)
	if err != nil {
		return nil, errors.Wrap(err, "getting ticket group")
	}

	return group, nil
}

// Venues is the /venues endpoint.
type Venues struct{ *Endpoint }

// Venues returns the venues endpoint.
func (c *Connection) Venues() *Venues {
	return &Venues{newChild(VenuesResource, c, "")}
}

// List lists venues.
func (e *Venues) List(ctx context.Context, params *QueryParams) (*Collection[*Venue], error) {
	list, err := listAction[*Venue](ctx, e.Endpoint, "", params.Params())
	if err != nil {
		return nil, errors.Wrap(err, "listing venues")
	}

	return list, nil
}

// Show fetches one venue.
func (e *Venues) Show(ctx context.Context, id int64) (*Venue, error) {
	venue, err := showAction[*Venue](ctx, e.Endpoint, id)
	if err != nil {
		return nil, errors.Wrap(err, "getting venue")
	}

	return venue, nil
}

// Deleted lists deleted venues.
func (e *Venues) Deleted(ctx context.Context, params *QueryParams) (*Collection[*Venue], error) {
	list, err := deletedAction[*Venue](ctx, e.Endpoint, params.Params())
	if err != nil {
		return nil, errors.Wrap(err, "listing deleted venues")
	}

	return list, nil
}

// Search finds venues by name.
func (e *Venues) Search(ctx context.Context, query string, params *QueryParams) (*Collection[*Venue], error) {
	list, err := searchAction[*Venue](ctx, e.Endpoint, query, params.Params())
	if err != nil {
		return nil, errors.Wrap(err, "searching venues")
	}

	return list, nil
}
