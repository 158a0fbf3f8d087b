package tevo

import "time"

// Ref is a compact reference to a related record.
type Ref struct {
	ID   int64  `json:"id"             yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	URL  string `json:"url,omitempty"  yaml:"url,omitempty"`
}

// UpcomingEvents bounds the dates of upcoming events.
type UpcomingEvents struct {
	First *time.Time `json:"first,omitempty" yaml:"first,omitempty"`
	Last  *time.Time `json:"last,omitempty"  yaml:"last,omitempty"`
}

// Account is a brokerage's balance in one currency.
type Account struct {
	Record `yaml:",inline"`

	Balance   string     `json:"balance"              yaml:"balance"`
	Currency  string     `json:"currency"             yaml:"currency"`
	Client    *Ref       `json:"client,omitempty"     yaml:"client,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Brokerage is a ticket broker.
type Brokerage struct {
	Record `yaml:",inline"`

	Name         string     `json:"name"                 yaml:"name"`
	Abbreviation string     `json:"abbreviation"         yaml:"abbreviation"`
	NATBMember   bool       `json:"natb_member"          yaml:"natb_member"`
	Logo         string     `json:"logo,omitempty"       yaml:"logo,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Category groups events and performers (e.g. "Sports > Baseball").
type Category struct {
	Record `yaml:",inline"`

	Name      string     `json:"name"                 yaml:"name"`
	Slug      string     `json:"slug,omitempty"       yaml:"slug,omitempty"`
	Parent    *Ref       `json:"parent,omitempty"     yaml:"parent,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Client is a customer of the brokerage.
type Client struct {
	Record `yaml:",inline"`

	Name           string         `json:"name"                      yaml:"name"`
	Office         *Ref           `json:"office,omitempty"          yaml:"office,omitempty"`
	Tags           []string       `json:"tags,omitempty"            yaml:"tags,omitempty"`
	Notes          string         `json:"notes,omitempty"           yaml:"notes,omitempty"`
	Addresses      []Address      `json:"addresses,omitempty"       yaml:"addresses,omitempty"`
	EmailAddresses []EmailAddress `json:"email_addresses,omitempty" yaml:"email_addresses,omitempty"`
	PhoneNumbers   []PhoneNumber  `json:"phone_numbers,omitempty"   yaml:"phone_numbers,omitempty"`
	UpdatedAt      *time.Time     `json:"updated_at,omitempty"      yaml:"updated_at,omitempty"`
}

// Address is a postal address of a client or office.
type Address struct {
	Record `yaml:",inline"`

	Label           string `json:"label,omitempty"            yaml:"label,omitempty"`
	Name            string `json:"name,omitempty"             yaml:"name,omitempty"`
	Company         string `json:"company,omitempty"          yaml:"company,omitempty"`
	StreetAddress   string `json:"street_address"             yaml:"street_address"`
	ExtendedAddress string `json:"extended_address,omitempty" yaml:"extended_address,omitempty"`
	Locality        string `json:"locality"                   yaml:"locality"`
	Region          string `json:"region"                     yaml:"region"`
	PostalCode      string `json:"postal_code"                yaml:"postal_code"`
	CountryCode     string `json:"country_code"               yaml:"country_code"`
	Primary         bool   `json:"primary"                    yaml:"primary"`
}

// EmailAddress is a client email address.
type EmailAddress struct {
	Record `yaml:",inline"`

	Label   string `json:"label,omitempty" yaml:"label,omitempty"`
	Address string `json:"address"         yaml:"address"`
	Primary bool   `json:"primary"         yaml:"primary"`
}

// PhoneNumber is a client phone number.
type PhoneNumber struct {
	Record `yaml:",inline"`

	Label       string `json:"label,omitempty"        yaml:"label,omitempty"`
	CountryCode string `json:"country_code,omitempty" yaml:"country_code,omitempty"`
	Number      string `json:"number"                 yaml:"number"`
	Extension   string `json:"extension,omitempty"    yaml:"extension,omitempty"`
	Primary     bool   `json:"primary"                yaml:"primary"`
}

// CreditCard is a stored client card. Only the last digits are ever returned.
type CreditCard struct {
	Record `yaml:",inline"`

	Label           string `json:"label,omitempty"  yaml:"label,omitempty"`
	Name            string `json:"name"             yaml:"name"`
	CardCompany     string `json:"card_company"     yaml:"card_company"`
	LastDigits      string `json:"last_digits"      yaml:"last_digits"`
	ExpirationMonth string `json:"expiration_month" yaml:"expiration_month"`
	ExpirationYear  string `json:"expiration_year"  yaml:"expiration_year"`
}

// SeatingChart links to venue map images.
type SeatingChart struct {
	Medium string `json:"medium,omitempty" yaml:"medium,omitempty"`
	Large  string `json:"large,omitempty"  yaml:"large,omitempty"`
}

// Configuration is one seating layout of a venue.
type Configuration struct {
	Record `yaml:",inline"`

	Name         string        `json:"name"                    yaml:"name"`
	Capacity     int           `json:"capacity,omitempty"      yaml:"capacity,omitempty"`
	Primary      bool          `json:"primary"                 yaml:"primary"`
	General      bool          `json:"general_admission"       yaml:"general_admission"`
	Venue        *Ref          `json:"venue,omitempty"         yaml:"venue,omitempty"`
	SeatingChart *SeatingChart `json:"seating_chart,omitempty" yaml:"seating_chart,omitempty"`
}

// Performance ties a performer to an event.
type Performance struct {
	Primary   bool `json:"primary"   yaml:"primary"`
	Performer Ref  `json:"performer" yaml:"performer"`
}

// Event is a single dated happening at a venue.
type Event struct {
	Record `yaml:",inline"`

	Name          string        `json:"name"                     yaml:"name"`
	OccursAt      *time.Time    `json:"occurs_at,omitempty"      yaml:"occurs_at,omitempty"`
	State         string        `json:"state,omitempty"          yaml:"state,omitempty"`
	Venue         *Ref          `json:"venue,omitempty"          yaml:"venue,omitempty"`
	Category      *Ref          `json:"category,omitempty"       yaml:"category,omitempty"`
	Configuration *Ref          `json:"configuration,omitempty"  yaml:"configuration,omitempty"`
	Performances  []Performance `json:"performances,omitempty"   yaml:"performances,omitempty"`
	ProductsCount int           `json:"products_count,omitempty" yaml:"products_count,omitempty"`
	UpdatedAt     *time.Time    `json:"updated_at,omitempty"     yaml:"updated_at,omitempty"`
}

// Office is a location of a brokerage.
type Office struct {
	Record `yaml:",inline"`

	Name      string     `json:"name"                 yaml:"name"`
	Brokerage *Ref       `json:"brokerage,omitempty"  yaml:"brokerage,omitempty"`
	Main      bool       `json:"main"                 yaml:"main"`
	Phone     string     `json:"phone,omitempty"      yaml:"phone,omitempty"`
	Fax       string     `json:"fax,omitempty"        yaml:"fax,omitempty"`
	Email     []string   `json:"email,omitempty"      yaml:"email,omitempty"`
	Timezone  string     `json:"time_zone,omitempty"  yaml:"time_zone,omitempty"`
	Address   *Address   `json:"address,omitempty"    yaml:"address,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ID          int64  `json:"id"                     yaml:"id"`
	Quantity    int    `json:"quantity"               yaml:"quantity"`
	Price       string `json:"price"                  yaml:"price"`
	TicketGroup *Ref   `json:"ticket_group,omitempty" yaml:"ticket_group,omitempty"`
}

// Order is a purchase or sale.
type Order struct {
	Record `yaml:",inline"`

	OID       string      `json:"oid,omitempty"        yaml:"oid,omitempty"`
	State     string      `json:"state"                yaml:"state"`
	Subtotal  string      `json:"subtotal,omitempty"   yaml:"subtotal,omitempty"`
	Total     string      `json:"total,omitempty"      yaml:"total,omitempty"`
	Balance   string      `json:"balance,omitempty"    yaml:"balance,omitempty"`
	Buyer     *Ref        `json:"buyer,omitempty"      yaml:"buyer,omitempty"`
	Seller    *Ref        `json:"seller,omitempty"     yaml:"seller,omitempty"`
	Client    *Ref        `json:"client,omitempty"     yaml:"client,omitempty"`
	Items     []OrderItem `json:"items,omitempty"      yaml:"items,omitempty"`
	CreatedAt *time.Time  `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt *time.Time  `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Performer is an artist, team or act.
type Performer struct {
	Record `yaml:",inline"`

	Name           string          `json:"name"                      yaml:"name"`
	Slug           string          `json:"slug,omitempty"            yaml:"slug,omitempty"`
	Category       *Ref            `json:"category,omitempty"        yaml:"category,omitempty"`
	Venue          *Ref            `json:"venue,omitempty"           yaml:"venue,omitempty"`
	UpcomingEvents *UpcomingEvents `json:"upcoming_events,omitempty" yaml:"upcoming_events,omitempty"`
	Popularity     float64         `json:"popularity_score"          yaml:"popularity_score"`
	UpdatedAt      *time.Time      `json:"updated_at,omitempty"      yaml:"updated_at,omitempty"`
}

// Shipment is the delivery of an order's tickets.
type Shipment struct {
	Record `yaml:",inline"`

	State          string     `json:"state"                     yaml:"state"`
	Type           string     `json:"type"                      yaml:"type"`
	ServiceType    string     `json:"service_type,omitempty"    yaml:"service_type,omitempty"`
	TrackingNumber string     `json:"tracking_number,omitempty" yaml:"tracking_number,omitempty"`
	Order          *Ref       `json:"order,omitempty"           yaml:"order,omitempty"`
	CreatedAt      *time.Time `json:"created_at,omitempty"      yaml:"created_at,omitempty"`
}

// TicketGroup is a block of seats listed for sale.
type TicketGroup struct {
	Record `yaml:",inline"`

	Section           string     `json:"section"                yaml:"section"`
	Row               string     `json:"row"                    yaml:"row"`
	Quantity          int        `json:"quantity"               yaml:"quantity"`
	AvailableQuantity int        `json:"available_quantity"     yaml:"available_quantity"`
	RetailPrice       float64    `json:"retail_price"           yaml:"retail_price"`
	WholesalePrice    float64    `json:"wholesale_price"        yaml:"wholesale_price"`
	Splits            []int      `json:"splits,omitempty"       yaml:"splits,omitempty"`
	Format            string     `json:"format,omitempty"       yaml:"format,omitempty"`
	ETicket           bool       `json:"eticket"                yaml:"eticket"`
	PublicNotes       string     `json:"public_notes,omitempty" yaml:"public_notes,omitempty"`
	Event             *Ref       `json:"event,omitempty"        yaml:"event,omitempty"`
	Office            *Ref       `json:"office,omitempty"       yaml:"office,omitempty"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"   yaml:"updated_at,omitempty"`
}

// User is a login of a brokerage office.
type User struct {
	Record `yaml:",inline"`

	Name      string     `json:"name"                 yaml:"name"`
	Email     string     `json:"email"                yaml:"email"`
	Phone     string     `json:"phone,omitempty"      yaml:"phone,omitempty"`
	Office    *Ref       `json:"office,omitempty"     yaml:"office,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Venue is a place events occur.
type Venue struct {
	Record `yaml:",inline"`

	Name           string          `json:"name"                      yaml:"name"`
	Slug           string          `json:"slug,omitempty"            yaml:"slug,omitempty"`
	Location       string          `json:"location,omitempty"        yaml:"location,omitempty"`
	Address        *Address        `json:"address,omitempty"         yaml:"address,omitempty"`
	UpcomingEvents *UpcomingEvents `json:"upcoming_events,omitempty" yaml:"upcoming_events,omitempty"`
	Popularity     float64         `json:"popularity_score"          yaml:"popularity_score"`
	UpdatedAt      *time.Time      `json:"updated_at,omitempty"      yaml:"updated_at,omitempty"`
}
