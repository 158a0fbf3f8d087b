package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/tevo/internal/constants"
	"github.com/fivetwenty-io/tevo/pkg/tevo"
	"github.com/spf13/cobra"
)

// listFunc fetches one page of a resource.
type listFunc[T tevo.Model] func(ctx context.Context, cmd *cobra.Command, conn *tevo.Connection, params *tevo.QueryParams) (*tevo.Collection[T], error)

// resourceCommand describes the read commands of one resource.
type resourceCommand[T tevo.Model] struct {
	use     string
	short   string
	aliases []string
	headers []string
	row     func(T) []string

	list      listFunc[T]
	listFlags func(cmd *cobra.Command)
	show      func(ctx context.Context, conn *tevo.Connection, id int64) (T, error)
	search    func(ctx context.Context, conn *tevo.Connection, query string, params *tevo.QueryParams) (*tevo.Collection[T], error)
}

func (r resourceCommand[T]) build() *cobra.Command {
	cmd := &cobra.Command{
		Use:     r.use,
		Aliases: r.aliases,
		Short:   r.short,
	}

	cmd.AddCommand(r.listCommand())
	cmd.AddCommand(r.getCommand())

	if r.search != nil {
		cmd.AddCommand(r.searchCommand())
	}

	return cmd
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().Int("page", 0, "page number")
	cmd.Flags().Int("per-page", 0, "entries per page")
	cmd.Flags().String("order-by", "", "sort order, e.g. \"events.occurs_at DESC\"")
	cmd.Flags().StringSlice("filter", nil, "filter as key=value (repeatable)")
	cmd.Flags().Bool("all", false, "fetch every page")
}

func queryParamsFromFlags(cmd *cobra.Command) (*tevo.QueryParams, error) {
	params := tevo.NewQueryParams()

	page, _ := cmd.Flags().GetInt("page")
	perPage, _ := cmd.Flags().GetInt("per-page")
	orderBy, _ := cmd.Flags().GetString("order-by")
	filters, _ := cmd.Flags().GetStringSlice("filter")

	params.WithPage(page).WithPerPage(perPage).WithOrderBy(orderBy)

	for _, filter := range filters {
		parts := strings.SplitN(filter, "=", constants.KeyValueParts)
		if len(parts) != constants.KeyValueParts || parts[0] == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidKeyValue, filter)
		}

		params.WithFilter(parts[0], parts[1])
	}

	return params, nil
}

func (r resourceCommand[T]) listCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + r.use,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := newConnection(cmd)
			if err != nil {
				return err
			}

			defer func() { _ = conn.Close() }()

			params, err := queryParamsFromFlags(cmd)
			if err != nil {
				return err
			}

			all, _ := cmd.Flags().GetBool("all")
			if !all {
				page, err := r.list(cmd.Context(), cmd, conn, params)
				if err != nil {
					return err
				}

				return r.renderList(cmd, page.Entries, page)
			}

			entries, err := tevo.FetchAllPages[T](cmd.Context(), func(ctx context.Context, page int) (*tevo.Collection[T], error) {
				pageParams := *params
				pageParams.Page = page

				return r.list(ctx, cmd, conn, &pageParams)
			})
			if err != nil {
				return err
			}

			return r.renderList(cmd, entries, nil)
		},
	}

	addListFlags(cmd)

	if r.listFlags != nil {
		r.listFlags(cmd)
	}

	return cmd
}

func (r resourceCommand[T]) getCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			conn, err := newConnection(cmd)
			if err != nil {
				return err
			}

			defer func() { _ = conn.Close() }()

			record, err := r.show(cmd.Context(), conn, id)
			if err != nil {
				return err
			}

			return render(cmd, record, &table{headers: r.headers, rows: [][]string{r.row(record)}})
		},
	}
}

func (r resourceCommand[T]) searchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search " + r.use,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(args[0]) == "" {
				return ErrQueryRequired
			}

			conn, err := newConnection(cmd)
			if err != nil {
				return err
			}

			defer func() { _ = conn.Close() }()

			params, err := queryParamsFromFlags(cmd)
			if err != nil {
				return err
			}

			page, err := r.search(cmd.Context(), conn, args[0], params)
			if err != nil {
				return err
			}

			return r.renderList(cmd, page.Entries, page)
		},
	}

	cmd.Flags().Int("page", 0, "page number")
	cmd.Flags().Int("per-page", 0, "entries per page")
	cmd.Flags().String("order-by", "", "sort order")
	cmd.Flags().StringSlice("filter", nil, "filter as key=value (repeatable)")

	return cmd
}

// renderList prints entries; structured output keeps the paging metadata of
// a single page.
func (r resourceCommand[T]) renderList(cmd *cobra.Command, entries []T, page *tevo.Collection[T]) error {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, r.row(entry))
	}

	var v interface{} = entries
	if page != nil {
		v = page
	}

	err := render(cmd, v, &table{headers: r.headers, rows: rows})
	if err != nil {
		return err
	}

	if page != nil && page.HasNextPage() && isTableOutput() {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Page %d of %d (%d entries); use --page or --all for more\n",
			page.CurrentPage, page.TotalPages(), page.TotalEntries)
	}

	return nil
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}

func refName(ref *tevo.Ref) string {
	if ref == nil {
		return NotAvailable
	}

	if ref.Name != "" {
		return ref.Name
	}

	return idString(ref.ID)
}

func timeString(t *time.Time) string {
	if t == nil {
		return NotAvailable
	}

	return t.Format(time.RFC3339)
}

// NewAccountsCommand creates the accounts command group.
func NewAccountsCommand() *cobra.Command {
	return resourceCommand[*tevo.Account]{
		use:     "accounts",
		short:   "Browse brokerage accounts",
		headers: []string{"ID", "Client", "Balance", "Currency", "Updated"},
		row: func(a *tevo.Account) []string {
			return []string{idString(a.ID), refName(a.Client), orNA(a.Balance), orNA(a.Currency), timeString(a.UpdatedAt)}
		},
		list: func(ctx context.Context, _ *cobra.Command, conn *tevo.Connection, params *tevo.QueryParams) (*tevo.Collection[*tevo.Account], error) {
			return conn.Accounts().List(ctx, params)
		},
		show: func(ctx context.Context, conn *tevo.Connection, id int64) (*tevo.Account, error) {
			return conn.Accounts().Show(ctx, id)
		},
	}.build()
}

// NewPerformersCommand creates the performers command group.
func NewPerformersCommand() *cobra.Command {
	return resourceCommand[*tevo.Performer]{
		use:     "performers",
		short:   "Browse performers",
		headers: []string{"ID", "Name", "Category", "Upcoming"},
		row: func(p *tevo.Performer) []string {
			upcoming := NotAvailable
			if p.UpcomingEvents != nil && p.UpcomingEvents.First != nil {
				upcoming = timeString(p.UpcomingEvents.First)
			}

			return []string{idString(p.ID), p.Name, refName(p.Category), upcoming}
		},
		list: func(ctx context.Context, _ *cobra.Command, conn *tevo.Connection, params *tevo.QueryParams) (*tevo.Collection[*tevo.Performer], error) {
			return conn.Performers().List(ctx, params)
		},
		show: func(ctx context.Context, conn *tevo.Connection, id int64) (*tevo.Performer, error) {
			return conn.Performers().Show(ctx, id)
		},
		search: func(ctx context.Context, conn *tevo.Connection, query string, params *tevo.QueryParams) (*tevo.Collection[*tevo.Performer], error) {
			return conn.Performers().Search(ctx, query, params)
		},
	}.build()
}

// NewEventsCommand creates the events command group.
func NewEventsCommand() *cobra.Command {
	return resourceCommand[*tevo.Event]{
		use:     "events",
		short:   "Browse events",
		headers: []string{"ID", "Name", "Occurs At", "Venue", "State"},
		row: func(e *tevo.Event) []string {
			return []string{idString(e.ID), e.Name, timeString(e.OccursAt), refName(e.Venue), orNA(e.State)}
		},
		list: func(ctx context.Context, _ *cobra.Command, conn *tevo.Connection, params *tevo.QueryParams) (*tevo.Collection[*tevo.Event], error) {
			return conn.Events().List(ctx, params)
		},
		show: func(ctx context.Context, conn *tevo.Connection, id int64) (*tevo.Event, error) {
			return conn.Events().Show(ctx, id)
		},
	}.build()
}

// NewVenuesCommand creates the venues command group.
func NewVenuesCommand() *cobra.Command {
	return resourceCommand[*tevo.Venue]{
		use:     "venues",
		short:   "Browse venues",
		headers: []string{"ID", "Name", "Location"},
		row: func(v *tevo.Venue) []string {
			return []string{idString(v.ID), v.Name, orNA(v.Location)}
		},
		list: func(ctx context.Context, _ *cobra.Command, conn *tevo.Connection, params *tevo.QueryParams) (*tevo.Collection[*tevo.Venue], error) {
			return conn.Venues().List(ctx, params)
		},
		show: func(ctx context.Context, conn *tevo.Connection, id int64) (*tevo.Venue, error) {
			return conn.Venues().Show(ctx, id)
		},
		search: func(ctx context.Context, conn *tevo.Connection, query string, params *tevo.QueryParams) (*tevo.Collection[*tevo.Venue], error) {
			return conn.Venues().Search(ctx, query, params)
		},
	}.build()
}

// NewTicketGroupsCommand creates the ticket-groups command group.
func NewTicketGroupsCommand() *cobra.Command {
	return resourceCommand[*tevo.TicketGroup]{
		use:     "ticket-groups",
		aliases: []string{"tg"},
		short:   "Browse ticket groups",
		headers: []string{"ID", "Section", "Row", "Available", "Retail", "Format"},
		row: func(t *tevo.TicketGroup) []string {
			return []string{
				idString(t.ID),
				orNA(t.Section),
				orNA(t.Row),
				strconv.Itoa(t.AvailableQuantity),
				strconv.FormatFloat(t.RetailPrice, 'f', 2, 64),
				orNA(t.Format),
			}
		},
		list: func(ctx context.Context, cmd *cobra.Command, conn *tevo.Connection, params *tevo.QueryParams) (*tevo.Collection[*tevo.TicketGroup], error) {
			eventID, _ := cmd.Flags().GetInt64("event-id")
			if eventID <= 0 {
				return nil, ErrEventIDRequired
			}

			return conn.TicketGroups().List(ctx, eventID, params)
		},
		listFlags: func(cmd *cobra.Command) {
			cmd.Flags().Int64("event-id", 0, "event whose ticket groups to list (required)")
		},
		show: func(ctx context.Context, conn *tevo.Connection, id int64) (*tevo.TicketGroup, error) {
			return conn.TicketGroups().Show(ctx, id)
		},
	}.build()
}
