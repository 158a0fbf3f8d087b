package commands

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/tevo/pkg/tevo"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// rawResponse is the printed form of a normalized envelope.
type rawResponse struct {
	Status  int                    `json:"status"  yaml:"status"`
	Message string                 `json:"message" yaml:"message"`
	Class   string                 `json:"class"   yaml:"class"`
	Body    map[string]interface{} `json:"body"    yaml:"body"`
}

// NewRequestCommand creates the request command.
func NewRequestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "request METHOD PATH [key=value...]",
		Short: "Issue a signed request against any API path",
		Long: `Issue a signed request and print the normalized response.

GET and DELETE send the key=value pairs as the query string, POST and PUT as a
JSON body. Redirects are followed. The command exits non-zero when the API
answers with an error status.`,
		Example: `  tevo request GET /events/12
  tevo request GET /performers/search q=yankees per_page=5
  tevo request POST /clients name="Jane Doe"`,
		Args: cobra.MinimumNArgs(2), //nolint:mnd // method and path
		RunE: func(cmd *cobra.Command, args []string) error {
			method := tevo.ParseMethod(args[0])

			resource, path := splitResourcePath(args[1])

			params, err := parseKeyValues(args[2:])
			if err != nil {
				return err
			}

			conn, err := newConnection(cmd)
			if err != nil {
				return err
			}

			defer func() { _ = conn.Close() }()

			endpoint, err := tevo.NewEndpoint(resource, &tevo.Options{Parent: conn})
			if err != nil {
				return err
			}

			env, apiErr, err := endpoint.Request(cmd.Context(), method, path, params)
			if err != nil {
				return err
			}

			response := rawResponse{
				Status:  env.StatusCode,
				Message: env.ServerMessage,
				Class:   env.Class.String(),
				Body:    env.Body,
			}

			err = render(cmd, response, responseTable(response))
			if err != nil {
				return err
			}

			if apiErr != nil {
				return fmt.Errorf("%w: %w", ErrRequestFailed, apiErr)
			}

			return nil
		},
	}
}

// splitResourcePath splits "/events/12/tickets" into the events resource and
// the remaining "/12/tickets".
func splitResourcePath(raw string) (tevo.Resource, string) {
	trimmed := strings.TrimPrefix(raw, "/")

	segment, rest, found := strings.Cut(trimmed, "/")
	if found {
		rest = "/" + rest
	}

	// query strings stay with the remaining path
	if before, query, ok := strings.Cut(segment, "?"); ok {
		segment = before
		rest += "?" + query
	}

	return tevo.Resource{Type: "Request", Plural: segment}, rest
}

// responseTable lays the envelope out as property rows with the body as
// compact JSON.
func responseTable(response rawResponse) *table {
	body, err := json.Marshal(response.Body)
	if err != nil {
		body = []byte(NotAvailable)
	}

	class := cases.Title(language.English).String(strings.ReplaceAll(response.Class, "_", " "))

	return &table{
		headers: []string{"Property", "Value"},
		rows: [][]string{
			{"Status", strconv.Itoa(response.Status)},
			{"Message", orNA(response.Message)},
			{"Class", class},
			{"Body", string(body)},
		},
	}
}
