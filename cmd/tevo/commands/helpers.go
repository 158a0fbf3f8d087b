package commands

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/fivetwenty-io/tevo/internal/auth"
	"github.com/fivetwenty-io/tevo/internal/constants"
	"github.com/fivetwenty-io/tevo/pkg/tevo"
	"github.com/fivetwenty-io/tevo/pkg/tevoclient"
	"github.com/itchyny/gojq"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"
	Masked       = "***"

	defaultJSONIndent = 2
)

// Common static errors used throughout the commands package.
var (
	ErrNotAuthenticated     = constants.ErrNoCredentials
	ErrInvalidKeyValue      = constants.ErrInvalidParam
	ErrInvalidID            = constants.ErrInvalidID
	ErrUnsupportedOutput    = constants.ErrInvalidOutput
	ErrInvalidEnvironment   = constants.ErrInvalidEnvironment
	ErrUnknownConfigKey     = constants.ErrUnknownConfigKey
	ErrQueryRequired        = constants.ErrQueryRequired
	ErrRequestFailed        = constants.ErrAPIRequestFailed
	ErrEventIDRequired      = errors.New("--event-id is required")
	ErrSecretNotInteractive = errors.New("secret must be given with --secret when stdin is not a terminal")
)

// openStore opens the credential store. Tests replace it with an in-memory keyring.
var openStore = func() (auth.CredentialStore, error) {
	return auth.NewKeyringStore()
}

// SetCredentialStore swaps the credential store opener and returns a restore function.
func SetCredentialStore(fn func() (auth.CredentialStore, error)) func() {
	original := openStore
	openStore = fn

	return func() { openStore = original }
}

// newConnection builds a Connection from flags, environment, config file and
// the credential store.
func newConnection(cmd *cobra.Command) (*tevo.Connection, error) {
	explicit := auth.Credentials{
		Token:  viper.GetString("token"),
		Secret: viper.GetString("secret"),
	}

	var store auth.CredentialStore

	if !explicit.Complete() {
		opened, err := openStore()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
		}

		store = opened
	}

	creds, err := auth.Resolve(store, viper.GetString("profile"), explicit)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	if !creds.Complete() {
		return nil, ErrNotAuthenticated
	}

	config := &tevo.Config{
		Token:       creds.Token,
		Secret:      creds.Secret,
		Environment: viper.GetString("env"),
		APIURL:      viper.GetString("api_url"),
		RateLimit:   viper.GetFloat64("rate_limit"),
		Debug:       viper.GetBool("verbose"),
	}

	if config.Debug {
		config.Logger = NewLogger(cmd.ErrOrStderr(), true)
	}

	cacheConfig, err := cacheConfigFromViper()
	if err != nil {
		return nil, err
	}

	config.Cache = cacheConfig

	conn, err := tevoclient.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return conn, nil
}

func cacheConfigFromViper() (*tevo.CacheConfig, error) {
	cacheType, err := tevo.ParseCacheType(viper.GetString("cache"))
	if err != nil {
		return nil, fmt.Errorf("reading cache setting: %w", err)
	}

	switch cacheType {
	case tevo.CacheTypeNone:
		return nil, nil
	case tevo.CacheTypeRedis:
		return &tevo.CacheConfig{
			Type:  cacheType,
			Redis: &tevo.RedisCacheConfig{Addr: viper.GetString("redis_addr")},
		}, nil
	case tevo.CacheTypeNATS:
		return &tevo.CacheConfig{
			Type: cacheType,
			NATS: &tevo.NATSKVConfig{URL: viper.GetString("nats_url"), Bucket: constants.DefaultNATSBucket},
		}, nil
	default:
		return &tevo.CacheConfig{Type: cacheType}, nil
	}
}

// parseKeyValues turns key=value arguments into request params. Values that
// look like integers, floats or booleans are sent typed; repeated keys become
// lists.
func parseKeyValues(args []string) (tevo.Params, error) {
	params := tevo.Params{}

	for _, arg := range args {
		parts := strings.SplitN(arg, "=", constants.KeyValueParts)
		if len(parts) != constants.KeyValueParts || parts[0] == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidKeyValue, arg)
		}

		key, value := parts[0], typedValue(parts[1])

		existing, ok := params[key]
		if !ok {
			params[key] = value

			continue
		}

		if list, isList := existing.([]interface{}); isList {
			params[key] = append(list, value)
		} else {
			params[key] = []interface{}{existing, value}
		}
	}

	return params, nil
}

func typedValue(raw string) interface{} {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}

	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}

	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}

	return raw
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, arg)
	}

	return id, nil
}

// applyQuery runs a jq expression over v and returns every result.
func applyQuery(ctx context.Context, expr string, v interface{}) ([]interface{}, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parsing query: %w", err)
	}

	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("compiling query: %w", err)
	}

	// gojq only understands plain JSON values
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding query input: %w", err)
	}

	var input interface{}

	err = json.Unmarshal(data, &input)
	if err != nil {
		return nil, fmt.Errorf("decoding query input: %w", err)
	}

	var results []interface{}

	iter := code.RunWithContext(ctx, input)

	for {
		result, ok := iter.Next()
		if !ok {
			break
		}

		if err, isErr := result.(error); isErr {
			var haltErr *gojq.HaltError
			if errors.As(err, &haltErr) && haltErr.Value() == nil {
				break
			}

			return nil, fmt.Errorf("running query: %w", err)
		}

		results = append(results, result)
	}

	return results, nil
}

// table describes how a value renders in table output.
type table struct {
	headers []string
	rows    [][]string
}

// render writes v in the selected output format. The table is used only for
// table output without a query.
func render(cmd *cobra.Command, v interface{}, tbl *table) error {
	out := cmd.OutOrStdout()
	format := viper.GetString("output")

	if expr := viper.GetString("query"); expr != "" {
		results, err := applyQuery(cmd.Context(), expr, v)
		if err != nil {
			return err
		}

		if format == constants.FormatYAML {
			return writeYAML(out, results)
		}

		for _, result := range results {
			err = writeJSON(out, result)
			if err != nil {
				return err
			}
		}

		return nil
	}

	switch format {
	case constants.FormatJSON:
		return writeJSON(out, v)
	case constants.FormatYAML:
		return writeYAML(out, v)
	case constants.FormatTable, "":
		if tbl == nil {
			return writeJSON(out, v)
		}

		return writeTable(out, tbl)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedOutput, format)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", strings.Repeat(" ", defaultJSONIndent))

	err := encoder.Encode(v)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

func writeYAML(w io.Writer, v interface{}) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(defaultJSONIndent)

	err := encoder.Encode(v)
	if err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return encoder.Close()
}

func writeTable(w io.Writer, tbl *table) error {
	writer := tablewriter.NewWriter(w)
	writer.Header(toCells(tbl.headers)...)

	for _, row := range tbl.rows {
		err := writer.Append(toCells(row)...)
		if err != nil {
			return fmt.Errorf("failed to append table row: %w", err)
		}
	}

	err := writer.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, value := range values {
		cells[i] = value
	}

	return cells
}

func orNA(value string) string {
	if value == "" {
		return NotAvailable
	}

	return value
}

func success(w io.Writer, format string, args ...interface{}) {
	_, _ = color.New(color.FgGreen).Fprintf(w, format+"\n", args...)
}

// PrintError writes err to w in red.
func PrintError(w io.Writer, err error) {
	_, _ = color.New(color.FgRed, color.Bold).Fprint(w, "Error: ")
	_, _ = fmt.Fprintln(w, err)
}

// readSecret prompts for a secret without echo. Tests replace it.
var readSecret = func(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", ErrSecretNotInteractive
	}

	_, _ = fmt.Fprint(os.Stderr, prompt)

	secret, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", fmt.Errorf("reading secret: %w", err)
	}

	if len(bytes.TrimSpace(secret)) == 0 {
		return "", constants.ErrEmptyTerminalIn
	}

	return string(bytes.TrimSpace(secret)), nil
}

func readLine(r io.Reader, w io.Writer, prompt string) (string, error) {
	_, _ = fmt.Fprint(w, prompt)

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading input: %w", err)
	}

	return strings.TrimSpace(line), nil
}

func isTableOutput() bool {
	format := viper.GetString("output")

	return viper.GetString("query") == "" && (format == "" || format == constants.FormatTable)
}
