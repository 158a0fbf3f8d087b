package constants

import "errors"

// Configuration errors.
var (
	ErrNoCredentials      = errors.New("no API credentials configured, use 'tevo login' or set TEVO_TOKEN and TEVO_SECRET")
	ErrUnknownConfigKey   = errors.New("unknown configuration key")
	ErrInvalidEnvironment = errors.New("environment must be 'production' or 'sandbox'")
	ErrInvalidOutput      = errors.New("output must be 'table', 'json' or 'yaml'")
)

// Argument errors.
var (
	ErrInvalidID       = errors.New("id must be a positive integer")
	ErrInvalidParam    = errors.New("parameters must be given as key=value")
	ErrQueryRequired   = errors.New("search query is required")
	ErrEmptyTerminalIn = errors.New("no secret entered")
)

// Request errors.
var (
	ErrAPIRequestFailed = errors.New("API request failed")
)
