package tevo

// Classification is the outcome class of a response status.
type Classification int

const (
	// ClassSuccess means the body is the requested payload.
	ClassSuccess Classification = iota
	// ClassRedirect means the request must be re-issued against another path.
	ClassRedirect
	// ClassApplicationError means the API rejected the call.
	ClassApplicationError
	// ClassUnknown is a code outside the table and outside the 2xx-5xx
	// ranges. It is not an error by itself; callers branch on the code.
	ClassUnknown
)

// UnknownStatusMessage is the server message for codes missing from the table.
const UnknownStatusMessage = "Unknown Error"

// String returns a readable name for the classification.
func (c Classification) String() string {
	switch c {
	case ClassSuccess:
		return "success"
	case ClassRedirect:
		return "redirect"
	case ClassApplicationError:
		return "application_error"
	case ClassUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// Status describes one entry of the status taxonomy.
type Status struct {
	Class   Classification
	Title   string
	Message string
}

var statusTable = map[int]Status{
	200: {ClassSuccess, "OK", "Request succeeded"},
	201: {ClassSuccess, "Created", "The resource was created"},
	202: {ClassSuccess, "Accepted", "The request was accepted for processing"},
	204: {ClassSuccess, "No Content", "Request succeeded with no body"},

	301: {ClassRedirect, "Moved Permanently", "The resource has moved permanently"},
	302: {ClassRedirect, "Found", "The resource resides temporarily under a different path"},
	303: {ClassRedirect, "See Other", "The response can be found under a different path"},
	307: {ClassRedirect, "Temporary Redirect", "Repeat the request against the new path"},
	308: {ClassRedirect, "Permanent Redirect", "Repeat the request and future requests against the new path"},

	400: {ClassApplicationError, "Bad Request", "The request was malformed"},
	401: {ClassApplicationError, "Unauthorized", "Authorization failure: the token or signature is missing or invalid"},
	402: {ClassApplicationError, "Payment Required", "The account cannot perform this action until payment is made"},
	403: {ClassApplicationError, "Forbidden", "The credentials do not grant access to this resource"},
	404: {ClassApplicationError, "Not Found", "The requested resource could not be found"},
	405: {ClassApplicationError, "Method Not Allowed", "The resource does not support this method"},
	406: {ClassApplicationError, "Not Acceptable", "The requested representation is not available"},
	409: {ClassApplicationError, "Conflict", "The request conflicts with the current state of the resource"},
	410: {ClassApplicationError, "Gone", "The resource is no longer available"},
	415: {ClassApplicationError, "Unsupported Media Type", "The request body format is not supported"},
	422: {ClassApplicationError, "Unprocessable Entity", "Validation failure: the request parameters were rejected"},
	429: {ClassApplicationError, "Too Many Requests", "The rate limit for these credentials was exceeded"},

	500: {ClassApplicationError, "Internal Server Error", "Server fault: the API failed to process a well formed request"},
	502: {ClassApplicationError, "Bad Gateway", "The API received an invalid response from an upstream server"},
	503: {ClassApplicationError, "Service Unavailable", "The API is temporarily unavailable"},
	504: {ClassApplicationError, "Gateway Timeout", "The API did not respond in time"},
}

// LookupStatus returns the taxonomy entry for code. Codes outside the table
// carry UnknownStatusMessage and are classified by range: 4xx and 5xx are
// application errors, anything outside 200-599 is ClassUnknown.
func LookupStatus(code int) Status {
	if status, ok := statusTable[code]; ok {
		return status
	}

	status := Status{Title: UnknownStatusMessage, Message: UnknownStatusMessage}

	switch {
	case code >= 200 && code < 300:
		status.Class = ClassSuccess
	case code >= 300 && code < 400:
		status.Class = ClassRedirect
	case code >= 400 && code < 600:
		status.Class = ClassApplicationError
	default:
		status.Class = ClassUnknown
	}

	return status
}

// KnownStatusCodes returns every code present in the taxonomy.
func KnownStatusCodes() []int {
	codes := make([]int, 0, len(statusTable))
	for code := range statusTable {
		codes = append(codes, code)
	}

	return codes
}
