// Package tevo is a client for the Ticket Evolution marketplace API.
//
// Every endpoint hangs off a parent chain that ends at a *Connection, which
// owns the credentials and the Transport. An endpoint's path is derived from
// that chain:
//
//	conn.Clients().Addresses(12).BasePath() // "/clients/12/addresses"
//
// Endpoint.Request issues a call, normalizes the response into an Envelope and
// follows redirects. Responses the API rejects come back as an *APIError value
// rather than an error:
//
//	env, apiErr, err := endpoint.Request(ctx, tevo.MethodGet, "/1", nil)
//	switch {
//	case err != nil:
//		// the call could not be made
//	case apiErr != nil:
//		// the API said no
//	default:
//		// env.Body holds the payload
//	}
//
// Typed resource methods such as Performers().Show fold the *APIError into
// the returned error; use errors.As or IsNotFound to branch on it.
//
// # Caching
//
// Successful GET responses can be cached in memory, in a NATS key/value bucket
// or in Redis by setting Config.Cache. Caching is off by default.
package tevo
