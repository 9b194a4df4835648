package h2dec

// PromisedRequestVerifier decides whether a server push's synthesized
// request (the header block carried by PUSH_PROMISE) is one the
// decoder should actually accept, per RFC 7540 §8.2's three
// conditions. A client-side decoder supplies a real implementation; a
// server-side decoder (which never receives PUSH_PROMISE) can use the
// default.
type PromisedRequestVerifier interface {
	// IsAuthoritative reports whether the server is authoritative for
	// the request's authority (e.g. certificate/origin match).
	IsAuthoritative(authority string) bool

	// IsCacheable reports whether the promised request's method is
	// understood to be cacheable (RFC 7540 §8.2 requires this for
	// PUSH_PROMISE to be valid at all).
	IsCacheable(method string) bool

	// IsSafe reports whether the promised request's method is safe
	// (again required by §8.2).
	IsSafe(method string) bool
}

// AcceptAllVerifier accepts every promised request unconditionally. It
// is the default for configurations that don't expect to see
// PUSH_PROMISE at all.
type AcceptAllVerifier struct{}

var _ PromisedRequestVerifier = AcceptAllVerifier{}

func (AcceptAllVerifier) IsAuthoritative(string) bool { return true }
func (AcceptAllVerifier) IsCacheable(string) bool     { return true }
func (AcceptAllVerifier) IsSafe(string) bool          { return true }
