package apiclient

import "errors"

// Kind classifies a normalized backend reply
type Kind int

const (
	KindOK           Kind = iota // 2xx JSON body, success true or absent
	KindRejected                 // 2xx JSON body with an explicit falsy success and no error
	KindAPIError                 // body carried an error field
	KindHTTPStatus               // non-2xx status without an error field
	KindNonJSON                  // body was not JSON-looking (HTML error page, plain text)
	KindMalformed                // JSON-looking body that failed to parse
	KindAuthRequired             // 401 outside the login endpoint
	KindNetwork                  // no HTTP reply at all
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindRejected:
		return "rejected"
	case KindAPIError:
		return "api_error"
	case KindHTTPStatus:
		return "http_status"
	case KindNonJSON:
		return "non_json"
	case KindMalformed:
		return "malformed"
	case KindAuthRequired:
		return "auth_required"
	case KindNetwork:
		return "network"
	}
	return "unknown"
}

// User-facing messages
const (
	MsgAuthRequired = "Authentication required. Please log in again."
	MsgNonJSON      = "Endpoint returned non-JSON response"
	MsgMalformed    = "Invalid response from server"
	MsgNetwork      = "Network error"
	MsgUnknown      = "Unknown error"
	MsgStatusFormat = "Server returned error code: %d"
)

var (
	ErrRejected     = errors.New("backend rejected the request")
	ErrAPI          = errors.New("backend returned an error")
	ErrHTTPStatus   = errors.New("unexpected http status")
	ErrNonJSON      = errors.New("non-json response")
	ErrMalformed    = errors.New("malformed response")
	ErrAuthRequired = errors.New("authentication required")
	ErrNetwork      = errors.New("network failure")
	ErrMissingField = errors.New("field missing from response")
)

func (k Kind) sentinel() error {
	switch k {
	case KindRejected:
		return ErrRejected
	case KindAPIError:
		return ErrAPI
	case KindHTTPStatus:
		return ErrHTTPStatus
	case KindNonJSON:
		return ErrNonJSON
	case KindMalformed:
		return ErrMalformed
	case KindAuthRequired:
		return ErrAuthRequired
	case KindNetwork:
		return ErrNetwork
	}
	return nil
}

// Error is a failed backend call. Message is safe to show to staff.
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return MsgUnknown
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind.sentinel()
}

// IsAuthRequired reports whether err means the stored credentials are gone
func IsAuthRequired(err error) bool {
	return errors.Is(err, ErrAuthRequired)
}
