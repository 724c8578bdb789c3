package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-while/go-modconsole/internal/models"
)

// LoginPath is exempt from the 401 logout rule; a failed login is not an expired session.
const LoginPath = "/auth/login"

// Response is the uniform shape of every backend reply.
// Exactly one of Fields (object body) or Items (bare array body) is set on success.
type Response struct {
	Kind    Kind
	Status  int
	Success bool
	Error   string
	Fields  map[string]json.RawMessage
	Items   json.RawMessage
}

// Normalize turns a raw HTTP reply into a Response. It has no side effects;
// the caller acts on KindAuthRequired.
func Normalize(status int, body []byte, requestURL string) *Response {
	r := &Response{Status: status}

	if status == http.StatusUnauthorized && !strings.Contains(requestURL, LoginPath) {
		return r.fail(KindAuthRequired, MsgAuthRequired)
	}

	trimmed := bytes.TrimSpace(body)
	fields := map[string]json.RawMessage{}
	switch {
	case len(trimmed) == 0:
		// empty body reads as {}
	case trimmed[0] == '{':
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return r.fail(KindMalformed, MsgMalformed)
		}
	case trimmed[0] == '[':
		if !json.Valid(trimmed) {
			return r.fail(KindMalformed, MsgMalformed)
		}
		r.Items = json.RawMessage(trimmed)
		fields = nil
	default:
		return r.fail(KindNonJSON, MsgNonJSON)
	}

	if msg, ok := errorField(fields); ok {
		return r.fail(KindAPIError, msg)
	}
	if status < 200 || status > 299 {
		return r.fail(KindHTTPStatus, fmt.Sprintf(MsgStatusFormat, status))
	}

	r.Fields = fields
	r.Success = true
	if raw, ok := fields["success"]; ok {
		r.Success = truthy(raw)
	}
	if !r.Success {
		r.Kind = KindRejected
		r.Error = stringField(fields, "message")
	}
	return r
}

// networkFailure is the Response for a call that never got an HTTP reply
func networkFailure(err error) *Response {
	msg := MsgNetwork
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return (&Response{}).fail(KindNetwork, msg)
}

func (r *Response) fail(kind Kind, msg string) *Response {
	r.Kind = kind
	r.Success = false
	r.Error = msg
	r.Fields = nil
	r.Items = nil
	return r
}

// errorField reports a truthy "error" member. Non-string errors are shown as JSON text.
func errorField(fields map[string]json.RawMessage) (string, bool) {
	raw, ok := fields["error"]
	if !ok || !truthy(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	return string(raw), true
}

func stringField(fields map[string]json.RawMessage, key string) string {
	var s string
	if raw, ok := fields[key]; ok {
		_ = json.Unmarshal(raw, &s)
	}
	return s
}

// truthy applies JavaScript truthiness to a JSON value
func truthy(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	switch string(v) {
	case "", "null", "false", "0", `""`, "-0":
		return false
	}
	var f float64
	if json.Unmarshal(v, &f) == nil {
		return f != 0
	}
	return true
}

// Err returns nil for a successful reply and an *Error otherwise
func (r *Response) Err() error {
	if r.Success {
		return nil
	}
	return &Error{Kind: r.Kind, Status: r.Status, Message: r.Error}
}

// ErrorOr returns the reply's error text or fallback when it has none
func (r *Response) ErrorOr(fallback string) string {
	if r.Error != "" {
		return r.Error
	}
	return fallback
}

// Has reports whether the object body has a non-null key
func (r *Response) Has(key string) bool {
	raw, ok := r.Fields[key]
	return ok && string(bytes.TrimSpace(raw)) != "null"
}

// Decode unmarshals one top-level member into v
func (r *Response) Decode(key string, v any) error {
	if !r.Has(key) {
		return fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	if err := json.Unmarshal(r.Fields[key], v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// DecodeData unmarshals the "data" envelope, or the whole object when there is none
func (r *Response) DecodeData(v any) error {
	if r.Has("data") {
		return r.Decode("data", v)
	}
	if r.Items != nil {
		return json.Unmarshal(r.Items, v)
	}
	raw, err := json.Marshal(r.Fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// DecodeList finds a list under the first present key, then "data", then "items",
// then a bare array body. A reply without any list decodes to nothing.
func (r *Response) DecodeList(v any, keys ...string) error {
	if r.Items != nil {
		return json.Unmarshal(r.Items, v)
	}
	candidates := append(append([]string{}, keys...), "data", "items")
	for _, key := range candidates {
		if !r.Has(key) {
			continue
		}
		raw := bytes.TrimSpace(r.Fields[key])
		if len(raw) == 0 || raw[0] != '[' {
			continue
		}
		if err := json.Unmarshal(raw, v); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		return nil
	}
	return nil
}

// String returns a top-level string member or ""
func (r *Response) String(key string) string {
	return stringField(r.Fields, key)
}

// Int returns a top-level numeric member
func (r *Response) Int(key string) (int, bool) {
	return intField(r.Fields, key)
}

func intField(fields map[string]json.RawMessage, keys ...string) (int, bool) {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var f float64
		if json.Unmarshal(raw, &f) == nil {
			return int(f), true
		}
	}
	return 0, false
}

// Pagination reads the paging envelope. It checks a "pagination" object first,
// then top-level keys. page and size are what was requested and fill any gaps.
func (r *Response) Pagination(page, size int) *models.PaginationInfo {
	src := r.Fields
	if r.Has("pagination") {
		var nested map[string]json.RawMessage
		if json.Unmarshal(r.Fields["pagination"], &nested) == nil {
			src = nested
		}
	}
	if p, ok := intField(src, "page"); ok {
		page = p
	}
	if s, ok := intField(src, "size", "pageSize", "limit"); ok {
		size = s
	}
	total, _ := intField(src, "totalLogs", "totalItems", "total")
	totalPages, ok := intField(src, "totalPages")
	if !ok {
		totalPages = 1
	}
	return models.NewPaginationInfo(page, size, total, totalPages)
}

// MarshalJSON renders the uniform {success, error?, ...payload} shape
func (r *Response) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+2)
	for k, v := range r.Fields {
		out[k] = v
	}
	if r.Items != nil {
		out["items"] = r.Items
	}
	out["success"] = r.Success
	if !r.Success {
		out["error"] = r.ErrorOr(MsgUnknown)
	}
	return json.Marshal(out)
}
