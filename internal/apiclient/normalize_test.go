package apiclient

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testURL = "http://backend/api/admin/punishments"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		url     string
		kind    Kind
		success bool
		errMsg  string
	}{
		{"plain object", 200, `{"punishments":[]}`, testURL, KindOK, true, ""},
		{"explicit success", 200, `{"success":true,"data":{}}`, testURL, KindOK, true, ""},
		{"empty body", 204, ``, testURL, KindOK, true, ""},
		{"whitespace body", 200, "  \n", testURL, KindOK, true, ""},
		{"bare array", 200, `[{"a":1}]`, testURL, KindOK, true, ""},
		{"success false with message", 200, `{"success":false,"message":"Player not found"}`, testURL, KindRejected, false, "Player not found"},
		{"success zero", 200, `{"success":0}`, testURL, KindRejected, false, ""},
		{"error string", 200, `{"error":"Player not found"}`, testURL, KindAPIError, false, "Player not found"},
		{"error object", 400, `{"error":{"code":7}}`, testURL, KindAPIError, false, `{"code":7}`},
		{"falsy error ignored", 200, `{"error":null,"ok":1}`, testURL, KindOK, true, ""},
		{"empty error ignored", 200, `{"error":""}`, testURL, KindOK, true, ""},
		{"error wins over status", 500, `{"error":"boom"}`, testURL, KindAPIError, false, "boom"},
		{"status without error", 500, `{"message":"x"}`, testURL, KindHTTPStatus, false, "Server returned error code: 500"},
		{"status with array", 404, `[]`, testURL, KindHTTPStatus, false, "Server returned error code: 404"},
		{"html page", 502, `<html>Bad gateway</html>`, testURL, KindNonJSON, false, MsgNonJSON},
		{"plain text on 200", 200, `OK`, testURL, KindNonJSON, false, MsgNonJSON},
		{"broken object", 200, `{"a":`, testURL, KindMalformed, false, MsgMalformed},
		{"broken array", 200, `[1,`, testURL, KindMalformed, false, MsgMalformed},
		{"401 elsewhere", 401, `{"error":"expired"}`, testURL, KindAuthRequired, false, MsgAuthRequired},
		{"401 html elsewhere", 401, `<html/>`, testURL, KindAuthRequired, false, MsgAuthRequired},
		{"401 on login", 401, `{"error":"Invalid credentials"}`, "http://backend/api/auth/login", KindAPIError, false, "Invalid credentials"},
		{"401 on login without error", 401, `{}`, "http://backend/api/auth/login", KindHTTPStatus, false, "Server returned error code: 401"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Normalize(tt.status, []byte(tt.body), tt.url)
			require.NotNil(t, r)
			assert.Equal(t, tt.kind, r.Kind, "kind %s", r.Kind)
			assert.Equal(t, tt.success, r.Success)
			assert.Equal(t, tt.errMsg, r.Error)
			assert.Equal(t, tt.status, r.Status)
			if !r.Success && r.Kind != KindRejected {
				assert.Nil(t, r.Fields)
				assert.Nil(t, r.Items)
			}
		})
	}
}

func TestNormalizeKeepsPayload(t *testing.T) {
	r := Normalize(200, []byte(`{"success":true,"data":{"activeBans":3},"extra":"x"}`), testURL)
	require.True(t, r.Success)
	assert.True(t, r.Has("data"))
	assert.Equal(t, "x", r.String("extra"))
	assert.False(t, r.Has("missing"))

	r = Normalize(200, []byte(`{"value":null}`), testURL)
	assert.False(t, r.Has("value"))
}

func TestNormalizeKeepsRejectedPayload(t *testing.T) {
	r := Normalize(200, []byte(`{"success":false,"message":"Player not found","data":{"player":"Steve"}}`), testURL)
	require.False(t, r.Success)
	assert.Equal(t, KindRejected, r.Kind)
	assert.Equal(t, "Player not found", r.Error)
	assert.Equal(t, "Player not found", r.String("message"))
	assert.True(t, r.Has("data"))
	assert.NotNil(t, r.Fields)
}

func TestTruthy(t *testing.T) {
	for _, v := range []string{`true`, `1`, `-2.5`, `"x"`, `"false"`, `{}`, `[]`} {
		assert.True(t, truthy(json.RawMessage(v)), v)
	}
	for _, v := range []string{``, `null`, `false`, `0`, `0.0`, `""`, `-0`} {
		assert.False(t, truthy(json.RawMessage(v)), v)
	}
}

func TestResponseErr(t *testing.T) {
	assert.NoError(t, Normalize(200, []byte(`{}`), testURL).Err())

	err := Normalize(401, nil, testURL).Err()
	require.Error(t, err)
	assert.True(t, IsAuthRequired(err))
	assert.Equal(t, MsgAuthRequired, err.Error())

	err = Normalize(200, []byte(`{"success":false}`), testURL).Err()
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, MsgUnknown, err.Error())

	var apiErr *Error
	err = Normalize(503, []byte(`<p>down</p>`), testURL).Err()
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindNonJSON, apiErr.Kind)
	assert.Equal(t, 503, apiErr.Status)
	assert.False(t, IsAuthRequired(err))
}

func TestNetworkFailure(t *testing.T) {
	r := networkFailure(errors.New("dial tcp: connection refused"))
	assert.Equal(t, KindNetwork, r.Kind)
	assert.False(t, r.Success)
	assert.Equal(t, "dial tcp: connection refused", r.Error)
	assert.ErrorIs(t, r.Err(), ErrNetwork)

	assert.Equal(t, MsgNetwork, networkFailure(nil).Error)
}

func TestDecodeData(t *testing.T) {
	var stats struct {
		ActiveBans int `json:"activeBans"`
	}
	r := Normalize(200, []byte(`{"success":true,"data":{"activeBans":4}}`), testURL)
	require.NoError(t, r.DecodeData(&stats))
	assert.Equal(t, 4, stats.ActiveBans)

	stats.ActiveBans = 0
	r = Normalize(200, []byte(`{"activeBans":9}`), testURL)
	require.NoError(t, r.DecodeData(&stats))
	assert.Equal(t, 9, stats.ActiveBans)
}

func TestDecodeList(t *testing.T) {
	type row struct {
		ID int `json:"id"`
	}
	tests := []struct {
		name string
		body string
		want []row
	}{
		{"named key", `{"logs":[{"id":1},{"id":2}]}`, []row{{1}, {2}}},
		{"data key", `{"success":true,"data":[{"id":3}]}`, []row{{3}}},
		{"items key", `{"items":[{"id":4}],"totalPages":2}`, []row{{4}}},
		{"bare array", `[{"id":5}]`, []row{{5}}},
		{"named key wins", `{"logs":[{"id":6}],"data":[{"id":7}]}`, []row{{6}}},
		{"non-array data skipped", `{"data":{"id":8},"items":[{"id":9}]}`, []row{{9}}},
		{"nothing", `{"success":true}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []row
			r := Normalize(200, []byte(tt.body), testURL)
			require.NoError(t, r.DecodeList(&got, "logs"))
			assert.Equal(t, tt.want, got)
		})
	}

	keys := make([]string, 1, 4)
	keys[0] = "logs"
	var got []row
	require.NoError(t, Normalize(200, []byte(`{}`), testURL).DecodeList(&got, keys...))
	// the caller's backing array is left alone
	assert.Equal(t, []string{"logs", "", "", ""}, keys[:cap(keys)])
}

func TestPagination(t *testing.T) {
	r := Normalize(200, []byte(`{"logs":[],"pagination":{"page":2,"size":20,"totalLogs":95,"totalPages":5}}`), testURL)
	p := r.Pagination(0, 10)
	assert.Equal(t, 2, p.CurrentPage)
	assert.Equal(t, 20, p.PageSize)
	assert.Equal(t, 95, p.TotalCount)
	assert.Equal(t, 5, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	r = Normalize(200, []byte(`{"items":[],"page":0,"pageSize":10,"totalItems":3,"totalPages":1}`), testURL)
	p = r.Pagination(0, 10)
	assert.Equal(t, 3, p.TotalCount)
	assert.False(t, p.Visible())

	// no paging info falls back to the request
	r = Normalize(200, []byte(`[]`), testURL)
	p = r.Pagination(4, 25)
	assert.Equal(t, 0, p.CurrentPage)
	assert.Equal(t, 25, p.PageSize)
	assert.Equal(t, 1, p.TotalPages)
}

func TestResponseMarshalJSON(t *testing.T) {
	ok := Normalize(200, []byte(`{"data":{"n":1}}`), testURL)
	b, err := json.Marshal(ok)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"n":1}}`, string(b))

	bad := Normalize(500, []byte(`{"error":"boom"}`), testURL)
	b, err = json.Marshal(bad)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"boom"}`, string(b))

	arr := Normalize(200, []byte(`[1,2]`), testURL)
	b, err = json.Marshal(arr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"items":[1,2]}`, string(b))
}
