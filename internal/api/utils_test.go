package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorResponseWithCode(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	ErrorResponseWithCode(rr, req, http.StatusUnprocessableEntity, "no_itinerary", "nothing to plan")

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body Error
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, Error{Success: false, Error: "nothing to plan", Code: "no_itinerary"}, body)
}

func TestDecodeJSONBody(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	testCases := []struct {
		name    string
		body    string
		strict  bool
		wantErr string
	}{
		{name: "valid", body: `{"name":"Lisbon"}`, strict: true},
		{name: "empty", body: ``, strict: true, wantErr: "body must not be empty"},
		{name: "unknown key", body: `{"name":"x","extra":1}`, strict: true, wantErr: `body contains unknown key "extra"`},
		{name: "unknown key loose", body: `{"name":"x","extra":1}`, strict: false},
		{name: "wrong type", body: `{"name":5}`, strict: true, wantErr: `incorrect JSON type for field "name"`},
		{name: "two values", body: `{"name":"a"}{"name":"b"}`, strict: true, wantErr: "single JSON value"},
		{name: "broken", body: `{"name":`, strict: true, wantErr: "badly-formed JSON"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))

			var dst payload
			var err error
			if tc.strict {
				err = DecodeJSONBody(rr, req, &dst)
			} else {
				err = DecodeLooseJSONBody(rr, req, &dst)
			}

			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestVerifyAudience(t *testing.T) {
	assert.True(t, VerifyAudience(nil, ""))
	assert.True(t, VerifyAudience(jwt.ClaimStrings{"a", "web"}, "web"))
	assert.False(t, VerifyAudience(jwt.ClaimStrings{"a"}, "web"))
	assert.False(t, VerifyAudience(nil, "web"))
}
