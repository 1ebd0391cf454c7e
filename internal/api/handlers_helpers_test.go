// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"line\nbreak", `line\x0abreak`},
		{"tab\there", `tab\x09here`},
		{"del\x7f", `del\x7f`},
		{"ünïcode", "ünïcode"},
	}
	for _, tt := range tests {
		if got := sanitizeLogValue(tt.in); got != tt.want {
			t.Errorf("sanitizeLogValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerateETag(t *testing.T) {
	t.Parallel()

	a := generateETag([]byte(`{"a":1}`))
	b := generateETag([]byte(`{"a":2}`))
	if a == b {
		t.Error("different payloads should have different ETags")
	}
	if a != generateETag([]byte(`{"a":1}`)) {
		t.Error("ETag must be deterministic")
	}
	if !strings.HasPrefix(a, `W/"`) || !strings.HasSuffix(a, `"`) {
		t.Errorf("ETag %s is not a quoted weak validator", a)
	}
}

func TestDecodeJSONBody(t *testing.T) {
	t.Parallel()

	type body struct {
		Position *float64 `json:"position"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
		wantSet bool
	}{
		{"empty", "", false, false},
		{"object", `{"position":0.5}`, false, true},
		{"empty object", `{}`, false, false},
		{"whitespace", "  \n", false, false},
		{"garbage", `position=0.5`, true, false},
		{"truncated", `{"position":0.5,`, true, false},
		{"too large", `{"position":0.5,"pad":"` + strings.Repeat("x", maxBodyBytes) + `"}`, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var req *http.Request
			if tt.body == "" {
				req = httptest.NewRequest(http.MethodPost, "/", http.NoBody)
			} else {
				req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			}

			var got body
			err := decodeJSONBody(httptest.NewRecorder(), req, &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeJSONBody() error = %v, wantErr %v", err, tt.wantErr)
			}
			if (got.Position != nil) != tt.wantSet {
				t.Errorf("position set = %v, want %v", got.Position != nil, tt.wantSet)
			}
		})
	}
}

func TestRespondError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	respondError(rec, http.StatusConflict, "NO_DATA", "No location data loaded", nil)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`"status":"error"`, `"code":"NO_DATA"`, `"message":"No location data loaded"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body %s missing %s", body, want)
		}
	}
}
