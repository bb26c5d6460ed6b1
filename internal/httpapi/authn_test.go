package httpapi

import (
	"net/http"
	"testing"
)

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"", "", true},
		{"   ", "", true},
		{"Basic dXNlcjpwdw==", "", true},
		{"Bearer", "", true},
		{"Bearer    ", "", true},
		{"Bearer abc.def.ghi", "abc.def.ghi", false},
		{"bearer abc.def.ghi", "abc.def.ghi", false},
		{"  Bearer abc.def.ghi  ", "abc.def.ghi", false},
	}
	for _, tc := range cases {
		got, err := extractBearerToken(tc.header)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("extractBearerToken(%q): expected error", tc.header)
			}
			continue
		}
		if err != nil {
			t.Fatalf("extractBearerToken(%q): %v", tc.header, err)
		}
		if got != tc.want {
			t.Fatalf("extractBearerToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestPublicRouteMatrix(t *testing.T) {
	public := []struct{ method, path string }{
		{http.MethodPost, "/api/users/add"},
		{http.MethodPost, "/api/users/login"},
		{http.MethodGet, "/api/articles"},
		{http.MethodGet, "/api/articles/events"},
		{http.MethodGet, "/users/7"},
		{http.MethodGet, "/healthz"},
		{http.MethodGet, "/metrics"},
	}
	for _, tc := range public {
		if !isPublicRoute(tc.method, tc.path) {
			t.Fatalf("%s %s should be public", tc.method, tc.path)
		}
	}

	protected := []struct{ method, path string }{
		{http.MethodGet, "/api/users/profile"},
		{http.MethodPost, "/api/articles/add"},
		{http.MethodPut, "/api/articles/7"},
		{http.MethodDelete, "/api/articles/7"},
		{http.MethodPut, "/users/7"},
		{http.MethodPut, "/pg_shadow/1"},
		{http.MethodGet, "/api/users/add"},
	}
	for _, tc := range protected {
		if isPublicRoute(tc.method, tc.path) {
			t.Fatalf("%s %s should require auth", tc.method, tc.path)
		}
	}
}
