package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/auth"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{name: "valid", header: "Bearer abc.def", want: "abc.def"},
		{name: "missing", header: "", wantErr: auth.ErrMissingToken},
		{name: "wrong scheme", header: "Basic abc", wantErr: auth.ErrInvalidToken},
		{name: "no token", header: "Bearer", wantErr: auth.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BearerToken(tt.header)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("token = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequireTerminalHTTP(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	token, err := jwtManager.Generate("kiosk-1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var seen string
	h := RequireTerminalHTTP(jwtManager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetTerminalID(r.Context())
	}))

	t.Run("header", func(t *testing.T) {
		seen = ""
		req := httptest.NewRequest(http.MethodGet, "/v1/stream", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK || seen != "kiosk-1" {
			t.Errorf("status = %d, terminal = %q", rec.Code, seen)
		}
	})

	t.Run("query", func(t *testing.T) {
		seen = ""
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/stream?token="+token, nil))
		if rec.Code != http.StatusOK || seen != "kiosk-1" {
			t.Errorf("status = %d, terminal = %q", rec.Code, seen)
		}
	})

	t.Run("missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/stream", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("bad token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/stream?token=nope", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestGetTerminalIDEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := GetTerminalID(req.Context()); id != "" {
		t.Errorf("GetTerminalID = %q, want empty", id)
	}
}
