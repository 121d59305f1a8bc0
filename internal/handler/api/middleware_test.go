package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"

	"github.com/templeatlas/media-pipeline-go/internal/api_context"
)

func signToken(t *testing.T, secret, sub string) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": sub, "exp": time.Now().Add(time.Hour).Unix()}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed signing token: %v", err)
	}
	return signed
}

func TestWithActorAuth(t *testing.T) {
	const secret = "test-secret"

	var gotActor string
	var called bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		gotActor, _ = api_context.ActorIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantActor  string
	}{
		{
			name:       "no header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed header",
			authHeader: "Basic abc",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "bad signature",
			authHeader: "Bearer " + signToken(t, "wrong-secret", "user-1"),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "no subject",
			authHeader: "Bearer " + signToken(t, secret, ""),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "valid token",
			authHeader: "Bearer " + signToken(t, secret, "user-1"),
			wantStatus: http.StatusOK,
			wantActor:  "user-1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			called = false
			gotActor = ""

			req := httptest.NewRequest(http.MethodPost, "/medias", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rr := httptest.NewRecorder()

			WithActorAuth(secret)(next).ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Errorf("status = %d; want %d", rr.Code, tc.wantStatus)
			}
			if tc.wantStatus == http.StatusOK {
				if !called {
					t.Error("next handler was not called")
				}
				if gotActor != tc.wantActor {
					t.Errorf("actor = %q; want %q", gotActor, tc.wantActor)
				}
			} else if called {
				t.Error("next handler should not have been called")
			}
		})
	}
}

func TestWithActorAuthDisabled(t *testing.T) {
	var called bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := api_context.ActorIDFromContext(r.Context()); ok {
			t.Error("no actor should be set when auth is disabled")
		}
	})

	req := httptest.NewRequest(http.MethodPost, "/medias", nil)
	WithActorAuth("")(next).ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Error("next handler was not called")
	}
}

func TestWithMediaID(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		wantStatus int
	}{
		{"valid UUID", "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee", http.StatusOK},
		{"invalid UUID", "not-a-uuid", http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.With(WithMediaID()).Get("/medias/{id}", func(w http.ResponseWriter, r *http.Request) {
				id, ok := api_context.MediaIDFromContext(r.Context())
				if !ok {
					t.Error("expected media ID in context")
				}
				if id.String() != tc.id {
					t.Errorf("id = %s; want %s", id, tc.id)
				}
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/medias/"+tc.id, nil)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Errorf("status = %d; want %d", rr.Code, tc.wantStatus)
			}
		})
	}
}
