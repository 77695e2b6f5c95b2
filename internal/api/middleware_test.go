package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORSMiddleware(t *testing.T) {
	t.Run("sets headers on normal requests", func(t *testing.T) {
		handler := CORSMiddleware("http://localhost:5173")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
			t.Errorf("Allow-Origin = %q", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
			t.Errorf("Allow-Credentials = %q", got)
		}
	})

	t.Run("wildcard echoes the request origin for credentialed requests", func(t *testing.T) {
		handler := CORSMiddleware("*")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/prompts", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
			t.Errorf("Allow-Origin = %q, want the request origin", got)
		}
		if got := w.Header().Get("Vary"); got != "Origin" {
			t.Errorf("Vary = %q, want Origin", got)
		}
	})

	t.Run("short-circuits preflight", func(t *testing.T) {
		reached := false
		handler := CORSMiddleware("*")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
		}))

		req := httptest.NewRequest(http.MethodOptions, "/api/enhance", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", w.Code)
		}
		if reached {
			t.Error("preflight should not reach the next handler")
		}
	})
}

func TestResponseWriter_CapturesStatusAndSize(t *testing.T) {
	w := httptest.NewRecorder()
	wrapped := newResponseWriter(w)

	wrapped.WriteHeader(http.StatusNotFound)
	wrapped.Write([]byte("not found"))
	wrapped.Write([]byte("!"))

	if wrapped.statusCode != http.StatusNotFound {
		t.Errorf("statusCode = %d, want 404", wrapped.statusCode)
	}
	if wrapped.responseSize != 10 {
		t.Errorf("responseSize = %d, want 10", wrapped.responseSize)
	}
}

func TestResponseWriter_DefaultsTo200(t *testing.T) {
	w := httptest.NewRecorder()
	wrapped := newResponseWriter(w)

	wrapped.Write([]byte("ok"))

	if wrapped.statusCode != http.StatusOK {
		t.Errorf("statusCode = %d, want 200", wrapped.statusCode)
	}
}

func TestRequireAuth_StoresUserOnContext(t *testing.T) {
	env := newTestEnv()
	user := env.loginAs(t, "ada@example.com")

	w := env.do(t, http.MethodGet, "/api/prompts", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	// The guarded handler only lists the session user's prompts, so a
	// successful empty listing proves the user was resolved.
	if env.sessions.current.ID != user.ID {
		t.Errorf("session user = %d, want %d", env.sessions.current.ID, user.ID)
	}
}
