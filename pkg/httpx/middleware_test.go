package httpx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/twofactor/pkg/httpx"
	"github.com/aussiebroadwan/twofactor/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler, tag("a"), tag("b"), tag("c"))
	serve(h, requestFrom("192.0.2.1:1"))
	require.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRecover(t *testing.T) {
	h := httpx.Recover()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := serve(h, requestFrom("192.0.2.1:1"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "server_error")
}

func TestAuthnMiddleware(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")
	v, err := jwtx.NewVerifierHS256(secret, jwtx.VerifyOptions{})
	require.NoError(t, err)

	var gotUser, gotEmail string
	h := httpx.AuthnMiddleware(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = httpx.UserIDFromContext(r.Context())
		gotEmail = httpx.EmailFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("missing header", func(t *testing.T) {
		rec := serve(h, requestFrom("192.0.2.1:1"))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := requestFrom("192.0.2.1:1")
		req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
		require.Equal(t, http.StatusUnauthorized, serve(h, req).Code)
	})

	t.Run("bad token", func(t *testing.T) {
		req := requestFrom("192.0.2.1:1")
		req.Header.Set("Authorization", "Bearer nope")
		require.Equal(t, http.StatusUnauthorized, serve(h, req).Code)
	})

	t.Run("valid token", func(t *testing.T) {
		tok, err := jwtx.SignHS256(jwtx.NewAccessClaims("user-9", "nine@example.com", "", nil, time.Minute, time.Now()), secret)
		require.NoError(t, err)

		req := requestFrom("192.0.2.1:1")
		req.Header.Set("Authorization", "Bearer "+tok)
		require.Equal(t, http.StatusNoContent, serve(h, req).Code)
		require.Equal(t, "user-9", gotUser)
		require.Equal(t, "nine@example.com", gotEmail)
	})
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteError(rec, http.StatusBadRequest, "invalid_code", "nope")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var body httpx.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "invalid_code", body.Error)
	require.Equal(t, "nope", body.ErrorDescription)
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Token string `json:"token"`
	}

	t.Run("valid", func(t *testing.T) {
		var p payload
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"token":"123456"}`))
		require.NoError(t, httpx.DecodeJSON(req, &p))
		require.Equal(t, "123456", p.Token)
	})

	t.Run("empty body", func(t *testing.T) {
		var p payload
		req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
		require.NoError(t, httpx.DecodeJSON(req, &p))
		require.Empty(t, p.Token)
	})

	t.Run("unknown field", func(t *testing.T) {
		var p payload
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":"1"}`))
		require.Error(t, httpx.DecodeJSON(req, &p))
	})

	t.Run("trailing data", func(t *testing.T) {
		var p payload
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"token":"1"}{"token":"2"}`))
		require.Error(t, httpx.DecodeJSON(req, &p))
	})
}
