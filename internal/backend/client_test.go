package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "gestor/pkg/domain-errors"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, WithTimeout(2*time.Second)), srv
}

func TestLogin(t *testing.T) {
	t.Run("success returns full token set", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/auth/login", r.URL.Path)

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "a@b.com", body["email"])
			assert.Equal(t, "secret1", body["password"])

			json.NewEncoder(w).Encode(map[string]any{
				"user": map[string]any{
					"id": "u-1", "tenant_id": "C1", "email": "a@b.com",
					"name": "Ana", "role": "admin", "status": "active",
					"email_verified": true,
				},
				"token":     "T1",
				"client_id": "C1",
			})
		}))

		resp, err := client.Login(context.Background(), "a@b.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "T1", resp.Token)
		assert.Equal(t, "C1", resp.ClientID)
		assert.Empty(t, resp.RefreshToken)
		assert.Equal(t, "u-1", resp.User.ID)
	})

	t.Run("missing token is malformed_response", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"user":      map[string]any{"id": "u-1", "tenant_id": "C1"},
				"client_id": "C1",
			})
		}))

		_, err := client.Login(context.Background(), "a@b.com", "secret1")
		require.True(t, dErrors.HasCode(err, dErrors.CodeMalformedResponse))
		assert.Equal(t, "Token não recebido do servidor", err.Error())
	})

	t.Run("missing client_id is malformed_response", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"user":  map[string]any{"id": "u-1", "tenant_id": "C1"},
				"token": "T1",
			})
		}))

		_, err := client.Login(context.Background(), "a@b.com", "secret1")
		require.True(t, dErrors.HasCode(err, dErrors.CodeMalformedResponse))
		assert.Equal(t, "Client ID não recebido do servidor", err.Error())
	})

	t.Run("401 is unauthenticated with server message", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "Email ou senha incorretos"})
		}))

		_, err := client.Login(context.Background(), "a@b.com", "wrong")
		require.True(t, dErrors.HasCode(err, dErrors.CodeUnauthenticated))
		assert.Equal(t, "Email ou senha incorretos", err.Error())
	})
}

func TestMe(t *testing.T) {
	t.Run("forwards bearer token", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]any{
				"id": "u-1", "tenant_id": "C1", "email": "a@b.com",
				"name": "Ana", "role": "admin", "status": "active",
			})
		}))

		p, err := client.Me(context.Background(), "T1")
		require.NoError(t, err)
		assert.Equal(t, "C1", p.TenantID)
	})

	t.Run("401 is unauthenticated", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))

		_, err := client.Me(context.Background(), "stale")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthenticated))
	})

	t.Run("5xx is transient", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))

		_, err := client.Me(context.Background(), "T1")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTransient))
	})

	t.Run("incomplete principal is malformed_response", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"id": "u-1"})
		}))

		_, err := client.Me(context.Background(), "T1")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeMalformedResponse))
	})

	t.Run("timeout is transient", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
		}))
		client.httpClient.Timeout = 50 * time.Millisecond

		_, err := client.Me(context.Background(), "T1")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTransient))
	})

	t.Run("unreachable host is transient", func(t *testing.T) {
		client := New("http://127.0.0.1:1", WithTimeout(200*time.Millisecond))

		_, err := client.Me(context.Background(), "T1")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTransient))
	})
}

func TestRefresh(t *testing.T) {
	t.Run("returns rotated pair", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "R1", body["refresh_token"])
			json.NewEncoder(w).Encode(map[string]string{"token": "T2", "refresh_token": "R2"})
		}))

		resp, err := client.Refresh(context.Background(), "R1")
		require.NoError(t, err)
		assert.Equal(t, "T2", resp.Token)
		assert.Equal(t, "R2", resp.RefreshToken)
	})

	t.Run("partial pair is malformed_response", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"token": "T2"})
		}))

		_, err := client.Refresh(context.Background(), "R1")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeMalformedResponse))
	})
}

func TestSwitchTenant(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/switch-tenant", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "client-42", body["client_id"])
		json.NewEncoder(w).Encode(map[string]string{"token": "T3"})
	}))

	resp, err := client.SwitchTenant(context.Background(), "T1", "client-42")
	require.NoError(t, err)
	assert.Equal(t, "T3", resp.Token)
	assert.Empty(t, resp.RefreshToken)
}

func TestFetchClient(t *testing.T) {
	t.Run("returns record", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/clients/client-42", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]string{
				"id": "client-42", "name": "Clínica Vida", "slug": "clinica-vida",
				"status": "active", "type": "clinica", "plan": "pro",
			})
		}))

		rec, err := client.FetchClient(context.Background(), "T1", "client-42")
		require.NoError(t, err)
		assert.Equal(t, "clinica", rec.Type)
	})

	t.Run("404 is not_found", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		_, err := client.FetchClient(context.Background(), "T1", "missing")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestLogoutIgnoresBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/logout", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))

	assert.NoError(t, client.Logout(context.Background(), "T1"))
}

func TestPing(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/health", r.URL.Path)
		}))
		assert.NoError(t, client.Ping(context.Background()))
	})

	t.Run("unreachable", func(t *testing.T) {
		client := New("http://127.0.0.1:1", WithTimeout(200*time.Millisecond))
		assert.Error(t, client.Ping(context.Background()))
	})
}
