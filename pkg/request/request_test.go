package request

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BBQAnChang/SBHomework/pkg/request/httpclient"
)

func TestNewRequest(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		url     string
		body    []byte
		wantErr bool
	}{
		{name: "get without body", method: http.MethodGet, url: "http://localhost/users"},
		{name: "post with body", method: http.MethodPost, url: "http://localhost/users", body: []byte(`{"a":1}`)},
		{name: "invalid method", method: "BAD METHOD", url: "http://localhost", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewRequest(context.Background(), tt.method, tt.url, tt.body)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.method, req.HTTPRequest().Method)
			if tt.body == nil {
				assert.Nil(t, req.HTTPRequest().Body)
			}
		})
	}
}

func TestMakeRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Api-Token") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"bad token","code":400401,"error":true}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(body)
	}))
	defer server.Close()

	client, err := httpclient.InitializeClient("test.request", httpclient.ConnectionPoolConfig{},
		httpclient.HystrixResiliencyConfig{}, nil, 0, nil)
	require.NoError(t, err)

	t.Run("success echoes body", func(t *testing.T) {
		req, err := NewRequest(context.Background(), http.MethodPost, server.URL+"/users", []byte(`{"user_id":"u1"}`))
		require.NoError(t, err)
		req.SetHeaders(map[string]string{"Api-Token": "secret"})

		body, status, err := req.MakeRequest(client, "test.CreateUser", "test")
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, status)
		assert.JSONEq(t, `{"user_id":"u1"}`, string(body))
	})

	t.Run("client error status is returned without error", func(t *testing.T) {
		req, err := NewRequest(context.Background(), http.MethodGet, server.URL+"/users", nil)
		require.NoError(t, err)

		body, status, err := req.MakeRequest(client, "test.GetUser", "test")
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Contains(t, string(body), "bad token")
	})

	t.Run("unreachable host", func(t *testing.T) {
		req, err := NewRequest(context.Background(), http.MethodGet, "http://127.0.0.1:1/users", nil)
		require.NoError(t, err)

		_, status, err := req.MakeRequest(client, "test.Unreachable", "test")
		assert.Error(t, err)
		assert.Equal(t, 0, status)
	})
}
