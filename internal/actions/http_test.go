package actions_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formworks/bindery/pkg/domain"
)

func TestHTTPAction_JSONRoundtrip(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 7, "ok": true})
	}))
	defer server.Close()

	exec, engine := newExecutor(t)
	engine.UpdateContext(domain.ContextPatch{
		Store:   map[string]any{"token": "s3cret"},
		Widgets: map[string]any{"form": map[string]any{"name": "Ada"}},
	})

	require.NoError(t, exec.Register(domain.ActionDefinition{
		ID:   "create-user",
		Type: domain.ActionHTTP,
		Config: map[string]any{
			"url":    server.URL + "/users/{{ widgets.form.name }}",
			"method": "POST",
			"headers": map[string]any{
				"Authorization": "Bearer {{ store.token }}",
			},
			"body": map[string]any{
				"name": "{{ widgets.form.name }}",
				"age":  30,
			},
		},
	}))

	result := exec.Run(context.Background(), "create-user", nil)
	require.True(t, result.Success, "error: %s", result.Error)

	assert.Equal(t, "/users/Ada", gotPath)
	assert.Equal(t, "Bearer s3cret", gotAuth)
	assert.Equal(t, "Ada", gotBody["name"])
	assert.EqualValues(t, 30, gotBody["age"])

	data, ok := result.Data.(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 7, data["id"])
}

func TestHTTPAction_Non2xxCarriesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{"field": "name", "reason": "required"})
	}))
	defer server.Close()

	exec, _ := newExecutor(t)
	require.NoError(t, exec.Register(domain.ActionDefinition{
		ID:     "invalid",
		Type:   domain.ActionHTTP,
		Config: map[string]any{"url": server.URL, "method": "POST"},
	}))

	result := exec.Run(context.Background(), "invalid", nil)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "422")

	data, ok := result.Data.(map[string]any)
	require.True(t, ok, "parsed body must still be attached")
	assert.Equal(t, "required", data["reason"])
}

func TestHTTPAction_TextResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("pong"))
	}))
	defer server.Close()

	exec, _ := newExecutor(t)
	require.NoError(t, exec.Register(domain.ActionDefinition{
		ID:     "ping",
		Type:   domain.ActionHTTP,
		Config: map[string]any{"url": server.URL},
	}))

	result := exec.Run(context.Background(), "ping", nil)
	require.True(t, result.Success)
	assert.Equal(t, "pong", result.Data)
}

func TestHTTPAction_TimeoutAborts(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	exec, _ := newExecutor(t)
	require.NoError(t, exec.Register(domain.ActionDefinition{
		ID:   "slow",
		Type: domain.ActionHTTP,
		Config: map[string]any{
			"url":     server.URL,
			"timeout": 30, // milliseconds
		},
	}))

	start := time.Now()
	result := exec.Run(context.Background(), "slow", nil)
	elapsed := time.Since(start)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "aborted")
	assert.Less(t, elapsed, 5*time.Second, "the call must not be left pending")
}

func TestHTTPAction_RetryPolicy(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer server.Close()

	exec, _ := newExecutor(t)
	require.NoError(t, exec.Register(domain.ActionDefinition{
		ID:     "flaky",
		Type:   domain.ActionHTTP,
		Config: map[string]any{"url": server.URL},
		Retry:  &domain.RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond},
	}))

	result := exec.Run(context.Background(), "flaky", nil)
	require.True(t, result.Success, "error: %s", result.Error)
	assert.EqualValues(t, 3, attempts.Load())
}

func TestHTTPAction_NoRetryOn4xx(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	exec, _ := newExecutor(t)
	require.NoError(t, exec.Register(domain.ActionDefinition{
		ID:     "missing",
		Type:   domain.ActionHTTP,
		Config: map[string]any{"url": server.URL},
		Retry:  &domain.RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond},
	}))

	result := exec.Run(context.Background(), "missing", nil)
	assert.False(t, result.Success)
	assert.EqualValues(t, 1, attempts.Load(), "4xx is terminal, not retryable")
}

func TestGraphQLAction(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Query     string         `json:"query"`
				Variables map[string]any `json:"variables"`
			}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Contains(t, req.Query, "user(id:")
			assert.Equal(t, "u1", req.Variables["id"])

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"user": map[string]any{"name": "Ada"}},
			})
		}))
		defer server.Close()

		exec, engine := newExecutor(t)
		engine.UpdateContext(domain.ContextPatch{
			Store: map[string]any{"userId": "u1"},
		})

		require.NoError(t, exec.Register(domain.ActionDefinition{
			ID:   "fetch-user",
			Type: domain.ActionGraphQL,
			Config: map[string]any{
				"url":       server.URL,
				"query":     "query { user(id: $id) { name } }",
				"variables": `{"id": "{{ store.userId }}"}`,
			},
		}))

		result := exec.Run(context.Background(), "fetch-user", nil)
		require.True(t, result.Success, "error: %s", result.Error)

		data, ok := result.Data.(map[string]any)
		require.True(t, ok)
		user, ok := data["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Ada", user["name"])
	})

	t.Run("ErrorsConcatenated", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"errors": []map[string]any{
					{"message": "field missing"},
					{"message": "type mismatch"},
				},
			})
		}))
		defer server.Close()

		exec, _ := newExecutor(t)
		require.NoError(t, exec.Register(domain.ActionDefinition{
			ID:     "bad-query",
			Type:   domain.ActionGraphQL,
			Config: map[string]any{"url": server.URL, "query": "query {}"},
		}))

		result := exec.Run(context.Background(), "bad-query", nil)
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "field missing")
		assert.Contains(t, result.Error, "type mismatch")
	})
}

func TestExecutor_ConcurrentRunsOnSameIDSerialize(t *testing.T) {
	var active, maxActive atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := active.Add(1)
		if now > maxActive.Load() {
			maxActive.Store(now)
		}
		time.Sleep(30 * time.Millisecond)
		active.Add(-1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	exec, _ := newExecutor(t)
	require.NoError(t, exec.Register(domain.ActionDefinition{
		ID:     "probe",
		Type:   domain.ActionHTTP,
		Config: map[string]any{"url": server.URL},
	}))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			exec.Run(context.Background(), "probe", nil)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, maxActive.Load(), "runs on one id must not overlap")
}
