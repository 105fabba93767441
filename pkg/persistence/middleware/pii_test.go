package middleware_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formworks/bindery/pkg/adapters/memory"
	"github.com/formworks/bindery/pkg/persistence/middleware"
)

func TestPII_MasksMatchingFields(t *testing.T) {
	ctx := context.Background()
	store := middleware.NewPIIMiddleware([]string{"(?i)password", "(?i)ssn"})(memory.NewStore())

	payload, _ := json.Marshal(map[string]any{
		"username": "ada",
		"password": "hunter2",
		"profile": map[string]any{
			"ssn": "123-45-6789",
		},
	})
	require.NoError(t, store.Set(ctx, "user", payload))

	raw, err := store.Get(ctx, "user")
	require.NoError(t, err)

	var stored map[string]any
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, "ada", stored["username"])
	assert.Equal(t, "***MASKED***", stored["password"])
	assert.Equal(t, "***MASKED***", stored["profile"].(map[string]any)["ssn"])
}

func TestPII_NonObjectPassesThrough(t *testing.T) {
	ctx := context.Background()
	store := middleware.NewPIIMiddleware([]string{"password"})(memory.NewStore())

	require.NoError(t, store.Set(ctx, "count", []byte("42")))

	raw, err := store.Get(ctx, "count")
	require.NoError(t, err)
	assert.Equal(t, "42", string(raw))
}

func TestChain_Order(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewStore()

	store := middleware.Chain(backend,
		middleware.NewPIIMiddleware([]string{"secret"}),
	)

	payload, _ := json.Marshal(map[string]any{"secret": "x"})
	require.NoError(t, store.Set(ctx, "k", payload))

	raw, err := backend.Get(ctx, "k")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "MASKED")
}
