package actions_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formworks/bindery/internal/actions"
	"github.com/formworks/bindery/pkg/adapters/memory"
	"github.com/formworks/bindery/pkg/domain"
)

func storageAction(id, operation, key string, value any) domain.ActionDefinition {
	config := map[string]any{"operation": operation, "key": key}
	if value != nil {
		config["value"] = value
	}
	return domain.ActionDefinition{ID: id, Type: domain.ActionLocalStorage, Config: config}
}

func TestStorageAction(t *testing.T) {
	ctx := context.Background()

	t.Run("GetMissingYieldsNil", func(t *testing.T) {
		exec, _ := newExecutor(t, actions.WithStore(memory.NewStore()))
		require.NoError(t, exec.Register(storageAction("load", "get", "never-set", nil)))

		result := exec.Run(ctx, "load", nil)
		require.True(t, result.Success)
		assert.Nil(t, result.Data)
	})

	t.Run("SetGetRoundtrip", func(t *testing.T) {
		exec, engine := newExecutor(t, actions.WithStore(memory.NewStore()))
		engine.UpdateContext(domain.ContextPatch{
			Widgets: map[string]any{"form": map[string]any{"draft": "hello"}},
		})

		require.NoError(t, exec.Register(storageAction("save", "set", "draft", "{{ widgets.form.draft }}")))
		require.NoError(t, exec.Register(storageAction("load", "get", "draft", nil)))

		require.True(t, exec.Run(ctx, "save", nil).Success)
		result := exec.Run(ctx, "load", nil)
		require.True(t, result.Success)
		assert.Equal(t, "hello", result.Data)
	})

	t.Run("SetPreservesStructure", func(t *testing.T) {
		exec, _ := newExecutor(t, actions.WithStore(memory.NewStore()))
		require.NoError(t, exec.Register(storageAction("save", "set", "prefs", map[string]any{
			"theme": "dark",
			"size":  14,
		})))
		require.NoError(t, exec.Register(storageAction("load", "get", "prefs", nil)))

		require.True(t, exec.Run(ctx, "save", nil).Success)
		result := exec.Run(ctx, "load", nil)
		require.True(t, result.Success)

		prefs, ok := result.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "dark", prefs["theme"])
		assert.EqualValues(t, 14, prefs["size"])
	})

	t.Run("RemoveThenGet", func(t *testing.T) {
		exec, _ := newExecutor(t, actions.WithStore(memory.NewStore()))
		require.NoError(t, exec.Register(storageAction("save", "set", "k", "v")))
		require.NoError(t, exec.Register(storageAction("drop", "remove", "k", nil)))
		require.NoError(t, exec.Register(storageAction("load", "get", "k", nil)))

		require.True(t, exec.Run(ctx, "save", nil).Success)
		require.True(t, exec.Run(ctx, "drop", nil).Success)

		result := exec.Run(ctx, "load", nil)
		require.True(t, result.Success)
		assert.Nil(t, result.Data)
	})

	t.Run("Clear", func(t *testing.T) {
		store := memory.NewStore()
		exec, _ := newExecutor(t, actions.WithStore(store))
		require.NoError(t, exec.Register(storageAction("save-a", "set", "a", 1)))
		require.NoError(t, exec.Register(storageAction("save-b", "set", "b", 2)))
		require.NoError(t, exec.Register(storageAction("wipe", "clear", "", nil)))

		require.True(t, exec.Run(ctx, "save-a", nil).Success)
		require.True(t, exec.Run(ctx, "save-b", nil).Success)
		require.True(t, exec.Run(ctx, "wipe", nil).Success)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("UnknownOperationFails", func(t *testing.T) {
		exec, _ := newExecutor(t, actions.WithStore(memory.NewStore()))
		require.NoError(t, exec.Register(storageAction("odd", "merge", "k", nil)))

		result := exec.Run(ctx, "odd", nil)
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "unknown localStorage operation")
	})

	t.Run("NoBackendConfigured", func(t *testing.T) {
		exec, _ := newExecutor(t)
		require.NoError(t, exec.Register(storageAction("load", "get", "k", nil)))

		result := exec.Run(ctx, "load", nil)
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "no storage backend")
	})
}
