package actions

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/formworks/bindery/pkg/domain"
)

type storageConfig struct {
	Operation string `mapstructure:"operation"`
	Key       string `mapstructure:"key"`
	Value     any    `mapstructure:"value"`
}

// runStorage performs get/set/remove/clear against the key-value store.
// Values are stored JSON-encoded; get of a missing key yields nil data.
func (e *Executor) runStorage(ctx context.Context, def domain.ActionDefinition, params map[string]any) domain.ActionResult {
	if e.store == nil {
		return domain.Failf("no storage backend configured")
	}

	var cfg storageConfig
	if err := decodeConfig(def.Config, &cfg); err != nil {
		return domain.Failf("invalid localStorage config: %s", err)
	}

	key, err := e.resolveTemplate(cfg.Key, params)
	if err != nil {
		return domain.FailErr(err)
	}

	switch cfg.Operation {
	case "get":
		raw, err := e.store.Get(ctx, key)
		if err != nil {
			if errors.Is(err, domain.ErrKeyNotFound) {
				return domain.Succeed(nil)
			}
			return domain.FailErr(err)
		}
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			// Legacy plain-string entries fall back to the raw bytes.
			return domain.Succeed(string(raw))
		}
		return domain.Succeed(value)

	case "set":
		value, err := e.resolveValue(cfg.Value, params)
		if err != nil {
			return domain.FailErr(err)
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return domain.Failf("failed to encode value: %s", err)
		}
		if err := e.store.Set(ctx, key, raw); err != nil {
			return domain.FailErr(err)
		}
		return domain.Succeed(value)

	case "remove":
		if err := e.store.Delete(ctx, key); err != nil {
			return domain.FailErr(err)
		}
		return domain.Succeed(nil)

	case "clear":
		if err := e.store.Clear(ctx); err != nil {
			return domain.FailErr(err)
		}
		return domain.Succeed(nil)
	}

	return domain.Failf("unknown localStorage operation: %s", cfg.Operation)
}
