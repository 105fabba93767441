package bindery_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formworks/bindery"
	"github.com/formworks/bindery/pkg/adapters/memory"
	"github.com/formworks/bindery/pkg/domain"
	"github.com/formworks/bindery/pkg/ports"
)

type widgetSink struct {
	ports.NopHost
	widgetID string
	updates  map[string]any
}

func (s *widgetSink) UpdateWidget(_ context.Context, widgetID string, updates map[string]any) error {
	s.widgetID = widgetID
	s.updates = updates
	return nil
}

func TestRuntime_EndToEnd_UpdateWidget(t *testing.T) {
	sink := &widgetSink{}
	rt := bindery.New(bindery.WithHost(sink))

	rt.UpdateContext(domain.ContextPatch{
		Widgets: map[string]any{
			"input1": map[string]any{"value": "Hi"},
		},
	})

	require.NoError(t, rt.RegisterAction(domain.ActionDefinition{
		ID:   "sync",
		Type: domain.ActionUpdateWidget,
		Config: map[string]any{
			"widgetId": "w1",
			"updates":  map[string]any{"label": "{{ widgets.input1.value }}"},
		},
	}))

	result := rt.RunAction(context.Background(), "sync", nil)
	require.True(t, result.Success, "error: %s", result.Error)
	assert.Equal(t, "w1", sink.widgetID)
	assert.Equal(t, map[string]any{"label": "Hi"}, sink.updates)
}

func TestRuntime_TemplateAndDependencies(t *testing.T) {
	rt := bindery.New()
	rt.UpdateContext(domain.ContextPatch{
		Page: map[string]any{"name": "Dashboard"},
	})

	assert.Equal(t, "on Dashboard", rt.EvaluateTemplate("on {{ page.name }}"))
	assert.Equal(t, "untouched", rt.EvaluateTemplate("untouched"))

	assert.True(t, bindery.HasExpression("{{ store.x }}"))
	assert.Equal(t, []string{"widgets.a", "widgets.b"},
		bindery.GetDependencies("widgets.a.value + widgets.b.value"))
}

func TestRuntime_IndependentInstances(t *testing.T) {
	one := bindery.New()
	two := bindery.New()

	one.UpdateContext(domain.ContextPatch{Store: map[string]any{"who": "one"}})
	two.UpdateContext(domain.ContextPatch{Store: map[string]any{"who": "two"}})

	assert.Equal(t, "one", one.Evaluate("store.who"))
	assert.Equal(t, "two", two.Evaluate("store.who"))
}

func TestRuntime_ChainWithStorage(t *testing.T) {
	rt := bindery.New(bindery.WithStore(memory.NewStore()))
	ctx := context.Background()

	require.NoError(t, rt.RegisterAction(domain.ActionDefinition{
		ID:   "persist",
		Type: domain.ActionLocalStorage,
		Config: map[string]any{
			"operation": "set",
			"key":       "greeting",
			"value":     "hello",
		},
	}))
	require.NoError(t, rt.RegisterAction(domain.ActionDefinition{
		ID:   "boom",
		Type: domain.ActionRunJS,
		Config: map[string]any{
			"code": "widgets.nope.value + 1",
		},
	}))
	require.NoError(t, rt.RegisterAction(domain.ActionDefinition{
		ID:   "after",
		Type: domain.ActionRunJS,
		Config: map[string]any{
			"code": "'never'",
		},
	}))

	results := rt.RunActionChain(ctx, []string{"persist", "boom", "after"}, nil)
	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)

	_, ran := rt.ActionResult("after")
	assert.False(t, ran)
}

func TestRuntime_MetricsRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	rt := bindery.New(bindery.WithMetrics(reg))

	rt.Evaluate("1 + 1")
	rt.RunAction(context.Background(), "ghost", nil)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, fam := range families {
		names[fam.GetName()] = true
	}
	assert.True(t, names["bindery_evaluations_total"])
}

func TestRuntime_CustomUtils(t *testing.T) {
	rt := bindery.New(bindery.WithUtils(map[string]any{
		"shout": func(s string) string { return s + "!" },
	}))

	assert.Equal(t, "go!", rt.Evaluate("utils.shout('go')"))
}
