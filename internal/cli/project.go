// Package cli loads bindery project files and wires them into a Runtime for
// the command line tools.
package cli

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/formworks/bindery"
	"github.com/formworks/bindery/pkg/domain"
)

// actionSpec mirrors domain.ActionDefinition with a human-friendly backoff
// duration ("500ms", "2s").
type actionSpec struct {
	ID     string         `yaml:"id"`
	Type   string         `yaml:"type"`
	Config map[string]any `yaml:"config"`
	Retry  *struct {
		MaxAttempts int    `yaml:"max_attempts"`
		Backoff     string `yaml:"backoff"`
	} `yaml:"retry"`
}

// Project is the on-disk description of an evaluation context and the actions
// registered against it.
type Project struct {
	Context struct {
		Widgets map[string]any `yaml:"widgets"`
		Page    map[string]any `yaml:"page"`
		Store   map[string]any `yaml:"store"`
	} `yaml:"context"`
	Actions []actionSpec `yaml:"actions"`
}

// LoadProject parses a project YAML file.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project file: %w", err)
	}

	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing project file %s: %w", path, err)
	}
	return &p, nil
}

// ActionIDs lists the declared actions in file order.
func (p *Project) ActionIDs() []string {
	ids := make([]string, 0, len(p.Actions))
	for _, a := range p.Actions {
		ids = append(ids, a.ID)
	}
	return ids
}

// Apply seeds the runtime with the project's context and registers its
// actions.
func (p *Project) Apply(rt *bindery.Runtime) error {
	rt.UpdateContext(domain.ContextPatch{
		Widgets: p.Context.Widgets,
		Page:    p.Context.Page,
		Store:   p.Context.Store,
	})

	for _, spec := range p.Actions {
		def := domain.ActionDefinition{
			ID:     spec.ID,
			Type:   domain.ActionType(spec.Type),
			Config: spec.Config,
		}
		if spec.Retry != nil {
			backoff, err := time.ParseDuration(spec.Retry.Backoff)
			if err != nil {
				return fmt.Errorf("action %q: invalid backoff %q: %w", spec.ID, spec.Retry.Backoff, err)
			}
			def.Retry = &domain.RetryPolicy{
				MaxAttempts: spec.Retry.MaxAttempts,
				Backoff:     backoff,
			}
		}
		if err := rt.RegisterAction(def); err != nil {
			return fmt.Errorf("registering action %q: %w", spec.ID, err)
		}
	}
	return nil
}
