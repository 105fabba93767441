package actions

import (
	"context"

	"github.com/formworks/bindery/pkg/domain"
	"github.com/formworks/bindery/pkg/ports"
)

type updateWidgetConfig struct {
	WidgetID string         `mapstructure:"widgetId"`
	Updates  map[string]any `mapstructure:"updates"`
}

// runUpdateWidget resolves each update field and hands the bag to the host.
// A field that contains a marker evaluates as a full expression, keeping the
// value's type; anything else passes through literally.
func (e *Executor) runUpdateWidget(ctx context.Context, def domain.ActionDefinition, params map[string]any) domain.ActionResult {
	var cfg updateWidgetConfig
	if err := decodeConfig(def.Config, &cfg); err != nil {
		return domain.Failf("invalid updateWidget config: %s", err)
	}

	resolved := make(map[string]any, len(cfg.Updates))
	for field, value := range cfg.Updates {
		out, err := e.resolveValue(value, params)
		if err != nil {
			return domain.FailErr(err)
		}
		resolved[field] = out
	}

	if err := e.host.UpdateWidget(ctx, cfg.WidgetID, resolved); err != nil {
		return domain.FailErr(err)
	}
	return domain.Succeed(map[string]any{"widgetId": cfg.WidgetID, "updates": resolved})
}

type navigateConfig struct {
	Path string `mapstructure:"path"`
}

func (e *Executor) runNavigate(ctx context.Context, def domain.ActionDefinition, params map[string]any) domain.ActionResult {
	var cfg navigateConfig
	if err := decodeConfig(def.Config, &cfg); err != nil {
		return domain.Failf("invalid navigate config: %s", err)
	}

	path, err := e.resolveTemplate(cfg.Path, params)
	if err != nil {
		return domain.FailErr(err)
	}
	if err := e.host.Navigate(ctx, path); err != nil {
		return domain.FailErr(err)
	}
	return domain.Succeed(map[string]any{"path": path})
}

type modalConfig struct {
	ModalID string `mapstructure:"modalId"`
}

func (e *Executor) runModal(ctx context.Context, def domain.ActionDefinition, open bool) domain.ActionResult {
	var cfg modalConfig
	if err := decodeConfig(def.Config, &cfg); err != nil {
		return domain.Failf("invalid modal config: %s", err)
	}

	if err := e.host.SetModal(ctx, cfg.ModalID, open); err != nil {
		return domain.FailErr(err)
	}
	return domain.Succeed(map[string]any{"modalId": cfg.ModalID, "open": open})
}

type alertConfig struct {
	Message string `mapstructure:"message"`
}

func (e *Executor) runAlert(ctx context.Context, def domain.ActionDefinition, params map[string]any) domain.ActionResult {
	var cfg alertConfig
	if err := decodeConfig(def.Config, &cfg); err != nil {
		return domain.Failf("invalid showAlert config: %s", err)
	}

	message, err := e.resolveTemplate(cfg.Message, params)
	if err != nil {
		return domain.FailErr(err)
	}
	if err := e.host.Alert(ctx, message); err != nil {
		return domain.FailErr(err)
	}
	return domain.Succeed(map[string]any{"message": message})
}

type toastConfig struct {
	Message  string `mapstructure:"message"`
	Type     string `mapstructure:"type"`
	Duration int    `mapstructure:"duration"` // milliseconds
}

func (e *Executor) runToast(ctx context.Context, def domain.ActionDefinition, params map[string]any) domain.ActionResult {
	var cfg toastConfig
	if err := decodeConfig(def.Config, &cfg); err != nil {
		return domain.Failf("invalid showToast config: %s", err)
	}

	message, err := e.resolveTemplate(cfg.Message, params)
	if err != nil {
		return domain.FailErr(err)
	}
	toastType := cfg.Type
	if toastType == "" {
		toastType = "info"
	}

	toast := ports.Toast{Message: message, Type: toastType, Duration: cfg.Duration}
	if err := e.host.Notify(ctx, toast); err != nil {
		return domain.FailErr(err)
	}
	return domain.Succeed(map[string]any{"message": message, "type": toastType})
}

type clipboardConfig struct {
	Text string `mapstructure:"text"`
}

func (e *Executor) runClipboard(ctx context.Context, def domain.ActionDefinition, params map[string]any) domain.ActionResult {
	var cfg clipboardConfig
	if err := decodeConfig(def.Config, &cfg); err != nil {
		return domain.Failf("invalid copyToClipboard config: %s", err)
	}

	text, err := e.resolveTemplate(cfg.Text, params)
	if err != nil {
		return domain.FailErr(err)
	}
	if err := e.host.CopyToClipboard(ctx, text); err != nil {
		return domain.FailErr(err)
	}
	return domain.Succeed(map[string]any{"text": text})
}

type downloadConfig struct {
	URL      string `mapstructure:"url"`
	Filename string `mapstructure:"filename"`
}

func (e *Executor) runDownload(ctx context.Context, def domain.ActionDefinition, params map[string]any) domain.ActionResult {
	var cfg downloadConfig
	if err := decodeConfig(def.Config, &cfg); err != nil {
		return domain.Failf("invalid downloadFile config: %s", err)
	}

	url, err := e.resolveTemplate(cfg.URL, params)
	if err != nil {
		return domain.FailErr(err)
	}
	filename, err := e.resolveTemplate(cfg.Filename, params)
	if err != nil {
		return domain.FailErr(err)
	}
	if err := e.host.Download(ctx, url, filename); err != nil {
		return domain.FailErr(err)
	}
	return domain.Succeed(map[string]any{"url": url, "filename": filename})
}

type runJSConfig struct {
	Code string `mapstructure:"code"`
}

// runJS evaluates config.code as a full sandboxed expression. Sandbox and
// runtime errors are caught here and reported as failed results.
func (e *Executor) runJS(def domain.ActionDefinition, params map[string]any) domain.ActionResult {
	var cfg runJSConfig
	if err := decodeConfig(def.Config, &cfg); err != nil {
		return domain.Failf("invalid runJS config: %s", err)
	}

	out, err := e.engine.EvaluateWith(cfg.Code, scope(params))
	if err != nil {
		return domain.FailErr(err)
	}
	return domain.Succeed(out)
}
