package ports

import "context"

// Toast describes a transient notification surfaced by the host.
type Toast struct {
	Message  string
	Type     string // info, success, warning, error
	Duration int    // milliseconds; 0 means host default
}

// Host is the capability interface the action executor uses to reach into
// the render layer. It is supplied at construction time; every method may be
// a no-op. Hosts typically embed NopHost and override what they serve.
type Host interface {
	// UpdateWidget merges the resolved updates into the widget's state bag.
	UpdateWidget(ctx context.Context, widgetID string, updates map[string]any) error

	// Navigate moves the current page to path.
	Navigate(ctx context.Context, path string) error

	// SetModal opens (open=true) or closes a modal by id.
	SetModal(ctx context.Context, modalID string, open bool) error

	// Alert surfaces a blocking message to the user.
	Alert(ctx context.Context, message string) error

	// Notify surfaces a transient toast.
	Notify(ctx context.Context, toast Toast) error

	// CopyToClipboard writes text to the system clipboard.
	CopyToClipboard(ctx context.Context, text string) error

	// Download triggers a host-side file download.
	Download(ctx context.Context, url, filename string) error
}

// NopHost implements Host with no-ops. It is the default host; embed it to
// implement only a subset of the capabilities.
type NopHost struct{}

var _ Host = NopHost{}

func (NopHost) UpdateWidget(context.Context, string, map[string]any) error { return nil }
func (NopHost) Navigate(context.Context, string) error                    { return nil }
func (NopHost) SetModal(context.Context, string, bool) error              { return nil }
func (NopHost) Alert(context.Context, string) error                       { return nil }
func (NopHost) Notify(context.Context, Toast) error                       { return nil }
func (NopHost) CopyToClipboard(context.Context, string) error             { return nil }
func (NopHost) Download(context.Context, string, string) error            { return nil }
