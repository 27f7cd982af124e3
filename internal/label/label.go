// Package label turns portal label PDFs into printer-ready monochrome PNGs.
package label

import (
	"context"
	"log/slog"
)

const (
	DefaultGhostscriptPath = "gs"
	DefaultWidth           = 800
	DefaultHeight          = 1200
	// DefaultResolution matches 8 dots/mm thermal label printers
	DefaultResolution = 203
)

// Rasterizer converts a label document into an image
type Rasterizer interface {
	Rasterize(ctx context.Context, pdf []byte) ([]byte, error)
}

// Options configures label rendering
type Options struct {
	GhostscriptPath string
	Width           int
	Height          int
	Resolution      int
}

// DefaultOptions returns the settings for 100x150mm labels at 203 dpi
func DefaultOptions() Options {
	return Options{
		GhostscriptPath: DefaultGhostscriptPath,
		Width:           DefaultWidth,
		Height:          DefaultHeight,
		Resolution:      DefaultResolution,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.GhostscriptPath == "" {
		o.GhostscriptPath = d.GhostscriptPath
	}
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.Resolution <= 0 {
		o.Resolution = d.Resolution
	}
	return o
}

// New returns a Ghostscript rasterizer, or a Passthrough when Ghostscript
// is not installed.
func New(opts Options, logger *slog.Logger) Rasterizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	gs, err := NewGhostscript(opts, logger)
	if err != nil {
		logger.Warn("Ghostscript unavailable, labels stay PDF", "error", err)
		return Passthrough{}
	}
	return gs
}

// Passthrough returns documents unchanged
type Passthrough struct{}

func (Passthrough) Rasterize(_ context.Context, pdf []byte) ([]byte, error) {
	return pdf, nil
}
