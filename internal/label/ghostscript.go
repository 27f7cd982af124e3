package label

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const renderTimeout = time.Minute

// Ghostscript renders PDFs by piping them through the gs binary
type Ghostscript struct {
	path   string
	opts   Options
	logger *slog.Logger
}

// NewGhostscript resolves the Ghostscript binary and fails if it is missing
func NewGhostscript(opts Options, logger *slog.Logger) (*Ghostscript, error) {
	opts = opts.withDefaults()
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	path, err := exec.LookPath(opts.GhostscriptPath)
	if err != nil {
		return nil, fmt.Errorf("missing ghostscript binary %q: %w", opts.GhostscriptPath, err)
	}

	return &Ghostscript{
		path:   path,
		opts:   opts,
		logger: logger.With("component", "label"),
	}, nil
}

// Rasterize renders the first page and formats it for the label printer
func (g *Ghostscript) Rasterize(ctx context.Context, pdf []byte) ([]byte, error) {
	raw, err := g.Render(ctx, pdf)
	if err != nil {
		return nil, err
	}
	return Format(raw, g.opts.Width, g.opts.Height)
}

// Render converts pdf to an RGBA PNG at the configured resolution
func (g *Ghostscript) Render(ctx context.Context, pdf []byte) ([]byte, error) {
	if len(pdf) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	ctx, cancel := context.WithTimeout(ctx, renderTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, g.path,
		"-q",
		"-sDEVICE=pngalpha",
		"-sOutputFile=%stdout%",
		"-r"+strconv.Itoa(g.opts.Resolution),
		"-dNOPAUSE",
		"-dBATCH",
		"-dSAFER",
		"-",
	)
	cmd.Stdin = bytes.NewReader(pdf)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ghostscript render failed: %w; out=%s", err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ghostscript produced no output")
	}

	g.logger.Debug("Label rendered",
		"input_bytes", len(pdf),
		"output_bytes", stdout.Len(),
		"duration", time.Since(start))
	return stdout.Bytes(), nil
}
