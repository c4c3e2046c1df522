// Package probe reads technical metadata from media files.
package probe

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/poiesic/mediakg/core"
)

// ErrNotRegular is returned for paths that are not regular files.
var ErrNotRegular = errors.New("not a regular file")

// Prober extracts core.Metadata for a file.
type Prober struct {
	logger *slog.Logger
}

// Option configures a Prober.
type Option func(*Prober)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Prober) {
		p.logger = logger
	}
}

// New creates a Prober.
func New(opts ...Option) *Prober {
	p := &Prober{logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "probe")
	return p
}

// Probe returns the metadata that can be read from the file at path:
// always file_path (a file URI), file_name, format and size; width and
// height for decodable images; sample_rate, channels and duration for WAV
// audio. Failing to read kind-specific details is logged and leaves those
// keys out.
func (p *Prober) Probe(path string, kind core.Kind) (core.Metadata, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotRegular, path)
	}

	md := core.Metadata{
		core.KeyFilePath: FileURI(abs),
		core.KeyFileName: info.Name(),
		core.KeySize:     info.Size(),
	}
	if format := formatFromExt(abs); format != "" {
		md[core.KeyFormat] = format
	}

	switch kind {
	case core.KindImage:
		if err := probeImage(abs, md); err != nil {
			p.logger.Debug("image header unreadable", "path", abs, "err", err)
		}
	case core.KindAudio:
		if err := probeWAV(abs, md); err != nil {
			p.logger.Debug("audio header unreadable", "path", abs, "err", err)
		}
	}

	if _, ok := md[core.KeyFormat]; !ok {
		if mtype, err := mimetype.DetectFile(abs); err == nil && mtype.Extension() != "" {
			md[core.KeyFormat] = strings.ToUpper(strings.TrimPrefix(mtype.Extension(), "."))
		}
	}
	return md, nil
}

// FileURI returns the file:// URI for an absolute path.
func FileURI(abs string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String()
}

func formatFromExt(path string) string {
	return strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), "."))
}

func probeImage(path string, md core.Metadata) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return err
	}
	md[core.KeyWidth] = cfg.Width
	md[core.KeyHeight] = cfg.Height
	md[core.KeyFormat] = strings.ToUpper(format)
	return nil
}
