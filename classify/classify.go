// Package classify assigns a media kind to a file.
//
// Classification runs a cascade and stops at the first step that yields a
// known kind: the file extension, then the MIME type registered for the
// extension, then the file's content.
package classify

import (
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/poiesic/mediakg/core"
)

// Confidence reported by each step of the cascade.
const (
	ExtensionConfidence = 0.9
	MIMEConfidence      = 0.8
	ContentConfidence   = 0.7
)

var extensions = map[string]core.Kind{
	".jpg": core.KindImage, ".jpeg": core.KindImage, ".png": core.KindImage,
	".bmp": core.KindImage, ".tiff": core.KindImage, ".tif": core.KindImage,
	".webp": core.KindImage, ".gif": core.KindImage,

	".wav": core.KindAudio, ".mp3": core.KindAudio, ".flac": core.KindAudio,
	".m4a": core.KindAudio, ".aac": core.KindAudio, ".ogg": core.KindAudio,

	".mp4": core.KindVideo, ".mov": core.KindVideo, ".avi": core.KindVideo,
	".mkv": core.KindVideo, ".webm": core.KindVideo,

	".txt": core.KindText, ".md": core.KindText, ".json": core.KindText,
	".csv": core.KindText, ".xml": core.KindText,
}

// KindForExtension returns the kind registered for ext (with or without
// the leading dot, any case).
func KindForExtension(ext string) (core.Kind, bool) {
	ext = strings.ToLower(ext)
	if ext != "" && ext[0] != '.' {
		ext = "." + ext
	}
	kind, ok := extensions[ext]
	return kind, ok
}

// KindForMIME maps a MIME type to a kind. Parameters are ignored.
func KindForMIME(mtype string) core.Kind {
	mtype, _, _ = strings.Cut(strings.ToLower(mtype), ";")
	mtype = strings.TrimSpace(mtype)
	major, _, _ := strings.Cut(mtype, "/")
	switch major {
	case "image":
		return core.KindImage
	case "audio":
		return core.KindAudio
	case "video":
		return core.KindVideo
	case "text":
		return core.KindText
	}
	switch mtype {
	case "application/json", "application/xml", "application/csv":
		return core.KindText
	case "application/ogg":
		return core.KindAudio
	}
	return core.KindOther
}

// Classifier runs the classification cascade.
type Classifier struct {
	sniff  bool
	logger *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		c.logger = logger
	}
}

// WithContentSniffing enables or disables the content step. It is on by
// default.
func WithContentSniffing(enabled bool) Option {
	return func(c *Classifier) {
		c.sniff = enabled
	}
}

// New creates a Classifier.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		sniff:  true,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "classify")
	return c
}

// Classify returns the kind of the file at path. A file no step can place
// is KindOther with zero confidence. An error is returned only when the
// content step cannot read the file.
func (c *Classifier) Classify(path string) (core.Classification, error) {
	ext := filepath.Ext(path)
	mtype := mime.TypeByExtension(strings.ToLower(ext))

	if kind, ok := KindForExtension(ext); ok {
		return core.Classification{Kind: kind, Confidence: ExtensionConfidence, MIME: mtype}, nil
	}

	if mtype != "" {
		if kind := KindForMIME(mtype); kind != core.KindOther {
			return core.Classification{Kind: kind, Confidence: MIMEConfidence, MIME: mtype}, nil
		}
	}

	if !c.sniff {
		return core.Classification{Kind: core.KindOther, MIME: mtype}, nil
	}

	detected, err := mimetype.DetectFile(path)
	if err != nil {
		return core.Classification{}, err
	}
	kind := KindForMIME(detected.String())
	c.logger.Debug("classified by content", "path", path, "mime", detected.String(), "kind", kind)
	if kind == core.KindOther {
		return core.Classification{Kind: core.KindOther, MIME: detected.String()}, nil
	}
	return core.Classification{Kind: kind, Confidence: ContentConfidence, MIME: detected.String()}, nil
}
