package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/poiesic/mediakg/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// maxFrames caps how many frames of a directory are sent to the model.
// Larger directories are sampled at an even stride.
const maxFrames = 16

// ErrNotImage is returned when a frame file is not an image.
var ErrNotImage = errors.New("frame is not an image")

// Detector implements ai.ObjectDetector with a multimodal chat model.
type Detector struct {
	client llms.Model
	logger *slog.Logger
}

type detectedObject struct {
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	Box        []float64 `json:"box"`
}

type detectionReply struct {
	Objects []detectedObject `json:"objects"`
}

func newDetector(config *ai.Config) (*Detector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.VisionModel == "" {
		return nil, errors.New("ai config: VisionModel is required for detection")
	}

	client, err := openai.New(
		openai.WithBaseURL(config.VisionHost),
		openai.WithToken(config.Token),
		openai.WithModel(config.VisionModel),
	)
	if err != nil {
		return nil, err
	}

	return &Detector{
		client: client,
		logger: slog.Default().With("component", "openai-detector"),
	}, nil
}

// NewDetector creates an object detector backed by config.VisionModel.
func NewDetector(config *ai.Config) (ai.ObjectDetector, error) {
	return newDetector(config)
}

// DetectObjects runs detection on a single image or on every image in a
// directory of extracted frames, in file name order.
func (d *Detector) DetectObjects(ctx context.Context, path string) ([]ai.FrameDetections, error) {
	frames, err := framePaths(path)
	if err != nil {
		return nil, err
	}

	results := make([]ai.FrameDetections, 0, len(frames))
	for i, frame := range frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		detections, err := d.detectFrame(ctx, frame)
		if err != nil {
			return nil, fmt.Errorf("frame %s: %w", frame, err)
		}
		results = append(results, ai.FrameDetections{Frame: i, Detections: detections})
	}

	d.logger.Debug("detection complete", "path", path, "frames", len(results))
	return results, nil
}

func (d *Detector) detectFrame(ctx context.Context, path string) ([]ai.Detection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, ErrNotImage
	}

	content := []llms.MessageContent{{
		Role: llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{
			llms.TextPart(detectionPrompt),
			llms.BinaryPart(mtype.String(), data),
		},
	}}

	var reply detectionReply
	if err := generateJSON(ctx, d.client, content, &reply, d.logger); err != nil {
		return nil, err
	}

	detections := make([]ai.Detection, 0, len(reply.Objects))
	for _, o := range reply.Objects {
		det := ai.Detection{
			Label:      strings.ToLower(strings.TrimSpace(o.Label)),
			Confidence: min(max(o.Confidence, 0), 1),
		}
		copy(det.Box[:], o.Box)
		detections = append(detections, det)
	}
	return detections, nil
}

// framePaths returns path itself for a file, or the sampled image files of
// a directory.
func framePaths(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var frames []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		full := filepath.Join(path, e.Name())
		mtype, err := mimetype.DetectFile(full)
		if err != nil || !strings.HasPrefix(mtype.String(), "image/") {
			continue
		}
		frames = append(frames, full)
	}
	slices.Sort(frames)
	return sampleFrames(frames, maxFrames), nil
}

func sampleFrames(frames []string, limit int) []string {
	if len(frames) <= limit {
		return frames
	}
	out := make([]string, limit)
	for i := range limit {
		out[i] = frames[i*len(frames)/limit]
	}
	return out
}
