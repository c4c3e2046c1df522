package ingestion

import (
	"context"
	"log/slog"

	"github.com/poiesic/mediakg/ai"
	"github.com/poiesic/mediakg/core"
)

// detectionProcessor captions videos that have no caption from the
// objects detected in their frames.
type detectionProcessor struct {
	detector      ai.ObjectDetector
	minConfidence float64
	backoff       Backoff
	logger        *slog.Logger
}

var _ processor = (*detectionProcessor)(nil)

func newDetectionProcessor(detector ai.ObjectDetector, minConfidence float64, backoff Backoff, logger *slog.Logger) *detectionProcessor {
	return &detectionProcessor{
		detector:      detector,
		minConfidence: minConfidence,
		backoff:       backoff,
		logger:        logger.With("processor", "detection"),
	}
}

func (dp *detectionProcessor) name() string { return "detection" }

func (dp *detectionProcessor) process(ctx context.Context, job *fileJob) error {
	if job.kind != core.KindVideo || job.caption() != "" {
		return nil
	}

	var frames []ai.FrameDetections
	err := dp.backoff.Do(ctx, dp.logger, func(ctx context.Context) error {
		var err error
		frames, err = dp.detector.DetectObjects(ctx, job.path)
		return err
	})
	if err != nil {
		return err
	}

	if caption := ai.Summarize(frames, dp.minConfidence); caption != "" {
		job.metadata[core.KeyCaption] = caption
		dp.logger.Debug("captioned from detections", "entity", job.entityID, "frames", len(frames))
	}
	return nil
}
