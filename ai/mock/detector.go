package mock

import (
	"context"
	"sync/atomic"

	"github.com/poiesic/mediakg/ai"
)

// MockDetector is a test double for ai.ObjectDetector.
type MockDetector struct {
	// DetectObjectsFunc is called by DetectObjects if set.
	DetectObjectsFunc func(ctx context.Context, path string) ([]ai.FrameDetections, error)

	callCount atomic.Int64
}

var _ ai.ObjectDetector = (*MockDetector)(nil)

// NewMockDetector creates a mock detector that finds nothing.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// DetectObjects returns no detections unless DetectObjectsFunc is set.
func (m *MockDetector) DetectObjects(ctx context.Context, path string) ([]ai.FrameDetections, error) {
	m.callCount.Add(1)

	if m.DetectObjectsFunc != nil {
		return m.DetectObjectsFunc(ctx, path)
	}
	return nil, nil
}

// CallCount returns the number of times DetectObjects was called.
func (m *MockDetector) CallCount() int {
	return int(m.callCount.Load())
}
