package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// KeywordExtractor extracts structured tags from a free-text prompt.
// Implementations must be thread-safe for concurrent use.
type KeywordExtractor interface {
	// ExtractKeywords returns the tags found in text. The result always
	// carries a KeyType entry; other keys are present only when the text
	// mentions them.
	ExtractKeywords(ctx context.Context, text string) (Keywords, error)
}

// ObjectDetector finds objects in the frames of a video.
// Implementations must be thread-safe for concurrent use.
type ObjectDetector interface {
	// DetectObjects returns detections per frame, in frame order. path is a
	// still image (one frame) or a directory of extracted frame images.
	DetectObjects(ctx context.Context, path string) ([]FrameDetections, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// KeywordExtractor returns the keyword extraction service.
	KeywordExtractor() KeywordExtractor

	// ObjectDetector returns the detection service, or nil when no vision
	// model is configured.
	ObjectDetector() ObjectDetector

	// Close releases resources held by the provider and its services.
	Close() error
}
