package ai

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Keyword keys understood by extractors.
const (
	KeyType     = "type"
	KeyActivity = "activity"
	KeyLocation = "location"
	KeyEvent    = "event"
	KeyDate     = "date"
	KeyPeople   = "people"
	KeyEmotion  = "emotion"
	KeyDevice   = "device"
	KeyWeather  = "weather"
	KeyObject   = "object"
)

// KeywordKeys lists every key, KeyType first.
var KeywordKeys = []string{
	KeyType,
	KeyActivity,
	KeyLocation,
	KeyEvent,
	KeyDate,
	KeyPeople,
	KeyEmotion,
	KeyDevice,
	KeyWeather,
	KeyObject,
}

// Keywords is the tag set extracted from a prompt.
type Keywords map[string]string

// Type returns the prompt's type tag.
func (k Keywords) Type() string {
	return k[KeyType]
}

// Clean drops unknown keys and empty values, and lowercases every value.
func (k Keywords) Clean() Keywords {
	out := make(Keywords, len(k))
	for key, value := range k {
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.ToLower(strings.TrimSpace(value))
		if value == "" || !slices.Contains(KeywordKeys, key) {
			continue
		}
		out[key] = value
	}
	return out
}

// String renders the keywords as key=value pairs in KeywordKeys order.
func (k Keywords) String() string {
	parts := make([]string, 0, len(k))
	for _, key := range KeywordKeys {
		if v, ok := k[key]; ok {
			parts = append(parts, key+"="+v)
		}
	}
	return strings.Join(parts, " ")
}

// Detection is one object found in a frame.
type Detection struct {
	Label      string
	Confidence float64
	// Box is x1, y1, x2, y2 in pixels.
	Box [4]float64
}

// FrameDetections holds the detections of one frame.
type FrameDetections struct {
	Frame      int
	Detections []Detection
}

// Summarize turns per-frame detections into a short caption listing each
// label with the most instances seen in any single frame, most frequent
// first. Detections under minConfidence are ignored. Returns "" when
// nothing qualifies.
func Summarize(frames []FrameDetections, minConfidence float64) string {
	peak := make(map[string]int)
	for _, f := range frames {
		counts := make(map[string]int)
		for _, d := range f.Detections {
			if d.Confidence < minConfidence || d.Label == "" {
				continue
			}
			counts[strings.ToLower(d.Label)]++
		}
		for label, n := range counts {
			peak[label] = max(peak[label], n)
		}
	}
	if len(peak) == 0 {
		return ""
	}

	labels := make([]string, 0, len(peak))
	for label := range peak {
		labels = append(labels, label)
	}
	slices.SortFunc(labels, func(a, b string) int {
		if peak[a] != peak[b] {
			return peak[b] - peak[a]
		}
		return strings.Compare(a, b)
	})

	parts := make([]string, len(labels))
	for i, label := range labels {
		if peak[label] == 1 {
			parts[i] = label
		} else {
			parts[i] = fmt.Sprintf("%d %s", peak[label], label)
		}
	}
	return "video showing " + strings.Join(parts, ", ")
}

// Normalize scales v to unit length in place. Zero vectors are left as is.
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}
