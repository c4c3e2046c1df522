// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingestion

import (
	"context"

	"github.com/poiesic/mediakg/core"
)

// fileJob is one file moving through the pipeline.
type fileJob struct {
	path     string
	entityID string
	kind     core.Kind
	metadata core.Metadata
}

// caption returns the job's caption, or "" if it has none.
func (j *fileJob) caption() string {
	s, _ := j.metadata[core.KeyCaption].(string)
	return s
}

// processor is an internal interface for model-backed enrichment steps.
// A processor adds metadata to a job before it is mapped into the graph.
// Failures are reported to the pipeline, which logs them and carries on
// without the processor's contribution.
type processor interface {
	// name labels the step in logs and metrics.
	name() string

	// process enriches job.metadata in place.
	process(ctx context.Context, job *fileJob) error
}
