package reembed

import (
	"slices"

	"github.com/poiesic/mediakg/core"
	"github.com/poiesic/mediakg/graph"
	"github.com/poiesic/mediakg/ontology"
)

// target is one feature to re-embed.
type target struct {
	entityID  string
	featureID string
	caption   string
}

// collectTargets finds every entity with both a feature id and a caption,
// ordered by entity id. A feature shared by several entities is embedded
// once, from the first of them.
func collectTargets(g *graph.Graph) []target {
	prop, _ := ontology.PropertyForKey(core.KeyFeatureID)
	predicate := g.Namespace().Property(prop)

	var entities []string
	for _, t := range g.Triples() {
		if t.Predicate.Value != predicate {
			continue
		}
		if id, ok := g.Namespace().Local(t.Subject.Value); ok {
			entities = append(entities, id)
		}
	}
	slices.Sort(entities)
	entities = slices.Compact(entities)

	var out []target
	seen := make(map[string]bool)
	for _, id := range entities {
		featureID, ok := g.Value(id, core.KeyFeatureID)
		if !ok || seen[featureID] {
			continue
		}
		caption, ok := g.Value(id, core.KeyCaption)
		if !ok || caption == "" {
			continue
		}
		seen[featureID] = true
		out = append(out, target{entityID: id, featureID: featureID, caption: caption})
	}
	return out
}
