package search

import (
	"iter"

	"github.com/poiesic/mediakg/ai"
	"github.com/poiesic/mediakg/core"
	"github.com/poiesic/mediakg/ontology"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterSemanticSearch(matches []*core.FeatureMatch)
	AfterKeywordExtraction(keywords ai.Keywords)
	AfterKindSearch(class ontology.Class, entityIDs iter.Seq[string])
	SemanticAndKindHit(hit *Hit)
	SemanticHit(hit *Hit)
	KindHit(hit *Hit)
	Finish(hits []*Hit)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                      {}
func (n *noopMonitor) AfterSemanticSearch(_ []*core.FeatureMatch)          {}
func (n *noopMonitor) AfterKeywordExtraction(_ ai.Keywords)                {}
func (n *noopMonitor) AfterKindSearch(_ ontology.Class, _ iter.Seq[string]) {}
func (n *noopMonitor) SemanticAndKindHit(_ *Hit)                           {}
func (n *noopMonitor) SemanticHit(_ *Hit)                                  {}
func (n *noopMonitor) KindHit(_ *Hit)                                      {}
func (n *noopMonitor) Finish(_ []*Hit)                                     {}
