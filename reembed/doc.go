// Package reembed refreshes stored feature vectors after the embedding
// model changes.
//
// Every entity that references a feature and carries a caption is
// embedded again. The new vector overwrites the stored one under the same
// feature id, so the graph's hasFeatureID triples stay valid.
package reembed
