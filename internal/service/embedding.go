package service

import (
	"context"
	"math"
	"sort"
)

// DefaultSimilarityThreshold is the minimum cosine-similarity score for a
// stored note to be considered a relevant search hit.
const DefaultSimilarityThreshold = 0.5

// EmbeddingClient defines the interface for the embedding capability
type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Candidate is one stored vector eligible for similarity ranking
type Candidate struct {
	ID     string
	Vector []float32
}

// RankedCandidate is one ranking result
type RankedCandidate struct {
	ID    string
	Score float64
}

// EmbeddingIndex computes fixed-length vectors for arbitrary text and ranks
// stored vectors by cosine similarity. Ranking is a full sort over all
// candidates; no approximate or indexed search.
type EmbeddingIndex struct {
	client    EmbeddingClient
	threshold float64
}

// NewEmbeddingIndex creates a new EmbeddingIndex instance. A threshold of 0
// or less falls back to the default.
func NewEmbeddingIndex(client EmbeddingClient, threshold float64) *EmbeddingIndex {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &EmbeddingIndex{
		client:    client,
		threshold: threshold,
	}
}

// Embed computes the embedding vector for the given text
func (x *EmbeddingIndex) Embed(ctx context.Context, text string) ([]float32, error) {
	return x.client.Embed(ctx, text)
}

// Rank orders all candidates by cosine similarity to the query vector,
// descending by score.
func (x *EmbeddingIndex) Rank(query []float32, candidates []Candidate) []RankedCandidate {
	ranked := make([]RankedCandidate, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, RankedCandidate{
			ID:    c.ID,
			Score: CosineSimilarity(query, c.Vector),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// Search ranks all candidates and keeps only those scoring strictly greater
// than the similarity threshold, discarding lower-relevance matches entirely.
func (x *EmbeddingIndex) Search(query []float32, candidates []Candidate) []RankedCandidate {
	ranked := x.Rank(query, candidates)
	relevant := make([]RankedCandidate, 0, len(ranked))
	for _, r := range ranked {
		if r.Score > x.threshold {
			relevant = append(relevant, r)
		}
	}
	return relevant
}

// CosineSimilarity computes dot(a,b) / (||a|| * ||b||). A zero-norm vector
// on either side scores exactly 0, never NaN.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, v := range a {
		normA += float64(v) * float64(v)
	}
	for _, v := range b {
		normB += float64(v) * float64(v)
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
