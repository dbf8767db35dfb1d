package ai

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"promptgate/internal/model"
)

// ChunkStore is the slice of the chunk index the retriever needs.
type ChunkStore interface {
	ListByDocID(docID string) ([]model.RAGChunk, error)
}

// Retriever ranks a document's chunks against a question by cosine similarity
// of their embeddings.
type Retriever struct {
	chunks   ChunkStore
	client   *OpenAICompatibleClient
	baseURL  string
	embModel string
	topK     int
}

func NewRetriever(chunks ChunkStore, client *OpenAICompatibleClient, baseURL, embModel string, topK int) *Retriever {
	if topK <= 0 {
		topK = 3
	}
	return &Retriever{
		chunks:   chunks,
		client:   client,
		baseURL:  baseURL,
		embModel: embModel,
		topK:     topK,
	}
}

// RetrieveContext returns the top-k most similar chunks of the document joined
// into one context block. The credential pays for the query embedding.
func (r *Retriever) RetrieveContext(ctx context.Context, docID, question, credential string) (string, error) {
	chunks, err := r.chunks.ListByDocID(docID)
	if err != nil {
		return "", fmt.Errorf("load chunk index failed: %w", err)
	}
	if len(chunks) == 0 {
		return "", fmt.Errorf("document %s has no indexed chunks", docID)
	}

	queryVec, err := r.client.Embed(ctx, EmbeddingConfig{
		BaseURL: r.baseURL,
		APIKey:  credential,
		Model:   r.embModel,
	}, question)
	if err != nil {
		return "", fmt.Errorf("embed question failed: %w", err)
	}

	type scored struct {
		content string
		score   float32
	}
	ranked := make([]scored, 0, len(chunks))
	for _, chunk := range chunks {
		vec := chunk.EmbeddingVector()
		if len(vec) == 0 {
			continue
		}
		ranked = append(ranked, scored{content: chunk.Content, score: cosineSimilarity(queryVec, vec)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	k := r.topK
	if k > len(ranked) {
		k = len(ranked)
	}
	parts := make([]string, 0, k)
	for _, item := range ranked[:k] {
		parts = append(parts, item.content)
	}
	return strings.Join(parts, "\n---\n"), nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
