package app

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"

	"promptgate/internal/ai"
	"promptgate/internal/model"
	"promptgate/internal/pkg/pdfextract"
)

const (
	defaultChunkSize    = 512
	defaultChunkOverlap = 64
	embeddingBatchSize  = 10 // DashScope and similar APIs often limit batch size
)

var ErrDocumentEmpty = errors.New("document has no extractable text")

type ChunkWriter interface {
	CreateBatch(chunks []model.RAGChunk) error
}

type Embedder interface {
	EmbedBatch(ctx context.Context, cfg ai.EmbeddingConfig, texts []string) ([][]float32, error)
}

// IngestService turns an uploaded PDF into a retrieval model: extract the
// text, chunk it, embed each chunk, persist document and chunks under a fresh
// doc_id, and register a rag_model descriptor pointing at it.
type IngestService struct {
	registry  ModelRegistry
	docs      DocumentStore
	chunks    ChunkWriter
	embedder  Embedder
	embConfig ai.EmbeddingConfig
}

type UploadModelInput struct {
	UserID       uint
	APIKey       string
	ModelName    string
	Description  string
	SystemPrompt string
	Visibility   bool
	MaxTokens    int
	FileName     string
	File         io.Reader
}

type UploadModelResult struct {
	Model      *model.AIModel
	DocID      string
	ChunkCount int
}

func NewIngestService(registry ModelRegistry, docs DocumentStore, chunks ChunkWriter, embedder Embedder, embConfig ai.EmbeddingConfig) *IngestService {
	return &IngestService{
		registry:  registry,
		docs:      docs,
		chunks:    chunks,
		embedder:  embedder,
		embConfig: embConfig,
	}
}

func (s *IngestService) UploadModel(ctx context.Context, input UploadModelInput) (*UploadModelResult, error) {
	if input.UserID == 0 || input.File == nil {
		return nil, ErrInvalidInput
	}
	name := strings.TrimSpace(input.ModelName)
	if name == "" {
		return nil, ErrInvalidInput
	}

	existing, err := s.registry.GetByName(name, input.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrModelNameTaken
	}

	text, err := pdfextract.ExtractText(input.File)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrDocumentEmpty
	}

	pieces := chunkText(text, defaultChunkSize, defaultChunkOverlap)
	if len(pieces) == 0 {
		return nil, ErrDocumentEmpty
	}

	embCfg := s.embConfig
	if embCfg.APIKey == "" {
		embCfg.APIKey = input.APIKey
	}

	// Embed in batches to stay under provider limits.
	var embeddings [][]float32
	for i := 0; i < len(pieces); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(pieces) {
			end = len(pieces)
		}
		batched, err := s.embedder.EmbedBatch(ctx, embCfg, pieces[i:end])
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, batched...)
	}
	if len(embeddings) != len(pieces) {
		return nil, errors.New("embedding count mismatch")
	}

	docID := uuid.NewString()
	doc := &model.RAGDocument{
		DocID:  docID,
		UserID: input.UserID,
		Name:   strings.TrimSpace(input.FileName),
	}
	if err := s.docs.Create(doc); err != nil {
		return nil, err
	}

	ragChunks := make([]model.RAGChunk, len(pieces))
	for i := range pieces {
		ragChunks[i] = model.RAGChunk{
			DocID:   docID,
			Content: pieces[i],
		}
		ragChunks[i].SetEmbedding(embeddings[i])
	}
	if err := s.chunks.CreateBatch(ragChunks); err != nil {
		return nil, err
	}

	descriptor := &model.AIModel{
		Name:         name,
		Description:  strings.TrimSpace(input.Description),
		Type:         model.ModelTypeRAG,
		SystemPrompt: strings.TrimSpace(input.SystemPrompt),
		Visibility:   input.Visibility,
		CreatorID:    input.UserID,
		MaxTokens:    input.MaxTokens,
		DocID:        docID,
	}
	if err := s.registry.Insert(descriptor); err != nil {
		return nil, err
	}

	return &UploadModelResult{
		Model:      descriptor,
		DocID:      docID,
		ChunkCount: len(ragChunks),
	}, nil
}

// chunkText splits text into overlapping chunks by rune count.
func chunkText(text string, size, overlap int) []string {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap >= size {
		overlap = size / 2
	}
	var chunks []string
	runes := []rune(text)
	for i := 0; i < len(runes); {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		i += size - overlap
		if i >= len(runes) {
			break
		}
	}
	return chunks
}
