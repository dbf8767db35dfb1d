package model

import "time"

// ModelType is the closed set of backend strategies the invocation router
// dispatches over. Adding a backend means adding a constant here and a case in
// the router.
type ModelType string

const (
	ModelTypeChat  ModelType = "chat"
	ModelTypeRAG   ModelType = "rag_model"
	ModelTypeLlama ModelType = "llama"
)

// Valid reports whether t is one of the known backend strategies.
func (t ModelType) Valid() bool {
	switch t {
	case ModelTypeChat, ModelTypeRAG, ModelTypeLlama:
		return true
	}
	return false
}

// AIModel describes an invocable backend: what strategy to use, who may see it,
// and for retrieval-augmented models which document index grounds the answers.
type AIModel struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:128;not null;uniqueIndex" json:"name"`
	Description  string    `gorm:"size:512" json:"description"`
	Type         ModelType `gorm:"size:32;not null" json:"type"`
	SystemPrompt string    `gorm:"type:text" json:"system"`
	Visibility   bool      `gorm:"not null" json:"visibility"`
	CreatorID    uint      `gorm:"not null;index" json:"creator_id"`
	MaxTokens    int       `json:"max_tokens"`
	DocID        string    `gorm:"size:64;index" json:"doc_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
