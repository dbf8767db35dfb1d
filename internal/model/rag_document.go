package model

import "time"

// RAGDocument is the document index a rag_model descriptor points at via DocID.
type RAGDocument struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DocID     string    `gorm:"size:64;not null;uniqueIndex" json:"doc_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Name      string    `gorm:"size:256;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
