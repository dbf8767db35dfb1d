package model

import "time"

// TurnEvent records one completed question/answer turn. It is published after
// the answer message is persisted and consumed by the usage worker, which folds
// it into per-user counters.
type TurnEvent struct {
	UserID      uint      `json:"user_id"`
	ChatID      uint      `json:"chat_id"`
	ModelID     uint      `json:"model_id"`
	ModelName   string    `json:"model_name"`
	QuestionLen int       `json:"question_len"`
	AnswerLen   int       `json:"answer_len"`
	CompletedAt time.Time `json:"completed_at"`
}
