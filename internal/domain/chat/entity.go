package chat

import (
	"time"

	"github.com/labinsight/labinsight-api/internal/domain/report"
)

// MessageID identifier type
type MessageID string

// MessageType enum
type MessageType string

const (
	TypeUser      MessageType = "user"
	TypeAssistant MessageType = "assistant"
)

// Message is one persisted conversation entry. Messages are append-only
// and ordered by creation time; an entry may be scoped to the analysis
// result it discusses.
type Message struct {
	ID               MessageID       `json:"id"`
	UserID           string          `json:"user_id"`
	AnalysisResultID *report.ResultID `json:"analysis_result_id,omitempty"`
	Type             MessageType     `json:"type"`
	Content          string          `json:"content"`
	Language         report.Language `json:"language"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Turn is one prior exchange entry supplied by the client as context
type Turn struct {
	Type    MessageType `json:"message_type"`
	Content string      `json:"content"`
}
