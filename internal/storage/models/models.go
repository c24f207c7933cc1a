package models

import "time"

type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	SourceIDs []int     `json:"source_ids,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type LoadRun struct {
	ID                   int       `json:"id"`
	Source               string    `json:"source"`
	Version              string    `json:"version"`
	Status               string    `json:"status"`
	Loaded               int       `json:"loaded"`
	Skipped              int       `json:"skipped"`
	SubdivisionFallbacks int       `json:"subdivision_fallbacks"`
	Error                string    `json:"error,omitempty"`
	StartedAt            time.Time `json:"started_at"`
	FinishedAt           time.Time `json:"finished_at"`
}

type RowFailure struct {
	ID     int      `json:"id"`
	RunID  int      `json:"run_id"`
	Row    int      `json:"row"`
	Reason string   `json:"reason"`
	Detail string   `json:"detail"`
	Fields []string `json:"fields"`
}
