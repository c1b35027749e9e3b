package model

import "time"

// Conversation groups the messages of one chat thread.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is one persisted chat message.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	SQL            string    `json:"sql_query,omitempty"`
	ResultsCount   *int      `json:"results_count,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ChatResponse is the full answer to one chat request.
type ChatResponse struct {
	Response       string        `json:"response"`
	SQL            string        `json:"sql,omitempty"`
	Results        *ResultSet    `json:"results"`
	Database       string        `json:"database,omitempty"`
	Time           float64       `json:"time"`
	ConversationID string        `json:"conversation_id"`
	Osint          *OsintProfile `json:"osint"`
}

// Stats summarizes registry and history totals.
type Stats struct {
	TotalDatabases     int   `json:"total_databases"`
	TotalRecords       int64 `json:"total_records"`
	TotalQueries       int   `json:"total_queries"`
	TotalConversations int   `json:"total_conversations"`
}
