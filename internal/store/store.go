package store

import (
	"context"

	"github.com/datachat-io/datachat/internal/model"
)

// Store defines the persistence interface for the dataset registry and
// chat history. Dataset contents themselves live in per-dataset SQLite
// files owned by the query executor, not here.
type Store interface {
	// Dataset registry
	ListDatasets(ctx context.Context) ([]model.Dataset, error)
	UpsertDataset(ctx context.Context, ds model.Dataset) error
	SetDatasetStatus(ctx context.Context, name string, status model.DatasetStatus) error

	// Conversations
	CreateConversation(ctx context.Context, conv model.Conversation) error
	TouchConversation(ctx context.Context, id string) error
	ListConversations(ctx context.Context, limit int) ([]model.Conversation, error)

	// Messages
	AppendMessage(ctx context.Context, msg model.Message) error
	ListMessages(ctx context.Context, conversationID string) ([]model.Message, error)

	// Stats
	CountUserMessages(ctx context.Context) (int, error)
	CountConversations(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
