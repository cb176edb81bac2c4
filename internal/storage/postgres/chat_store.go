package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"sames-backend/internal/domain"
	"sames-backend/internal/storage"
)

// ChatStore implements storage.ChatStore using PostgreSQL.
type ChatStore struct {
	pool *Pool
}

// NewChatStore creates a new ChatStore.
func NewChatStore(pool *Pool) *ChatStore {
	return &ChatStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ChatStore = (*ChatStore)(nil)

// Insert appends a chat message.
func (s *ChatStore) Insert(ctx context.Context, m *domain.ChatMessage) error {
	if m == nil || m.ID == "" || m.TokenAddress == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO chat_messages (id, token_address, wallet, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query, m.ID, m.TokenAddress, m.Wallet, m.Body, m.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert chat message: %w", err)
	}
	return nil
}

// ListByToken retrieves messages for a token, ordered by creation time ASC.
func (s *ChatStore) ListByToken(ctx context.Context, tokenAddress string, limit int) ([]*domain.ChatMessage, error) {
	query := `
		SELECT id, token_address, wallet, body, created_at
		FROM chat_messages
		WHERE token_address = $1
		ORDER BY created_at ASC, id ASC
	`
	args := []any{tokenAddress}

	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	return scanChatMessages(rows)
}

// scanChatMessages scans multiple rows into a slice of ChatMessage.
func scanChatMessages(rows pgx.Rows) ([]*domain.ChatMessage, error) {
	var msgs []*domain.ChatMessage

	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.TokenAddress, &m.Wallet, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message row: %w", err)
		}
		msgs = append(msgs, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat message rows: %w", err)
	}

	return msgs, nil
}
