package pgstore

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"roomrelay/internal/chat"
	"slices"
)

//go:embed schema.sql
var schema string

// Store keeps messages in the Postgres "messages" table.
type Store struct {
	db *sql.DB
}

var (
	_ chat.MessageStore  = (*Store)(nil)
	_ chat.HistoryReader = (*Store)(nil)
	_ chat.Pinger        = (*Store)(nil)
)

func New(db *sql.DB) *Store { return &Store{db: db} }

// Migrate creates the messages table and its index when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

const insertQ = `INSERT INTO messages (socket_id, username, text, room, created_at)
                 VALUES ($1, $2, $3, $4, $5)`

func (s *Store) Append(ctx context.Context, msg chat.Message) error {
	_, err := s.db.ExecContext(ctx, insertQ,
		string(msg.ConnectionID), msg.Username, msg.Text, msg.Room, msg.Timestamp)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// AppendBatch stores msgs in a single transaction.
func (s *Store) AppendBatch(ctx context.Context, msgs []chat.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, m := range msgs {
		if _, err := tx.ExecContext(ctx, insertQ,
			string(m.ConnectionID), m.Username, m.Text, m.Room, m.Timestamp); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}
	return tx.Commit()
}

// History returns up to limit of the latest messages of a room, oldest first.
func (s *Store) History(ctx context.Context, room string, limit int) ([]chat.Message, error) {
	const q = `SELECT socket_id, username, text, room, created_at
                 FROM messages
                WHERE room = $1
             ORDER BY created_at DESC, id DESC
                LIMIT $2`
	rows, err := s.db.QueryContext(ctx, q, room, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]chat.Message, 0, limit)
	for rows.Next() {
		var (
			m    chat.Message
			conn string
		)
		if err := rows.Scan(&conn, &m.Username, &m.Text, &m.Room, &m.Timestamp); err != nil {
			return nil, err
		}
		m.ConnectionID = chat.ConnID(conn)
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(list)
	return list, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
