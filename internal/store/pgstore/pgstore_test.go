package pgstore

import (
	"context"
	"errors"
	"roomrelay/internal/chat"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

var at = time.Date(2025, 7, 27, 16, 5, 5, 0, time.UTC)

func TestStore_Append(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO messages`).
		WithArgs("c1", "carol", "hi", "123456", at).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := s.Append(context.Background(), chat.Message{
		ConnectionID: "c1", Username: "carol", Text: "hi", Room: "123456", Timestamp: at,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_AppendError(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO messages`).WillReturnError(errors.New("conn refused"))

	err := s.Append(context.Background(), chat.Message{Room: "123456"})

	assert.ErrorContains(t, err, "insert message")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_AppendBatch(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO messages`).
		WithArgs("c1", "bob", "one", "123456", at).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO messages`).
		WithArgs("c2", "carol", "two", "123456", at).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := s.AppendBatch(context.Background(), []chat.Message{
		{ConnectionID: "c1", Username: "bob", Text: "one", Room: "123456", Timestamp: at},
		{ConnectionID: "c2", Username: "carol", Text: "two", Room: "123456", Timestamp: at},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_AppendBatchRollsBack(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO messages`).WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := s.AppendBatch(context.Background(), []chat.Message{{Room: "123456"}})

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_History(t *testing.T) {
	s, mock := newMock(t)
	rows := sqlmock.NewRows([]string{"socket_id", "username", "text", "room", "created_at"}).
		AddRow("c2", "carol", "second", "123456", at.Add(time.Second)).
		AddRow("c1", "bob", "first", "123456", at)
	mock.ExpectQuery(`SELECT socket_id, username, text, room, created_at\s+FROM messages`).
		WithArgs("123456", 2).
		WillReturnRows(rows)

	got, err := s.History(context.Background(), "123456", 2)

	require.NoError(t, err)
	assert.Equal(t, []chat.Message{
		{ConnectionID: "c1", Username: "bob", Text: "first", Room: "123456", Timestamp: at},
		{ConnectionID: "c2", Username: "carol", Text: "second", Room: "123456", Timestamp: at.Add(time.Second)},
	}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Migrate(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS messages`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing().WillReturnError(errors.New("down"))

	assert.Error(t, New(db).Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
