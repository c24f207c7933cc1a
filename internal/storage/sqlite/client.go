package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/codesellers/backend/internal/storage/models"
	"github.com/codesellers/backend/pkg/logger"
)

var ErrChatNotFound = errors.New("chat not found")

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// foreign_keys is per connection
	db.SetMaxOpenConns(1)

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) Ping() error {
	return c.db.Ping()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chats (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_chats_updated ON chats(updated_at);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		chat_id TEXT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
		role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
		content TEXT NOT NULL,
		source_ids TEXT NOT NULL DEFAULT '[]',
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat_id, created_at);

	CREATE TABLE IF NOT EXISTS load_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		version TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		loaded INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		subdivision_fallbacks INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS row_failures (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES load_runs(id) ON DELETE CASCADE,
		row_number INTEGER NOT NULL,
		reason TEXT NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		fields TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_row_failures_run ON row_failures(run_id);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) CreateChat(chat *models.Chat) error {
	query := `INSERT INTO chats (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)`

	_, err := c.db.Exec(query, chat.ID, chat.Title, chat.CreatedAt.Unix(), chat.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}

	logger.Debug("Chat created", zap.String("chat_id", chat.ID))
	return nil
}

func (c *Client) GetChat(id string) (*models.Chat, error) {
	query := `SELECT id, title, created_at, updated_at FROM chats WHERE id = ?`

	var chat models.Chat
	var createdAt, updatedAt int64

	err := c.db.QueryRow(query, id).Scan(&chat.ID, &chat.Title, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}

	chat.CreatedAt = time.Unix(createdAt, 0)
	chat.UpdatedAt = time.Unix(updatedAt, 0)

	return &chat, nil
}

func (c *Client) ListChats(limit int) ([]models.Chat, error) {
	query := `
		SELECT id, title, created_at, updated_at
		FROM chats
		ORDER BY updated_at DESC, created_at DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer rows.Close()

	chats := make([]models.Chat, 0)
	for rows.Next() {
		var chat models.Chat
		var createdAt, updatedAt int64

		if err := rows.Scan(&chat.ID, &chat.Title, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		chat.CreatedAt = time.Unix(createdAt, 0)
		chat.UpdatedAt = time.Unix(updatedAt, 0)
		chats = append(chats, chat)
	}

	return chats, rows.Err()
}

// DeleteChat removes the chat and, through the foreign key, its messages.
func (c *Client) DeleteChat(id string) error {
	res, err := c.db.Exec(`DELETE FROM chats WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	if n == 0 {
		return ErrChatNotFound
	}

	logger.Info("Chat deleted", zap.String("chat_id", id))
	return nil
}

func (c *Client) InsertMessage(msg *models.Message) error {
	sources, err := json.Marshal(msg.SourceIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal sources: %w", err)
	}

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO messages (id, chat_id, role, content, source_ids, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID,
		msg.ChatID,
		msg.Role,
		msg.Content,
		string(sources),
		msg.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	_, err = tx.Exec(`UPDATE chats SET updated_at = ? WHERE id = ?`, msg.CreatedAt.Unix(), msg.ChatID)
	if err != nil {
		return fmt.Errorf("failed to touch chat: %w", err)
	}

	return tx.Commit()
}

func (c *Client) ListMessages(chatID string) ([]models.Message, error) {
	if _, err := c.GetChat(chatID); err != nil {
		return nil, err
	}

	query := `
		SELECT id, chat_id, role, content, source_ids, created_at
		FROM messages
		WHERE chat_id = ?
		ORDER BY created_at ASC, rowid ASC
	`

	rows, err := c.db.Query(query, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var m models.Message
		var sources string
		var createdAt int64

		if err := rows.Scan(&m.ID, &m.ChatID, &m.Role, &m.Content, &sources, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if sources != "" && sources != "null" {
			if err := json.Unmarshal([]byte(sources), &m.SourceIDs); err != nil {
				logger.Warn("Failed to unmarshal message sources", zap.String("message_id", m.ID), zap.Error(err))
			}
		}

		m.CreatedAt = time.Unix(0, createdAt)
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

// RecordLoadRun stores a dataset load together with its skipped rows and
// returns the run id.
func (c *Client) RecordLoadRun(run *models.LoadRun, failures []models.RowFailure) (int, error) {
	tx, err := c.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO load_runs (source, version, status, loaded, skipped, subdivision_fallbacks, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Source,
		run.Version,
		run.Status,
		run.Loaded,
		run.Skipped,
		run.SubdivisionFallbacks,
		run.Error,
		run.StartedAt.Unix(),
		run.FinishedAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert load run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read load run id: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO row_failures (run_id, row_number, reason, detail, fields) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare row failure insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range failures {
		fields, err := json.Marshal(f.Fields)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal row fields: %w", err)
		}
		if _, err := stmt.Exec(id, f.Row, f.Reason, f.Detail, string(fields)); err != nil {
			return 0, fmt.Errorf("failed to insert row failure: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit load run: %w", err)
	}

	logger.Info("Load run recorded",
		zap.Int64("run_id", id),
		zap.String("status", run.Status),
		zap.Int("failures", len(failures)),
	)

	return int(id), nil
}

func (c *Client) LatestLoadRun() (*models.LoadRun, error) {
	query := `
		SELECT id, source, version, status, loaded, skipped, subdivision_fallbacks, error, started_at, finished_at
		FROM load_runs
		ORDER BY id DESC
		LIMIT 1
	`

	var run models.LoadRun
	var startedAt, finishedAt int64

	err := c.db.QueryRow(query).Scan(
		&run.ID,
		&run.Source,
		&run.Version,
		&run.Status,
		&run.Loaded,
		&run.Skipped,
		&run.SubdivisionFallbacks,
		&run.Error,
		&startedAt,
		&finishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest load run: %w", err)
	}

	run.StartedAt = time.Unix(startedAt, 0)
	run.FinishedAt = time.Unix(finishedAt, 0)

	return &run, nil
}

func (c *Client) RowFailures(runID int) ([]models.RowFailure, error) {
	rows, err := c.db.Query(`SELECT id, run_id, row_number, reason, detail, fields FROM row_failures WHERE run_id = ? ORDER BY row_number`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list row failures: %w", err)
	}
	defer rows.Close()

	failures := make([]models.RowFailure, 0)
	for rows.Next() {
		var f models.RowFailure
		var fields string

		if err := rows.Scan(&f.ID, &f.RunID, &f.Row, &f.Reason, &f.Detail, &fields); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(fields), &f.Fields); err != nil {
			return nil, fmt.Errorf("failed to unmarshal row fields: %w", err)
		}
		failures = append(failures, f)
	}

	return failures, rows.Err()
}
