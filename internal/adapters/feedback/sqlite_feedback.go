package feedback

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/trustaware/phish-trust-filter/internal/core"
)

// SQLiteFeedback is an append-only audit log of caller feedback backed by
// SQLite. Entries are only ever inserted; calibration tooling reads the
// table offline.
type SQLiteFeedback struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteFeedback creates a new SQLite feedback log
func NewSQLiteFeedback(dbPath string, logger *zap.Logger) (*SQLiteFeedback, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS feedback_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			processing_id TEXT NOT NULL,
			verdict TEXT NOT NULL,
			trust_score REAL NOT NULL,
			reported_label TEXT,
			comment TEXT,
			received_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteFeedback{db: db, logger: logger}, nil
}

// Append inserts one feedback entry
func (f *SQLiteFeedback) Append(ctx context.Context, entry *core.FeedbackEntry) error {
	_, err := f.db.ExecContext(ctx, `
		INSERT INTO feedback_log (processing_id, verdict, trust_score, reported_label, comment, received_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.ProcessingID, string(entry.Verdict), entry.TrustScore,
		string(entry.Feedback.ReportedLabel), entry.Feedback.Comment,
		entry.ReceivedAt.Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to append feedback entry: %w", err)
	}
	f.logger.Debug("Recorded feedback entry",
		zap.String("processing_id", entry.ProcessingID),
		zap.String("verdict", string(entry.Verdict)))
	return nil
}

// Stop closes the database connection
func (f *SQLiteFeedback) Stop() {
	if err := f.db.Close(); err != nil {
		f.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}
