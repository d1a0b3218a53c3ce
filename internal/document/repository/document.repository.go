package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"trameserve/internal/document/model"
	"trameserve/pkg/logger"
)

var ErrNotFound = errors.New("document not found")

// DocumentRepository persists raw documents. Every operation checks a
// fresh connection out of the pool, performs one commit/rollback-bounded
// unit of work, and releases the connection on all paths. Mutations
// additionally run the kill-other-connections guard first: a deliberate
// single-writer approximation inherited from the deployment this serves.
// The guard is advisory and racy (a writer reconnecting between the kill
// and our statement is not excluded); see DESIGN.md before "fixing" it.
type DocumentRepository struct {
	DB *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{DB: db}
}

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS raw_documents (
		id SERIAL PRIMARY KEY,
		username VARCHAR NOT NULL,
		title VARCHAR(256),
		slug VARCHAR(256) NOT NULL UNIQUE,
		saving_origin VARCHAR DEFAULT 'manual',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT (NOW() AT TIME ZONE 'UTC'),
		modified_at TIMESTAMP WITH TIME ZONE DEFAULT (NOW() AT TIME ZONE 'UTC'),
		md_content TEXT NOT NULL,
		piece_count INTEGER NOT NULL,
		metadata JSONB
	)`

const killOthersSQL = `
	SELECT pg_terminate_backend(pg_stat_activity.pid)
	FROM pg_stat_activity
	WHERE pg_stat_activity.datname = current_database()
	AND pid <> pg_backend_pid()`

const documentColumns = "id, username, title, slug, saving_origin, created_at, modified_at, md_content, piece_count, metadata"

// EnsureSchema creates the raw_documents table if it does not exist.
// Safe to run on every startup.
func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	err := r.withTx(ctx, "create raw_documents table", func(tx *sql.Tx) error {
		_, execErr := tx.ExecContext(ctx, createTableSQL)
		return execErr
	})
	if err == nil {
		logger.Sugar.Info("Table 'raw_documents' verified/created")
	}
	return err
}

// Upsert inserts or updates by slug. An existing row is updated in
// place: created_at is preserved, modified_at refreshed, everything else
// overwritten. The lookup-then-write (rather than ON CONFLICT) keeps the
// id sequence from advancing on repeated saves of the same slug.
func (r *DocumentRepository) Upsert(ctx context.Context, req model.SaveRequest) (model.Document, error) {
	r.killOtherConnections(ctx)

	var doc model.Document
	err := r.withTx(ctx, fmt.Sprintf("upsert document %q", req.Slug), func(tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx, "SELECT id FROM raw_documents WHERE slug = $1", req.Slug).Scan(&id)

		var row *sql.Row
		switch {
		case err == sql.ErrNoRows:
			row = tx.QueryRowContext(ctx, `
				INSERT INTO raw_documents (username, title, slug, saving_origin, md_content, piece_count, metadata)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING `+documentColumns,
				req.Username, req.Title, req.Slug, req.SavingOrigin, req.Content, req.PieceCount, metadataValue(req.Metadata))
		case err != nil:
			return err
		default:
			row = tx.QueryRowContext(ctx, `
				UPDATE raw_documents
				SET username = $1, title = $2, saving_origin = $3, md_content = $4,
					piece_count = $5, metadata = $6, modified_at = (NOW() AT TIME ZONE 'UTC')
				WHERE id = $7
				RETURNING `+documentColumns,
				req.Username, req.Title, req.SavingOrigin, req.Content, req.PieceCount, metadataValue(req.Metadata), id)
		}

		doc, err = scanDocument(row)
		return err
	})
	if err != nil {
		return model.Document{}, err
	}
	logger.Sugar.Infof("Saved document %q for user %s", doc.Slug, doc.Username)
	return doc, nil
}

// DeleteBySlug removes a document. ErrNotFound when no row matched.
func (r *DocumentRepository) DeleteBySlug(ctx context.Context, slug string) error {
	r.killOtherConnections(ctx)

	return r.withTx(ctx, fmt.Sprintf("delete document %q", slug), func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, "DELETE FROM raw_documents WHERE slug = $1", slug)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *DocumentRepository) GetBySlug(ctx context.Context, slug string) (model.Document, error) {
	return r.queryOne(ctx, "SELECT "+documentColumns+" FROM raw_documents WHERE slug = $1", slug)
}

func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (model.Document, error) {
	return r.queryOne(ctx, "SELECT "+documentColumns+" FROM raw_documents WHERE id = $1", id)
}

// ListAll returns every document, newest created_at first.
func (r *DocumentRepository) ListAll(ctx context.Context) ([]model.Document, error) {
	conn, err := r.DB.Conn(ctx)
	if err != nil {
		logger.Sugar.Errorf("Failed to acquire connection for list: %v", err)
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, "SELECT "+documentColumns+" FROM raw_documents ORDER BY created_at DESC")
	if err != nil {
		logger.Sugar.Errorf("Failed to list documents: %v", err)
		return nil, err
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			logger.Sugar.Errorf("Failed to scan document row: %v", err)
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// killOtherConnections terminates every other connection to the current
// database before a write. Best effort: its own failure is logged and
// swallowed so it can never mask the primary write's outcome. It runs
// outside any transaction and cannot be rolled back.
func (r *DocumentRepository) killOtherConnections(ctx context.Context) {
	conn, err := r.DB.Conn(ctx)
	if err != nil {
		logger.Sugar.Warnf("Failed to kill other connections: %v", err)
		return
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, killOthersSQL); err != nil {
		logger.Sugar.Warnf("Failed to kill other connections: %v", err)
		return
	}
	logger.Sugar.Info("Killed all other connections to the database")
}

// withTx runs fn on a fresh connection inside a transaction, committing
// on success and rolling back on failure. The connection is released on
// every path; failures are logged with their statement context and
// returned to the caller.
func (r *DocumentRepository) withTx(ctx context.Context, description string, fn func(*sql.Tx) error) error {
	conn, err := r.DB.Conn(ctx)
	if err != nil {
		logger.Sugar.Errorf("Failed to acquire connection to %s: %v", description, err)
		return err
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		logger.Sugar.Errorf("Failed to begin transaction to %s: %v", description, err)
		return err
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Sugar.Errorf("Rollback failed after %s: %v", description, rbErr)
		}
		logger.Sugar.Errorf("Failed to %s: %v", description, err)
		return err
	}

	if err := tx.Commit(); err != nil {
		logger.Sugar.Errorf("Failed to commit %s: %v", description, err)
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (model.Document, error) {
	var doc model.Document
	var title, savingOrigin sql.NullString
	var metadata []byte
	err := row.Scan(&doc.ID, &doc.Username, &title, &doc.Slug, &savingOrigin,
		&doc.CreatedAt, &doc.ModifiedAt, &doc.Content, &doc.PieceCount, &metadata)
	if err != nil {
		return model.Document{}, err
	}
	doc.Title = title.String
	doc.SavingOrigin = savingOrigin.String
	doc.Metadata = metadata
	return doc, nil
}

func (r *DocumentRepository) queryOne(ctx context.Context, query string, arg any) (model.Document, error) {
	conn, err := r.DB.Conn(ctx)
	if err != nil {
		logger.Sugar.Errorf("Failed to acquire connection for lookup: %v", err)
		return model.Document{}, err
	}
	defer conn.Close()

	doc, err := scanDocument(conn.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return model.Document{}, ErrNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to look up document: %v", err)
		return model.Document{}, err
	}
	return doc, nil
}

// metadataValue maps empty metadata to NULL so the column round-trips
// verbatim: what was stored is what comes back.
func metadataValue(metadata []byte) any {
	if len(metadata) == 0 {
		return nil
	}
	return metadata
}
