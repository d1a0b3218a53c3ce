package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trameserve/internal/document/model"
	"trameserve/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	m.Run()
}

var documentColumnList = []string{
	"id", "username", "title", "slug", "saving_origin",
	"created_at", "modified_at", "md_content", "piece_count", "metadata",
}

func documentRow(id int64, slug, content string, createdAt, modifiedAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(documentColumnList).
		AddRow(id, "znd", "A title", slug, "manual", createdAt, modifiedAt, content, 2, []byte(`{"k":"v"}`))
}

func expectKill(mock sqlmock.Sqlmock) {
	mock.ExpectExec("SELECT pg_terminate_backend").
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS raw_documents").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	repo := NewDocumentRepository(db)
	assert.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertInsertsNewSlug(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	expectKill(mock)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM raw_documents WHERE slug").
		WithArgs("hello-world").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO raw_documents").
		WillReturnRows(documentRow(1, "hello-world", "# Hello", now, now))
	mock.ExpectCommit()

	repo := NewDocumentRepository(db)
	doc, err := repo.Upsert(context.Background(), model.SaveRequest{
		Username: "znd", Title: "A title", Slug: "hello-world",
		SavingOrigin: "manual", Content: "# Hello", PieceCount: 2,
		Metadata: []byte(`{"k":"v"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.ID)
	assert.Equal(t, "hello-world", doc.Slug)
	assert.JSONEq(t, `{"k":"v"}`, string(doc.Metadata))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertUpdatesExistingSlugInPlace(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	createdAt := time.Now().UTC().Add(-24 * time.Hour)
	modifiedAt := time.Now().UTC()

	expectKill(mock)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM raw_documents WHERE slug").
		WithArgs("hello-world").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery("UPDATE raw_documents").
		WillReturnRows(documentRow(7, "hello-world", "# Hello v2", createdAt, modifiedAt))
	mock.ExpectCommit()

	repo := NewDocumentRepository(db)
	doc, err := repo.Upsert(context.Background(), model.SaveRequest{
		Username: "znd", Slug: "hello-world", Content: "# Hello v2", PieceCount: 2,
	})
	require.NoError(t, err)

	// Same row, second call's content, original creation time.
	assert.Equal(t, int64(7), doc.ID)
	assert.Equal(t, "# Hello v2", doc.Content)
	assert.Equal(t, createdAt, doc.CreatedAt)
	assert.True(t, doc.ModifiedAt.After(doc.CreatedAt))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertRollsBackAndReturnsError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("connection reset")
	expectKill(mock)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM raw_documents WHERE slug").
		WillReturnError(boom)
	mock.ExpectRollback()

	repo := NewDocumentRepository(db)
	_, err = repo.Upsert(context.Background(), model.SaveRequest{Slug: "hello-world"})
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertSurvivesKillFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	// Advisory guard fails; the write must proceed regardless.
	mock.ExpectExec("SELECT pg_terminate_backend").
		WillReturnError(errors.New("permission denied"))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM raw_documents WHERE slug").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO raw_documents").
		WillReturnRows(documentRow(1, "hello-world", "# Hello", now, now))
	mock.ExpectCommit()

	repo := NewDocumentRepository(db)
	_, err = repo.Upsert(context.Background(), model.SaveRequest{Slug: "hello-world", Content: "# Hello"})
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBySlug(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectKill(mock)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM raw_documents WHERE slug").
		WithArgs("hello-world").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewDocumentRepository(db)
	assert.NoError(t, repo.DeleteBySlug(context.Background(), "hello-world"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBySlugNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectKill(mock)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM raw_documents WHERE slug").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	repo := NewDocumentRepository(db)
	assert.ErrorIs(t, repo.DeleteBySlug(context.Background(), "missing"), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM raw_documents WHERE id").
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	repo := NewDocumentRepository(db)
	_, err = repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(documentColumnList).
		AddRow(2, "sel", "Newer", "newer", "manual", now, now, "b", 1, nil).
		AddRow(1, "znd", "Older", "older", "manual", now.Add(-time.Hour), now.Add(-time.Hour), "a", 1, nil)
	mock.ExpectQuery("SELECT (.+) FROM raw_documents ORDER BY created_at DESC").
		WillReturnRows(rows)

	repo := NewDocumentRepository(db)
	docs, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "newer", docs[0].Slug)
	assert.Equal(t, "older", docs[1].Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}
