package admin

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trameserve/config"
	"trameserve/internal/auth"
	"trameserve/internal/document/repository"
	"trameserve/internal/document/service"
	"trameserve/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	m.Run()
}

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock, *auth.Codec) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.App{
		SessionSecret: "test-secret",
		SessionTTL:    48 * time.Hour,
		Principals: map[string]config.Principal{
			"znd": {AccessName: "znd", DisplayName: "Znd", Password: "pw"},
		},
	}
	codec, err := auth.NewCodec(cfg.SessionSecret, cfg.SessionTTL)
	require.NoError(t, err)

	svc := service.NewDocumentService(repository.NewDocumentRepository(db))
	return NewHandler(cfg, codec, svc), mock, codec
}

func TestLoginPageRedirectsWhenAlreadyAuthenticated(t *testing.T) {
	handler, _, codec := newTestHandler(t)

	token, err := codec.Issue("znd")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/znd", nil)
	req.SetPathValue("access_name", "znd")
	req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
	rec := httptest.NewRecorder()
	handler.LoginPage(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/znd/dashboard", rec.Header().Get("Location"))
}

func TestLoginPageShowsFormForKnownAccess(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/znd", nil)
	req.SetPathValue("access_name", "znd")
	rec := httptest.NewRecorder()
	handler.LoginPage(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="password"`)
	assert.Contains(t, rec.Body.String(), `value="znd"`)
}

func TestViewRendersStoredMarkdown(t *testing.T) {
	handler, mock, _ := newTestHandler(t)

	now := time.Now().UTC()
	columns := []string{
		"id", "username", "title", "slug", "saving_origin",
		"created_at", "modified_at", "md_content", "piece_count", "metadata",
	}
	mock.ExpectQuery("SELECT (.+) FROM raw_documents WHERE slug").
		WithArgs("nav-et-trigo").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(1, "znd", "Nav et Trigo", "nav-et-trigo", "manual", now, now, "# Cap\n\nCompas.", 2, nil))

	req := httptest.NewRequest(http.MethodGet, "/admin/znd/view?slug=nav-et-trigo", nil)
	req.SetPathValue("access_name", "znd")
	rec := httptest.NewRecorder()
	handler.View(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>Cap</h1>")
	assert.Contains(t, rec.Body.String(), "Compas.")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestViewMissingDocument404(t *testing.T) {
	handler, mock, _ := newTestHandler(t)

	mock.ExpectQuery("SELECT (.+) FROM raw_documents WHERE slug").
		WithArgs("absent").
		WillReturnError(repository.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/admin/znd/view?slug=absent", nil)
	req.SetPathValue("access_name", "znd")
	rec := httptest.NewRecorder()
	handler.View(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
