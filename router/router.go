package router

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"trameserve/config"
	"trameserve/internal/admin"
	"trameserve/internal/auth"
	"trameserve/internal/document"
	"trameserve/internal/document/repository"
	"trameserve/internal/document/service"
	"trameserve/internal/ingest"
	"trameserve/internal/render"
	"trameserve/internal/tenant"
	"trameserve/middleware"
	"trameserve/socket"
)

// Setup wires every route. Protected admin screens sit behind the
// session gate; everything runs behind tenant resolution.
func Setup(cfg *config.App, db *sql.DB) (http.Handler, error) {
	codec, err := auth.NewCodec(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return nil, err
	}

	docRepo := repository.NewDocumentRepository(db)
	docService := service.NewDocumentService(docRepo)
	docHandler := document.NewHandler(docService)
	adminHandler := admin.NewHandler(cfg, codec, docService)
	ingestHandler := ingest.NewHandler()
	renderer := render.NewRenderer()

	mux := http.NewServeMux()
	protect := middleware.RequireSession(codec)

	// Admin session flow
	mux.HandleFunc("GET /admin/{access_name}", adminHandler.LoginPage)
	mux.HandleFunc("POST /admin/{access_name}/login", adminHandler.LoginSubmit)
	mux.Handle("GET /admin/{access_name}/dashboard", protect(http.HandlerFunc(adminHandler.Dashboard)))
	mux.Handle("GET /admin/{access_name}/list", protect(http.HandlerFunc(adminHandler.List)))
	mux.Handle("GET /admin/{access_name}/view", protect(http.HandlerFunc(adminHandler.View)))
	mux.Handle("GET /admin/{access_name}/edit", protect(http.HandlerFunc(adminHandler.Edit)))
	mux.HandleFunc("GET /admin/{access_name}/logout", adminHandler.Logout)
	mux.HandleFunc("GET /admin/{access_name}/logout/confirmed", adminHandler.LogoutConfirmed)

	// Document store API
	mux.HandleFunc("POST /api/documents/save", docHandler.Save)
	mux.HandleFunc("GET /api/documents", docHandler.List)
	mux.HandleFunc("GET /api/documents/{id}", docHandler.GetByID)
	mux.HandleFunc("DELETE /api/documents/{slug}", docHandler.Delete)

	// Ingestion and live preview
	mux.HandleFunc("POST /api/trames/ingest", ingestHandler.Ingest)
	mux.HandleFunc("/ws/preview", func(w http.ResponseWriter, r *http.Request) {
		socket.ServePreview(renderer, w, r)
	})

	mux.HandleFunc("GET /health", health)

	resolver := tenant.NewResolver(tenant.DefaultDomains())
	return middleware.CORSMiddleware(middleware.ResolveTenant(resolver)(mux)), nil
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":   "ok",
		"host":     r.Host,
		"time_utc": time.Now().UTC().Format("2006-01-02 15:04:05"),
	})
}
