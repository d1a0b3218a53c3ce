package admin

import (
	"html/template"
	"net/http"

	"trameserve/config"
	"trameserve/internal/auth"
	"trameserve/internal/document/service"
	"trameserve/internal/render"
	"trameserve/internal/trame"
	"trameserve/middleware"
	"trameserve/pkg/logger"
)

// Handler owns the admin session flow: login, the protected screens and
// logout. The session state machine lives between this package and
// middleware.RequireSession: anonymous requests get redirected here,
// a correct password issues a token, and every protected screen
// re-verifies the cookie on entry.
type Handler struct {
	Config    *config.App
	Codec     *auth.Codec
	Documents *service.DocumentService
	Renderer  *render.Renderer
}

func NewHandler(cfg *config.App, codec *auth.Codec, documents *service.DocumentService) *Handler {
	return &Handler{
		Config:    cfg,
		Codec:     codec,
		Documents: documents,
		Renderer:  render.NewRenderer(),
	}
}

type viewData struct {
	Brand       string
	AccessName  string
	DisplayName string
	KnownAccess bool
	Error       string
	Warning     string
	Documents   any
	Document    any
	Rendered    template.HTML
}

func (h *Handler) viewDataFor(r *http.Request, accessName string) viewData {
	data := viewData{Brand: "Admin", AccessName: accessName}
	if domain, ok := middleware.TenantFrom(r.Context()); ok {
		data.Brand = domain.Name
	}
	if principal, ok := h.Config.Principal(accessName); ok {
		data.KnownAccess = true
		data.DisplayName = principal.DisplayName
	}
	return data
}

// LoginPage handles GET /admin/{access_name}. Unknown access names get
// the unknown-access page with a 400; a visitor already holding a valid
// session for this account is sent straight to the dashboard.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	accessName := r.PathValue("access_name")
	data := h.viewDataFor(r, accessName)

	if !data.KnownAccess {
		w.WriteHeader(http.StatusBadRequest)
		h.renderView(w, "login", data)
		return
	}

	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil {
		if subject, ok := h.Codec.Verify(cookie.Value); ok && subject == accessName {
			http.Redirect(w, r, "/admin/"+accessName+"/dashboard", http.StatusSeeOther)
			return
		}
	}

	h.renderView(w, "login", data)
}

// LoginSubmit handles POST /admin/{access_name}/login. The acting
// account comes from the submitted access_name field, never from the
// Referer header.
func (h *Handler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Malformed form submission", http.StatusBadRequest)
		return
	}

	accessName := r.PostFormValue("access_name")
	principal, ok := h.Config.Principal(accessName)
	if !ok {
		http.Error(w, "Invalid access", http.StatusBadRequest)
		return
	}

	if r.PostFormValue("password") != principal.Password {
		data := h.viewDataFor(r, accessName)
		data.Error = "Invalid password"
		h.renderView(w, "login", data)
		return
	}

	token, err := h.Codec.Issue(accessName)
	if err != nil {
		logger.Sugar.Errorf("Failed to issue token for %s: %v", accessName, err)
		http.Error(w, "Login failed", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, sessionCookie(token, int(h.Codec.TTL().Seconds())))
	http.Redirect(w, r, "/admin/"+accessName+"/dashboard", http.StatusSeeOther)
}

// Dashboard handles GET /admin/{access_name}/dashboard (protected).
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.renderView(w, "dashboard", h.viewDataFor(r, r.PathValue("access_name")))
}

// List handles GET /admin/{access_name}/list (protected). A storage
// failure degrades to an empty listing.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	data := h.viewDataFor(r, r.PathValue("access_name"))
	docs, err := h.Documents.List(r.Context())
	if err != nil {
		docs = nil
	}
	data.Documents = docs
	h.renderView(w, "list", data)
}

// View handles GET /admin/{access_name}/view?slug= (protected). The
// stored markdown is re-parsed and re-rendered on demand.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	data := h.viewDataFor(r, r.PathValue("access_name"))

	doc, err := h.Documents.GetBySlug(r.Context(), r.URL.Query().Get("slug"))
	if err != nil {
		http.Error(w, "Document not found", http.StatusNotFound)
		return
	}

	plan := render.BuildPlan(trame.Parse(doc.Slug, []byte(doc.Content)))
	data.Document = doc
	data.Rendered = template.HTML(h.Renderer.Render(plan))
	h.renderView(w, "view", data)
}

// Edit handles GET /admin/{access_name}/edit (protected).
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	data := h.viewDataFor(r, r.PathValue("access_name"))
	if slug := r.URL.Query().Get("slug"); slug != "" {
		if doc, err := h.Documents.GetBySlug(r.Context(), slug); err == nil {
			data.Document = doc
		}
	}
	h.renderView(w, "edit", data)
}

// Logout handles GET /admin/{access_name}/logout. The deletion cookie
// carries the same attributes the session cookie was set with, so the
// browser actually drops it.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, sessionCookie("", -1))
	http.Redirect(w, r, "/admin/"+r.PathValue("access_name")+"/logout/confirmed", http.StatusSeeOther)
}

// LogoutConfirmed handles GET /admin/{access_name}/logout/confirmed. It
// independently re-checks that the cookie is gone and surfaces a warning
// when the deletion silently failed.
func (h *Handler) LogoutConfirmed(w http.ResponseWriter, r *http.Request) {
	data := h.viewDataFor(r, r.PathValue("access_name"))
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil && cookie.Value != "" {
		data.Warning = "Your session cookie is still present; close the browser to clear it."
	}
	middleware.NoStore(w)
	h.renderView(w, "logout_confirmed", data)
}

func (h *Handler) renderView(w http.ResponseWriter, name string, data viewData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.ExecuteTemplate(w, name, data); err != nil {
		logger.Sugar.Errorf("Failed to render %s view: %v", name, err)
	}
}

func sessionCookie(token string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}
