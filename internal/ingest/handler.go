package ingest

import (
	"encoding/json"
	"io"
	"net/http"

	"trameserve/internal/render"
	"trameserve/pkg/logger"
)

// Response is the ingestion result: the plan the rendering collaborator
// would consume, plus the markup it produced from that plan.
type Response struct {
	Success        bool              `json:"success"`
	PieceCount     int               `json:"piece_count"`
	RenderPlan     []render.PlanItem `json:"render_plan"`
	RenderedMarkup string            `json:"rendered_markup"`
}

type Handler struct {
	Renderer *render.Renderer
}

func NewHandler() *Handler {
	return &Handler{Renderer: render.NewRenderer()}
}

// Ingest handles POST /api/trames/ingest: the body is raw markdown, the
// answer is its render plan and rendered markup.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}
	if len(body) == 0 {
		http.Error(w, "Empty body", http.StatusBadRequest)
		return
	}

	plan, count, err := render.BuildPlanFromMarkdown(string(body))
	if err != nil {
		logger.Sugar.Errorf("Failed to build render plan: %v", err)
		http.Error(w, "Failed to parse document", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Response{
		Success:        true,
		PieceCount:     count,
		RenderPlan:     plan,
		RenderedMarkup: h.Renderer.Render(plan),
	})
}
