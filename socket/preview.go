package socket

import (
	"net/http"

	"github.com/gorilla/websocket"

	"trameserve/internal/render"
	"trameserve/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The editor frontend runs on its own dev origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// PreviewMessage is one preview result: the plan and markup for the
// markdown frame that was just received, or an error.
type PreviewMessage struct {
	PieceCount     int               `json:"piece_count"`
	RenderPlan     []render.PlanItem `json:"render_plan"`
	RenderedMarkup string            `json:"rendered_markup"`
	Error          string            `json:"error,omitempty"`
}

// ServePreview upgrades the connection and runs the live-preview loop:
// each inbound text frame is markdown source, each reply is its render
// result. Connections are independent; there is no shared state between
// them, so no hub and no synchronization.
func ServePreview(renderer *render.Renderer, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Sugar.Error(err)
		return
	}
	defer conn.Close()

	for {
		messageType, source, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Sugar.Warnf("Preview connection error: %v", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg PreviewMessage
		plan, count, err := render.BuildPlanFromMarkdown(string(source))
		if err != nil {
			logger.Sugar.Errorf("Failed to build preview plan: %v", err)
			msg = PreviewMessage{Error: "failed to parse document"}
		} else {
			msg = PreviewMessage{
				PieceCount:     count,
				RenderPlan:     plan,
				RenderedMarkup: renderer.Render(plan),
			}
		}

		if err := conn.WriteJSON(msg); err != nil {
			logger.Sugar.Warnf("Failed to write preview message: %v", err)
			return
		}
	}
}
