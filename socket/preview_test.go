package socket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trameserve/internal/render"
	"trameserve/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	m.Run()
}

func TestPreviewRoundTrip(t *testing.T) {
	renderer := render.NewRenderer()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServePreview(renderer, w, r)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	err = conn.WriteMessage(websocket.TextMessage, []byte("# Hello\n\nWorld"))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var msg PreviewMessage
	require.NoError(t, conn.ReadJSON(&msg))

	assert.Empty(t, msg.Error)
	assert.Equal(t, 2, msg.PieceCount)
	require.Len(t, msg.RenderPlan, 2)
	assert.Equal(t, render.SelectorTitle, msg.RenderPlan[0].Selector)
	assert.Contains(t, msg.RenderedMarkup, "<h1>Hello</h1>")
}

func TestPreviewSuccessiveFrames(t *testing.T) {
	renderer := render.NewRenderer()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServePreview(renderer, w, r)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	for _, source := range []string{"one paragraph", "# a\n\n- b\n- c"} {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(source)))
		conn.SetReadDeadline(time.Now().Add(time.Second))
		var msg PreviewMessage
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Empty(t, msg.Error)
		assert.NotZero(t, msg.PieceCount)
	}
}
