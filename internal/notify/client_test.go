package notify

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, r *Registry, userID string) string {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			t.Error(err)
			return
		}
		NewClient(zerolog.Nop(), r, conn, userID, 4).Serve()
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestClient_ReceivesPublishedEvent(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	conn := dial(t, newTestServer(t, r, "alice"))

	ack := readEvent(t, conn)
	assert.Equal(t, KindSubscribed, ack.Kind)
	require.Equal(t, 1, r.Count("alice"))

	n := r.Publish("alice", Event{Kind: KindTaskShared, TaskID: "t1", Message: `Task "report" was shared with you`})
	assert.Equal(t, 1, n)

	ev := readEvent(t, conn)
	assert.Equal(t, KindTaskShared, ev.Kind)
	assert.Equal(t, "t1", ev.TaskID)
	assert.Equal(t, `Task "report" was shared with you`, ev.Message)
}

func TestClient_RejectsForeignTopic(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	conn := dial(t, newTestServer(t, r, "alice"))
	readEvent(t, conn)

	require.NoError(t, conn.WriteJSON(inboundMessage{Action: actionSubscribe, Topic: "bob"}))

	ev := readEvent(t, conn)
	assert.Equal(t, KindError, ev.Kind)
	assert.Equal(t, 0, r.Count("bob"))
}

func TestClient_Unsubscribe(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	conn := dial(t, newTestServer(t, r, "alice"))
	readEvent(t, conn)

	require.NoError(t, conn.WriteJSON(inboundMessage{Action: actionUnsubscribe, Topic: "alice"}))
	ev := readEvent(t, conn)
	assert.Equal(t, KindUnsubscribed, ev.Kind)
	assert.Equal(t, 0, r.Count("alice"))
	assert.Equal(t, 0, r.Publish("alice", Event{Message: "missed"}))

	require.NoError(t, conn.WriteJSON(inboundMessage{Action: actionSubscribe, Topic: "alice"}))
	ev = readEvent(t, conn)
	assert.Equal(t, KindSubscribed, ev.Kind)
	assert.Equal(t, 1, r.Count("alice"))
}

func TestClient_RemovedOnDisconnect(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	conn := dial(t, newTestServer(t, r, "alice"))
	readEvent(t, conn)
	require.Equal(t, 1, r.Count("alice"))

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool {
		return r.Count("alice") == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClient_ClosedByRegistry(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	conn := dial(t, newTestServer(t, r, "alice"))
	readEvent(t, conn)

	r.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}
