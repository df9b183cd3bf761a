package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/jishubasak/tweetpulse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpgrader = gorillaws.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// setupHub starts a hub behind a plain upgrade handler and returns a dial
// function for test clients.
func setupHub(t *testing.T, maxClients int) (*Hub, func(t *testing.T) *gorillaws.Conn) {
	t.Helper()
	hub := NewHub(maxClients)
	t.Cleanup(hub.Stop)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_ = hub.Register(conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	dial := func(t *testing.T) *gorillaws.Conn {
		t.Helper()
		conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = conn.Close() })
		return conn
	}
	return hub, dial
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return hub.ClientCount() == want
	}, time.Second, 5*time.Millisecond)
}

func TestHub_PublishReachesConnectedClients(t *testing.T) {
	hub, dial := setupHub(t, 8)
	conn := dial(t)
	waitForClients(t, hub, 1)

	frame := &domain.TrendFrame{
		At:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Trend: []domain.KeywordCount{{Keyword: "fortnite", Count: 2}},
	}
	hub.Publish(frame)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var envelope struct {
		Type  string             `json:"type"`
		Frame *domain.TrendFrame `json:"frame"`
	}
	require.NoError(t, json.Unmarshal(msg, &envelope))
	assert.Equal(t, "frame", envelope.Type)
	require.NotNil(t, envelope.Frame)
	require.Len(t, envelope.Frame.Trend, 1)
	assert.Equal(t, "fortnite", envelope.Frame.Trend[0].Keyword)
	assert.Equal(t, 2, envelope.Frame.Trend[0].Count)
}

func TestHub_FansOutToAllClients(t *testing.T) {
	hub, dial := setupHub(t, 8)
	first := dial(t)
	second := dial(t)
	waitForClients(t, hub, 2)

	hub.Publish(&domain.TrendFrame{})

	for _, conn := range []*gorillaws.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		_, _, err := conn.ReadMessage()
		require.NoError(t, err)
	}
}

func TestHub_UnregisterRemovesClient(t *testing.T) {
	hub := NewHub(8)
	t.Cleanup(hub.Stop)

	serverConns := make(chan *gorillaws.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		if err := hub.Register(conn); err == nil {
			serverConns <- conn
		}
	}))
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	client, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	var serverConn *gorillaws.Conn
	select {
	case serverConn = <-serverConns:
	case <-time.After(time.Second):
		t.Fatal("server never registered the connection")
	}
	waitForClients(t, hub, 1)

	hub.Unregister(serverConn)
	waitForClients(t, hub, 0)

	// Unregister also closes the connection.
	require.NoError(t, client.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err = client.ReadMessage()
	assert.Error(t, err)
}

func TestHub_RejectsClientsBeyondLimit(t *testing.T) {
	hub := NewHub(1)
	t.Cleanup(hub.Stop)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		if err := hub.Register(conn); err != nil {
			assert.ErrorIs(t, err, ErrHubFull)
		}
	}))
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	first, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = first.Close() })
	waitForClients(t, hub, 1)

	second, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	// The rejected connection is closed server-side.
	require.NoError(t, second.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err = second.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 1, hub.ClientCount())
}

func TestHub_StopDisconnectsClients(t *testing.T) {
	hub := NewHub(8)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_ = hub.Register(conn)
	}))
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Stop()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}
