package notify

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublish(t *testing.T) {
	hub := NewHub()
	upgrader := websocket.Upgrader{}
	serverConns := make(chan *websocket.Conn, 2)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(r.URL.Query().Get("user"), conn)
		serverConns <- conn
	}))
	defer ts.Close()

	dial := func(user string) *websocket.Conn {
		url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/?user=" + user
		c, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		t.Cleanup(func() { c.Close() })
		return c
	}
	phone, laptop := dial("u1"), dial("u1")
	first, second := <-serverConns, <-serverConns
	require.Equal(t, 2, hub.Connected("u1"))

	hub.Publish("u1", map[string]string{"status": "confirmed"})
	hub.Publish("nobody", map[string]string{"status": "confirmed"})

	for _, c := range []*websocket.Conn{phone, laptop} {
		require.NoError(t, c.SetReadDeadline(time.Now().Add(time.Second)))
		var got map[string]string
		require.NoError(t, c.ReadJSON(&got))
		assert.Equal(t, "confirmed", got["status"])
	}

	hub.Unregister("u1", first)
	assert.Equal(t, 1, hub.Connected("u1"))
	hub.Unregister("u1", second)
	hub.Unregister("u1", second)
	assert.Equal(t, 0, hub.Connected("u1"))
}

func TestHubPublishUnmarshalable(t *testing.T) {
	hub := NewHub()
	assert.NotPanics(t, func() { hub.Publish("u1", make(chan int)) })
}
