package presentation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type queues map[string]*Queue

func (qs queues) Presentation(id string) (*Queue, error) {
	if q, ok := qs[id]; ok {
		return q, nil
	}
	return nil, state.NewError(state.KindEntityNotFound, "presentation", "game %s", id)
}

func TestFeedStreamsMessages(t *testing.T) {
	q := NewQueue("g1", QueueOptions{Logger: zaptest.NewLogger(t)})
	mux := http.NewServeMux()
	mux.Handle("GET "+FeedPath+"{id}", NewFeed(queues{"g1": q}, 0, zaptest.NewLogger(t)))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + FeedPath + "g1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// The subscription is registered after the upgrade completes.
	require.Eventually(t, func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		return len(q.subs) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, q.PushStep(resolved("s1")))
	_, ok := q.Next()
	require.True(t, ok)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MessageCombatStep, msg.Type)
	assert.Equal(t, "g1", msg.GameID)
	require.NotNil(t, msg.Step)
	assert.Equal(t, "s1", msg.Step.ID)
	assert.Equal(t, 4, msg.Step.Damage)

	q.Close()
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}

func TestFeedUnknownGame(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("GET "+FeedPath+"{id}", NewFeed(queues{}, 10, nil))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + FeedPath + "missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
