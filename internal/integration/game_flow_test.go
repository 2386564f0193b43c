package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game"
	"github.com/norsecards/ragnarok-engine/internal/presentation"
	"github.com/norsecards/ragnarok-engine/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

const stonetuskBoar = 10

type stackEnv struct {
	engine *game.Engine
	client *server.EngineClient
	feed   *httptest.Server
	logger *zap.Logger
}

func newStackEnv(t testing.TB) *stackEnv {
	logger := zaptest.NewLogger(t)
	engine := game.NewEngine(logger.Named("engine"), catalog.New(nil, logger), game.Config{
		Seed:         7,
		StepDuration: 5 * time.Millisecond,
		Autoplay:     true,
	})
	t.Cleanup(engine.Close)

	srv, err := server.New("127.0.0.1:0", engine, logger.Named("grpc"))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	conn, err := grpc.NewClient(srv.Addr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	mux := http.NewServeMux()
	mux.Handle("GET "+presentation.FeedPath+"{id}", presentation.NewFeed(engine, 0, logger.Named("feed")))
	feed := httptest.NewServer(mux)
	t.Cleanup(feed.Close)

	return &stackEnv{
		engine: engine,
		client: server.NewEngineClient(conn),
		feed:   feed,
		logger: logger,
	}
}

func (env *stackEnv) call(t testing.TB, fn func(context.Context, *structpb.Struct, ...grpc.CallOption) (*structpb.Struct, error), req map[string]any) (map[string]any, error) {
	t.Helper()
	in, err := structpb.NewStruct(req)
	require.NoError(t, err)
	out, err := fn(context.Background(), in)
	if err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

func (env *stackEnv) state(t testing.TB, gameID, side string) map[string]any {
	t.Helper()
	resp, err := env.call(t, env.client.GetState, map[string]any{"game_id": gameID, "side": side})
	require.NoError(t, err)
	return resp["state"].(map[string]any)
}

func playerOf(view map[string]any, side string) map[string]any {
	for _, p := range view["players"].([]any) {
		if pm := p.(map[string]any); pm["side"] == side {
			return pm
		}
	}
	return nil
}

func listOf(m map[string]any, key string) []map[string]any {
	raw, _ := m[key].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, v := range raw {
		out = append(out, v.(map[string]any))
	}
	return out
}

func deckOf(cardID, n int) []any {
	deck := make([]any, n)
	for i := range deck {
		deck[i] = cardID
	}
	return deck
}

// TestFullGameOverTheWire plays a charge-minion race to the end through
// gRPC while a websocket client watches the presentation feed, then checks
// that the recorded actions replay to the same state.
func TestFullGameOverTheWire(t *testing.T) {
	env := newStackEnv(t)
	const gameID = "flow"

	_, err := env.call(t, env.client.CreateGame, map[string]any{
		"id":    gameID,
		"decks": []any{deckOf(stonetuskBoar, 20), deckOf(stonetuskBoar, 20)},
	})
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(env.feed.URL, "http") + presentation.FeedPath + gameID
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()
	// The feed subscribes right after the upgrade response is written.
	time.Sleep(50 * time.Millisecond)

	var view map[string]any
	for turn := 0; turn < 60; turn++ {
		view = env.state(t, gameID, "self")
		if view["over"] == true {
			break
		}
		side := view["active"].(string)
		takeTurn(t, env, gameID, side)

		view = env.state(t, gameID, side)
		if view["over"] == true {
			break
		}
		_, err := env.call(t, env.client.EndTurn, map[string]any{"game_id": gameID, "side": side})
		require.NoError(t, err)
	}
	require.Equal(t, true, view["over"], "the race should finish")
	assert.NotEmpty(t, view["winner"])

	t.Run("feed delivered combat steps", func(t *testing.T) {
		sawStep := false
		deadline := time.Now().Add(5 * time.Second)
		for !sawStep && time.Now().Before(deadline) {
			require.NoError(t, ws.SetReadDeadline(deadline))
			_, data, err := ws.ReadMessage()
			require.NoError(t, err)
			var msg presentation.Message
			require.NoError(t, json.Unmarshal(data, &msg))
			sawStep = msg.Type == presentation.MessageCombatStep
		}
		assert.True(t, sawStep)
	})

	t.Run("replay reproduces the match", func(t *testing.T) {
		r, err := env.engine.Replay(gameID)
		require.NoError(t, err)
		require.Positive(t, r.Size())

		sum, err := env.engine.VerifyReplay(r)
		require.NoError(t, err)
		assert.Equal(t, view["checksum"], sum)
	})
}

// takeTurn plays every affordable minion, then sends the whole board at the
// enemy hero.
func takeTurn(t *testing.T, env *stackEnv, gameID, side string) {
	t.Helper()
	enemy := "opponent"
	if side == "opponent" {
		enemy = "self"
	}

	view := env.state(t, gameID, side)
	me := playerOf(view, side)
	mana := int(me["mana"].(map[string]any)["current"].(float64))
	boardSize := len(listOf(me, "battlefield"))
	for _, card := range listOf(me, "hand") {
		cost := int(card["cost"].(float64))
		if card["type"] != "minion" || cost > mana || boardSize >= 7 {
			continue
		}
		resp, err := env.call(t, env.client.PlayCard, map[string]any{
			"game_id": gameID,
			"side":    side,
			"card_id": card["id"],
		})
		require.NoError(t, err)
		require.Equal(t, true, resp["result"].(map[string]any)["success"])
		mana -= cost
		boardSize++
	}

	view = env.state(t, gameID, side)
	heroID := playerOf(view, enemy)["hero_id"]
	for _, minion := range listOf(playerOf(view, side), "battlefield") {
		resp, err := env.call(t, env.client.Attack, map[string]any{
			"game_id":     gameID,
			"side":        side,
			"attacker_id": minion["id"],
			"defender_id": heroID,
		})
		require.NoError(t, err)
		if resp["state"].(map[string]any)["over"] == true {
			return
		}
	}
}
