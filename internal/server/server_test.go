package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func startServer(t *testing.T) *EngineClient {
	t.Helper()
	logger := zaptest.NewLogger(t)
	engine := game.NewEngine(logger, catalog.New(nil, logger), game.Config{Seed: 42})
	t.Cleanup(engine.Close)

	srv, err := New("127.0.0.1:0", engine, logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	conn, err := grpc.NewClient(srv.Addr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	health := grpc_health_v1.NewHealthClient(conn)
	resp, err := health.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	require.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.GetStatus())

	return NewEngineClient(conn)
}

func mustStruct(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return s
}

func wispDeck(n int) []any {
	deck := make([]any, n)
	for i := range deck {
		deck[i] = 1
	}
	return deck
}

func field(m map[string]any, path ...string) any {
	var v any = m
	for _, key := range path {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = obj[key]
	}
	return v
}

func players(t *testing.T, resp *structpb.Struct) []any {
	t.Helper()
	list, ok := field(resp.AsMap(), "state", "players").([]any)
	require.True(t, ok)
	require.Len(t, list, 2)
	return list
}

func TestEngineService(t *testing.T) {
	client := startServer(t)
	ctx := context.Background()

	created, err := client.CreateGame(ctx, mustStruct(t, map[string]any{
		"id":    "rpc-game",
		"seed":  42,
		"decks": []any{wispDeck(20), wispDeck(20)},
	}))
	require.NoError(t, err)
	assert.Equal(t, "rpc-game", created.AsMap()["game_id"])
	assert.Equal(t, 1.0, field(created.AsMap(), "state", "turn"))
	assert.Equal(t, "self", field(created.AsMap(), "state", "active"))

	t.Run("state hides the other hand", func(t *testing.T) {
		resp, err := client.GetState(ctx, mustStruct(t, map[string]any{"game_id": "rpc-game", "side": "opponent"}))
		require.NoError(t, err)
		ps := players(t, resp)
		assert.Nil(t, ps[0].(map[string]any)["hand"])
		assert.Len(t, ps[1].(map[string]any)["hand"], 5)
	})

	t.Run("rejected actions map to codes", func(t *testing.T) {
		_, err := client.PlayCard(ctx, mustStruct(t, map[string]any{"game_id": "rpc-game", "side": "self", "card_id": "missing"}))
		assert.Equal(t, codes.NotFound, status.Code(err))

		_, err = client.EndTurn(ctx, mustStruct(t, map[string]any{"game_id": "rpc-game", "side": "opponent"}))
		assert.Equal(t, codes.FailedPrecondition, status.Code(err))

		_, err = client.GetState(ctx, mustStruct(t, map[string]any{"game_id": "nope"}))
		assert.Equal(t, codes.NotFound, status.Code(err))

		_, err = client.GetState(ctx, mustStruct(t, map[string]any{"game_id": "rpc-game", "side": "north"}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))

		_, err = client.EndTurn(ctx, mustStruct(t, map[string]any{"game_id": "rpc-game", "turn": 3}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err), "unknown fields are rejected")

		_, err = client.Attack(ctx, mustStruct(t, map[string]any{"game_id": "rpc-game", "attacker_id": "x"}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("play end turn and attack", func(t *testing.T) {
		resp, err := client.GetState(ctx, mustStruct(t, map[string]any{"game_id": "rpc-game"}))
		require.NoError(t, err)
		hand := players(t, resp)[0].(map[string]any)["hand"].([]any)
		require.NotEmpty(t, hand)
		wispID := hand[0].(map[string]any)["id"].(string)

		played, err := client.PlayCard(ctx, mustStruct(t, map[string]any{
			"game_id":  "rpc-game",
			"side":     "self",
			"card_id":  wispID,
			"position": 0,
		}))
		require.NoError(t, err)
		assert.Equal(t, true, field(played.AsMap(), "result", "success"))
		board := players(t, played)[0].(map[string]any)["battlefield"].([]any)
		require.Len(t, board, 1)
		assert.Equal(t, wispID, board[0].(map[string]any)["id"])

		ended, err := client.EndTurn(ctx, mustStruct(t, map[string]any{"game_id": "rpc-game", "side": "self"}))
		require.NoError(t, err)
		assert.Equal(t, "opponent", field(ended.AsMap(), "state", "active"))

		_, err = client.EndTurn(ctx, mustStruct(t, map[string]any{"game_id": "rpc-game", "side": "opponent"}))
		require.NoError(t, err)

		view, err := client.GetState(ctx, mustStruct(t, map[string]any{"game_id": "rpc-game", "side": "self"}))
		require.NoError(t, err)
		opponent := players(t, view)[1].(map[string]any)
		heroID := opponent["hero_id"].(string)
		health := opponent["health"].(float64)

		attacked, err := client.Attack(ctx, mustStruct(t, map[string]any{
			"game_id":     "rpc-game",
			"side":        "self",
			"attacker_id": wispID,
			"defender_id": heroID,
		}))
		require.NoError(t, err)
		assert.Equal(t, 1.0, field(attacked.AsMap(), "step", "damage"))
		assert.Equal(t, health-1, players(t, attacked)[1].(map[string]any)["health"])
	})

	t.Run("resolve choice without a choice", func(t *testing.T) {
		_, err := client.ResolveChoice(ctx, mustStruct(t, map[string]any{"game_id": "rpc-game", "side": "self", "selected": 0}))
		assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	})
}

func TestStatusError(t *testing.T) {
	cases := map[state.ErrorKind]codes.Code{
		state.KindEntityNotFound:           codes.NotFound,
		state.KindMissingRequiredParameter: codes.InvalidArgument,
		state.KindNoValidTargets:           codes.InvalidArgument,
		state.KindZoneFull:                 codes.FailedPrecondition,
		state.KindInvalidAction:            codes.FailedPrecondition,
		state.KindGameOver:                 codes.FailedPrecondition,
		state.KindUnknownEffectType:        codes.Unimplemented,
	}
	for kind, code := range cases {
		t.Run(kind.String(), func(t *testing.T) {
			err := statusError(state.NewError(kind, "op", "detail"))
			assert.Equal(t, code, status.Code(err))
		})
	}
	assert.Equal(t, codes.Internal, status.Code(statusError(errors.New("boom"))))
	assert.NoError(t, statusError(nil))
}

func TestInterceptors(t *testing.T) {
	logger := zaptest.NewLogger(t)
	info := &grpc.UnaryServerInfo{FullMethod: "/" + ServiceName + "/GetState"}

	t.Run("recovery", func(t *testing.T) {
		chain := ChainUnaryInterceptors(RecoveryInterceptor(logger), LoggingInterceptor(logger))
		_, err := chain(context.Background(), nil, info, func(context.Context, any) (any, error) {
			panic("boom")
		})
		assert.Equal(t, codes.Internal, status.Code(err))
	})

	t.Run("order", func(t *testing.T) {
		var calls []string
		record := func(name string) grpc.UnaryServerInterceptor {
			return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
				calls = append(calls, name)
				return handler(ctx, req)
			}
		}
		chain := ChainUnaryInterceptors(record("outer"), record("inner"))
		resp, err := chain(context.Background(), "req", info, func(_ context.Context, req any) (any, error) {
			calls = append(calls, "handler")
			return req, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "req", resp)
		assert.Equal(t, []string{"outer", "inner", "handler"}, calls)
	})
}
