package server

import (
	"context"

	"github.com/norsecards/ragnarok-engine/internal/game"
	"github.com/norsecards/ragnarok-engine/internal/game/combat"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"github.com/norsecards/ragnarok-engine/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"
)

// engineServer implements EngineService on top of a game.Engine.
type engineServer struct {
	engine *game.Engine
	logger *zap.Logger
	tracer trace.Tracer
}

// NewEngineService exposes engine over gRPC.
func NewEngineService(engine *game.Engine, logger *zap.Logger) EngineService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &engineServer{
		engine: engine,
		logger: logger,
		tracer: telemetry.Tracer(),
	}
}

type gameRequest struct {
	GameID string `mapstructure:"game_id"`
	Side   string `mapstructure:"side"`
}

type playCardRequest struct {
	GameID           string `mapstructure:"game_id"`
	Side             string `mapstructure:"side"`
	CardID           string `mapstructure:"card_id"`
	game.PlayOptions `mapstructure:",squash"`
}

type attackRequest struct {
	GameID     string `mapstructure:"game_id"`
	Side       string `mapstructure:"side"`
	AttackerID string `mapstructure:"attacker_id"`
	DefenderID string `mapstructure:"defender_id"`
}

type resolveChoiceRequest struct {
	GameID   string `mapstructure:"game_id"`
	Side     string `mapstructure:"side"`
	Selected *int   `mapstructure:"selected"`
}

type createGameResponse struct {
	GameID string        `json:"game_id"`
	State  game.GameView `json:"state"`
}

type playResponse struct {
	Result resultView    `json:"result"`
	State  game.GameView `json:"state"`
}

type attackResponse struct {
	Step  combat.CombatStep `json:"step"`
	State game.GameView     `json:"state"`
}

type stateResponse struct {
	State game.GameView `json:"state"`
}

func (s *engineServer) CreateGame(ctx context.Context, req *structpb.Struct) (resp *structpb.Struct, err error) {
	var opts game.GameOptions
	if err := decode(req, &opts); err != nil {
		return nil, err
	}
	_, span := s.start(ctx, "CreateGame", opts.ID)
	defer func() { finish(span, err) }()

	id, err := s.engine.CreateGame(opts)
	if err != nil {
		return nil, statusError(err)
	}
	view, err := s.engine.View(id, state.SideSelf)
	if err != nil {
		return nil, statusError(err)
	}
	return encode(createGameResponse{GameID: id, State: view})
}

func (s *engineServer) PlayCard(ctx context.Context, req *structpb.Struct) (resp *structpb.Struct, err error) {
	var r playCardRequest
	if err := decode(req, &r); err != nil {
		return nil, err
	}
	if err := required("card_id", r.CardID); err != nil {
		return nil, err
	}
	side, err := s.sideOf(r.GameID, r.Side)
	if err != nil {
		return nil, err
	}
	_, span := s.start(ctx, "PlayCard", r.GameID, attribute.String("card_id", r.CardID))
	defer func() { finish(span, err) }()

	res, err := s.engine.PlayCard(r.GameID, side, r.CardID, r.PlayOptions)
	if err != nil {
		return nil, statusError(err)
	}
	view, err := s.engine.View(r.GameID, side)
	if err != nil {
		return nil, statusError(err)
	}
	return encode(playResponse{Result: viewResult(res), State: view})
}

func (s *engineServer) Attack(ctx context.Context, req *structpb.Struct) (resp *structpb.Struct, err error) {
	var r attackRequest
	if err := decode(req, &r); err != nil {
		return nil, err
	}
	if err := required("attacker_id", r.AttackerID); err != nil {
		return nil, err
	}
	if err := required("defender_id", r.DefenderID); err != nil {
		return nil, err
	}
	side, err := s.sideOf(r.GameID, r.Side)
	if err != nil {
		return nil, err
	}
	_, span := s.start(ctx, "Attack", r.GameID,
		attribute.String("attacker_id", r.AttackerID),
		attribute.String("defender_id", r.DefenderID),
	)
	defer func() { finish(span, err) }()

	step, err := s.engine.Attack(r.GameID, side, r.AttackerID, r.DefenderID)
	if err != nil {
		return nil, statusError(err)
	}
	view, err := s.engine.View(r.GameID, side)
	if err != nil {
		return nil, statusError(err)
	}
	return encode(attackResponse{Step: step, State: view})
}

func (s *engineServer) EndTurn(ctx context.Context, req *structpb.Struct) (resp *structpb.Struct, err error) {
	var r gameRequest
	if err := decode(req, &r); err != nil {
		return nil, err
	}
	side, err := s.sideOf(r.GameID, r.Side)
	if err != nil {
		return nil, err
	}
	_, span := s.start(ctx, "EndTurn", r.GameID)
	defer func() { finish(span, err) }()

	if err := s.engine.EndTurn(r.GameID, side); err != nil {
		return nil, statusError(err)
	}
	view, err := s.engine.View(r.GameID, side)
	if err != nil {
		return nil, statusError(err)
	}
	return encode(stateResponse{State: view})
}

func (s *engineServer) ResolveChoice(ctx context.Context, req *structpb.Struct) (resp *structpb.Struct, err error) {
	var r resolveChoiceRequest
	if err := decode(req, &r); err != nil {
		return nil, err
	}
	side, err := s.sideOf(r.GameID, r.Side)
	if err != nil {
		return nil, err
	}
	_, span := s.start(ctx, "ResolveChoice", r.GameID)
	defer func() { finish(span, err) }()

	res, err := s.engine.ResolveChoice(r.GameID, side, r.Selected)
	if err != nil {
		return nil, statusError(err)
	}
	view, err := s.engine.View(r.GameID, side)
	if err != nil {
		return nil, statusError(err)
	}
	return encode(playResponse{Result: viewResult(res), State: view})
}

func (s *engineServer) GetState(ctx context.Context, req *structpb.Struct) (resp *structpb.Struct, err error) {
	var r gameRequest
	if err := decode(req, &r); err != nil {
		return nil, err
	}
	side, err := s.sideOf(r.GameID, r.Side)
	if err != nil {
		return nil, err
	}
	_, span := s.start(ctx, "GetState", r.GameID)
	defer func() { finish(span, err) }()

	view, err := s.engine.View(r.GameID, side)
	if err != nil {
		return nil, statusError(err)
	}
	return encode(stateResponse{State: view})
}

func (s *engineServer) sideOf(gameID, side string) (state.Side, error) {
	if err := required("game_id", gameID); err != nil {
		return 0, err
	}
	if side == "" {
		side = state.SideSelf.String()
	}
	return parseSide(side)
}

func (s *engineServer) start(ctx context.Context, method, gameID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("game_id", gameID))
	return s.tracer.Start(ctx, "Engine."+method, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
	}
	span.End()
}
