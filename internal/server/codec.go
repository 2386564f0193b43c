package server

import (
	"encoding/json"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/norsecards/ragnarok-engine/internal/game/effects"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// decode copies a request document into out. Numbers arrive as float64 and
// are converted; unknown fields are rejected.
func decode(in *structpb.Struct, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return status.Errorf(codes.Internal, "request decoder: %v", err)
	}
	var fields map[string]any
	if in != nil {
		fields = in.AsMap()
	}
	if err := dec.Decode(fields); err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	return nil
}

// encode renders v through its json tags into a Struct.
func encode(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// resultView is the wire form of an effect result.
type resultView struct {
	Kind        string              `json:"kind,omitempty"`
	Success     bool                `json:"success"`
	Error       string              `json:"error,omitempty"`
	ErrorKind   string              `json:"error_kind,omitempty"`
	SideEffects effects.SideEffects `json:"side_effects"`
}

func viewResult(res effects.Result) resultView {
	v := resultView{
		Kind:        string(res.Kind),
		Success:     res.Success,
		SideEffects: res.SideEffects,
	}
	if res.Err != nil {
		v.Error = res.Err.Error()
		v.ErrorKind = state.KindOf(res.Err).String()
	}
	return v
}

// statusError maps an engine error onto a gRPC status.
func statusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	var code codes.Code
	switch state.KindOf(err) {
	case state.KindEntityNotFound:
		code = codes.NotFound
	case state.KindMissingRequiredParameter, state.KindNoValidTargets:
		code = codes.InvalidArgument
	case state.KindInvalidAction, state.KindZoneFull, state.KindInvalidMinionOperation, state.KindGameOver:
		code = codes.FailedPrecondition
	case state.KindUnknownEffectType:
		code = codes.Unimplemented
	default:
		code = codes.Internal
	}
	return status.Error(code, err.Error())
}

func parseSide(v string) (state.Side, error) {
	side, err := state.ParseSide(v)
	if err != nil {
		return 0, status.Error(codes.InvalidArgument, err.Error())
	}
	return side, nil
}

func required(field, value string) error {
	if value == "" {
		return status.Error(codes.InvalidArgument, fmt.Sprintf("%s is required", field))
	}
	return nil
}
