package grpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"btevta-wasl-backend/internal/domain"
	"btevta-wasl-backend/internal/logger"
)

// MapToStruct renders v through its JSON tags into a Struct.
func MapToStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return s, nil
}

// requiredID reads a positive integer field. Numbers may arrive as JSON numbers or strings.
func requiredID(req *structpb.Struct, key string) (int64, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s is required", key)
	}
	var id int64
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		if k.NumberValue != math.Trunc(k.NumberValue) {
			return 0, status.Errorf(codes.InvalidArgument, "%s must be an integer", key)
		}
		id = int64(k.NumberValue)
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(strings.TrimSpace(k.StringValue), 10, 64)
		if err != nil {
			return 0, status.Errorf(codes.InvalidArgument, "invalid %s: %v", key, err)
		}
		id = n
	default:
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a number", key)
	}
	if id <= 0 {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be positive", key)
	}
	return id, nil
}

func optionalString(req *structpb.Struct, key string) string {
	return strings.TrimSpace(req.GetFields()[key].GetStringValue())
}

// toGRPCError maps engine errors onto status codes.
func toGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrConcurrentModification):
		return status.Error(codes.Aborted, err.Error())
	}
	switch domain.KindOf(err) {
	case domain.ErrKindInvalidTransition, domain.ErrKindGateNotSatisfied, domain.ErrKindNotApplicable:
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	logger.Error("gRPC call failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}

// deniedError attaches the full decision to a FailedPrecondition status so clients can read
// the missing preconditions.
func deniedError(err error, detail any) error {
	st := status.New(codes.FailedPrecondition, err.Error())
	d, mapErr := MapToStruct(detail)
	if mapErr != nil {
		return st.Err()
	}
	withDetails, detailErr := st.WithDetails(d)
	if detailErr != nil {
		logger.Swallowed("grpc.deniedError", fmt.Errorf("attach details: %w", detailErr))
		return st.Err()
	}
	return withDetails.Err()
}
