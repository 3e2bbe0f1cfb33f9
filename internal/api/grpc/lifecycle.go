package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"btevta-wasl-backend/internal/domain"
	"btevta-wasl-backend/internal/lifecycle"
	"btevta-wasl-backend/internal/service"
)

type LifecycleHandler struct {
	lifecycleSvc  service.LifecycleService
	complaintSvc  service.ComplaintService
	complianceSvc service.ComplianceService
}

func NewLifecycleHandler(lifecycleSvc service.LifecycleService, complaintSvc service.ComplaintService, complianceSvc service.ComplianceService) *LifecycleHandler {
	return &LifecycleHandler{lifecycleSvc: lifecycleSvc, complaintSvc: complaintSvc, complianceSvc: complianceSvc}
}

var _ LifecycleServer = (*LifecycleHandler)(nil)

// AttemptTransition expects {candidate_id, target, justification}.
func (h *LifecycleHandler) AttemptTransition(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredID(req, "candidate_id")
	if err != nil {
		return nil, err
	}
	target, err := lifecycle.ParseStatus(optionalString(req, "target"))
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	res, err := h.lifecycleSvc.AttemptTransition(ctx, id, target, h.transitionContext(ctx, req))
	return transitionResponse(res, err)
}

// Reactivate expects {candidate_id, justification}.
func (h *LifecycleHandler) Reactivate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredID(req, "candidate_id")
	if err != nil {
		return nil, err
	}
	res, err := h.lifecycleSvc.Reactivate(ctx, id, h.transitionContext(ctx, req))
	return transitionResponse(res, err)
}

// EvaluateGate expects {candidate_id, gate}.
func (h *LifecycleHandler) EvaluateGate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredID(req, "candidate_id")
	if err != nil {
		return nil, err
	}
	gate, err := lifecycle.ParseGate(optionalString(req, "gate"))
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	res, err := h.lifecycleSvc.EvaluateGate(ctx, id, gate)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return MapToStruct(res)
}

// EvaluateComplaintSLA expects {complaint_id}.
func (h *LifecycleHandler) EvaluateComplaintSLA(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredID(req, "complaint_id")
	if err != nil {
		return nil, err
	}
	res, err := h.complaintSvc.EvaluateSLA(ctx, id)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return MapToStruct(res)
}

// EscalateComplaint expects {complaint_id, reason}. The actor comes from metadata.
func (h *LifecycleHandler) EscalateComplaint(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredID(req, "complaint_id")
	if err != nil {
		return nil, err
	}
	res, err := h.complaintSvc.Escalate(ctx, id, ActorFromContext(ctx), optionalString(req, "reason"))
	if err != nil {
		return nil, toGRPCError(err)
	}
	return MapToStruct(res)
}

// EvaluateCompliance expects {departure_id}.
func (h *LifecycleHandler) EvaluateCompliance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredID(req, "departure_id")
	if err != nil {
		return nil, err
	}
	dep, st, err := h.complianceSvc.EvaluateCompliance(ctx, id)
	if errors.Is(err, domain.ErrNotApplicable) {
		return MapToStruct(map[string]any{
			"departure": dep,
			"state":     map[string]any{"status": domain.ComplianceStatusNotApplicable},
		})
	}
	if err != nil {
		return nil, toGRPCError(err)
	}
	return MapToStruct(map[string]any{"departure": dep, "state": st})
}

func (h *LifecycleHandler) transitionContext(ctx context.Context, req *structpb.Struct) lifecycle.TransitionContext {
	return lifecycle.TransitionContext{
		Actor:         ActorFromContext(ctx),
		Justification: req.GetFields()["justification"].GetStringValue(),
	}
}

func transitionResponse(res *service.TransitionResult, err error) (*structpb.Struct, error) {
	if err == nil {
		return MapToStruct(res)
	}
	var te *domain.TransitionError
	if res != nil && errors.As(err, &te) {
		return nil, deniedError(err, res)
	}
	return nil, toGRPCError(err)
}
