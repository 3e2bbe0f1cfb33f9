package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"btevta-wasl-backend/internal/domain"
	"btevta-wasl-backend/internal/escalation"
	"btevta-wasl-backend/internal/lifecycle"
	"btevta-wasl-backend/internal/service"
	"btevta-wasl-backend/internal/sla"
)

type stubLifecycle struct {
	service.LifecycleService
	attempt   func(id int64, target domain.CandidateStatus, tc lifecycle.TransitionContext) (*service.TransitionResult, error)
	evaluate  func(id int64, gate lifecycle.GateName) (*lifecycle.GateResult, error)
	lastActor string
}

func (s *stubLifecycle) AttemptTransition(_ context.Context, id int64, target domain.CandidateStatus, tc lifecycle.TransitionContext) (*service.TransitionResult, error) {
	s.lastActor = tc.Actor
	return s.attempt(id, target, tc)
}

func (s *stubLifecycle) EvaluateGate(_ context.Context, id int64, gate lifecycle.GateName) (*lifecycle.GateResult, error) {
	return s.evaluate(id, gate)
}

type stubComplaints struct {
	service.ComplaintService
	escalate func(id int64, actor, reason string) (*service.ComplaintEscalationResult, error)
	sla      func(id int64) (*service.ComplaintSLA, error)
}

func (s *stubComplaints) Escalate(_ context.Context, id int64, actor, reason string) (*service.ComplaintEscalationResult, error) {
	return s.escalate(id, actor, reason)
}

func (s *stubComplaints) EvaluateSLA(_ context.Context, id int64) (*service.ComplaintSLA, error) {
	return s.sla(id)
}

type stubCompliance struct {
	service.ComplianceService
	evaluate func(id int64) (*domain.Departure, *sla.ComplianceState, error)
}

func (s *stubCompliance) EvaluateCompliance(_ context.Context, id int64) (*domain.Departure, *sla.ComplianceState, error) {
	return s.evaluate(id)
}

// dial starts the server over an in-memory listener and returns a client connection.
func dial(t *testing.T, h *LifecycleHandler) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv, _ := NewServer(h)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func invoke(t *testing.T, conn *grpc.ClientConn, ctx context.Context, method string, in map[string]any) (*structpb.Struct, error) {
	t.Helper()
	req, err := structpb.NewStruct(in)
	require.NoError(t, err)
	out := new(structpb.Struct)
	err = conn.Invoke(ctx, "/"+ServiceName+"/"+method, req, out)
	return out, err
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestAttemptTransition_Allowed(t *testing.T) {
	lc := &stubLifecycle{attempt: func(id int64, target domain.CandidateStatus, tc lifecycle.TransitionContext) (*service.TransitionResult, error) {
		return &service.TransitionResult{
			Decision:  lifecycle.Decision{From: domain.CandidateStatusRegistered, To: target, Allowed: true},
			Candidate: &domain.Candidate{ID: id, Status: target},
		}, nil
	}}
	conn := dial(t, NewLifecycleHandler(lc, &stubComplaints{}, &stubCompliance{}))

	ctx := metadata.AppendToOutgoingContext(testContext(t), ActorMetadataKey, "officer-3")
	out, err := invoke(t, conn, ctx, "AttemptTransition", map[string]any{"candidate_id": 14, "target": "training"})

	require.NoError(t, err)
	assert.Equal(t, "officer-3", lc.lastActor)
	cand := out.GetFields()["candidate"].GetStructValue()
	assert.Equal(t, "training", cand.GetFields()["status"].GetStringValue())
	assert.Equal(t, float64(14), cand.GetFields()["id"].GetNumberValue())
}

func TestAttemptTransition_DeniedCarriesDecision(t *testing.T) {
	lc := &stubLifecycle{attempt: func(id int64, target domain.CandidateStatus, _ lifecycle.TransitionContext) (*service.TransitionResult, error) {
		d := lifecycle.Decision{
			From:   domain.CandidateStatusNew,
			To:     target,
			Reason: domain.ErrKindGateNotSatisfied,
			Gate:   &lifecycle.GateResult{Gate: lifecycle.GateDocument, Missing: []string{"passport"}},
		}
		return &service.TransitionResult{Decision: d, Candidate: &domain.Candidate{ID: id}}, d.Err()
	}}
	conn := dial(t, NewLifecycleHandler(lc, &stubComplaints{}, &stubCompliance{}))

	_, err := invoke(t, conn, testContext(t), "AttemptTransition", map[string]any{"candidate_id": "9", "target": "screening"})

	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.FailedPrecondition, st.Code())
	require.Len(t, st.Details(), 1)
	detail, ok := st.Details()[0].(*structpb.Struct)
	require.True(t, ok)
	missing := detail.GetFields()["decision"].GetStructValue().GetFields()["gate"].GetStructValue().GetFields()["missing"].GetListValue()
	require.Len(t, missing.GetValues(), 1)
	assert.Equal(t, "passport", missing.GetValues()[0].GetStringValue())
}

func TestAttemptTransition_InvalidArguments(t *testing.T) {
	conn := dial(t, NewLifecycleHandler(&stubLifecycle{}, &stubComplaints{}, &stubCompliance{}))
	ctx := testContext(t)

	cases := []map[string]any{
		{"target": "training"},
		{"candidate_id": 1.5, "target": "training"},
		{"candidate_id": -2, "target": "training"},
		{"candidate_id": 2, "target": "graduated"},
	}
	for _, in := range cases {
		_, err := invoke(t, conn, ctx, "AttemptTransition", in)
		assert.Equal(t, codes.InvalidArgument, status.Code(err), "input %v", in)
	}
}

func TestEvaluateGate_NotFound(t *testing.T) {
	lc := &stubLifecycle{evaluate: func(id int64, _ lifecycle.GateName) (*lifecycle.GateResult, error) {
		return nil, domain.ErrNotFound
	}}
	conn := dial(t, NewLifecycleHandler(lc, &stubComplaints{}, &stubCompliance{}))

	_, err := invoke(t, conn, testContext(t), "EvaluateGate", map[string]any{"candidate_id": 3, "gate": "visa"})

	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestEscalateComplaint(t *testing.T) {
	var gotActor, gotReason string
	cs := &stubComplaints{escalate: func(id int64, actor, reason string) (*service.ComplaintEscalationResult, error) {
		gotActor, gotReason = actor, reason
		return &service.ComplaintEscalationResult{
			Complaint: &domain.Complaint{ID: id, EscalationLevel: 3},
			Decision:  escalation.Decision{Escalate: true, PreviousLevel: 2, NewLevel: 3, Reason: reason},
		}, nil
	}}
	conn := dial(t, NewLifecycleHandler(&stubLifecycle{}, cs, &stubCompliance{}))

	ctx := metadata.AppendToOutgoingContext(testContext(t), ActorMetadataKey, "desk-officer")
	out, err := invoke(t, conn, ctx, "EscalateComplaint", map[string]any{"complaint_id": 7, "reason": "employer unresponsive"})

	require.NoError(t, err)
	assert.Equal(t, "desk-officer", gotActor)
	assert.Equal(t, "employer unresponsive", gotReason)
	assert.Equal(t, float64(3), out.GetFields()["decision"].GetStructValue().GetFields()["new_level"].GetNumberValue())
}

func TestEvaluateComplaintSLA_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code codes.Code
	}{
		{domain.ErrNotFound, codes.NotFound},
		{domain.ErrConcurrentModification, codes.Aborted},
		{errors.New("pq: broken pipe"), codes.Internal},
	}
	for _, tc := range cases {
		cs := &stubComplaints{sla: func(int64) (*service.ComplaintSLA, error) { return nil, tc.err }}
		conn := dial(t, NewLifecycleHandler(&stubLifecycle{}, cs, &stubCompliance{}))

		_, err := invoke(t, conn, testContext(t), "EvaluateComplaintSLA", map[string]any{"complaint_id": 1})

		assert.Equal(t, tc.code, status.Code(err), "error %v", tc.err)
	}
}

func TestEvaluateCompliance_NotApplicable(t *testing.T) {
	cp := &stubCompliance{evaluate: func(id int64) (*domain.Departure, *sla.ComplianceState, error) {
		return &domain.Departure{ID: id}, nil, domain.ErrNotApplicable
	}}
	conn := dial(t, NewLifecycleHandler(&stubLifecycle{}, &stubComplaints{}, cp))

	out, err := invoke(t, conn, testContext(t), "EvaluateCompliance", map[string]any{"departure_id": 5})

	require.NoError(t, err)
	assert.Equal(t, "not_applicable", out.GetFields()["state"].GetStructValue().GetFields()["status"].GetStringValue())
}

func TestPanicBecomesInternal(t *testing.T) {
	lc := &stubLifecycle{evaluate: func(int64, lifecycle.GateName) (*lifecycle.GateResult, error) {
		panic("nil snapshot")
	}}
	conn := dial(t, NewLifecycleHandler(lc, &stubComplaints{}, &stubCompliance{}))

	_, err := invoke(t, conn, testContext(t), "EvaluateGate", map[string]any{"candidate_id": 3, "gate": "training"})

	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestHealthService(t *testing.T) {
	conn := dial(t, NewLifecycleHandler(&stubLifecycle{}, &stubComplaints{}, &stubCompliance{}))

	resp, err := healthpb.NewHealthClient(conn).Check(testContext(t), &healthpb.HealthCheckRequest{Service: ServiceName})

	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
