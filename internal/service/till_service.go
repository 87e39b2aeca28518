package service

import (
	"context"
	"time"

	"github.com/artenioreis/loja-caixa/internal/apperr"
	"github.com/artenioreis/loja-caixa/internal/config"
	"github.com/artenioreis/loja-caixa/internal/dto"
	"github.com/artenioreis/loja-caixa/internal/model"
	"github.com/artenioreis/loja-caixa/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// varianceTolerance absorbs float noise in declared amounts: a variance at
// or below one tenth of a cent counts as balanced.
var varianceTolerance = decimal.NewFromFloat(0.001)

type TillService interface {
	Open(ctx context.Context, userID uuid.UUID, req dto.OpenTillRequest) (*dto.TillSessionResponse, error)
	Close(ctx context.Context, userID uuid.UUID, req dto.CloseTillRequest) (*dto.CloseTillResponse, error)
	// Current returns the operator's open session, or NotFound.
	Current(ctx context.Context, userID uuid.UUID) (*dto.TillSessionResponse, error)
	// Reconciliation recomputes the figures of a closed session. Because
	// the closing instant is persisted, repeated calls always reproduce
	// the numbers reported at close time.
	Reconciliation(ctx context.Context, sessionID uuid.UUID) (*dto.CloseTillResponse, error)
	// StatusBoard lists every active operator with their latest session.
	StatusBoard(ctx context.Context) ([]dto.OperatorTillStatus, error)
	// ForgottenSessions lists sessions still open that were opened before
	// today — drawers someone walked away from.
	ForgottenSessions(ctx context.Context) ([]dto.TillSessionResponse, error)

	// OpenSession is the checkout precondition hook: the operator's open
	// session, or (nil, nil) when the till is closed.
	OpenSession(ctx context.Context, userID uuid.UUID) (*model.TillSession, error)
}

type tillService struct {
	repo     repository.TillRepository
	sales    repository.SaleRepository
	users    repository.UserRepository
	cashOnly bool
}

// NewTillService builds the till manager. expectedCashScope decides which
// payment methods count toward the expected drawer balance; see the
// config.ExpectedCashScope* constants.
func NewTillService(repo repository.TillRepository, sales repository.SaleRepository, users repository.UserRepository, expectedCashScope string) TillService {
	return &tillService{
		repo:     repo,
		sales:    sales,
		users:    users,
		cashOnly: expectedCashScope != config.ExpectedCashScopeAll,
	}
}

// scopeMethods returns the payment-method filter for expected cash;
// nil means every method counts.
func (s *tillService) scopeMethods() []string {
	if s.cashOnly {
		return []string{model.PaymentCash}
	}
	return nil
}

func (s *tillService) Open(ctx context.Context, userID uuid.UUID, req dto.OpenTillRequest) (*dto.TillSessionResponse, error) {
	existing, err := s.repo.FindOpenByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("operator already has an open till session")
	}

	session := &model.TillSession{
		UserID:      userID,
		OpenedAt:    time.Now(),
		OpeningCash: req.OpeningCash,
		Status:      model.TillOpen,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}
	return sessionToResponse(session), nil
}

func (s *tillService) Close(ctx context.Context, userID uuid.UUID, req dto.CloseTillRequest) (*dto.CloseTillResponse, error) {
	session, err := s.repo.FindOpenByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperr.InvalidState("operator has no open till session")
	}

	// The closing instant is captured exactly once. It bounds the sales
	// window here, is persisted on the row, and is reused by every later
	// reconciliation read — recomputing "now" in two places would yield
	// different totals for the same session.
	closedAt := time.Now()
	declared := req.DeclaredCash
	session.ClosedAt = &closedAt
	session.DeclaredCash = &declared
	session.Status = model.TillClosed

	resp, err := s.reconcile(ctx, session)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, session); err != nil {
		return nil, err
	}
	return resp, nil
}

// reconcile computes the close-out figures for a session whose window is
// already fixed (ClosedAt set, or open with "now" as provisional bound).
func (s *tillService) reconcile(ctx context.Context, session *model.TillSession) (*dto.CloseTillResponse, error) {
	from, to := session.Window(time.Now())

	count, total, err := s.sales.WindowTotals(ctx, session.UserID, from, to, nil)
	if err != nil {
		return nil, err
	}
	_, scoped, err := s.sales.WindowTotals(ctx, session.UserID, from, to, s.scopeMethods())
	if err != nil {
		return nil, err
	}

	expected := session.OpeningCash.Add(scoped)
	declared := decimal.Zero
	if session.DeclaredCash != nil {
		declared = *session.DeclaredCash
	}
	variance := declared.Sub(expected)

	return &dto.CloseTillResponse{
		Session:      *sessionToResponse(session),
		SalesCount:   count,
		SalesTotal:   total,
		ExpectedCash: expected,
		DeclaredCash: declared,
		Variance:     variance,
		Balanced:     variance.Abs().LessThanOrEqual(varianceTolerance),
	}, nil
}

func (s *tillService) Current(ctx context.Context, userID uuid.UUID) (*dto.TillSessionResponse, error) {
	session, err := s.repo.FindOpenByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperr.NotFound("no open till session")
	}
	return sessionToResponse(session), nil
}

func (s *tillService) Reconciliation(ctx context.Context, sessionID uuid.UUID) (*dto.CloseTillResponse, error) {
	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, apperr.NotFound("till session not found")
	}
	return s.reconcile(ctx, session)
}

func (s *tillService) StatusBoard(ctx context.Context) ([]dto.OperatorTillStatus, error) {
	operators, err := s.users.ListOperators(ctx)
	if err != nil {
		return nil, err
	}

	board := make([]dto.OperatorTillStatus, 0, len(operators))
	for _, op := range operators {
		latest, err := s.repo.LatestByUser(ctx, op.ID)
		if err != nil {
			return nil, err
		}

		row := dto.OperatorTillStatus{
			UserID:       op.ID.String(),
			Operator:     op.Name,
			Status:       dto.TillNeverOpened,
			ExpectedCash: decimal.Zero,
			DeclaredCash: decimal.Zero,
			Variance:     decimal.Zero,
		}
		if latest != nil {
			row.Status = latest.Status
			if latest.Status == model.TillClosed {
				// Closed sessions use the persisted window, so the board
				// always matches the figures shown at close time.
				rec, err := s.reconcile(ctx, latest)
				if err != nil {
					return nil, err
				}
				row.At = latest.ClosedAt.Format(time.RFC3339)
				row.ExpectedCash = rec.ExpectedCash
				row.DeclaredCash = rec.DeclaredCash
				row.Variance = rec.Variance
				row.ShowVariance = !rec.Balanced
			} else {
				row.At = latest.OpenedAt.Format(time.RFC3339)
			}
		}
		board = append(board, row)
	}
	return board, nil
}

func (s *tillService) ForgottenSessions(ctx context.Context) ([]dto.TillSessionResponse, error) {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	sessions, err := s.repo.ListOpenBefore(ctx, midnight)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TillSessionResponse, 0, len(sessions))
	for i := range sessions {
		resp := sessionToResponse(&sessions[i])
		if sessions[i].User != nil {
			resp.Operator = sessions[i].User.Name
		}
		out = append(out, *resp)
	}
	return out, nil
}

func (s *tillService) OpenSession(ctx context.Context, userID uuid.UUID) (*model.TillSession, error) {
	return s.repo.FindOpenByUser(ctx, userID)
}

func sessionToResponse(s *model.TillSession) *dto.TillSessionResponse {
	resp := &dto.TillSessionResponse{
		ID:          s.ID.String(),
		UserID:      s.UserID.String(),
		OpenedAt:    s.OpenedAt.Format(time.RFC3339),
		OpeningCash: s.OpeningCash,
		Status:      s.Status,
	}
	if s.ClosedAt != nil {
		t := s.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	if s.DeclaredCash != nil {
		d := *s.DeclaredCash
		resp.DeclaredCash = &d
	}
	return resp
}
