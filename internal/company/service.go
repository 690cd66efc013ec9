package company

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wichananm65/easi-backend/internal/user"
)

// Members resolves the caller and their company permissions.
type Members interface {
	GetByID(ctx context.Context, id int) (user.User, error)
	RequirePermission(ctx context.Context, id int, perm user.Permission) (user.User, error)
}

type Service struct {
	repo    Repository
	members Members
	timeout time.Duration
	log     *zap.Logger

	mu       sync.Mutex
	repaying map[int]bool
}

func NewService(repo Repository, members Members, timeout time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, members: members, timeout: timeout, log: log, repaying: make(map[int]bool)}
}

func (s *Service) GetByID(ctx context.Context, id int) (Company, error) {
	return s.repo.GetByID(ctx, id)
}

// ForMember returns the company the user belongs to.
func (s *Service) ForMember(ctx context.Context, userID int) (Company, error) {
	u, err := s.members.GetByID(ctx, userID)
	if err != nil {
		return Company{}, err
	}
	id := u.CompanyID()
	if id == nil {
		return Company{}, user.ErrAccessDenied
	}
	return s.repo.GetByID(ctx, *id)
}

func (s *Service) forBilling(ctx context.Context, userID int) (Company, error) {
	u, err := s.members.RequirePermission(ctx, userID, user.PermManageBilling)
	if err != nil {
		return Company{}, err
	}
	return s.repo.GetByID(ctx, *u.CompanyID())
}

func (s *Service) Credit(ctx context.Context, userID int) (CreditSummary, error) {
	c, err := s.forBilling(ctx, userID)
	if err != nil {
		return CreditSummary{}, err
	}
	return Summarize(c), nil
}

func (s *Service) PaymentPreview(ctx context.Context, userID int, method PaymentMethod) (PaymentPreview, error) {
	c, err := s.forBilling(ctx, userID)
	if err != nil {
		return PaymentPreview{}, err
	}
	return PreviewPayment(c, method)
}

type Repayment struct {
	Payment PaymentPreview `json:"payment"`
	Credit  CreditSummary  `json:"credit"`
}

// RepayFull pays off all used credit of the caller's company. The record is
// only changed once the store accepts the write; the returned summary is
// built from what the store returned. When expectedVersion is set it must
// match the stored version.
func (s *Service) RepayFull(ctx context.Context, userID int, method PaymentMethod, expectedVersion *int) (Repayment, error) {
	if _, ok := methodFeePercent[method]; !ok {
		return Repayment{}, ErrUnknownPaymentMethod
	}

	c, err := s.forBilling(ctx, userID)
	if err != nil {
		return Repayment{}, err
	}
	if expectedVersion != nil && *expectedVersion != c.Version {
		return Repayment{}, ErrVersionConflict
	}

	if !s.acquire(c.ID) {
		return Repayment{}, ErrRepaymentInProgress
	}
	defer s.release(c.ID)

	preview, err := PreviewPayment(c, method)
	if err != nil {
		return Repayment{}, err
	}
	if !preview.Amount.IsPositive() {
		return Repayment{Payment: preview, Credit: Summarize(c)}, nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	updated, err := s.repo.UpdateCredit(ctx, c.ID, c.CreditLimit, c.Version)
	if err != nil {
		if errors.Is(err, ErrVersionConflict) || errors.Is(err, ErrNotFound) {
			return Repayment{}, err
		}
		s.log.Error("credit repayment failed", zap.Int("companyId", c.ID), zap.Error(err))
		return Repayment{}, fmt.Errorf("%w: %w", ErrProfileUpdateFailed, err)
	}

	s.log.Info("credit repaid",
		zap.Int("companyId", c.ID),
		zap.Int("userId", userID),
		zap.String("method", string(method)),
		zap.String("amount", preview.Amount.StringFixed(2)),
		zap.Int("version", updated.Version),
	)
	return Repayment{Payment: preview, Credit: Summarize(updated)}, nil
}

func (s *Service) acquire(companyID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repaying[companyID] {
		return false
	}
	s.repaying[companyID] = true
	return true
}

func (s *Service) release(companyID int) {
	s.mu.Lock()
	delete(s.repaying, companyID)
	s.mu.Unlock()
}
