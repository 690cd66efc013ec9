package rewards

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service runs redemptions. A user has at most one redemption open; once it
// reaches processing it runs to the end even if the caller goes away.
type Service struct {
	repo  Repository
	delay time.Duration
	log   *zap.Logger
	now   func() time.Time

	mu     sync.Mutex
	active map[int]*Redemption
	wg     sync.WaitGroup
}

func NewService(repo Repository, processingDelay time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		delay:  processingDelay,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
		active: make(map[int]*Redemption),
	}
}

func (s *Service) Catalog(ctx context.Context) ([]Reward, error) {
	return s.repo.ListRewards(ctx)
}

func (s *Service) Points(ctx context.Context, userID int) (int, error) {
	return s.repo.Balance(ctx, userID)
}

// Vouchers lists the user's vouchers with expiry applied.
func (s *Service) Vouchers(ctx context.Context, userID int) ([]RedeemedVoucher, error) {
	vs, err := s.repo.ListVouchers(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range vs {
		vs[i].Status = vs[i].StatusAt(now)
	}
	return vs, nil
}

// Start opens a redemption at the confirm step. A finished redemption left
// open is replaced.
func (s *Service) Start(ctx context.Context, userID, rewardID int) (Redemption, error) {
	reward, err := s.repo.GetReward(ctx, rewardID)
	if err != nil {
		return Redemption{}, err
	}
	balance, err := s.repo.Balance(ctx, userID)
	if err != nil {
		return Redemption{}, err
	}
	if balance < reward.Points {
		return Redemption{}, ErrInsufficientPoints
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.active[userID]; ok && !cur.finished() {
		return Redemption{}, ErrRedemptionInProgress
	}
	r := &Redemption{
		ID:             uuid.NewString(),
		UserID:         userID,
		Reward:         reward,
		Balance:        balance,
		DeliveryMethod: DeliveryEmail,
		StartedAt:      s.now(),
	}
	r.moveTo(StepConfirm)
	s.active[userID] = r
	return r.clone(), nil
}

func (s *Service) Current(userID int) (Redemption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.active[userID]
	if !ok {
		return Redemption{}, ErrNoRedemption
	}
	return r.clone(), nil
}

// Confirm accepts the points cost. Credit and discount rewards go straight
// to processing; the rest ask for delivery details first.
func (s *Service) Confirm(ctx context.Context, userID int) (Redemption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.active[userID]
	if !ok {
		return Redemption{}, ErrNoRedemption
	}
	if r.Step != StepConfirm {
		return Redemption{}, ErrInvalidTransition
	}
	if !r.Reward.Type.skipsDetails() {
		r.moveTo(StepDetails)
		return r.clone(), nil
	}
	s.beginProcessing(ctx, r)
	return r.clone(), nil
}

// SubmitDetails records the delivery method and starts processing. An empty
// method keeps the default.
func (s *Service) SubmitDetails(ctx context.Context, userID int, method DeliveryMethod) (Redemption, error) {
	if method != "" && !method.Valid() {
		return Redemption{}, ErrInvalidDeliveryMethod
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.active[userID]
	if !ok {
		return Redemption{}, ErrNoRedemption
	}
	if r.Step != StepDetails {
		return Redemption{}, ErrInvalidTransition
	}
	if method != "" {
		r.DeliveryMethod = method
	}
	s.beginProcessing(ctx, r)
	return r.clone(), nil
}

// Cancel drops the user's redemption. Nothing has been charged before
// processing; a processing redemption cannot be cancelled.
func (s *Service) Cancel(userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.active[userID]
	if !ok {
		return ErrNoRedemption
	}
	if r.Step == StepProcessing {
		return ErrNotCancellable
	}
	delete(s.active, userID)
	return nil
}

// Wait blocks until every processing redemption has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// beginProcessing must be called with s.mu held.
func (s *Service) beginProcessing(ctx context.Context, r *Redemption) {
	r.moveTo(StepProcessing)
	snapshot := r.clone()

	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if s.delay > 0 {
			time.Sleep(s.delay)
		}
		s.finish(snapshot.UserID, s.process(ctx, snapshot))
	}()
}

type outcome struct {
	code      string
	voucher   *RedeemedVoucher
	remaining int
	err       error
}

func (s *Service) process(ctx context.Context, r Redemption) outcome {
	reward := r.Reward
	remaining, err := s.repo.AdjustPoints(ctx, r.UserID, -reward.Points)
	if err != nil {
		return outcome{err: err}
	}

	var out outcome
	out.remaining = remaining
	switch reward.Type {
	case TypeDiscount:
		out.code = promoCode(reward)
	case TypeVoucher, TypeExperience:
		code, err := randomCode(10)
		if err == nil {
			now := s.now()
			v := RedeemedVoucher{
				ID:         uuid.NewString(),
				UserID:     r.UserID,
				RewardID:   reward.ID,
				Title:      reward.Title,
				Code:       code,
				Value:      reward.Value,
				RedeemedAt: now,
				ExpiresAt:  now.Add(ParseValidity(reward.Validity)),
				Status:     VoucherActive,
			}
			err = s.repo.AddVoucher(ctx, v)
			out.code, out.voucher = code, &v
		}
		if err != nil {
			s.refund(ctx, r)
			return outcome{err: fmt.Errorf("issue voucher: %w", err)}
		}
	default:
		out.code = referenceCode()
	}
	return out
}

func (s *Service) refund(ctx context.Context, r Redemption) {
	if _, err := s.repo.AdjustPoints(ctx, r.UserID, r.Reward.Points); err != nil {
		s.log.Error("refund redemption points",
			zap.String("redemptionId", r.ID),
			zap.Int("userId", r.UserID),
			zap.Int("points", r.Reward.Points),
			zap.Error(err))
	}
}

func (s *Service) finish(userID int, out outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.active[userID]
	if !ok {
		return
	}
	if out.err != nil {
		s.log.Warn("redemption failed", zap.String("redemptionId", r.ID), zap.Int("userId", userID), zap.Error(out.err))
		r.Error = out.err.Error()
		r.moveTo(StepFailed)
		return
	}
	r.Code = out.code
	r.Voucher = out.voucher
	r.RemainingPoints = &out.remaining
	r.moveTo(StepSuccess)
	s.log.Info("reward redeemed",
		zap.String("redemptionId", r.ID),
		zap.Int("userId", userID),
		zap.Int("rewardId", r.Reward.ID),
		zap.Int("points", r.Reward.Points),
	)
}
