package user

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, log: log}
}

func (s *Service) GetByID(ctx context.Context, id int) (User, error) {
	return s.repo.GetByID(ctx, id)
}

// Register creates an individual account. Company members are provisioned
// by their company administrators, not through self sign-up.
func (s *Service) Register(ctx context.Context, user User) (User, error) {
	if _, err := s.repo.GetByEmail(ctx, user.Email); err == nil {
		return User{}, ErrEmailExists
	} else if err != ErrNotFound {
		return User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user.Password = string(hashed)
	user.AccountType = AccountIndividual
	user.Individual = &IndividualProfile{}
	user.Company = nil
	return s.repo.Create(ctx, user)
}

// Create stores a pre-built account (seeding, admin provisioning). Plain
// text passwords are hashed.
func (s *Service) Create(ctx context.Context, user User) (User, error) {
	if err := user.Validate(); err != nil {
		return User{}, err
	}
	if user.Password != "" && !looksLikeBcrypt(user.Password) {
		hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		user.Password = string(hashed)
	}
	return s.repo.Create(ctx, user)
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		s.log.Info("sign-in rejected", zap.String("email", email))
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// ProfileUpdate carries the optional fields of a profile edit.
type ProfileUpdate struct {
	Name          *string
	Phone         *string
	MainAddressID *int
}

func (s *Service) UpdateProfile(ctx context.Context, id int, in ProfileUpdate) (User, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if in.Name != nil {
		existing.Name = *in.Name
	}
	if in.Phone != nil {
		existing.Phone = *in.Phone
	}
	if in.MainAddressID != nil {
		existing.MainAddressID = in.MainAddressID
	}
	existing.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return s.repo.UpdateProfile(ctx, id, existing)
}

// RequirePermission loads the caller and checks that they are a company
// member holding perm.
func (s *Service) RequirePermission(ctx context.Context, id int, perm Permission) (User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if !u.Can(perm) {
		return u, ErrAccessDenied
	}
	return u, nil
}

func looksLikeBcrypt(value string) bool {
	return len(value) > 4 && value[0:2] == "$2"
}
