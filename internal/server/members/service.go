package members

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/talkroom/talkroom/internal/common"
	"github.com/talkroom/talkroom/internal/logging"
	"github.com/talkroom/talkroom/internal/retryx"
	"github.com/talkroom/talkroom/internal/server/auth"
	"github.com/talkroom/talkroom/internal/server/config"
)

// Service orchestrates the identity lifecycle over the durable store and the
// credential cache. The duplicate pre-check consults the cache first, but the
// store's unique constraint is the only authoritative guard: two concurrent
// registrations can both pass the pre-check and the second insert is then
// rejected at the store level.
type Service struct {
	repo        Repository
	cache       CredentialCache
	issuer      *auth.Issuer
	logger      logging.Logger
	bcryptCost  int
	callTimeout time.Duration
	retryMax    uint64
}

func NewService(repo Repository, cache CredentialCache, issuer *auth.Issuer, cfg *config.Config, logger logging.Logger) *Service {
	return &Service{
		repo:        repo,
		cache:       cache,
		issuer:      issuer,
		logger:      logger.With("component", "members"),
		bcryptCost:  cfg.BcryptCost,
		callTimeout: cfg.StoreCallTimeout,
		retryMax:    cfg.StoreRetryMax,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.callTimeout)
}

// Register validates the id and password, rejects duplicates, hashes the
// password and persists the new member. The cache entry is written after the
// durable record; until it lands (or after it expires) the store simply stays
// ahead of the cache, which is re-validated on every miss anyway.
func (s *Service) Register(ctx context.Context, id, rawPassword string) (*Member, error) {
	if err := ValidateMemberID(id); err != nil {
		return nil, err
	}
	if err := ValidatePassword(rawPassword); err != nil {
		return nil, err
	}

	if s.cache.Exists(id) {
		s.logger.Info(ctx, "duplicate member id found in cache", "memberId", id)
		return nil, common.ErrDuplicateMemberID
	}

	exists, err := retryx.DoWithResult(ctx, s.retryMax, func(ctx context.Context) (bool, error) {
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()
		return s.repo.ExistsByID(ctx, id)
	})
	if err != nil {
		s.logger.Error(ctx, "duplicate check failed", "memberId", id, "error", err)
		return nil, common.ErrInternal
	}
	if exists {
		s.logger.Info(ctx, "duplicate member id found in store", "memberId", id)
		return nil, common.ErrDuplicateMemberID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(rawPassword), s.bcryptCost)
	if err != nil {
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return nil, common.ErrInternal
	}

	// Create is not idempotent and is issued exactly once; the unique
	// constraint closes the check-then-act window.
	createCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	member, err := s.repo.Create(createCtx, &Member{ID: id, PasswordHash: string(hash)})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateMemberID) {
			s.logger.Info(ctx, "duplicate member id rejected by store", "memberId", id)
			return nil, common.ErrDuplicateMemberID
		}
		s.logger.Error(ctx, "member create failed", "memberId", id, "error", err)
		return nil, common.ErrInternal
	}

	s.cache.Add(member.ID, member.PasswordHash, member.CreatedAt)
	s.logger.Info(ctx, "member registered", "memberId", member.ID)

	return member, nil
}

// Authenticate verifies the credentials against the durable store only and
// issues a bearer token on success. Beyond the error kind, the two failure
// branches are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, id, rawPassword string) (*TokenResponse, error) {
	member, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(rawPassword)) != nil {
		s.logger.Info(ctx, "credential mismatch", "memberId", id)
		return nil, common.ErrCredentialMismatch
	}

	token, err := s.issuer.Issue(member.ID)
	if err != nil {
		s.logger.Error(ctx, "token issue failed", "memberId", id, "error", err)
		return nil, common.ErrInternal
	}

	s.logger.Info(ctx, "member authenticated", "memberId", member.ID)
	return &TokenResponse{MemberID: member.ID, Token: token}, nil
}

// Get returns the member record for id.
func (s *Service) Get(ctx context.Context, id string) (*Member, error) {
	return s.getByID(ctx, id)
}

// ChangePassword verifies the current password, validates the new one and
// persists the new hash. The cache mirror is refreshed afterwards.
func (s *Service) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	member, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(oldPassword)) != nil {
		s.logger.Info(ctx, "credential mismatch on password change", "memberId", id)
		return common.ErrCredentialMismatch
	}

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return common.ErrInternal
	}

	err = retryx.Do(ctx, s.retryMax, func(ctx context.Context) error {
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()
		return s.repo.UpdatePassword(ctx, id, string(hash))
	})
	if err != nil {
		if errors.Is(err, common.ErrMemberNotFound) {
			return err
		}
		s.logger.Error(ctx, "password update failed", "memberId", id, "error", err)
		return common.ErrInternal
	}

	s.cache.Add(id, string(hash), member.CreatedAt)
	s.logger.Info(ctx, "password updated", "memberId", id)
	return nil
}

// Delete removes the member from the durable store and evicts the cache
// mirror.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := retryx.Do(ctx, s.retryMax, func(ctx context.Context) error {
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, common.ErrMemberNotFound) {
			return err
		}
		s.logger.Error(ctx, "member delete failed", "memberId", id, "error", err)
		return common.ErrInternal
	}

	s.cache.Remove(id)
	s.logger.Info(ctx, "member deleted", "memberId", id)
	return nil
}

func (s *Service) getByID(ctx context.Context, id string) (*Member, error) {
	member, err := retryx.DoWithResult(ctx, s.retryMax, func(ctx context.Context) (*Member, error) {
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()
		return s.repo.GetByID(ctx, id)
	})
	if err != nil {
		if errors.Is(err, common.ErrMemberNotFound) {
			return nil, err
		}
		s.logger.Error(ctx, "member lookup failed", "memberId", id, "error", err)
		return nil, common.ErrInternal
	}
	return member, nil
}
