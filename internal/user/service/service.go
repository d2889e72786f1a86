package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlibekovAA/gym-api/internal/auth/guard"
	commoncrypto "github.com/AlibekovAA/gym-api/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/gym-api/internal/common/errors"
	"github.com/AlibekovAA/gym-api/internal/common/logger"
	"github.com/AlibekovAA/gym-api/internal/user/domain"
	"github.com/AlibekovAA/gym-api/internal/user/repository"
)

type Authorizer interface {
	Authorize(id guard.Identity, op guard.Operation, res guard.Resource) error
}

type UserService struct {
	repo   repository.Repository
	hasher commoncrypto.PasswordHasher
	ids    commoncrypto.IDGenerator
	authz  Authorizer
	log    *logger.Logger
}

func NewUserService(
	repo repository.Repository,
	hasher commoncrypto.PasswordHasher,
	ids commoncrypto.IDGenerator,
	authz Authorizer,
	log *logger.Logger,
) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		ids:    ids,
		authz:  authz,
		log:    log,
	}
}

type CreateInput struct {
	Username string
	Email    string
	Password string
	Roles    []domain.Role
}

// UpdateInput holds the fields present in an update request. Nil fields are
// left untouched; a non-nil Roles replaces the role set and needs
// user.assign_roles on top of user.update.
type UpdateInput struct {
	Username *string
	Email    *string
	Password *string
	Roles    []domain.Role
}

func (s *UserService) Create(ctx context.Context, caller guard.Identity, input CreateInput) (domain.Profile, error) {
	if err := s.authz.Authorize(caller, guard.OpUserCreate, guard.Resource{}); err != nil {
		return domain.Profile{}, err
	}

	roles := input.Roles
	if len(roles) == 0 {
		roles = domain.DefaultRoles()
	}
	if err := validateRoles(roles); err != nil {
		return domain.Profile{}, err
	}

	hash, err := s.hashPassword(input.Password)
	if err != nil {
		return domain.Profile{}, err
	}

	id, err := s.ids.NewID()
	if err != nil {
		return domain.Profile{}, commonerrors.ErrInternalError.WithCause(fmt.Errorf("generate id: %w", err))
	}

	user := domain.User{
		ID:           id,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Roles:        roles,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "user_create_failed",
		}).Warnf("create user failed: %v", err)
		return domain.Profile{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id":  user.ID,
		"username": user.Username,
		"by":       caller.ID,
		"action":   "user_created",
	}).Info("user created")
	return user.Profile(), nil
}

func (s *UserService) Get(ctx context.Context, caller guard.Identity, id string) (domain.Profile, error) {
	if err := s.authz.Authorize(caller, guard.OpUserRead, guard.Resource{OwnerID: id}); err != nil {
		return domain.Profile{}, err
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Profile{}, err
	}
	return user.Profile(), nil
}

func (s *UserService) List(ctx context.Context, caller guard.Identity) ([]domain.Profile, error) {
	if err := s.authz.Authorize(caller, guard.OpUserList, guard.Resource{}); err != nil {
		return nil, err
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	profiles := make([]domain.Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}
	return profiles, nil
}

func (s *UserService) Update(ctx context.Context, caller guard.Identity, id string, input UpdateInput) (domain.Profile, error) {
	if err := s.authz.Authorize(caller, guard.OpUserUpdate, guard.Resource{OwnerID: id}); err != nil {
		return domain.Profile{}, err
	}
	if input.Roles != nil {
		if err := s.authz.Authorize(caller, guard.OpUserAssignRoles, guard.Resource{OwnerID: id}); err != nil {
			return domain.Profile{}, err
		}
		if len(input.Roles) == 0 {
			return domain.Profile{}, commonerrors.ErrValidation.WithDetails(map[string]any{"roles": "must not be empty"})
		}
		if err := validateRoles(input.Roles); err != nil {
			return domain.Profile{}, err
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Profile{}, err
	}

	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Password != nil {
		hash, err := s.hashPassword(*input.Password)
		if err != nil {
			return domain.Profile{}, err
		}
		user.PasswordHash = hash
	}
	if input.Roles != nil {
		user.Roles = append([]domain.Role(nil), input.Roles...)
	}

	if err := s.repo.Replace(ctx, user); err != nil {
		return domain.Profile{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": user.ID,
		"by":      caller.ID,
		"action":  "user_updated",
	}).Info("user updated")
	return user.Profile(), nil
}

func (s *UserService) Delete(ctx context.Context, caller guard.Identity, id string) error {
	if err := s.authz.Authorize(caller, guard.OpUserDelete, guard.Resource{OwnerID: id}); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, commonerrors.ErrNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"user_id": id,
				"action":  "user_delete_failed",
			}).Errorf("delete user failed: %v", err)
		}
		return err
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": id,
		"by":      caller.ID,
		"action":  "user_deleted",
	}).Info("user deleted")
	return nil
}

func validateRoles(roles []domain.Role) error {
	for _, r := range roles {
		if !r.Valid() {
			return commonerrors.ErrValidation.WithDetails(map[string]any{
				"roles": fmt.Sprintf("unknown role %q", r),
			})
		}
	}
	return nil
}

func (s *UserService) hashPassword(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if errors.Is(err, commoncrypto.ErrPasswordTooLong) {
		return "", commonerrors.ErrValidation.WithDetails(map[string]any{
			"password": fmt.Sprintf("must be at most %d bytes", commoncrypto.MaxPasswordBytes),
		})
	}
	if err != nil {
		return "", commonerrors.ErrInternalError.WithCause(fmt.Errorf("hash password: %w", err))
	}
	return hash, nil
}
