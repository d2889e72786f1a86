package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlibekovAA/gym-api/internal/auth/guard"
	"github.com/AlibekovAA/gym-api/internal/common/clock"
	"github.com/AlibekovAA/gym-api/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/gym-api/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/gym-api/internal/common/errors"
	"github.com/AlibekovAA/gym-api/internal/common/logger"
	"github.com/AlibekovAA/gym-api/internal/notification/domain"
	"github.com/AlibekovAA/gym-api/internal/notification/notifier"
	"github.com/AlibekovAA/gym-api/internal/notification/repository"
	"github.com/AlibekovAA/gym-api/internal/observability/metrics"
	userdomain "github.com/AlibekovAA/gym-api/internal/user/domain"
)

type Authorizer interface {
	Authorize(id guard.Identity, op guard.Operation, res guard.Resource) error
}

type RecipientLookup interface {
	FindByID(ctx context.Context, id string) (userdomain.User, error)
}

// Publisher receives notifications after they are stored.
type Publisher interface {
	Publish(n domain.Notification)
}

type NotificationService struct {
	repo      repository.Repository
	users     RecipientLookup
	notifier  notifier.Notifier
	publisher Publisher
	ids       commoncrypto.IDGenerator
	authz     Authorizer
	clock     clock.Clock
	log       *logger.Logger
}

func NewNotificationService(
	repo repository.Repository,
	users RecipientLookup,
	n notifier.Notifier,
	publisher Publisher,
	ids commoncrypto.IDGenerator,
	authz Authorizer,
	clk clock.Clock,
	log *logger.Logger,
) *NotificationService {
	return &NotificationService{
		repo:      repo,
		users:     users,
		notifier:  n,
		publisher: publisher,
		ids:       ids,
		authz:     authz,
		clock:     clk,
		log:       log,
	}
}

type CreateInput struct {
	UserID  string
	Message string
	Read    bool
}

// Patch carries the only mutable field; a nil Read leaves the record as is.
type Patch struct {
	Read *bool
}

func (s *NotificationService) Create(ctx context.Context, caller guard.Identity, input CreateInput) (domain.Notification, error) {
	return s.create(ctx, caller, guard.OpNotificationCreate, input)
}

func (s *NotificationService) SendToTrainer(ctx context.Context, caller guard.Identity, input CreateInput) (domain.Notification, error) {
	return s.create(ctx, caller, guard.OpNotificationSendToTrainer, input)
}

func (s *NotificationService) SendToUser(ctx context.Context, caller guard.Identity, input CreateInput) (domain.Notification, error) {
	return s.create(ctx, caller, guard.OpNotificationSendToUser, input)
}

// create stores the notification first; the email and the live push that
// follow are best effort and never undo the write.
func (s *NotificationService) create(ctx context.Context, caller guard.Identity, op guard.Operation, input CreateInput) (domain.Notification, error) {
	if err := s.authz.Authorize(caller, op, guard.Resource{OwnerID: input.UserID}); err != nil {
		return domain.Notification{}, err
	}
	if strings.TrimSpace(input.UserID) == "" || strings.TrimSpace(input.Message) == "" {
		return domain.Notification{}, commonerrors.ErrValidation.WithDetails(map[string]any{
			"body": "user_id and message are required",
		})
	}

	id, err := s.ids.NewID()
	if err != nil {
		return domain.Notification{}, commonerrors.ErrInternalError.WithCause(fmt.Errorf("generate id: %w", err))
	}

	n := domain.Notification{
		ID:        id,
		UserID:    input.UserID,
		Message:   input.Message,
		Read:      input.Read,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return domain.Notification{}, err
	}

	metrics.NotificationsCreated.WithLabelValues(kind(op)).Inc()
	s.log.WithFields(ctx, logger.Fields{
		"notification_id": n.ID,
		"user_id":         n.UserID,
		"by":              caller.ID,
		"kind":            kind(op),
		"action":          "notification_created",
	}).Info("notification created")

	s.deliver(ctx, n)
	if s.publisher != nil {
		s.publisher.Publish(n)
	}
	return n, nil
}

func (s *NotificationService) deliver(ctx context.Context, n domain.Notification) {
	recipient, err := s.users.FindByID(ctx, n.UserID)
	if err != nil {
		entry := s.log.WithFields(ctx, logger.Fields{
			"notification_id": n.ID,
			"user_id":         n.UserID,
			"action":          "notification_recipient_lookup_failed",
		})
		if errors.Is(err, commonerrors.ErrNotFound) {
			entry.Warn("notification email skipped: recipient not found")
			return
		}
		entry.Errorf("notification email skipped: %v", err)
		return
	}
	if recipient.Email == "" {
		s.log.WithFields(ctx, logger.Fields{
			"notification_id": n.ID,
			"user_id":         n.UserID,
			"action":          "notification_recipient_no_email",
		}).Debug("notification email skipped: recipient has no email")
		return
	}

	if err := s.notifier.Send(ctx, recipient.Email, constants.NotificationEmailSubject, n.Message); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"notification_id": n.ID,
			"user_id":         n.UserID,
			"action":          "notification_email_failed",
		}).Errorf("failed to send notification email: %v", err)
	}
}

// List returns the caller's own notifications only.
func (s *NotificationService) List(ctx context.Context, caller guard.Identity) ([]domain.Notification, error) {
	if err := s.authz.Authorize(caller, guard.OpNotificationList, guard.Resource{}); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, caller.ID)
}

func (s *NotificationService) Get(ctx context.Context, caller guard.Identity, id string) (domain.Notification, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Notification{}, err
	}
	if err := s.authz.Authorize(caller, guard.OpNotificationRead, guard.Resource{OwnerID: n.UserID}); err != nil {
		return domain.Notification{}, err
	}
	return n, nil
}

func (s *NotificationService) Update(ctx context.Context, caller guard.Identity, id string, patch Patch) (domain.Notification, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Notification{}, err
	}
	if err := s.authz.Authorize(caller, guard.OpNotificationUpdate, guard.Resource{OwnerID: n.UserID}); err != nil {
		return domain.Notification{}, err
	}

	if patch.Read == nil {
		return n, nil
	}
	n.Read = *patch.Read

	if err := s.repo.Replace(ctx, n); err != nil {
		return domain.Notification{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"notification_id": n.ID,
		"read":            n.Read,
		"action":          "notification_updated",
	}).Debug("notification updated")
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, caller guard.Identity, id string) error {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.Authorize(caller, guard.OpNotificationDelete, guard.Resource{OwnerID: n.UserID}); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.WithFields(ctx, logger.Fields{
		"notification_id": id,
		"action":          "notification_deleted",
	}).Info("notification deleted")
	return nil
}

func kind(op guard.Operation) string {
	switch op {
	case guard.OpNotificationSendToTrainer:
		return "to_trainer"
	case guard.OpNotificationSendToUser:
		return "to_user"
	default:
		return "direct"
	}
}
