package guard

import (
	userdomain "github.com/AlibekovAA/gym-api/internal/user/domain"
)

type Operation string

const (
	OpUserCreate      Operation = "user.create"
	OpUserRead        Operation = "user.read"
	OpUserUpdate      Operation = "user.update"
	OpUserDelete      Operation = "user.delete"
	OpUserList        Operation = "user.list"
	OpUserAssignRoles Operation = "user.assign_roles"

	OpTrainingCreate Operation = "training.create"
	OpTrainingRead   Operation = "training.read"
	OpTrainingUpdate Operation = "training.update"
	OpTrainingDelete Operation = "training.delete"

	OpAvailabilityCreate Operation = "availability.create"
	OpAvailabilityRead   Operation = "availability.read"
	OpAvailabilityUpdate Operation = "availability.update"
	OpAvailabilityDelete Operation = "availability.delete"

	OpNotificationCreate        Operation = "notification.create"
	OpNotificationRead          Operation = "notification.read"
	OpNotificationUpdate        Operation = "notification.update"
	OpNotificationDelete        Operation = "notification.delete"
	OpNotificationList          Operation = "notification.list"
	OpNotificationSendToTrainer Operation = "notification.send_to_trainer"
	OpNotificationSendToUser    Operation = "notification.send_to_user"
)

// Resource carries the ownership facts a rule may need. OwnerID is the user id
// the resource belongs to: the target user for user operations, the recipient
// for notifications.
type Resource struct {
	OwnerID string
}

// Rule is a positive predicate: it grants when it returns true. Rules only
// ever test for the presence of a role or ownership, never for an absence, so
// taking a role away can only narrow what an identity may do.
type Rule func(id Identity, res Resource) bool

func hasAnyRole(roles ...userdomain.Role) Rule {
	return func(id Identity, _ Resource) bool {
		for _, r := range roles {
			if id.HasRole(r) {
				return true
			}
		}
		return false
	}
}

func isOwner(id Identity, res Resource) bool {
	return id.ID != "" && res.OwnerID != "" && id.ID == res.OwnerID
}

func authenticated(id Identity, _ Resource) bool {
	return id.ID != ""
}

func anyOf(rules ...Rule) Rule {
	return func(id Identity, res Resource) bool {
		for _, rule := range rules {
			if rule(id, res) {
				return true
			}
		}
		return false
	}
}

var (
	adminOnly      = hasAnyRole(userdomain.RoleAdmin)
	trainerOrAdmin = hasAnyRole(userdomain.RoleTrainer, userdomain.RoleAdmin)
	ownerOrAdmin   = anyOf(isOwner, adminOnly)
	ownerOnly      = Rule(isOwner)
)

// DefaultPolicy is the single source of truth for who may do what.
// Operations missing from the table are denied.
var DefaultPolicy = map[Operation]Rule{
	OpUserCreate:      adminOnly,
	OpUserRead:        ownerOrAdmin,
	OpUserUpdate:      ownerOrAdmin,
	OpUserDelete:      ownerOrAdmin,
	OpUserList:        adminOnly,
	OpUserAssignRoles: adminOnly,

	OpTrainingCreate: trainerOrAdmin,
	OpTrainingRead:   authenticated,
	OpTrainingUpdate: trainerOrAdmin,
	OpTrainingDelete: adminOnly,

	OpAvailabilityCreate: trainerOrAdmin,
	OpAvailabilityRead:   authenticated,
	OpAvailabilityUpdate: trainerOrAdmin,
	OpAvailabilityDelete: adminOnly,

	OpNotificationCreate:        ownerOrAdmin,
	OpNotificationRead:          ownerOnly,
	OpNotificationUpdate:        ownerOnly,
	OpNotificationDelete:        ownerOnly,
	OpNotificationList:          authenticated,
	OpNotificationSendToTrainer: hasAnyRole(userdomain.RoleUser),
	OpNotificationSendToUser:    trainerOrAdmin,
}
