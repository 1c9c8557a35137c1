// Package rbac holds the access-control matrix for the platform. Every
// mutation endpoint asks CanAct before touching storage. The engine is a pure
// predicate: ownership and tutor-assignment facts are looked up by the caller
// and handed in on the Resource, so decisions are deterministic and testable
// without a database.
package rbac

import (
	"fmt"

	"lms/models"
)

type Action string

const (
	ActionUserCreate  Action = "user:create"
	ActionUserList    Action = "user:list"
	ActionUserRead    Action = "user:read"
	ActionUserUpdate  Action = "user:update"
	ActionUserDelete  Action = "user:delete"
	ActionUserPromote Action = "user:promote"

	ActionCourseCreate Action = "course:create"
	ActionCourseRead   Action = "course:read"
	ActionCourseUpdate Action = "course:update"
	ActionCourseDelete Action = "course:delete"

	ActionContentManage Action = "content:manage"
	ActionRosterManage  Action = "roster:manage"
)

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   uint
	Role string
}

// Resource describes the target of an operation. Only the fields relevant to
// the action need to be set.
type Resource struct {
	Kind          string
	ID            uint
	OwnerID       uint   // course creator, or the id of the user record itself
	TargetRole    string // role of the user record being created or acted on
	TutorAssigned bool   // actor holds a live CourseTutor row for this course
}

type Decision struct {
	Allowed bool
	Reason  string
}

type ruleFunc func(actor Actor, res Resource) (bool, string)

// The rule table. One entry per action; helpers below compose the common
// role checks so each rule reads as a single line of policy.
var rules = map[Action]ruleFunc{
	ActionUserCreate:  canCreateUser,
	ActionUserList:    anyOf(models.RoleSuperAdmin, models.RoleAdmin),
	ActionUserRead:    canTouchUserRecord,
	ActionUserUpdate:  canTouchUserRecord,
	ActionUserDelete:  canTouchUserRecord,
	ActionUserPromote: anyOf(models.RoleSuperAdmin),

	ActionCourseCreate: anyOf(models.RoleSuperAdmin, models.RoleAdmin),
	ActionCourseRead:   anyone,
	ActionCourseUpdate: adminOrOwner,
	ActionCourseDelete: adminOrOwner,

	ActionContentManage: canManageContent,
	ActionRosterManage:  anyOf(models.RoleSuperAdmin, models.RoleAdmin),
}

// CanAct evaluates the matrix for one (actor, resource, action) triple. A
// denial is never silently downgraded; the reason names the action and the
// resource so callers can surface it verbatim.
func CanAct(actor Actor, res Resource, action Action) Decision {
	rule, ok := rules[action]
	if !ok {
		return deny(res, action, "unknown action")
	}
	allowed, why := rule(actor, res)
	if !allowed {
		return deny(res, action, why)
	}
	return Decision{Allowed: true}
}

func deny(res Resource, action Action, why string) Decision {
	return Decision{
		Allowed: false,
		Reason:  fmt.Sprintf("%s denied on %s %d: %s", action, res.Kind, res.ID, why),
	}
}

func anyone(Actor, Resource) (bool, string) {
	return true, ""
}

func anyOf(roles ...string) ruleFunc {
	return func(actor Actor, _ Resource) (bool, string) {
		for _, role := range roles {
			if actor.Role == role {
				return true, ""
			}
		}
		return false, "role " + actor.Role + " is not permitted"
	}
}

// canCreateUser dispatches on the role being created: nobody creates a
// SUPER-ADMIN through the API, only a SUPER-ADMIN creates ADMINs, and
// admin-level actors create tutors and learners.
func canCreateUser(actor Actor, res Resource) (bool, string) {
	switch res.TargetRole {
	case models.RoleSuperAdmin:
		return false, "super admins are created via bootstrap only"
	case models.RoleAdmin:
		if actor.Role != models.RoleSuperAdmin {
			return false, "only a super admin can create admins"
		}
		return true, ""
	case models.RoleTutor, models.RoleLearner:
		if actor.Role != models.RoleSuperAdmin && actor.Role != models.RoleAdmin {
			return false, "role " + actor.Role + " cannot create users"
		}
		return true, ""
	default:
		return false, "unknown target role " + res.TargetRole
	}
}

// canTouchUserRecord: the user themself, or an admin-level actor, except
// that an ADMIN may never target a SUPER-ADMIN record other than their own.
func canTouchUserRecord(actor Actor, res Resource) (bool, string) {
	if actor.ID == res.OwnerID {
		return true, ""
	}
	switch actor.Role {
	case models.RoleSuperAdmin:
		return true, ""
	case models.RoleAdmin:
		if res.TargetRole == models.RoleSuperAdmin {
			return false, "admins cannot act on super admin accounts"
		}
		return true, ""
	}
	return false, "not the account owner"
}

// adminOrOwner: ownership alone is sufficient for update/delete of a course,
// even if the creator no longer holds an admin role.
func adminOrOwner(actor Actor, res Resource) (bool, string) {
	if actor.Role == models.RoleSuperAdmin || actor.Role == models.RoleAdmin {
		return true, ""
	}
	if actor.ID == res.OwnerID {
		return true, ""
	}
	return false, "not the course creator"
}

func canManageContent(actor Actor, res Resource) (bool, string) {
	if actor.Role == models.RoleSuperAdmin || actor.Role == models.RoleAdmin {
		return true, ""
	}
	if actor.Role == models.RoleTutor && res.TutorAssigned {
		return true, ""
	}
	return false, "requires admin rights or a tutor assignment on this course"
}
