package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lms/models"
)

func TestCreateUserMatrix(t *testing.T) {
	superAdmin := Actor{ID: 1, Role: models.RoleSuperAdmin}
	admin := Actor{ID: 2, Role: models.RoleAdmin}
	tutor := Actor{ID: 3, Role: models.RoleTutor}
	learner := Actor{ID: 4, Role: models.RoleLearner}

	cases := []struct {
		name       string
		actor      Actor
		targetRole string
		allowed    bool
	}{
		{"nobody creates super admins", superAdmin, models.RoleSuperAdmin, false},
		{"admin cannot create super admin", admin, models.RoleSuperAdmin, false},
		{"super admin creates admin", superAdmin, models.RoleAdmin, true},
		{"admin cannot create admin", admin, models.RoleAdmin, false},
		{"super admin creates tutor", superAdmin, models.RoleTutor, true},
		{"admin creates tutor", admin, models.RoleTutor, true},
		{"admin creates learner", admin, models.RoleLearner, true},
		{"tutor cannot create learner", tutor, models.RoleLearner, false},
		{"learner cannot create learner", learner, models.RoleLearner, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dec := CanAct(tc.actor, Resource{Kind: "user", TargetRole: tc.targetRole}, ActionUserCreate)
			assert.Equal(t, tc.allowed, dec.Allowed)
			if !tc.allowed {
				assert.NotEmpty(t, dec.Reason)
			}
		})
	}
}

func TestUserRecordAccess(t *testing.T) {
	admin := Actor{ID: 2, Role: models.RoleAdmin}
	superAdmin := Actor{ID: 1, Role: models.RoleSuperAdmin}
	learner := Actor{ID: 4, Role: models.RoleLearner}

	superAdminRecord := Resource{Kind: "user", ID: 1, OwnerID: 1, TargetRole: models.RoleSuperAdmin}
	learnerRecord := Resource{Kind: "user", ID: 4, OwnerID: 4, TargetRole: models.RoleLearner}

	for _, action := range []Action{ActionUserRead, ActionUserUpdate, ActionUserDelete} {
		// Admin may never target a super admin record.
		assert.False(t, CanAct(admin, superAdminRecord, action).Allowed, string(action))

		// Unless the record is their own.
		adminOwnRecord := Resource{Kind: "user", ID: 2, OwnerID: 2, TargetRole: models.RoleAdmin}
		assert.True(t, CanAct(admin, adminOwnRecord, action).Allowed, string(action))

		// Super admin targets anyone.
		assert.True(t, CanAct(superAdmin, learnerRecord, action).Allowed, string(action))

		// A learner touches only their own record.
		assert.True(t, CanAct(learner, learnerRecord, action).Allowed, string(action))
		other := Resource{Kind: "user", ID: 5, OwnerID: 5, TargetRole: models.RoleLearner}
		assert.False(t, CanAct(learner, other, action).Allowed, string(action))
	}
}

func TestPromotionRequiresSuperAdmin(t *testing.T) {
	res := Resource{Kind: "user", ID: 4, OwnerID: 4, TargetRole: models.RoleLearner}

	assert.True(t, CanAct(Actor{ID: 1, Role: models.RoleSuperAdmin}, res, ActionUserPromote).Allowed)
	assert.False(t, CanAct(Actor{ID: 2, Role: models.RoleAdmin}, res, ActionUserPromote).Allowed)
	assert.False(t, CanAct(Actor{ID: 4, Role: models.RoleLearner}, res, ActionUserPromote).Allowed)
}

func TestCourseOwnership(t *testing.T) {
	course := Resource{Kind: "course", ID: 9, OwnerID: 7}

	// Creation needs admin rights; ownership is irrelevant for create.
	assert.True(t, CanAct(Actor{ID: 2, Role: models.RoleAdmin}, course, ActionCourseCreate).Allowed)
	assert.False(t, CanAct(Actor{ID: 7, Role: models.RoleTutor}, course, ActionCourseCreate).Allowed)

	// Ownership alone suffices for update/delete, whatever the current role.
	for _, action := range []Action{ActionCourseUpdate, ActionCourseDelete} {
		assert.True(t, CanAct(Actor{ID: 7, Role: models.RoleLearner}, course, action).Allowed, string(action))
		assert.True(t, CanAct(Actor{ID: 2, Role: models.RoleAdmin}, course, action).Allowed, string(action))
		assert.False(t, CanAct(Actor{ID: 8, Role: models.RoleTutor}, course, action).Allowed, string(action))
	}
}

func TestContentManagement(t *testing.T) {
	assigned := Resource{Kind: "course", ID: 9, TutorAssigned: true}
	unassigned := Resource{Kind: "course", ID: 9}

	assert.True(t, CanAct(Actor{ID: 3, Role: models.RoleTutor}, assigned, ActionContentManage).Allowed)
	assert.False(t, CanAct(Actor{ID: 3, Role: models.RoleTutor}, unassigned, ActionContentManage).Allowed)
	assert.True(t, CanAct(Actor{ID: 2, Role: models.RoleAdmin}, unassigned, ActionContentManage).Allowed)
	assert.False(t, CanAct(Actor{ID: 4, Role: models.RoleLearner}, assigned, ActionContentManage).Allowed)
}

func TestRosterManagement(t *testing.T) {
	course := Resource{Kind: "course", ID: 9, TutorAssigned: true}

	assert.True(t, CanAct(Actor{ID: 1, Role: models.RoleSuperAdmin}, course, ActionRosterManage).Allowed)
	assert.True(t, CanAct(Actor{ID: 2, Role: models.RoleAdmin}, course, ActionRosterManage).Allowed)
	// Assigned tutors manage content, not the roster.
	assert.False(t, CanAct(Actor{ID: 3, Role: models.RoleTutor}, course, ActionRosterManage).Allowed)
}

func TestDenialReasonNamesActionAndResource(t *testing.T) {
	dec := CanAct(Actor{ID: 3, Role: models.RoleTutor}, Resource{Kind: "course", ID: 42}, ActionRosterManage)
	assert.False(t, dec.Allowed)
	assert.Contains(t, dec.Reason, "roster:manage")
	assert.Contains(t, dec.Reason, "42")
}
