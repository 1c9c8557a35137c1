package controllers_test

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms/models"
)

func TestAssignTutorRejectsNonTutor(t *testing.T) {
	app, db := setupTestApp(t)

	admin := createTestUser(t, db, "admin", models.RoleAdmin)
	learner := createTestUser(t, db, "learner", models.RoleLearner)
	course := createTestCourse(t, db, admin, "Go Basics")

	resp, envelope := doRequest(t, app, "POST", fmt.Sprintf("/course/%d/tutor", course.ID), authToken(t, admin), fiber.Map{
		"tutor_id": learner.ID,
	})

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "User is not a tutor!", envelope["message"])
}

func TestAssignTutorDuplicateConflict(t *testing.T) {
	app, db := setupTestApp(t)

	admin := createTestUser(t, db, "admin", models.RoleAdmin)
	tutor := createTestUser(t, db, "tutor", models.RoleTutor)
	course := createTestCourse(t, db, admin, "Go Basics")

	body := fiber.Map{"tutor_id": tutor.ID}

	resp, _ := doRequest(t, app, "POST", fmt.Sprintf("/course/%d/tutor", course.ID), authToken(t, admin), body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, _ = doRequest(t, app, "POST", fmt.Sprintf("/course/%d/tutor", course.ID), authToken(t, admin), body)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestAssignTutorDeniedForTutors(t *testing.T) {
	app, db := setupTestApp(t)

	admin := createTestUser(t, db, "admin", models.RoleAdmin)
	tutor := createTestUser(t, db, "tutor", models.RoleTutor)
	other := createTestUser(t, db, "other", models.RoleTutor)
	course := createTestCourse(t, db, admin, "Go Basics")

	resp, _ := doRequest(t, app, "POST", fmt.Sprintf("/course/%d/tutor", course.ID), authToken(t, tutor), fiber.Map{
		"tutor_id": other.ID,
	})

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestBulkAssignTutorsIsIdempotent(t *testing.T) {
	app, db := setupTestApp(t)

	admin := createTestUser(t, db, "admin", models.RoleAdmin)
	course := createTestCourse(t, db, admin, "Go Basics")

	tutorIDs := make([]uint, 0, 3)
	for i := 0; i < 3; i++ {
		tutor := createTestUser(t, db, fmt.Sprintf("tutor%d", i), models.RoleTutor)
		tutorIDs = append(tutorIDs, tutor.ID)
	}

	body := fiber.Map{"tutor_ids": tutorIDs}

	resp, envelope := doRequest(t, app, "POST", fmt.Sprintf("/course/%d/tutor/bulk", course.ID), authToken(t, admin), body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["assigned"])
	assert.Equal(t, float64(0), data["skipped"])

	// Replaying the exact same request skips everything.
	resp, envelope = doRequest(t, app, "POST", fmt.Sprintf("/course/%d/tutor/bulk", course.ID), authToken(t, admin), body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data = envelope["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["assigned"])
	assert.Equal(t, float64(3), data["skipped"])

	var count int64
	require.NoError(t, db.Model(&models.CourseTutor{}).
		Where("course_id = ? AND is_deleted = ?", course.ID, false).
		Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestBulkAssignTutorsRejectsWholeBatch(t *testing.T) {
	app, db := setupTestApp(t)

	admin := createTestUser(t, db, "admin", models.RoleAdmin)
	course := createTestCourse(t, db, admin, "Go Basics")

	tutor := createTestUser(t, db, "tutor", models.RoleTutor)
	learner := createTestUser(t, db, "learner", models.RoleLearner)

	resp, envelope := doRequest(t, app, "POST", fmt.Sprintf("/course/%d/tutor/bulk", course.ID), authToken(t, admin), fiber.Map{
		"tutor_ids": []uint{tutor.ID, learner.ID},
	})

	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	invalid := envelope["data"].(map[string]interface{})["invalid_ids"].([]interface{})
	require.Len(t, invalid, 1)
	assert.Equal(t, float64(learner.ID), invalid[0])

	// One bad id poisons the whole batch; the valid tutor is not assigned.
	var count int64
	require.NoError(t, db.Model(&models.CourseTutor{}).
		Where("course_id = ?", course.ID).
		Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestBulkAssignTutorsDeduplicatesRequest(t *testing.T) {
	app, db := setupTestApp(t)

	admin := createTestUser(t, db, "admin", models.RoleAdmin)
	tutor := createTestUser(t, db, "tutor", models.RoleTutor)
	course := createTestCourse(t, db, admin, "Go Basics")

	resp, envelope := doRequest(t, app, "POST", fmt.Sprintf("/course/%d/tutor/bulk", course.ID), authToken(t, admin), fiber.Map{
		"tutor_ids": []uint{tutor.ID, tutor.ID, tutor.ID},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["assigned"])
	assert.Equal(t, float64(0), data["skipped"])
}

func TestRemoveTutorThenReassign(t *testing.T) {
	app, db := setupTestApp(t)

	admin := createTestUser(t, db, "admin", models.RoleAdmin)
	tutor := createTestUser(t, db, "tutor", models.RoleTutor)
	course := createTestCourse(t, db, admin, "Go Basics")

	require.NoError(t, db.Create(&models.CourseTutor{CourseID: course.ID, TutorID: tutor.ID}).Error)

	resp, _ := doRequest(t, app, "DELETE", fmt.Sprintf("/course/%d/tutor/%d", course.ID, tutor.ID), authToken(t, admin), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Removing twice is a 404, not a silent success.
	resp, _ = doRequest(t, app, "DELETE", fmt.Sprintf("/course/%d/tutor/%d", course.ID, tutor.ID), authToken(t, admin), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// The retired pair no longer blocks a fresh assignment.
	resp, _ = doRequest(t, app, "POST", fmt.Sprintf("/course/%d/tutor", course.ID), authToken(t, admin), fiber.Map{
		"tutor_id": tutor.ID,
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestListTutors(t *testing.T) {
	app, db := setupTestApp(t)

	admin := createTestUser(t, db, "admin", models.RoleAdmin)
	course := createTestCourse(t, db, admin, "Go Basics")

	active := createTestUser(t, db, "active", models.RoleTutor)
	removed := createTestUser(t, db, "removed", models.RoleTutor)

	require.NoError(t, db.Create(&models.CourseTutor{CourseID: course.ID, TutorID: active.ID}).Error)
	require.NoError(t, db.Create(&models.CourseTutor{CourseID: course.ID, TutorID: removed.ID, IsDeleted: true}).Error)

	resp, envelope := doRequest(t, app, "GET", fmt.Sprintf("/course/%d/tutor/list", course.ID), authToken(t, admin), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	tutors := envelope["data"].(map[string]interface{})["tutors"].([]interface{})
	require.Len(t, tutors, 1)
	assert.Equal(t, "active", tutors[0].(map[string]interface{})["Name"])
}
