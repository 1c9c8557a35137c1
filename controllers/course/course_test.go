package controllers_test

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms/models"
)

func TestCreateCourseRequiresAdminRights(t *testing.T) {
	app, db := setupTestApp(t)

	admin := createTestUser(t, db, "admin", models.RoleAdmin)
	tutor := createTestUser(t, db, "tutor", models.RoleTutor)
	learner := createTestUser(t, db, "learner", models.RoleLearner)

	body := fiber.Map{
		"title":      "Go Basics",
		"difficulty": models.LevelBeginner,
	}

	resp, envelope := doRequest(t, app, "POST", "/course/", authToken(t, admin), body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	created := envelope["data"].(map[string]interface{})
	assert.Equal(t, float64(admin.ID), created["creator_id"])

	resp, _ = doRequest(t, app, "POST", "/course/", authToken(t, tutor), body)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = doRequest(t, app, "POST", "/course/", authToken(t, learner), body)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestGetAllCoursesSearchAndFilter(t *testing.T) {
	app, db := setupTestApp(t)

	admin := createTestUser(t, db, "admin", models.RoleAdmin)
	learner := createTestUser(t, db, "learner", models.RoleLearner)

	createTestCourse(t, db, admin, "Go Basics")
	createTestCourse(t, db, admin, "Go Advanced")
	createTestCourse(t, db, admin, "Rust Basics")

	require.NoError(t, db.Model(&models.Course{}).
		Where("title = ?", "Go Advanced").
		Update("difficulty", models.LevelAdvanced).Error)

	// Any authenticated user can browse the catalogue.
	resp, envelope := doRequest(t, app, "GET", "/course/list?search=Go", authToken(t, learner), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	courses := envelope["data"].(map[string]interface{})["courses"].([]interface{})
	assert.Len(t, courses, 2)

	resp, envelope = doRequest(t, app, "GET", "/course/list?difficulty=ADVANCED", authToken(t, learner), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	courses = envelope["data"].(map[string]interface{})["courses"].([]interface{})
	require.Len(t, courses, 1)
	assert.Equal(t, "Go Advanced", courses[0].(map[string]interface{})["title"])
}

func TestUpdateCourseOwnerOrAdminOnly(t *testing.T) {
	app, db := setupTestApp(t)

	admin := createTestUser(t, db, "admin", models.RoleAdmin)
	tutor := createTestUser(t, db, "tutor", models.RoleTutor)
	course := createTestCourse(t, db, admin, "Go Basics")

	resp, _ := doRequest(t, app, "PATCH", fmt.Sprintf("/course/%d", course.ID), authToken(t, tutor), fiber.Map{
		"title": "Hijacked",
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = doRequest(t, app, "PATCH", fmt.Sprintf("/course/%d", course.ID), authToken(t, admin), fiber.Map{
		"title":      "Go Fundamentals",
		"difficulty": models.LevelIntermediate,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var updated models.Course
	require.NoError(t, db.First(&updated, course.ID).Error)
	assert.Equal(t, "Go Fundamentals", updated.Title)
	assert.Equal(t, models.LevelIntermediate, updated.Difficulty)
}

func TestDeleteCourseHidesItFromReads(t *testing.T) {
	app, db := setupTestApp(t)

	admin := createTestUser(t, db, "admin", models.RoleAdmin)
	course := createTestCourse(t, db, admin, "Go Basics")

	resp, _ := doRequest(t, app, "DELETE", fmt.Sprintf("/course/%d", course.ID), authToken(t, admin), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = doRequest(t, app, "GET", fmt.Sprintf("/course/%d", course.ID), authToken(t, admin), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// The row survives for audit.
	var deleted models.Course
	require.NoError(t, db.First(&deleted, course.ID).Error)
	assert.True(t, deleted.IsDeleted)
}

func TestCreateCohortValidatesDates(t *testing.T) {
	app, db := setupTestApp(t)

	admin := createTestUser(t, db, "admin", models.RoleAdmin)
	course := createTestCourse(t, db, admin, "Go Basics")

	resp, _ := doRequest(t, app, "POST", fmt.Sprintf("/course/%d/cohort", course.ID), authToken(t, admin), fiber.Map{
		"name":      "Spring",
		"startDate": "2026-03-02T00:00:00Z",
		"endDate":   "2026-01-05T00:00:00Z",
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = doRequest(t, app, "POST", fmt.Sprintf("/course/%d/cohort", course.ID), authToken(t, admin), fiber.Map{
		"name":      "Spring",
		"startDate": "2026-03-02T00:00:00Z",
		"endDate":   "2026-06-26T00:00:00Z",
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}
