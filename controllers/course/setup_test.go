package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseRoutes "lms/routers/courseRoutes"
)

// setupTestApp wires the course routes onto a per-test in-memory database.
// The shared-cache DSN keeps the data alive across the pool's connections for
// the lifetime of the test.
func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	config.LoadConfig()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	database.RunMigrations(db)
	database.Database = database.DbInstance{Db: db}

	app := fiber.New()
	courseRoutes.SetupCourseRoutes(app)

	return app, db
}

// createTestUser inserts a user with the given role and returns it.
func createTestUser(t *testing.T, db *gorm.DB, name, role string) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Name:     name,
		Email:    fmt.Sprintf("%s-%s@example.com", name, t.Name()),
		Password: string(hashed),
		Role:     role,
		Status:   models.StatusActive,
	}
	require.NoError(t, db.Create(user).Error)

	return user
}

// authToken signs a JWT for the user.
func authToken(t *testing.T, user *models.User) string {
	t.Helper()

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	require.NoError(t, err)

	return "Bearer " + token
}

// doRequest sends a JSON request through the app and decodes the envelope.
func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var buf *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewBuffer(payload)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var envelope map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))

	return resp, envelope
}

// createTestCourse inserts a course owned by the given user.
func createTestCourse(t *testing.T, db *gorm.DB, creator *models.User, title string) *models.Course {
	t.Helper()

	course := &models.Course{
		CreatorID:  creator.ID,
		Title:      title,
		Difficulty: models.LevelBeginner,
	}
	require.NoError(t, db.Create(course).Error)

	return course
}

// createTestCohort inserts a cohort for a course.
func createTestCohort(t *testing.T, db *gorm.DB, course *models.Course, name string) *models.Cohort {
	t.Helper()

	cohort := &models.Cohort{
		CourseID:  course.ID,
		Name:      name,
		StartDate: mustParseDate(t, "2026-01-05"),
		EndDate:   mustParseDate(t, "2026-06-26"),
	}
	require.NoError(t, db.Create(cohort).Error)

	return cohort
}

func mustParseDate(t *testing.T, value string) time.Time {
	t.Helper()

	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)

	return parsed
}

// createTestContent inserts a content node.
func createTestContent(t *testing.T, db *gorm.DB, course *models.Course, parentID *uint, contentType, topic string, order int) *models.CourseContent {
	t.Helper()

	content := &models.CourseContent{
		CourseID:      course.ID,
		ParentID:      parentID,
		ContentType:   contentType,
		Topic:         topic,
		SequenceOrder: order,
	}
	require.NoError(t, db.Create(content).Error)

	return content
}
