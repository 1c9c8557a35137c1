package usersController_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	userRoutes "lms/routers/userRoutes"
)

func setupUsersApp(t *testing.T) (*fiber.App, *gorm.DB) {
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
	userRoutes.SetupUserRoutes(app)

	return app, db
}

func seedUser(t *testing.T, db *gorm.DB, name, role string) *models.User {
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

func request(t *testing.T, app *fiber.App, method, path string, actor *models.User, body interface{}) (*http.Response, map[string]interface{}) {
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
	if actor != nil {
		token, err := middleware.GenerateJWT(actor.ID, actor.Name, actor.Role, actor.Email)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var envelope map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))

	return resp, envelope
}

func TestCreateUserRoleMatrix(t *testing.T) {
	app, db := setupUsersApp(t)

	superAdmin := seedUser(t, db, "root", models.RoleSuperAdmin)
	admin := seedUser(t, db, "admin", models.RoleAdmin)
	learner := seedUser(t, db, "learner", models.RoleLearner)

	makeBody := func(email, role string) fiber.Map {
		return fiber.Map{
			"name":     "Created User",
			"email":    email,
			"password": "password123",
			"role":     role,
		}
	}

	// Super admin creates admins.
	resp, _ := request(t, app, "POST", "/users/", superAdmin, makeBody("a1@example.com", models.RoleAdmin))
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// Admins create tutors and learners but not admins.
	resp, _ = request(t, app, "POST", "/users/", admin, makeBody("t1@example.com", models.RoleTutor))
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, _ = request(t, app, "POST", "/users/", admin, makeBody("a2@example.com", models.RoleAdmin))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Nobody creates a super admin through this endpoint.
	resp, _ = request(t, app, "POST", "/users/", superAdmin, makeBody("r2@example.com", models.RoleSuperAdmin))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Learners create nobody.
	resp, _ = request(t, app, "POST", "/users/", learner, makeBody("l2@example.com", models.RoleLearner))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	app, db := setupUsersApp(t)

	admin := seedUser(t, db, "admin", models.RoleAdmin)

	body := fiber.Map{
		"name":     "Created User",
		"email":    "dup@example.com",
		"password": "password123",
		"role":     models.RoleLearner,
	}

	resp, _ := request(t, app, "POST", "/users/", admin, body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, _ = request(t, app, "POST", "/users/", admin, body)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestListUsersHidesSuperAdminsFromAdmins(t *testing.T) {
	app, db := setupUsersApp(t)

	superAdmin := seedUser(t, db, "root", models.RoleSuperAdmin)
	admin := seedUser(t, db, "admin", models.RoleAdmin)
	seedUser(t, db, "learner", models.RoleLearner)

	resp, envelope := request(t, app, "GET", "/users/list", admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	users := envelope["data"].(map[string]interface{})["users"].([]interface{})
	for _, raw := range users {
		assert.NotEqual(t, models.RoleSuperAdmin, raw.(map[string]interface{})["Role"])
	}

	resp, envelope = request(t, app, "GET", "/users/list", superAdmin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	users = envelope["data"].(map[string]interface{})["users"].([]interface{})
	assert.Len(t, users, 3)
}

func TestAdminCannotTouchSuperAdminRecord(t *testing.T) {
	app, db := setupUsersApp(t)

	superAdmin := seedUser(t, db, "root", models.RoleSuperAdmin)
	admin := seedUser(t, db, "admin", models.RoleAdmin)

	resp, _ := request(t, app, "GET", fmt.Sprintf("/users/%d", superAdmin.ID), admin, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = request(t, app, "PATCH", fmt.Sprintf("/users/%d", superAdmin.ID), admin, fiber.Map{
		"name": "Renamed Root",
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = request(t, app, "DELETE", fmt.Sprintf("/users/%d", superAdmin.ID), admin, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestPromotionReservedForSuperAdmin(t *testing.T) {
	app, db := setupUsersApp(t)

	superAdmin := seedUser(t, db, "root", models.RoleSuperAdmin)
	admin := seedUser(t, db, "admin", models.RoleAdmin)
	tutor := seedUser(t, db, "tutor", models.RoleTutor)

	resp, _ := request(t, app, "PATCH", fmt.Sprintf("/users/%d", tutor.ID), admin, fiber.Map{
		"role": models.RoleSuperAdmin,
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Ordinary role changes are open to admins.
	resp, _ = request(t, app, "PATCH", fmt.Sprintf("/users/%d", tutor.ID), admin, fiber.Map{
		"role": models.RoleLearner,
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = request(t, app, "PATCH", fmt.Sprintf("/users/%d", tutor.ID), superAdmin, fiber.Map{
		"role": models.RoleSuperAdmin,
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestDeleteUserSuspendsAndSoftDeletes(t *testing.T) {
	app, db := setupUsersApp(t)

	admin := seedUser(t, db, "admin", models.RoleAdmin)
	learner := seedUser(t, db, "learner", models.RoleLearner)

	resp, _ := request(t, app, "DELETE", fmt.Sprintf("/users/%d", learner.ID), admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var deleted models.User
	require.NoError(t, db.First(&deleted, learner.ID).Error)
	assert.True(t, deleted.IsDeleted)
	assert.Equal(t, models.StatusSuspended, deleted.Status)

	// Soft-deleted users disappear from reads.
	resp, _ = request(t, app, "GET", fmt.Sprintf("/users/%d", learner.ID), admin, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// And their token is no longer usable.
	resp, _ = request(t, app, "GET", "/users/list", learner, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestUsersSeeOwnRecordOnly(t *testing.T) {
	app, db := setupUsersApp(t)

	first := seedUser(t, db, "first", models.RoleLearner)
	second := seedUser(t, db, "second", models.RoleLearner)

	resp, _ := request(t, app, "GET", fmt.Sprintf("/users/%d", first.ID), first, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = request(t, app, "GET", fmt.Sprintf("/users/%d", second.ID), first, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
