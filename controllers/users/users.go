package usersController

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/rbac"
	"lms/utils"
	userValidator "lms/validators/users"
)

// CreateUser provisions an account on someone's behalf. Which roles the actor
// may create is decided by the access matrix: SUPER-ADMIN creates admins,
// tutors and learners; ADMIN creates tutors and learners only.
func CreateUser(c *fiber.Ctx) error {
	user, err := middleware.ActorUser(c)
	if user == nil {
		return err
	}

	reqData, ok := c.Locals("validatedCreateUser").(*userValidator.CreateUserRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	decision := rbac.CanAct(
		rbac.Actor{ID: user.ID, Role: user.Role},
		rbac.Resource{Kind: "user", TargetRole: reqData.Role},
		rbac.ActionUserCreate,
	)
	if !decision.Allowed {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, decision.Reason, nil)
	}

	db := database.Database.Db

	if err := db.Where("email = ?", reqData.Email).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	newUser := models.User{
		Name:     reqData.Name,
		Email:    reqData.Email,
		Mobile:   reqData.Mobile,
		Password: string(hashedPassword),
		Role:     reqData.Role,
	}

	if err := db.Create(&newUser).Error; err != nil {
		log.Printf("Error saving user to database: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create user!", nil)
	}

	go utils.SendWelcomeEmail(newUser.Email, newUser.Name)

	newUser.Password = ""

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User created successfully.", newUser)
}

// ListUsers returns a paginated user list. Admins never see SUPER-ADMIN
// accounts; super admins see everyone.
func ListUsers(c *fiber.Ctx) error {
	user, err := middleware.ActorUser(c)
	if user == nil {
		return err
	}

	decision := rbac.CanAct(
		rbac.Actor{ID: user.ID, Role: user.Role},
		rbac.Resource{Kind: "user"},
		rbac.ActionUserList,
	)
	if !decision.Allowed {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, decision.Reason, nil)
	}

	reqData, ok := c.Locals("validatedUserList").(*userValidator.ListRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	offset := (reqData.Page - 1) * reqData.Limit

	db := database.Database.Db.Model(&models.User{}).Where("is_deleted = ?", false)
	if user.Role == models.RoleAdmin {
		db = db.Where("role != ?", models.RoleSuperAdmin)
	}

	var total int64
	db.Count(&total)

	var users []models.User
	if err := db.Offset(offset).Limit(reqData.Limit).Order("created_at desc").Find(&users).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch user list!", nil)
	}

	response := fiber.Map{
		"users": users,
		"pagination": fiber.Map{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User list.", response)
}

// GetUser returns a single user record, subject to the access matrix.
func GetUser(c *fiber.Ctx) error {
	user, err := middleware.ActorUser(c)
	if user == nil {
		return err
	}

	targetID := c.Locals("targetUserID").(uint)

	var target models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", targetID, false).First(&target).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	decision := rbac.CanAct(
		rbac.Actor{ID: user.ID, Role: user.Role},
		rbac.Resource{Kind: "user", ID: target.ID, OwnerID: target.ID, TargetRole: target.Role},
		rbac.ActionUserRead,
	)
	if !decision.Allowed {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, decision.Reason, nil)
	}

	target.Password = ""

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User fetched successfully.", target)
}

// UpdateUser patches a user record. Role changes require admin rights, and
// promotion to SUPER-ADMIN is reserved for super admins.
func UpdateUser(c *fiber.Ctx) error {
	user, err := middleware.ActorUser(c)
	if user == nil {
		return err
	}

	targetID := c.Locals("targetUserID").(uint)

	db := database.Database.Db

	var target models.User
	if err := db.Where("id = ? AND is_deleted = ?", targetID, false).First(&target).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	actor := rbac.Actor{ID: user.ID, Role: user.Role}
	resource := rbac.Resource{Kind: "user", ID: target.ID, OwnerID: target.ID, TargetRole: target.Role}

	decision := rbac.CanAct(actor, resource, rbac.ActionUserUpdate)
	if !decision.Allowed {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, decision.Reason, nil)
	}

	reqData, ok := c.Locals("validatedUpdateUser").(*userValidator.UpdateUserRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Role != "" && reqData.Role != target.Role {
		if reqData.Role == models.RoleSuperAdmin {
			promote := rbac.CanAct(actor, resource, rbac.ActionUserPromote)
			if !promote.Allowed {
				return middleware.JsonResponse(c, fiber.StatusForbidden, false, promote.Reason, nil)
			}
		} else if !user.IsAdmin() {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only admins can change roles!", nil)
		}
		target.Role = reqData.Role
	}

	if reqData.Name != "" {
		target.Name = reqData.Name
	}
	if reqData.Mobile != "" {
		target.Mobile = reqData.Mobile
	}
	if reqData.Bio != "" {
		target.Bio = reqData.Bio
	}
	if reqData.Status != "" {
		target.Status = reqData.Status
	}
	if reqData.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
		if err != nil {
			log.Printf("Error hashing password: %v", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
		}
		target.Password = string(hashedPassword)
	}

	if err := db.Save(&target).Error; err != nil {
		log.Printf("Error updating user: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update user!", nil)
	}

	target.Password = ""

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User updated successfully.", target)
}

// DeleteUser suspends the account and then soft-deletes it, keeping the row
// for audit history.
func DeleteUser(c *fiber.Ctx) error {
	user, err := middleware.ActorUser(c)
	if user == nil {
		return err
	}

	targetID := c.Locals("targetUserID").(uint)

	db := database.Database.Db

	var target models.User
	if err := db.Where("id = ? AND is_deleted = ?", targetID, false).First(&target).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	decision := rbac.CanAct(
		rbac.Actor{ID: user.ID, Role: user.Role},
		rbac.Resource{Kind: "user", ID: target.ID, OwnerID: target.ID, TargetRole: target.Role},
		rbac.ActionUserDelete,
	)
	if !decision.Allowed {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, decision.Reason, nil)
	}

	target.Status = models.StatusSuspended
	target.IsDeleted = true
	if err := db.Save(&target).Error; err != nil {
		log.Printf("Error deleting user: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete user!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User deleted successfully.", nil)
}
