package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/rbac"
	courseValidator "lms/validators/course"
)

// tutorAssigned reports whether the user currently holds a live tutor
// assignment on the course. The fact is handed to the access matrix, which
// never queries storage itself.
func tutorAssigned(db *gorm.DB, courseID, userID uint) bool {
	var count int64
	db.Model(&models.CourseTutor{}).
		Where("course_id = ? AND tutor_id = ? AND is_deleted = ?", courseID, userID, false).
		Count(&count)
	return count > 0
}

// CreateCourse creates a new course owned by the acting admin.
func CreateCourse(c *fiber.Ctx) error {
	user, err := middleware.ActorUser(c)
	if user == nil {
		return err
	}

	decision := rbac.CanAct(
		rbac.Actor{ID: user.ID, Role: user.Role},
		rbac.Resource{Kind: "course"},
		rbac.ActionCourseCreate,
	)
	if !decision.Allowed {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, decision.Reason, nil)
	}

	reqData, ok := c.Locals("validatedCourse").(*courseValidator.CreateCourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course := models.Course{
		CreatorID:   user.ID,
		Title:       reqData.Title,
		Description: reqData.Description,
		Difficulty:  reqData.Difficulty,
	}

	if err := database.Database.Db.Create(&course).Error; err != nil {
		log.Printf("Error saving course to database: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully.", course)
}

// GetAllCourses lists courses with pagination, title search and difficulty filter.
func GetAllCourses(c *fiber.Ctx) error {
	user, err := middleware.ActorUser(c)
	if user == nil {
		return err
	}

	reqData, ok := c.Locals("validatedCourseList").(*courseValidator.ListRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	offset := (reqData.Page - 1) * reqData.Limit

	db := database.Database.Db.Model(&models.Course{}).Where("is_deleted = ?", false)
	if reqData.Search != "" {
		db = db.Where("title LIKE ?", "%"+reqData.Search+"%")
	}
	if reqData.Difficulty != "" {
		db = db.Where("difficulty = ?", reqData.Difficulty)
	}

	var total int64
	db.Count(&total)

	var courses []models.Course
	if err := db.Offset(offset).Limit(reqData.Limit).Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	response := fiber.Map{
		"courses": courses,
		"pagination": fiber.Map{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully.", response)
}

// GetCourseDetails returns a single course with its creator.
func GetCourseDetails(c *fiber.Ctx) error {
	user, err := middleware.ActorUser(c)
	if user == nil {
		return err
	}

	courseID := c.Locals("courseID").(uint)

	var course models.Course
	if err := database.Database.Db.
		Where("id = ? AND is_deleted = ?", courseID, false).
		Preload("Creator").
		First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	course.Creator.Password = ""

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully.", course)
}

// UpdateCourse patches a course. Admins may update any course; the creator
// keeps update rights by ownership alone, whatever their current role.
func UpdateCourse(c *fiber.Ctx) error {
	user, err := middleware.ActorUser(c)
	if user == nil {
		return err
	}

	courseID := c.Locals("courseID").(uint)

	db := database.Database.Db

	var course models.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	decision := rbac.CanAct(
		rbac.Actor{ID: user.ID, Role: user.Role},
		rbac.Resource{Kind: "course", ID: course.ID, OwnerID: course.CreatorID},
		rbac.ActionCourseUpdate,
	)
	if !decision.Allowed {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, decision.Reason, nil)
	}

	reqData, ok := c.Locals("validatedCourseUpdate").(*courseValidator.UpdateCourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != "" {
		course.Title = reqData.Title
	}
	if reqData.Description != "" {
		course.Description = reqData.Description
	}
	if reqData.Difficulty != "" {
		course.Difficulty = reqData.Difficulty
	}

	if err := db.Save(&course).Error; err != nil {
		log.Printf("Error updating course: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully.", course)
}

// DeleteCourse soft-deletes a course. Same permission rule as update.
func DeleteCourse(c *fiber.Ctx) error {
	user, err := middleware.ActorUser(c)
	if user == nil {
		return err
	}

	courseID := c.Locals("courseID").(uint)

	db := database.Database.Db

	var course models.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	decision := rbac.CanAct(
		rbac.Actor{ID: user.ID, Role: user.Role},
		rbac.Resource{Kind: "course", ID: course.ID, OwnerID: course.CreatorID},
		rbac.ActionCourseDelete,
	)
	if !decision.Allowed {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, decision.Reason, nil)
	}

	course.IsDeleted = true
	if err := db.Save(&course).Error; err != nil {
		log.Printf("Error deleting course: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully.", nil)
}
