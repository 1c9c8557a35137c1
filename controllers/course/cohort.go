package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/rbac"
	courseValidator "lms/validators/course"
)

// CreateCohort adds a scheduled offering under a course.
func CreateCohort(c *fiber.Ctx) error {
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

	reqData, ok := c.Locals("validatedCohort").(*courseValidator.CreateCohortRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	cohort := models.Cohort{
		CourseID:  course.ID,
		Name:      reqData.Name,
		StartDate: reqData.StartDate,
		EndDate:   reqData.EndDate,
	}

	if err := db.Create(&cohort).Error; err != nil {
		log.Printf("Error saving cohort to database: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create cohort!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Cohort created successfully.", cohort)
}

// ListCohorts returns all cohorts of a course.
func ListCohorts(c *fiber.Ctx) error {
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

	var cohorts []models.Cohort
	if err := db.Where("course_id = ? AND is_deleted = ?", course.ID, false).
		Order("start_date asc").
		Find(&cohorts).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch cohorts!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Cohorts fetched successfully.", fiber.Map{
		"cohorts": cohorts,
	})
}
