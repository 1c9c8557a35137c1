package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm/clause"

	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/rbac"
	"lms/utils"
	courseValidator "lms/validators/course"
)

var (
	errCourseNotFound = errors.New("course not found")
	errCohortNotFound = errors.New("cohort not found")
	errUserNotFound   = errors.New("user not found")
)

// AssignTutor links a single tutor to a course. The course and the candidate
// are resolved concurrently; the pair must not already exist.
func AssignTutor(c *fiber.Ctx) error {
	user, err := middleware.ActorUser(c)
	if user == nil {
		return err
	}

	courseID := c.Locals("courseID").(uint)

	decision := rbac.CanAct(
		rbac.Actor{ID: user.ID, Role: user.Role},
		rbac.Resource{Kind: "course", ID: courseID},
		rbac.ActionRosterManage,
	)
	if !decision.Allowed {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, decision.Reason, nil)
	}

	reqData, ok := c.Locals("validatedAssignTutor").(*courseValidator.AssignTutorRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var course models.Course
	var tutor models.User

	g := new(errgroup.Group)
	g.Go(func() error {
		if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
			return errCourseNotFound
		}
		return nil
	})
	g.Go(func() error {
		if err := db.Where("id = ? AND is_deleted = ?", reqData.TutorID, false).First(&tutor).Error; err != nil {
			return errUserNotFound
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		switch err {
		case errCourseNotFound:
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		default:
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
		}
	}

	if tutor.Role != models.RoleTutor {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "User is not a tutor!", nil)
	}

	var existing models.CourseTutor
	if err := db.Where("course_id = ? AND tutor_id = ? AND is_deleted = ?", course.ID, tutor.ID, false).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Tutor is already assigned to this course!", nil)
	}

	assignment := models.CourseTutor{
		CourseID: course.ID,
		TutorID:  tutor.ID,
	}

	if err := db.Create(&assignment).Error; err != nil {
		log.Printf("Error saving tutor assignment: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to assign tutor!", nil)
	}

	go utils.SendTutorAssignedEmail(tutor.Email, tutor.Name, course.Title)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Tutor assigned successfully.", assignment)
}

// BulkAssignTutors reconciles a requested tutor id set against the course
// roster. The whole batch is validated first; a single invalid id rejects the
// request with no writes. Already-assigned ids are skipped, making the call
// idempotent, and the check-then-insert runs inside one transaction with a
// do-nothing conflict clause so a concurrent duplicate is counted as skipped
// instead of surfacing a constraint error.
func BulkAssignTutors(c *fiber.Ctx) error {
	user, err := middleware.ActorUser(c)
	if user == nil {
		return err
	}

	courseID := c.Locals("courseID").(uint)

	decision := rbac.CanAct(
		rbac.Actor{ID: user.ID, Role: user.Role},
		rbac.Resource{Kind: "course", ID: courseID},
		rbac.ActionRosterManage,
	)
	if !decision.Allowed {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, decision.Reason, nil)
	}

	reqData, ok := c.Locals("validatedBulkTutors").(*courseValidator.BulkAssignTutorsRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	requested := dedupeIDs(reqData.TutorIDs)

	db := database.Database.Db

	var course models.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	tx := db.Begin()

	// Validate the whole batch in one query before any write.
	var tutors []models.User
	if err := tx.Select("id").
		Where("id IN ? AND role = ? AND is_deleted = ?", requested, models.RoleTutor, false).
		Find(&tutors).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to validate tutors!", nil)
	}

	validIDs := make(map[uint]bool, len(tutors))
	for _, tutor := range tutors {
		validIDs[tutor.ID] = true
	}

	var invalidIDs []uint
	for _, id := range requested {
		if !validIDs[id] {
			invalidIDs = append(invalidIDs, id)
		}
	}
	if len(invalidIDs) > 0 {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Some IDs are not valid tutors!", fiber.Map{
			"invalid_ids": invalidIDs,
		})
	}

	// One query for the existing roster rows.
	var existing []models.CourseTutor
	if err := tx.Select("tutor_id").
		Where("course_id = ? AND tutor_id IN ? AND is_deleted = ?", course.ID, requested, false).
		Find(&existing).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to check existing assignments!", nil)
	}

	alreadyAssigned := make(map[uint]bool, len(existing))
	for _, assignment := range existing {
		alreadyAssigned[assignment.TutorID] = true
	}

	var toInsert []models.CourseTutor
	for _, id := range requested {
		if !alreadyAssigned[id] {
			toInsert = append(toInsert, models.CourseTutor{CourseID: course.ID, TutorID: id})
		}
	}

	var created int64
	if len(toInsert) > 0 {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&toInsert)
		if result.Error != nil {
			tx.Rollback()
			log.Printf("Error bulk-assigning tutors: %v", result.Error)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to assign tutors!", nil)
		}
		created = result.RowsAffected
	}

	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Tutors assigned successfully.", fiber.Map{
		"assigned": created,
		"skipped":  int64(len(requested)) - created,
	})
}

// RemoveTutor soft-deletes a tutor assignment. A second call reports 404
// since the assignment is already gone.
func RemoveTutor(c *fiber.Ctx) error {
	user, err := middleware.ActorUser(c)
	if user == nil {
		return err
	}

	courseID := c.Locals("courseID").(uint)
	tutorID := c.Locals("tutorID").(uint)

	decision := rbac.CanAct(
		rbac.Actor{ID: user.ID, Role: user.Role},
		rbac.Resource{Kind: "course", ID: courseID},
		rbac.ActionRosterManage,
	)
	if !decision.Allowed {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, decision.Reason, nil)
	}

	db := database.Database.Db

	var assignment models.CourseTutor
	if err := db.Where("course_id = ? AND tutor_id = ? AND is_deleted = ?", courseID, tutorID, false).First(&assignment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Tutor is not assigned to this course!", nil)
	}

	assignment.IsDeleted = true
	if err := db.Save(&assignment).Error; err != nil {
		log.Printf("Error removing tutor assignment: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to remove tutor!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Tutor removed successfully.", nil)
}

// ListTutors returns the tutors currently assigned to a course.
func ListTutors(c *fiber.Ctx) error {
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

	var assignments []models.CourseTutor
	if err := db.Where("course_id = ? AND is_deleted = ?", course.ID, false).
		Preload("Tutor").
		Find(&assignments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch tutors!", nil)
	}

	tutors := make([]models.User, 0, len(assignments))
	for _, assignment := range assignments {
		assignment.Tutor.Password = ""
		tutors = append(tutors, assignment.Tutor)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Tutors fetched successfully.", fiber.Map{
		"tutors": tutors,
	})
}

// dedupeIDs drops duplicate ids while preserving request order.
func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
