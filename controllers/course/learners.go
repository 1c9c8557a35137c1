package controllers

import (
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

// EnrollLearner places a single learner into a cohort. The cohort must belong
// to the course in the URL, and a live enrollment for the pair must not exist.
func EnrollLearner(c *fiber.Ctx) error {
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

	reqData, ok := c.Locals("validatedEnroll").(*courseValidator.EnrollLearnerRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var course models.Course
	var cohort models.Cohort
	var learner models.User

	g := new(errgroup.Group)
	g.Go(func() error {
		if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
			return errCourseNotFound
		}
		return nil
	})
	g.Go(func() error {
		if err := db.Where("id = ? AND is_deleted = ?", reqData.CohortID, false).First(&cohort).Error; err != nil {
			return errCohortNotFound
		}
		return nil
	})
	g.Go(func() error {
		if err := db.Where("id = ? AND is_deleted = ?", reqData.LearnerID, false).First(&learner).Error; err != nil {
			return errUserNotFound
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		switch err {
		case errCourseNotFound:
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		case errCohortNotFound:
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Cohort not found!", nil)
		default:
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
		}
	}

	if cohort.CourseID != course.ID {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Cohort does not belong to this course!", nil)
	}

	if learner.Role != models.RoleLearner {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "User is not a learner!", nil)
	}

	var existing models.Enrollment
	if err := db.Where("cohort_id = ? AND user_id = ? AND is_deleted = ?", cohort.ID, learner.ID, false).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Learner is already enrolled in this cohort!", nil)
	}

	enrollment := models.Enrollment{
		UserID:   learner.ID,
		CohortID: cohort.ID,
		Status:   models.EnrollmentActive,
	}

	if err := db.Create(&enrollment).Error; err != nil {
		log.Printf("Error saving enrollment: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll learner!", nil)
	}

	go utils.SendEnrollmentEmail(learner.Email, learner.Name, course.Title, cohort.Name, cohort.StartDate)
	go utils.SendEnrollmentSMS(learner.Mobile, course.Title, cohort.Name)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Learner enrolled successfully.", enrollment)
}

// BulkEnrollLearners reconciles a requested learner id set against a cohort
// roster. Validation covers the whole batch up front and any invalid id
// rejects the request before a single row is written. Learners already
// enrolled are skipped, so replaying the same request is harmless; the insert
// carries a do-nothing conflict clause so a racing duplicate lands in the
// skipped count.
func BulkEnrollLearners(c *fiber.Ctx) error {
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

	reqData, ok := c.Locals("validatedBulkEnroll").(*courseValidator.BulkEnrollLearnersRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	requested := dedupeIDs(reqData.LearnerIDs)

	db := database.Database.Db

	var cohort models.Cohort
	if err := db.Where("id = ? AND course_id = ? AND is_deleted = ?", reqData.CohortID, courseID, false).First(&cohort).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Cohort not found!", nil)
	}

	tx := db.Begin()

	var learners []models.User
	if err := tx.Select("id").
		Where("id IN ? AND role = ? AND is_deleted = ?", requested, models.RoleLearner, false).
		Find(&learners).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to validate learners!", nil)
	}

	validIDs := make(map[uint]bool, len(learners))
	for _, learner := range learners {
		validIDs[learner.ID] = true
	}

	var invalidIDs []uint
	for _, id := range requested {
		if !validIDs[id] {
			invalidIDs = append(invalidIDs, id)
		}
	}
	if len(invalidIDs) > 0 {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Some IDs are not valid learners!", fiber.Map{
			"invalid_ids": invalidIDs,
		})
	}

	var existing []models.Enrollment
	if err := tx.Select("user_id").
		Where("cohort_id = ? AND user_id IN ? AND is_deleted = ?", cohort.ID, requested, false).
		Find(&existing).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to check existing enrollments!", nil)
	}

	alreadyEnrolled := make(map[uint]bool, len(existing))
	for _, enrollment := range existing {
		alreadyEnrolled[enrollment.UserID] = true
	}

	var toInsert []models.Enrollment
	for _, id := range requested {
		if !alreadyEnrolled[id] {
			toInsert = append(toInsert, models.Enrollment{
				UserID:   id,
				CohortID: cohort.ID,
				Status:   models.EnrollmentActive,
			})
		}
	}

	var created int64
	if len(toInsert) > 0 {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&toInsert)
		if result.Error != nil {
			tx.Rollback()
			log.Printf("Error bulk-enrolling learners: %v", result.Error)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll learners!", nil)
		}
		created = result.RowsAffected
	}

	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Learners enrolled successfully.", fiber.Map{
		"enrolled": created,
		"skipped":  int64(len(requested)) - created,
	})
}

// RemoveLearner drops a learner from a cohort. The enrollment is marked
// DROPPED and then soft-deleted, which frees the cohort/learner pair for a
// fresh enrollment later while the dropped row stays on record.
func RemoveLearner(c *fiber.Ctx) error {
	user, err := middleware.ActorUser(c)
	if user == nil {
		return err
	}

	courseID := c.Locals("courseID").(uint)
	cohortID := c.Locals("cohortID").(uint)
	learnerID := c.Locals("learnerID").(uint)

	decision := rbac.CanAct(
		rbac.Actor{ID: user.ID, Role: user.Role},
		rbac.Resource{Kind: "course", ID: courseID},
		rbac.ActionRosterManage,
	)
	if !decision.Allowed {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, decision.Reason, nil)
	}

	db := database.Database.Db

	var cohort models.Cohort
	if err := db.Where("id = ? AND course_id = ? AND is_deleted = ?", cohortID, courseID, false).First(&cohort).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Cohort not found!", nil)
	}

	var enrollment models.Enrollment
	if err := db.Where("cohort_id = ? AND user_id = ? AND is_deleted = ?", cohort.ID, learnerID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Learner is not enrolled in this cohort!", nil)
	}

	tx := db.Begin()

	enrollment.Status = models.EnrollmentDropped
	if err := tx.Save(&enrollment).Error; err != nil {
		tx.Rollback()
		log.Printf("Error dropping enrollment: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to remove learner!", nil)
	}

	enrollment.IsDeleted = true
	if err := tx.Save(&enrollment).Error; err != nil {
		tx.Rollback()
		log.Printf("Error deleting enrollment: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to remove learner!", nil)
	}

	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Learner removed successfully.", nil)
}

// ListLearners returns active enrollments for a course grouped by cohort. An
// optional cohort id narrows the listing to one cohort.
func ListLearners(c *fiber.Ctx) error {
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

	cohortQuery := db.Where("course_id = ? AND is_deleted = ?", course.ID, false)
	if filterID, ok := c.Locals("cohortFilter").(uint); ok {
		cohortQuery = cohortQuery.Where("id = ?", filterID)
	}

	var cohorts []models.Cohort
	if err := cohortQuery.Order("start_date asc").Find(&cohorts).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch cohorts!", nil)
	}

	type cohortRoster struct {
		Cohort   models.Cohort       `json:"cohort"`
		Learners []models.Enrollment `json:"learners"`
	}

	rosters := make([]cohortRoster, 0, len(cohorts))
	for _, cohort := range cohorts {
		var enrollments []models.Enrollment
		if err := db.Where("cohort_id = ? AND status = ? AND is_deleted = ?", cohort.ID, models.EnrollmentActive, false).
			Preload("Learner").
			Find(&enrollments).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
		}
		for i := range enrollments {
			enrollments[i].Learner.Password = ""
		}
		rosters = append(rosters, cohortRoster{Cohort: cohort, Learners: enrollments})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Learners fetched successfully.", fiber.Map{
		"cohorts": rosters,
	})
}
