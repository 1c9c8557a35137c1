package courseValidator

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"lms/middleware"
)

type AssignTutorRequest struct {
	TutorID uint `json:"tutor_id"`
}

type BulkAssignTutorsRequest struct {
	TutorIDs []uint `json:"tutor_ids"`
}

type EnrollLearnerRequest struct {
	LearnerID uint `json:"learner_id"`
	CohortID  uint `json:"cohort_id"`
}

type BulkEnrollLearnersRequest struct {
	LearnerIDs []uint `json:"learner_ids"`
	CohortID   uint   `json:"cohort_id"`
}

// Bulk requests are capped so a single call cannot stall the validation
// queries behind it.
const maxBulkIDs = 500

// AssignTutor validator middleware
func AssignTutor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(AssignTutorRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.TutorID == 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"tutor_id": "Tutor ID is required!",
			})
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedAssignTutor", reqData)
		return c.Next()
	}
}

// BulkAssignTutors validator middleware
func BulkAssignTutors() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(BulkAssignTutorsRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if len(reqData.TutorIDs) == 0 {
			errors["tutor_ids"] = "At least one tutor ID is required!"
		} else if len(reqData.TutorIDs) > maxBulkIDs {
			errors["tutor_ids"] = "Too many tutor IDs in one request!"
		}
		for _, id := range reqData.TutorIDs {
			if id == 0 {
				errors["tutor_ids"] = "Tutor IDs must be positive!"
				break
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedBulkTutors", reqData)
		return c.Next()
	}
}

// TutorID validates the course and tutor path params.
func TutorID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "course_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}
		tutorID, ok := parseIDParam(c, "tutor_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Tutor ID!", nil)
		}

		c.Locals("courseID", courseID)
		c.Locals("tutorID", tutorID)
		return c.Next()
	}
}

// EnrollLearner validator middleware
func EnrollLearner() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(EnrollLearnerRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.LearnerID == 0 {
			errors["learner_id"] = "Learner ID is required!"
		}
		if reqData.CohortID == 0 {
			errors["cohort_id"] = "Cohort ID is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedEnroll", reqData)
		return c.Next()
	}
}

// BulkEnrollLearners validator middleware
func BulkEnrollLearners() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(BulkEnrollLearnersRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.CohortID == 0 {
			errors["cohort_id"] = "Cohort ID is required!"
		}

		if len(reqData.LearnerIDs) == 0 {
			errors["learner_ids"] = "At least one learner ID is required!"
		} else if len(reqData.LearnerIDs) > maxBulkIDs {
			errors["learner_ids"] = "Too many learner IDs in one request!"
		}
		for _, id := range reqData.LearnerIDs {
			if id == 0 {
				errors["learner_ids"] = "Learner IDs must be positive!"
				break
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedBulkEnroll", reqData)
		return c.Next()
	}
}

// LearnerID validates the course, cohort and learner path params for removal.
func LearnerID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "course_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}
		cohortID, ok := parseIDParam(c, "cohort_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Cohort ID!", nil)
		}
		learnerID, ok := parseIDParam(c, "learner_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Learner ID!", nil)
		}

		c.Locals("courseID", courseID)
		c.Locals("cohortID", cohortID)
		c.Locals("learnerID", learnerID)
		return c.Next()
	}
}

// LearnerList validates the :id path param plus an optional cohort filter.
func LearnerList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		c.Locals("courseID", courseID)

		if raw := strings.TrimSpace(c.Query("cohort")); raw != "" {
			cohortID, err := strconv.Atoi(raw)
			if err != nil || cohortID <= 0 {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid cohort ID!", nil)
			}
			c.Locals("cohortFilter", uint(cohortID))
		}

		return c.Next()
	}
}
