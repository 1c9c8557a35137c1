package courseValidator

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"lms/middleware"
	"lms/models"
)

type CreateContentRequest struct {
	ParentID      *uint  `json:"parent_id"`
	ContentType   string `json:"content_type"`
	Topic         string `json:"topic"`
	SequenceOrder int    `json:"sequence_order"`
}

type UpdateContentRequest struct {
	Topic         string `json:"topic"`
	ContentType   string `json:"content_type"`
	SequenceOrder *int   `json:"sequence_order"`
	ParentID      *uint  `json:"parent_id"`
	MakeRoot      bool   `json:"make_root"`
}

type MarkAccessedRequest struct {
	CohortID uint `json:"cohort_id"`
}

func isValidContentType(contentType string) bool {
	switch contentType {
	case models.ContentSection, models.ContentLesson, models.ContentAssessment:
		return true
	}
	return false
}

// CreateContent validator middleware
func CreateContent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(CreateContentRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if len(strings.TrimSpace(reqData.Topic)) < 2 {
			errors["topic"] = "Topic must be at least 2 characters long!"
		}

		if !isValidContentType(reqData.ContentType) {
			errors["content_type"] = "Content type must be SECTION, LESSON or ASSESSMENT!"
		}

		if reqData.SequenceOrder < 0 {
			errors["sequence_order"] = "Sequence order cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedContent", reqData)
		return c.Next()
	}
}

// UpdateContent validator middleware
func UpdateContent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "course_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}
		contentID, ok := parseIDParam(c, "content_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Content ID!", nil)
		}

		reqData := new(UpdateContentRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Topic != "" && len(strings.TrimSpace(reqData.Topic)) < 2 {
			errors["topic"] = "Topic must be at least 2 characters long!"
		}

		if reqData.ContentType != "" && !isValidContentType(reqData.ContentType) {
			errors["content_type"] = "Content type must be SECTION, LESSON or ASSESSMENT!"
		}

		if reqData.SequenceOrder != nil && *reqData.SequenceOrder < 0 {
			errors["sequence_order"] = "Sequence order cannot be negative!"
		}

		if reqData.MakeRoot && reqData.ParentID != nil {
			errors["parent_id"] = "Cannot set a parent while making the node a root!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("contentID", contentID)
		c.Locals("validatedContentUpdate", reqData)
		return c.Next()
	}
}

// ContentID validates the course and content path params.
func ContentID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "course_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}
		contentID, ok := parseIDParam(c, "content_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Content ID!", nil)
		}

		c.Locals("courseID", courseID)
		c.Locals("contentID", contentID)
		return c.Next()
	}
}

// ContentTree validates the :id path param plus the optional parent query
// scope for the tree listing.
func ContentTree() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		c.Locals("courseID", courseID)

		if raw := strings.TrimSpace(c.Query("parent")); raw != "" {
			parentID, err := strconv.Atoi(raw)
			if err != nil || parentID <= 0 {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid parent ID!", nil)
			}
			c.Locals("parentID", uint(parentID))
		}

		return c.Next()
	}
}

// MarkAccessed validator middleware
func MarkAccessed() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "course_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}
		contentID, ok := parseIDParam(c, "content_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Content ID!", nil)
		}

		reqData := new(MarkAccessedRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.CohortID == 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"cohort_id": "Cohort ID is required!",
			})
		}

		c.Locals("courseID", courseID)
		c.Locals("contentID", contentID)
		c.Locals("validatedAccessed", reqData)
		return c.Next()
	}
}
