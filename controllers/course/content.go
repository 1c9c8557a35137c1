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

// ContentNode is a content row with its direct children populated. Deeper
// levels are fetched on demand by calling GetContentTree with ?parent=.
type ContentNode struct {
	models.CourseContent
	Children []models.CourseContent `json:"children"`
}

// CreateContent appends a node to the course content forest. A parent, when
// given, must be a live node of the same course.
func CreateContent(c *fiber.Ctx) error {
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
		rbac.Resource{Kind: "course", ID: course.ID, TutorAssigned: tutorAssigned(db, course.ID, user.ID)},
		rbac.ActionContentManage,
	)
	if !decision.Allowed {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, decision.Reason, nil)
	}

	reqData, ok := c.Locals("validatedContent").(*courseValidator.CreateContentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.ParentID != nil {
		var parent models.CourseContent
		if err := db.Where("id = ? AND is_deleted = ?", *reqData.ParentID, false).First(&parent).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Parent content not found!", nil)
		}
		if parent.CourseID != course.ID {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Parent content belongs to a different course!", nil)
		}
	}

	content := models.CourseContent{
		CourseID:      course.ID,
		ParentID:      reqData.ParentID,
		ContentType:   reqData.ContentType,
		Topic:         reqData.Topic,
		SequenceOrder: reqData.SequenceOrder,
	}

	if err := db.Create(&content).Error; err != nil {
		log.Printf("Error saving content to database: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create content!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Content created successfully.", content)
}

// UpdateContent patches a node. Reparenting re-runs the same-course check and
// walks the ancestor chain so a node can never become its own descendant.
func UpdateContent(c *fiber.Ctx) error {
	user, err := middleware.ActorUser(c)
	if user == nil {
		return err
	}

	courseID := c.Locals("courseID").(uint)
	contentID := c.Locals("contentID").(uint)

	db := database.Database.Db

	var content models.CourseContent
	if err := db.Where("id = ? AND course_id = ? AND is_deleted = ?", contentID, courseID, false).First(&content).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Content not found!", nil)
	}

	decision := rbac.CanAct(
		rbac.Actor{ID: user.ID, Role: user.Role},
		rbac.Resource{Kind: "course", ID: courseID, TutorAssigned: tutorAssigned(db, courseID, user.ID)},
		rbac.ActionContentManage,
	)
	if !decision.Allowed {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, decision.Reason, nil)
	}

	reqData, ok := c.Locals("validatedContentUpdate").(*courseValidator.UpdateContentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.MakeRoot {
		content.ParentID = nil
	} else if reqData.ParentID != nil {
		var parent models.CourseContent
		if err := db.Where("id = ? AND is_deleted = ?", *reqData.ParentID, false).First(&parent).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Parent content not found!", nil)
		}
		if parent.CourseID != content.CourseID {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Parent content belongs to a different course!", nil)
		}
		if parent.ID == content.ID || isDescendant(db, content.ID, parent.ID) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Cannot move content under its own subtree!", nil)
		}
		content.ParentID = reqData.ParentID
	}

	if reqData.Topic != "" {
		content.Topic = reqData.Topic
	}
	if reqData.ContentType != "" {
		content.ContentType = reqData.ContentType
	}
	if reqData.SequenceOrder != nil {
		content.SequenceOrder = *reqData.SequenceOrder
	}

	if err := db.Save(&content).Error; err != nil {
		log.Printf("Error updating content: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update content!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content updated successfully.", content)
}

// isDescendant reports whether candidateID sits inside the subtree rooted at
// nodeID, by walking the parent chain upward from the candidate. The visited
// guard bounds the walk even if stored data already contains a loop.
func isDescendant(db *gorm.DB, nodeID, candidateID uint) bool {
	visited := map[uint]bool{}
	current := candidateID
	for {
		if visited[current] {
			// A pre-existing loop counts as containment; reparenting into it
			// is refused either way.
			return true
		}
		visited[current] = true

		var node models.CourseContent
		if err := db.Select("id", "parent_id").Where("id = ?", current).First(&node).Error; err != nil {
			return false
		}
		if node.ParentID == nil {
			return false
		}
		if *node.ParentID == nodeID {
			return true
		}
		current = *node.ParentID
	}
}

// DeleteContent soft-deletes a node. Its children are re-rooted rather than
// deleted, and every enrollment pointer at the node is nulled so no dangling
// reference survives.
func DeleteContent(c *fiber.Ctx) error {
	user, err := middleware.ActorUser(c)
	if user == nil {
		return err
	}

	courseID := c.Locals("courseID").(uint)
	contentID := c.Locals("contentID").(uint)

	db := database.Database.Db

	var content models.CourseContent
	if err := db.Where("id = ? AND course_id = ? AND is_deleted = ?", contentID, courseID, false).First(&content).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Content not found!", nil)
	}

	decision := rbac.CanAct(
		rbac.Actor{ID: user.ID, Role: user.Role},
		rbac.Resource{Kind: "course", ID: courseID, TutorAssigned: tutorAssigned(db, courseID, user.ID)},
		rbac.ActionContentManage,
	)
	if !decision.Allowed {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, decision.Reason, nil)
	}

	tx := db.Begin()

	content.IsDeleted = true
	if err := tx.Save(&content).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete content!", nil)
	}

	// Children survive as new roots.
	if err := tx.Model(&models.CourseContent{}).
		Where("parent_id = ?", content.ID).
		Update("parent_id", nil).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to re-root child content!", nil)
	}

	// The enrollment progress pointer is a weak reference; null it out.
	if err := tx.Model(&models.Enrollment{}).
		Where("last_accessed_content_id = ?", content.ID).
		Update("last_accessed_content_id", nil).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to clear progress pointers!", nil)
	}

	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content deleted successfully.", nil)
}

// GetContentTree returns the course's root nodes with their direct children,
// ordered by sequence_order with creation order breaking ties. Pass ?parent=
// to scope the call to one subtree level.
func GetContentTree(c *fiber.Ctx) error {
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

	roots := db.Where("course_id = ? AND is_deleted = ?", course.ID, false)
	if parentID, ok := c.Locals("parentID").(uint); ok {
		roots = roots.Where("parent_id = ?", parentID)
	} else {
		roots = roots.Where("parent_id IS NULL")
	}

	var rootNodes []models.CourseContent
	if err := roots.Order("sequence_order asc, id asc").Find(&rootNodes).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch content!", nil)
	}

	rootIDs := make([]uint, 0, len(rootNodes))
	for _, node := range rootNodes {
		rootIDs = append(rootIDs, node.ID)
	}

	childrenByParent := make(map[uint][]models.CourseContent)
	if len(rootIDs) > 0 {
		var children []models.CourseContent
		if err := db.Where("parent_id IN ? AND is_deleted = ?", rootIDs, false).
			Order("sequence_order asc, id asc").
			Find(&children).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch content!", nil)
		}
		for _, child := range children {
			childrenByParent[*child.ParentID] = append(childrenByParent[*child.ParentID], child)
		}
	}

	tree := make([]ContentNode, len(rootNodes))
	for i, node := range rootNodes {
		children := childrenByParent[node.ID]
		if children == nil {
			children = []models.CourseContent{}
		}
		tree[i] = ContentNode{CourseContent: node, Children: children}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content tree fetched successfully.", fiber.Map{
		"content": tree,
	})
}

// MarkContentAccessed moves the learner's own progress pointer on an
// enrollment to the given content node.
func MarkContentAccessed(c *fiber.Ctx) error {
	user, err := middleware.ActorUser(c)
	if user == nil {
		return err
	}

	courseID := c.Locals("courseID").(uint)
	contentID := c.Locals("contentID").(uint)

	reqData, ok := c.Locals("validatedAccessed").(*courseValidator.MarkAccessedRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var content models.CourseContent
	if err := db.Where("id = ? AND course_id = ? AND is_deleted = ?", contentID, courseID, false).First(&content).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Content not found!", nil)
	}

	var cohort models.Cohort
	if err := db.Where("id = ? AND is_deleted = ?", reqData.CohortID, false).First(&cohort).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Cohort not found!", nil)
	}
	if cohort.CourseID != courseID {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Cohort does not belong to this course!", nil)
	}

	var enrollment models.Enrollment
	if err := db.Where("user_id = ? AND cohort_id = ? AND is_deleted = ?", user.ID, cohort.ID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "You are not enrolled in this cohort!", nil)
	}

	if err := db.Model(&enrollment).Update("last_accessed_content_id", content.ID).Error; err != nil {
		log.Printf("Error updating progress pointer: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update progress!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress updated successfully.", nil)
}
