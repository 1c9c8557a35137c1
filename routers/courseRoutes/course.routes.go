package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes wires the course catalogue, content forest and roster
// endpoints. Every route runs behind the JWT middleware.
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Catalogue
	courseGroup.Post("/", middleware.JWTMiddleware, validators.CreateCourse(), controllers.CreateCourse)
	courseGroup.Get("/list", middleware.JWTMiddleware, validators.CourseList(), controllers.GetAllCourses)
	courseGroup.Get("/:id", middleware.JWTMiddleware, validators.CourseID(), controllers.GetCourseDetails)
	courseGroup.Patch("/:id", middleware.JWTMiddleware, validators.CourseID(), validators.UpdateCourse(), controllers.UpdateCourse)
	courseGroup.Delete("/:id", middleware.JWTMiddleware, validators.CourseID(), controllers.DeleteCourse)

	// Cohorts
	courseGroup.Post("/:id/cohort", middleware.JWTMiddleware, validators.CourseID(), validators.CreateCohort(), controllers.CreateCohort)
	courseGroup.Get("/:id/cohort/list", middleware.JWTMiddleware, validators.CourseID(), controllers.ListCohorts)

	// Content forest
	courseGroup.Post("/:id/content", middleware.JWTMiddleware, validators.CreateContent(), controllers.CreateContent)
	courseGroup.Get("/:id/content/tree", middleware.JWTMiddleware, validators.ContentTree(), controllers.GetContentTree)
	courseGroup.Patch("/:course_id/content/:content_id", middleware.JWTMiddleware, validators.UpdateContent(), controllers.UpdateContent)
	courseGroup.Delete("/:course_id/content/:content_id", middleware.JWTMiddleware, validators.ContentID(), controllers.DeleteContent)
	courseGroup.Post("/:course_id/content/:content_id/accessed", middleware.JWTMiddleware, validators.MarkAccessed(), controllers.MarkContentAccessed)

	// Tutor roster
	courseGroup.Post("/:id/tutor", middleware.JWTMiddleware, validators.AssignTutor(), controllers.AssignTutor)
	courseGroup.Post("/:id/tutor/bulk", middleware.JWTMiddleware, validators.BulkAssignTutors(), controllers.BulkAssignTutors)
	courseGroup.Get("/:id/tutor/list", middleware.JWTMiddleware, validators.CourseID(), controllers.ListTutors)
	courseGroup.Delete("/:course_id/tutor/:tutor_id", middleware.JWTMiddleware, validators.TutorID(), controllers.RemoveTutor)

	// Learner roster
	courseGroup.Post("/:id/learner", middleware.JWTMiddleware, validators.EnrollLearner(), controllers.EnrollLearner)
	courseGroup.Post("/:id/learner/bulk", middleware.JWTMiddleware, validators.BulkEnrollLearners(), controllers.BulkEnrollLearners)
	courseGroup.Get("/:id/learner/list", middleware.JWTMiddleware, validators.LearnerList(), controllers.ListLearners)
	courseGroup.Delete("/:course_id/cohort/:cohort_id/learner/:learner_id", middleware.JWTMiddleware, validators.LearnerID(), controllers.RemoveLearner)
}
