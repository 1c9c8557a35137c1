package utils

import (
	"log"

	"github.com/jinzhu/now"
	"github.com/robfig/cron/v3"

	"lms/database"
	"lms/models"
)

// InitializeCohortScheduler sets up the daily cohort completion job.
func InitializeCohortScheduler() {
	log.Println("[COHORT-SCHEDULER] Initializing cohort scheduler...")

	c := cron.New()

	// Run daily shortly after midnight to close out finished cohorts
	c.AddFunc("15 0 * * *", func() {
		log.Println("[COHORT-SCHEDULER] Running daily cohort completion check...")
		CompleteFinishedCohorts()
	})

	c.Start()
	log.Println("[COHORT-SCHEDULER] Cohort scheduler started - runs daily at 00:15")
}

// CompleteFinishedCohorts transitions ACTIVE enrollments to COMPLETED for
// every cohort whose end date has passed. Dropped enrollments are untouched.
func CompleteFinishedCohorts() {
	db := database.Database.Db
	cutoff := now.BeginningOfDay()

	var finished []models.Cohort
	if err := db.
		Where("end_date < ? AND is_deleted = ?", cutoff, false).
		Find(&finished).Error; err != nil {
		log.Printf("[COHORT-SCHEDULER] Error fetching finished cohorts: %v", err)
		return
	}

	if len(finished) == 0 {
		return
	}

	cohortIDs := make([]uint, 0, len(finished))
	for _, cohort := range finished {
		cohortIDs = append(cohortIDs, cohort.ID)
	}

	result := db.Model(&models.Enrollment{}).
		Where("cohort_id IN ? AND status = ? AND is_deleted = ?", cohortIDs, models.EnrollmentActive, false).
		Update("status", models.EnrollmentCompleted)

	if result.Error != nil {
		log.Printf("[COHORT-SCHEDULER] Error completing enrollments: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		log.Printf("[COHORT-SCHEDULER] Marked %d enrollments as completed across %d cohorts", result.RowsAffected, len(finished))
	}
}
