package jobs

import (
	"log"
	"time"

	config "github.com/piczelnft/piczel-sub002/configs"
	"github.com/piczelnft/piczel-sub002/models"
	"github.com/piczelnft/piczel-sub002/services"
)

// SweepDeactivatedUsers finalizes deactivation for users whose grace timer has elapsed.
func SweepDeactivatedUsers() {
	log.Println("Running job: SweepDeactivatedUsers...")

	ttl := config.Duration("JOB_LOCK_TTL", 5*time.Minute)
	owner, ok, err := services.AcquireJobLock(models.JobLockDeactivationSweep, ttl)
	if err != nil {
		log.Printf("🔥 Error acquiring sweep lock: %v", err)
		return
	}
	if !ok {
		log.Println("Deactivation sweep already running elsewhere, skipping.")
		return
	}
	defer func() {
		if err := services.ReleaseJobLock(models.JobLockDeactivationSweep, owner); err != nil {
			log.Printf("Error releasing sweep lock: %v", err)
		}
	}()

	summary, err := services.SweepDeactivations(time.Now())
	if err != nil {
		log.Printf("🔥 Deactivation sweep failed: %v", err)
		return
	}

	if len(summary.Deactivated) == 0 {
		log.Println("No users due for deactivation.")
		return
	}

	log.Printf("Deactivated %d user(s).", len(summary.Deactivated))
}
