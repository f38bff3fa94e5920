package jobs

import (
	"log"
	"time"

	config "github.com/piczelnft/piczel-sub002/configs"
	"github.com/piczelnft/piczel-sub002/models"
	"github.com/piczelnft/piczel-sub002/services"
)

// ProcessDailyCommissions is the cron entry point for the disbursement engine. The job
// lock makes overlapping invocations (in-process cron plus an external trigger, or a slow
// previous run) a cheap no-op for the loser.
func ProcessDailyCommissions() {
	log.Println("Running job: ProcessDailyCommissions...")

	ttl := config.Duration("JOB_LOCK_TTL", 5*time.Minute)
	owner, ok, err := services.AcquireJobLock(models.JobLockCommissionDisbursement, ttl)
	if err != nil {
		log.Printf("🔥 Error acquiring disbursement lock: %v", err)
		return
	}
	if !ok {
		log.Println("Disbursement already running elsewhere, skipping.")
		return
	}
	defer func() {
		if err := services.ReleaseJobLock(models.JobLockCommissionDisbursement, owner); err != nil {
			log.Printf("Error releasing disbursement lock: %v", err)
		}
	}()

	summary, err := services.ProcessDueCommissions(time.Now())
	if err != nil {
		log.Printf("🔥 Disbursement run failed: %v", err)
		return
	}

	if len(summary.Processed) == 0 && len(summary.Errors) == 0 {
		log.Println("No commission schedules due.")
		return
	}

	log.Printf("Paid %d commission tick(s) totalling %s.", len(summary.Processed), summary.TotalAmount.StringFixed(2))
}
