package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/piczelnft/piczel-sub002/configs"
	"github.com/piczelnft/piczel-sub002/models"
	"github.com/piczelnft/piczel-sub002/services"
)

// The two trigger endpoints expose the periodic engine runs to an external scheduler.
// Both are idempotent: re-invocation at any cadence either processes what is due or is a
// cheap no-op (nothing due, or another run holds the lock).

func TriggerCommissionDisbursement(c *fiber.Ctx) error {
	ttl := config.Duration("JOB_LOCK_TTL", 5*time.Minute)
	owner, ok, err := services.AcquireJobLock(models.JobLockCommissionDisbursement, ttl)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to acquire lock"})
	}
	if !ok {
		return c.JSON(fiber.Map{"status": "skipped", "reason": "disbursement already running"})
	}
	defer func() {
		if err := services.ReleaseJobLock(models.JobLockCommissionDisbursement, owner); err != nil {
			log.Printf("Error releasing disbursement lock: %v", err)
		}
	}()

	summary, err := services.ProcessDueCommissions(time.Now())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Disbursement run failed"})
	}

	return c.JSON(fiber.Map{
		"status":       "ok",
		"processed":    len(summary.Processed),
		"total_amount": summary.TotalAmount.StringFixed(2),
		"skipped":      summary.Skipped,
		"errors":       summary.Errors,
	})
}

func TriggerDeactivationSweep(c *fiber.Ctx) error {
	ttl := config.Duration("JOB_LOCK_TTL", 5*time.Minute)
	owner, ok, err := services.AcquireJobLock(models.JobLockDeactivationSweep, ttl)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to acquire lock"})
	}
	if !ok {
		return c.JSON(fiber.Map{"status": "skipped", "reason": "sweep already running"})
	}
	defer func() {
		if err := services.ReleaseJobLock(models.JobLockDeactivationSweep, owner); err != nil {
			log.Printf("Error releasing sweep lock: %v", err)
		}
	}()

	summary, err := services.SweepDeactivations(time.Now())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Sweep run failed"})
	}

	return c.JSON(fiber.Map{
		"status":      "ok",
		"deactivated": len(summary.Deactivated),
		"recovered":   len(summary.Recovered),
		"errors":      summary.Errors,
	})
}
