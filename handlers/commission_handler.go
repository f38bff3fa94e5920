package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/piczelnft/piczel-sub002/database"
	"github.com/piczelnft/piczel-sub002/models"
	"github.com/shopspring/decimal"
)

// GetMyCommissions lists the schedules where the caller is the beneficiary.
func GetMyCommissions(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID := claims["user_id"].(string)

	uid, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	status := c.Query("status")

	query := database.DB.Where("sponsor_id = ?", uid)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var schedules []models.CommissionSchedule
	if err := query.Order("created_at desc").Find(&schedules).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch commissions"})
	}

	return c.JSON(schedules)
}

type commissionSummaryRow struct {
	Status          string
	Count           int64
	TotalPaid       decimal.Decimal
	RemainingAmount decimal.Decimal
}

func GetCommissionSummary(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID := claims["user_id"].(string)

	uid, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	var rows []commissionSummaryRow
	err = database.DB.Model(&models.CommissionSchedule{}).
		Select("status, COUNT(*) as count, COALESCE(SUM(total_paid), 0) as total_paid, COALESCE(SUM(remaining_amount), 0) as remaining_amount").
		Where("sponsor_id = ?", uid).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch summary"})
	}

	earned := decimal.Zero
	pending := decimal.Zero
	byStatus := fiber.Map{}
	for _, row := range rows {
		earned = earned.Add(row.TotalPaid)
		if row.Status == models.ScheduleStatusActive {
			pending = pending.Add(row.RemainingAmount)
		}
		byStatus[row.Status] = fiber.Map{
			"count":      row.Count,
			"total_paid": row.TotalPaid.StringFixed(2),
		}
	}

	return c.JSON(fiber.Map{
		"total_earned":    earned.StringFixed(2),
		"pending_payouts": pending.StringFixed(2),
		"by_status":       byStatus,
	})
}
