package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/piczelnft/piczel-sub002/database"
	"github.com/piczelnft/piczel-sub002/models"
	"github.com/piczelnft/piczel-sub002/services"
	"github.com/shopspring/decimal"
)

func GetAllUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := database.DB.Order("created_at desc").Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch users"})
	}
	return c.JSON(users)
}

// ToggleUserStatus flips activation manually. Reactivating clears the deactivation
// bookkeeping so the reconciler starts from a clean slate.
func ToggleUserStatus(c *fiber.Ctx) error {
	userID := c.Params("userId")

	var user models.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	updates := map[string]interface{}{
		"is_activated": !user.IsActivated,
	}
	if user.IsActivated {
		updates["deactivated_at"] = time.Now()
	} else {
		updates["deactivated_at"] = nil
		updates["deactivation_scheduled_at"] = nil
	}

	if err := database.DB.Model(&user).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user"})
	}

	return c.JSON(fiber.Map{"id": user.ID, "is_activated": !user.IsActivated})
}

func AdminGetWithdrawals(c *fiber.Ctx) error {
	status := c.Query("status")

	query := database.DB.Preload("User")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var withdrawals []models.Withdrawal
	if err := query.Order("requested_at desc").Find(&withdrawals).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch withdrawals"})
	}
	return c.JSON(withdrawals)
}

type ProcessWithdrawalRequest struct {
	Action     string  `json:"action" validate:"required,oneof=approve reject complete"`
	AdminNotes *string `json:"admin_notes"`
}

// ProcessWithdrawal drives the withdrawal state machine:
// pending -> approved -> completed, or pending/approved -> rejected.
// Every transition re-reconciles the owner's wallet, since rejected rows stop counting
// against the holding balance.
func ProcessWithdrawal(c *fiber.Ctx) error {
	withdrawalID := c.Params("withdrawalId")

	var req ProcessWithdrawalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var withdrawal models.Withdrawal
	if err := database.DB.Where("id = ?", withdrawalID).First(&withdrawal).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Withdrawal not found"})
	}

	var fromStatus []string
	var toStatus string
	switch req.Action {
	case "approve":
		fromStatus, toStatus = []string{models.WithdrawalStatusPending}, models.WithdrawalStatusApproved
	case "complete":
		fromStatus, toStatus = []string{models.WithdrawalStatusApproved}, models.WithdrawalStatusCompleted
	case "reject":
		fromStatus, toStatus = []string{models.WithdrawalStatusPending, models.WithdrawalStatusApproved}, models.WithdrawalStatusRejected
	}

	now := time.Now()
	result := database.DB.Model(&models.Withdrawal{}).
		Where("id = ? AND status IN ?", withdrawal.ID, fromStatus).
		Updates(map[string]interface{}{
			"status":       toStatus,
			"admin_notes":  req.AdminNotes,
			"processed_at": now,
		})
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update withdrawal"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Withdrawal is not in a state that allows this action"})
	}

	if _, err := services.ReconcileHoldingWallet(withdrawal.UserID); err != nil {
		log.Printf("Error reconciling wallet after withdrawal %s -> %s: %v", withdrawal.ID, toStatus, err)
	}

	return c.JSON(fiber.Map{"id": withdrawal.ID, "status": toStatus})
}

func AdminGetCommissionSchedules(c *fiber.Ctx) error {
	status := c.Query("status")
	query := database.DB.Model(&models.CommissionSchedule{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var schedules []models.CommissionSchedule
	if err := query.Order("next_payment_date asc").Limit(500).Find(&schedules).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch schedules"})
	}
	return c.JSON(schedules)
}

func AdminCancelCommissionSchedule(c *fiber.Ctx) error {
	schedule, err := services.CancelSchedule(c.Params("scheduleId"))
	if err != nil {
		switch err {
		case services.ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Schedule not found"})
		case services.ErrValidation:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Schedule is not active"})
		case services.ErrConflict:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Schedule was updated concurrently"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to cancel schedule"})
		}
	}
	return c.JSON(schedule)
}

func GetDashboardAnalytics(c *fiber.Ctx) error {
	var totalUsers, activeUsers, pendingDeactivation int64
	database.DB.Model(&models.User{}).Count(&totalUsers)
	database.DB.Model(&models.User{}).Where("is_activated = ?", true).Count(&activeUsers)
	database.DB.Model(&models.User{}).Where("deactivation_scheduled_at IS NOT NULL").Count(&pendingDeactivation)

	var activeSchedules int64
	database.DB.Model(&models.CommissionSchedule{}).Where("status = ?", models.ScheduleStatusActive).Count(&activeSchedules)

	// Outstanding liability: what active schedules still owe sponsors.
	var liability decimal.Decimal
	database.DB.Model(&models.CommissionSchedule{}).
		Where("status = ?", models.ScheduleStatusActive).
		Select("COALESCE(SUM(remaining_amount), 0)").
		Row().Scan(&liability)

	var paidToDate decimal.Decimal
	database.DB.Model(&models.CommissionSchedule{}).
		Select("COALESCE(SUM(total_paid), 0)").
		Row().Scan(&paidToDate)

	var purchaseVolume decimal.Decimal
	database.DB.Model(&models.NftPurchase{}).
		Select("COALESCE(SUM(price), 0)").
		Row().Scan(&purchaseVolume)

	return c.JSON(fiber.Map{
		"total_users":           totalUsers,
		"active_users":          activeUsers,
		"pending_deactivation":  pendingDeactivation,
		"active_schedules":      activeSchedules,
		"outstanding_liability": liability.StringFixed(2),
		"commissions_paid":      paidToDate.StringFixed(2),
		"purchase_volume":       purchaseVolume.StringFixed(2),
	})
}

type UpdateSettingRequest struct {
	Value string `json:"value" validate:"required"`
}

func GetSettings(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		models.SettingPaymentInterval:         services.PaymentInterval().String(),
		models.SettingDeactivationGracePeriod: services.DeactivationGracePeriod().String(),
	})
}

func UpdateSetting(c *fiber.Ctx) error {
	key := c.Params("key")

	var req UpdateSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := services.UpdateSetting(key, req.Value); err != nil {
		if err == services.ErrValidation {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown setting or invalid duration value"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update setting"})
	}

	log.Printf("Setting %s updated to %s", key, req.Value)
	return c.JSON(fiber.Map{"key": key, "value": req.Value})
}
