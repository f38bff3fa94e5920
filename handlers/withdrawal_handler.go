package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/piczelnft/piczel-sub002/database"
	"github.com/piczelnft/piczel-sub002/models"
	"github.com/piczelnft/piczel-sub002/services"
	"github.com/shopspring/decimal"
)

type WithdrawalRequest struct {
	Amount string `json:"amount" validate:"required"`
}

// RequestWithdrawal validates the amount against the freshly reconciled holding balance.
// A pending withdrawal immediately counts against the wallet, which may arm the
// deactivation timer — that is intended behavior, not a bug.
func RequestWithdrawal(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID := claims["user_id"].(string)

	uid, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	var req WithdrawalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.Sign() <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid amount"})
	}

	result, err := services.ReconcileHoldingWallet(uid)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reconcile wallet"})
	}
	if amount.GreaterThan(result.Balance) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Insufficient holding balance"})
	}

	withdrawal := models.Withdrawal{
		UserID:      uid,
		Amount:      amount,
		Status:      models.WithdrawalStatusPending,
		RequestedAt: time.Now(),
	}
	if err := database.DB.Create(&withdrawal).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create withdrawal"})
	}

	// The new pending row changes the ground truth, so re-reconcile right away.
	if _, err := services.ReconcileHoldingWallet(uid); err != nil {
		log.Printf("Error reconciling wallet after withdrawal request %s: %v", withdrawal.ID, err)
	}

	return c.Status(fiber.StatusCreated).JSON(withdrawal)
}

func GetMyWithdrawals(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID := claims["user_id"].(string)

	var withdrawals []models.Withdrawal
	if err := database.DB.Where("user_id = ?", userID).Order("requested_at desc").Find(&withdrawals).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch withdrawals"})
	}

	return c.JSON(withdrawals)
}

// CancelWithdrawal lets the owner cancel while still pending. Cancelled rows stop
// counting against the holding wallet.
func CancelWithdrawal(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID := claims["user_id"].(string)

	withdrawalID := c.Params("withdrawalId")

	uid, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	result := database.DB.Model(&models.Withdrawal{}).
		Where("id = ? AND user_id = ? AND status = ?", withdrawalID, uid, models.WithdrawalStatusPending).
		Update("status", models.WithdrawalStatusCancelled)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to cancel withdrawal"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No pending withdrawal found"})
	}

	if _, err := services.ReconcileHoldingWallet(uid); err != nil {
		log.Printf("Error reconciling wallet after withdrawal cancel: %v", err)
	}

	return c.JSON(fiber.Map{"status": "cancelled"})
}
