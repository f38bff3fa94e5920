package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/piczelnft/piczel-sub002/database"
	"github.com/piczelnft/piczel-sub002/models"
	"github.com/piczelnft/piczel-sub002/services"
)

// GetHoldingWallet reconciles before answering, so the response always reflects the
// ground-truth computation rather than a possibly stale cache.
func GetHoldingWallet(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID := claims["user_id"].(string)

	uid, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	result, err := services.ReconcileHoldingWallet(uid)
	if err != nil {
		if err == services.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reconcile wallet"})
	}

	var user models.User
	if err := database.DB.Where("id = ?", uid).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(fiber.Map{
		"holding_wallet_balance":    result.Balance.StringFixed(2),
		"commission_wallet_balance": user.CommissionWalletBalance.StringFixed(2),
		"is_activated":              user.IsActivated,
		"deactivation_scheduled_at": user.DeactivationScheduledAt,
	})
}
