package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/piczelnft/piczel-sub002/database"
	"github.com/piczelnft/piczel-sub002/models"
	"github.com/piczelnft/piczel-sub002/services"
	"github.com/shopspring/decimal"
)

type BuyNftRequest struct {
	Quantity int    `json:"quantity" validate:"required,min=1"`
	Price    string `json:"price" validate:"required"`
}

// BuyNft records a purchase and spins up the commission schedules for the buyer's
// sponsor chain, then reconciles the buyer's holding wallet so the new escrow shows
// up immediately.
func BuyNft(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID := claims["user_id"].(string)

	var req BuyNftRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.Sign() <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid price"})
	}

	var buyer models.User
	if err := database.DB.Where("id = ?", userID).First(&buyer).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	if !buyer.IsActivated {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Account is deactivated"})
	}

	purchase, schedules, err := services.RecordPurchase(&buyer, req.Quantity, price)
	if err != nil {
		log.Printf("🔥 Error recording purchase for user %s: %v", buyer.ID, err)
		if err == services.ErrValidation {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid purchase"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record purchase"})
	}

	if _, err := services.ReconcileHoldingWallet(buyer.ID); err != nil {
		log.Printf("Error reconciling wallet after purchase %s: %v", purchase.ID, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"purchase":          purchase,
		"schedules_created": len(schedules),
	})
}

func GetMyPurchases(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID := claims["user_id"].(string)

	uid, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	var purchases []models.NftPurchase
	if err := database.DB.Where("user_id = ?", uid).Order("created_at desc").Find(&purchases).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch purchases"})
	}

	return c.JSON(purchases)
}
