package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/piczelnft/piczel-sub002/database"
	"github.com/piczelnft/piczel-sub002/models"
	"github.com/piczelnft/piczel-sub002/services"
)

type sponsorEntry struct {
	Level    int    `json:"level"`
	MemberID string `json:"member_id"`
	FullName string `json:"full_name"`
}

// GetMySponsors returns the caller's ancestor chain, at most ten levels.
func GetMySponsors(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID := claims["user_id"].(string)

	var user models.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	chain, err := services.ResolveAncestors(database.DB, &user, services.MaxSponsorLevels)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to resolve sponsor chain"})
	}

	entries := make([]sponsorEntry, 0, len(chain))
	for _, link := range chain {
		entries = append(entries, sponsorEntry{
			Level:    link.Level,
			MemberID: link.Sponsor.MemberID,
			FullName: link.Sponsor.FullName,
		})
	}

	return c.JSON(entries)
}

// GetMyDownline lists the users directly sponsored by the caller.
func GetMyDownline(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID := claims["user_id"].(string)

	var downline []models.User
	if err := database.DB.Where("sponsor_id = ?", userID).Order("created_at desc").Find(&downline).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch downline"})
	}

	type downlineEntry struct {
		MemberID    string `json:"member_id"`
		FullName    string `json:"full_name"`
		IsActivated bool   `json:"is_activated"`
	}
	entries := make([]downlineEntry, 0, len(downline))
	for _, member := range downline {
		entries = append(entries, downlineEntry{
			MemberID:    member.MemberID,
			FullName:    member.FullName,
			IsActivated: member.IsActivated,
		})
	}

	return c.JSON(entries)
}
