package services

import (
	"errors"
	"log"

	"github.com/piczelnft/piczel-sub002/database"
	"github.com/piczelnft/piczel-sub002/models"
	"gorm.io/gorm"
)

// MaxSponsorLevels bounds the upward walk through the referral tree. It is also the
// cycle guard: a corrupt chain that loops can never produce more than ten entries.
const MaxSponsorLevels = 10

type SponsorLevel struct {
	Level   int
	Sponsor models.User
}

// ResolveAncestors walks the sponsor chain upward from user, returning at most maxLevels
// ancestors in order (level 1 = direct sponsor). A missing or null sponsor ends the walk
// early; a partial chain is a normal result, not an error. Read-only.
func ResolveAncestors(tx *gorm.DB, user *models.User, maxLevels int) ([]SponsorLevel, error) {
	if tx == nil {
		tx = database.DB
	}
	if maxLevels <= 0 || maxLevels > MaxSponsorLevels {
		maxLevels = MaxSponsorLevels
	}

	chain := make([]SponsorLevel, 0, maxLevels)
	current := user

	for level := 1; level <= maxLevels; level++ {
		if current.SponsorID == nil {
			break
		}

		var sponsor models.User
		err := tx.Where("id = ?", *current.SponsorID).First(&sponsor).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("Sponsor %s referenced by user %s not found, stopping chain at level %d", current.SponsorID, current.ID, level)
				break
			}
			return nil, err
		}

		if sponsor.ID == user.ID {
			log.Printf("🔥 Cyclic sponsor chain detected at user %s", user.ID)
			return chain, ErrDataCorruption
		}

		chain = append(chain, SponsorLevel{Level: level, Sponsor: sponsor})
		current = &sponsor
	}

	return chain, nil
}
