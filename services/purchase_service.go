package services

import (
	"log"

	"github.com/piczelnft/piczel-sub002/database"
	"github.com/piczelnft/piczel-sub002/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecordPurchase persists a purchase and its commission schedules in a single
// transaction: either both commit or neither does, so a crash can never strand a
// purchase with no schedules for its sponsor chain.
func RecordPurchase(buyer *models.User, quantity int, unitPrice decimal.Decimal) (*models.NftPurchase, []models.CommissionSchedule, error) {
	if buyer == nil || quantity < 1 || unitPrice.Sign() <= 0 {
		return nil, nil, ErrValidation
	}

	purchase := models.NftPurchase{
		UserID:       buyer.ID,
		Quantity:     quantity,
		Price:        unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		PayoutStatus: models.PayoutStatusUnpaid,
	}

	var schedules []models.CommissionSchedule
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&purchase).Error; err != nil {
			return err
		}
		var txErr error
		schedules, txErr = createSchedulesForPurchaseTx(tx, &purchase)
		return txErr
	})
	if err != nil {
		return nil, nil, err
	}

	log.Printf("Recorded purchase %s with %d commission schedule(s)", purchase.ID, len(schedules))
	return &purchase, schedules, nil
}
