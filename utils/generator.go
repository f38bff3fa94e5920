package utils

import (
	"math/rand"
	"time"

	"github.com/piczelnft/piczel-sub002/models"
	"gorm.io/gorm"
)

const memberIDLength = 8
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func GenerateUniqueMemberID(tx *gorm.DB) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		b := make([]byte, memberIDLength)
		for i := range b {
			b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
		}
		code := string(b)

		var user models.User
		err := tx.Where("member_id = ?", code).First(&user).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return code, nil
			}
			return "", err
		}
	}
}
