package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/yukikurage/project-todo-api/internal/constants"
)

// GenerateOTPCode returns a uniformly random code in [OTPMinCode, OTPMaxCode].
func GenerateOTPCode() (int, error) {
	span := big.NewInt(int64(constants.OTPMaxCode - constants.OTPMinCode + 1))
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return 0, fmt.Errorf("failed to generate random code: %w", err)
	}

	return constants.OTPMinCode + int(n.Int64()), nil
}
