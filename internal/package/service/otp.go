package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const otpDigits = 6

// OTPFunc mints a delivery OTP.
type OTPFunc func() (string, error)

// NewOTP returns a zero-padded six digit code.
func NewOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}
