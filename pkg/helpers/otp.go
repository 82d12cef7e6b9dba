package helpers

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// OTP helpers

var otpSpace = big.NewInt(1000000)

// KeyEmailVerified is the Redis key caching a user's verified flag
func KeyEmailVerified(uid string) string {
	return "user:verified:" + uid
}

// GenOTPCode generates a secure random 6-digit OTP code as a zero-padded string
func GenOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, otpSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// OTPGenerator issues verification tokens as 6-digit codes.
type OTPGenerator struct{}

func (OTPGenerator) NewToken() (string, error) { return GenOTPCode() }

// UUIDGenerator issues random (v4) user IDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }
