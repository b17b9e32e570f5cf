package auth

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

const (
	otpMin = 100000
	otpMax = 999999
)

type OTPGenerator interface {
	Generate() (string, error)
}

type randomOTPGenerator struct{}

func NewOTPGenerator() OTPGenerator {
	return randomOTPGenerator{}
}

// Generate returns a code drawn uniformly from [100000, 999999].
func (randomOTPGenerator) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}
