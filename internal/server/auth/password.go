package auth

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/carmodpicker/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for new hashes.
const PasswordCost = 12

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// HashPassword returns a salted bcrypt hash of password. Each call uses a
// fresh salt, so hashing the same password twice gives different hashes.
// Passwords longer than MaxPasswordBytes are a common.ErrorValidation.
func HashPassword(password string) (string, error) {
	return hashPasswordCost(password, PasswordCost)
}

func hashPasswordCost(password string, cost int) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", common.WithDetail(common.ErrorValidation,
			fmt.Sprintf("Password must be at most %d bytes", MaxPasswordBytes))
	}
	if err != nil {
		return "", fmt.Errorf("%w: hash password: %v", common.ErrorInternal, err)
	}
	return string(h), nil
}

// VerifyPassword reports whether password matches hash. A malformed hash
// never matches.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
