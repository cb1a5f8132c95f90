package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/agrisync/agrisync/application/port/outbound"
)

type bcryptHasher struct {
	cost int
}

func NewBcryptHasher() outbound.PasswordHasher {
	return &bcryptHasher{cost: bcrypt.DefaultCost}
}

func (h *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

func (h *bcryptHasher) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
