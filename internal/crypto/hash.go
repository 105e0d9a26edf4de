// Package crypto содержит хеширование токенов для хранения на сервере.
package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// HashToken хеширует токен с использованием SHA256.
// В хранилище попадает только хеш refresh token.
func HashToken(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("token cannot be empty")
	}

	hash := sha256.Sum256([]byte(token))

	return hex.EncodeToString(hash[:]), nil
}

// VerifyToken проверяет, соответствует ли токен сохраненному хешу.
// Сравнение выполняется за постоянное время.
func VerifyToken(token, hashedToken string) error {
	if hashedToken == "" {
		return fmt.Errorf("hashed token cannot be empty")
	}

	computedHash, err := HashToken(token)
	if err != nil {
		return fmt.Errorf("failed to compute token hash: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(computedHash), []byte(hashedToken)) != 1 {
		return fmt.Errorf("token does not match")
	}

	return nil
}
