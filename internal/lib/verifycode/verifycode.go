// Package verifycode генерирует одноразовые коды подтверждения e-mail.
package verifycode

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Length задаёт число цифр в коде.
const Length = 6

var upper = big.NewInt(1_000_000)

// Generate возвращает равномерно распределённый код из диапазона 000000–999999.
func Generate() (string, error) {
	const op = "verifycode.Generate"
	n, err := rand.Int(rand.Reader, upper)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Sprintf("%0*d", Length, n.Int64()), nil
}
