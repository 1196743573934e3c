package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/aptechmall/ordercore/internal/constants"
)

const orderNoRandomDigits = 6

var orderNoRandomRange = big.NewInt(1_000_000)

// newOrderNoGenerator 订单号 = 前缀 + yyyyMMddHHmmss + 6 位随机数
func newOrderNoGenerator(prefix string) func() (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = constants.DefaultOrderNoPrefix
	}
	return func() (string, error) {
		n, err := rand.Int(rand.Reader, orderNoRandomRange)
		if err != nil {
			return "", fmt.Errorf("read order number entropy: %w", err)
		}
		return fmt.Sprintf("%s%s%0*d", prefix, time.Now().Format("20060102150405"), orderNoRandomDigits, n.Int64()), nil
	}
}
