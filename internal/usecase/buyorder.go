package usecase

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

const (
	maxBuyOrderLength  = 26
	maxSessionIDLength = 61
	buyOrderSeparator  = "-"
	hashedPrefix       = "H"
	hashedDigestLength = 16
)

// BuyOrder derives the gateway buy order for an order reference at the given instant.
// References too long for the gateway are replaced by a fixed length digest.
func BuyOrder(orderRef string, at time.Time) string {
	suffix := fmt.Sprintf("%08d", at.UnixMilli()%100_000_000)
	natural := orderRef + buyOrderSeparator + suffix
	if len(natural) <= maxBuyOrderLength {
		return natural
	}
	sum := blake2b.Sum256([]byte(orderRef))
	return hashedPrefix + hex.EncodeToString(sum[:])[:hashedDigestLength] + buyOrderSeparator + suffix
}

// ParseBuyOrder recovers the order id from a non hashed buy order.
func ParseBuyOrder(buyOrder string) (int64, bool) {
	idx := strings.LastIndex(buyOrder, buyOrderSeparator)
	if idx <= 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(buyOrder[:idx], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// SessionID derives the gateway session id for a user reference.
func SessionID(userRef string, at time.Time) string {
	session := "S" + userRef + buyOrderSeparator + strconv.FormatInt(at.UnixMilli(), 10)
	if len(session) > maxSessionIDLength {
		session = session[:maxSessionIDLength]
	}
	return session
}
