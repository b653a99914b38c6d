package usecase

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuyOrderNaturalForm(t *testing.T) {
	at := time.UnixMilli(1_712_345_678_901)

	buyOrder := BuyOrder("42", at)

	assert.Equal(t, "42-45678901", buyOrder)
	id, ok := ParseBuyOrder(buyOrder)
	require.True(t, ok)
	assert.Equal(t, int64(42), id)
}

func TestBuyOrderPadsSuffix(t *testing.T) {
	buyOrder := BuyOrder("7", time.UnixMilli(100_000_005))
	assert.Equal(t, "7-00000005", buyOrder)
}

func TestBuyOrderHashesLongReferences(t *testing.T) {
	at := time.UnixMilli(1_712_345_678_901)
	ref := strings.Repeat("a1", 20)

	first := BuyOrder(ref, at)
	second := BuyOrder(ref, at)

	assert.Len(t, first, maxBuyOrderLength)
	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, hashedPrefix))
	assert.True(t, strings.HasSuffix(first, "-45678901"))
	assert.NotEqual(t, first, BuyOrder(strings.Repeat("b2", 20), at))

	_, ok := ParseBuyOrder(first)
	assert.False(t, ok, "hashed buy orders carry no order id")
}

func TestBuyOrderBoundary(t *testing.T) {
	at := time.UnixMilli(1)
	fits := strings.Repeat("9", maxBuyOrderLength-9)
	assert.Equal(t, fits+"-00000001", BuyOrder(fits, at))

	tooLong := fits + "9"
	assert.Len(t, BuyOrder(tooLong, at), maxBuyOrderLength)
	assert.True(t, strings.HasPrefix(BuyOrder(tooLong, at), hashedPrefix))
}

func TestParseBuyOrderRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "-123", "abc-123", "0-123", "12345"} {
		_, ok := ParseBuyOrder(in)
		assert.False(t, ok, in)
	}
	id, ok := ParseBuyOrder("9223372036854775807-1")
	require.True(t, ok)
	assert.Equal(t, int64(9223372036854775807), id)
}

func TestSessionIDBounded(t *testing.T) {
	at := time.UnixMilli(1_712_345_678_901)
	assert.Equal(t, "S15-"+strconv.FormatInt(at.UnixMilli(), 10), SessionID("15", at))

	long := SessionID(strings.Repeat("u", 80), at)
	assert.Len(t, long, maxSessionIDLength)
}
