package deliveries

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeneratePinStaysInRange(t *testing.T) {
	for i := 0; i < 500; i++ {
		pin, err := GeneratePin()
		require.NoError(t, err)
		require.GreaterOrEqual(t, pin, MinPin)
		require.LessOrEqual(t, pin, MaxPin)
	}
}

func TestPinMatchesNumerically(t *testing.T) {
	stored := 4821
	require.True(t, PinMatches(&stored, "4821"))
	require.True(t, PinMatches(&stored, " 4821 "))
	require.True(t, PinMatches(&stored, "04821"))
	require.True(t, PinMatches(&stored, "4821.0"))
	require.False(t, PinMatches(&stored, "4822"))
	require.False(t, PinMatches(&stored, "abcd"))
	require.False(t, PinMatches(&stored, ""))
	require.False(t, PinMatches(nil, "4821"))
}
