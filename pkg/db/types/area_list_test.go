package dbtypes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAreaListTrimsAndDropsEmpty(t *testing.T) {
	areas := NewAreaList([]string{" Dhaka University ", "", "   ", "Mirpur"})
	require.Equal(t, AreaList{"Dhaka University", "Mirpur"}, areas)
}

func TestAreaListRoundTripsArrayLiteral(t *testing.T) {
	areas := AreaList{"Dhaka University", "Mirpur 10"}
	value, err := areas.Value()
	require.NoError(t, err)

	var scanned AreaList
	require.NoError(t, scanned.Scan(value))
	require.Equal(t, areas, scanned)

	var empty AreaList
	require.NoError(t, empty.Scan(nil))
	require.NotNil(t, empty)
	require.Len(t, empty, 0)
}

func TestAreaListIndexAndPatterns(t *testing.T) {
	areas := AreaList{"Dhaka University", "Mirpur"}
	require.Equal(t, "|dhaka university|mirpur|", areas.Index())
	require.Equal(t, "", AreaList{}.Index())
	require.Equal(t, "%|mirpur|%", ExactAreaPattern(" MIRPUR "))
	require.Equal(t, "%dhaka%", ContainsPattern("Dhaka"))
	require.Equal(t, `%50\%\_off%`, ContainsPattern("50%_off"))
}
