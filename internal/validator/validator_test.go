package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRanges_Valid(t *testing.T) {
	v := New(DefaultConfig())
	errs := v.ValidateRanges(3000, 90, 100, 50, 20)
	assert.Empty(t, errs)
}

func TestValidateRanges_OutOfRange(t *testing.T) {
	v := New(DefaultConfig())
	errs := v.ValidateRanges(-100, 90, 100, 50, 20)
	require.Len(t, errs, 1)
	var rv *RangeViolation
	require.ErrorAs(t, errs[0], &rv)
	assert.Equal(t, FieldRPM, rv.Field)
}

func TestValidateRanges_BoundaryInclusive(t *testing.T) {
	v := New(DefaultConfig())
	assert.Empty(t, v.ValidateRanges(0, -40, 0, 0, 0))
	assert.Empty(t, v.ValidateRanges(8000, 215, 300, 100, 655.35))
}

func TestValidateChecksum(t *testing.T) {
	v := New(DefaultConfig())
	data := []byte{0x41, 0x0C, 0x1A, 0x2B}
	var sum byte
	for _, b := range data {
		sum += b
	}
	assert.NoError(t, v.ValidateChecksum(data, sum))
	err := v.ValidateChecksum(data, sum+1)
	require.Error(t, err)
	var mismatch *ChecksumMismatch
	require.ErrorAs(t, err, &mismatch)
}

func TestValidateComplete_MissingFields(t *testing.T) {
	v := New(DefaultConfig())
	present := FieldPresentRPM | FieldPresentSpeed
	errs := v.ValidateComplete(present)
	require.Len(t, errs, 3) // coolant, load, maf missing
}

func TestValidateComplete_AllPresent(t *testing.T) {
	v := New(DefaultConfig())
	all := FieldPresentRPM | FieldPresentCoolant | FieldPresentSpeed | FieldPresentLoad | FieldPresentMAF
	assert.Empty(t, v.ValidateComplete(all))
}
