package hashchain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tectonic-sim/platetruth/format"
)

func TestComputeIsDeterministic(t *testing.T) {
	a := Compute(format.CurrentSchemaVersion, 1, Zero, []byte("event"))
	b := Compute(format.CurrentSchemaVersion, 1, Zero, []byte("event"))
	require.Equal(t, a, b)
}

func TestComputeDiffersOnInputChange(t *testing.T) {
	a := Compute(format.CurrentSchemaVersion, 1, Zero, []byte("event"))
	b := Compute(format.CurrentSchemaVersion, 2, Zero, []byte("event"))
	require.NotEqual(t, a, b)
}

func TestValidatorAcceptsLinkedChain(t *testing.T) {
	genesisHash := Compute(format.CurrentSchemaVersion, 0, Zero, []byte("e0"))
	nextHash := Compute(format.CurrentSchemaVersion, 1, genesisHash, []byte("e1"))

	v := NewValidator(Zero)
	require.NoError(t, v.Check(0, Zero, genesisHash, genesisHash))
	require.NoError(t, v.Check(1, genesisHash, nextHash, nextHash))
}

func TestValidatorRejectsBrokenPreviousHash(t *testing.T) {
	genesisHash := Compute(format.CurrentSchemaVersion, 0, Zero, []byte("e0"))
	var wrongPrev [32]byte
	wrongPrev[0] = 0xff

	v := NewValidator(Zero)
	require.NoError(t, v.Check(0, Zero, genesisHash, genesisHash))
	err := v.Check(1, wrongPrev, genesisHash, genesisHash)
	require.Error(t, err)
}

func TestValidatorRejectsHashMismatch(t *testing.T) {
	v := NewValidator(Zero)
	var claimedHash, recomputed [32]byte
	claimedHash[0] = 1
	recomputed[0] = 2

	err := v.Check(0, Zero, claimedHash, recomputed)
	require.Error(t, err)
}
