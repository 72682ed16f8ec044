package ethash

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"gitlab.com/TitanInd/hashfarm/internal/lib"
	"golang.org/x/crypto/sha3"
)

func TestEpochSizes(t *testing.T) {
	require.EqualValues(t, 16776896, CacheSize(0, ModeNormal))
	require.EqualValues(t, 1073739904, DatasetSize(0, ModeNormal))
	require.EqualValues(t, 16907456, CacheSize(1, ModeNormal))
	require.EqualValues(t, 1082130304, DatasetSize(1, ModeNormal))

	require.EqualValues(t, 1024, CacheSize(500, ModeTest))
	require.EqualValues(t, 32*1024, DatasetSize(500, ModeTest))
}

func TestEpochOf(t *testing.T) {
	require.Equal(t, 0, EpochOf(29999))
	require.Equal(t, 1, EpochOf(30000))
	require.Equal(t, 400, EpochOf(12_000_000))
}

func TestSeedHash(t *testing.T) {
	require.Equal(t, common.Hash{}, SeedHash(0))
	require.Equal(t, common.HexToHash("0x290decd9548b62a8d60345a988386fc84ba6bc95484008f6362f93160ef3e563"), SeedHash(1))

	h := sha3.NewLegacyKeccak256()
	seed1 := SeedHash(1)
	h.Write(seed1[:])
	require.Equal(t, common.BytesToHash(h.Sum(nil)), SeedHash(2))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("test")
	require.NoError(t, err)
	require.Equal(t, ModeTest, m)

	_, err = ParseMode("full")
	require.ErrorIs(t, err, ErrUnknownMode)
}

func TestEpochContextTestMode(t *testing.T) {
	ec := NewEpochContext(2, ModeTest)
	require.True(t, ec.HasLight())
	require.Equal(t, 16, ec.LightNumItems)
	require.Equal(t, 256, ec.DagNumItems)
	require.Equal(t, SeedHash(2), ec.Seed)

	header := common.HexToHash("0xc9149cc0386e689d789a1c2f3d5d169a61a6218ed30e74414dc736e442ef3d1f")
	r1 := ec.Hash(header, 0)
	r2 := ec.Hash(header, 0)
	r3 := ec.Hash(header, 1)

	require.Equal(t, r1, r2)
	require.NotEqual(t, r1.Value, r3.Value)
	require.NotEqual(t, common.Hash{}, r1.MixHash)

	ec.Release()
	require.False(t, ec.HasLight())
}

func TestHashKnownVector(t *testing.T) {
	ec := NewEpochContext(0, ModeTest)
	header := common.HexToHash("0xc9149cc0386e689d789a1c2f3d5d169a61a6218ed30e74414dc736e442ef3d1f")

	r := ec.Hash(header, 0)
	require.Equal(t, common.HexToHash("0xe4073cffaef931d37117cefd9afd27ea0f1cad6a981dd2605c4a1ac97c519800"), r.MixHash)
	require.Equal(t, common.HexToHash("0xd3539235ee2e6f8db665c0a72169f55b7f6c605712330b778ec3944f0eb5a557"), r.Value)
}

func TestLightMatchesDatasetLookup(t *testing.T) {
	ec := NewEpochContext(0, ModeTest)
	hashFn := makeHasher(sha3.NewLegacyKeccak512())

	dataset := make([][]uint32, ec.DagSize/hashBytes)
	for i := range dataset {
		dataset[i] = generateDatasetItem(ec.light, uint32(i), hashFn)
	}

	header := common.HexToHash("0x01")
	mix, final := hashimoto(header, 42, ec.DagSize, func(index uint32) []uint32 {
		return dataset[index]
	})

	r := ec.Hash(header, 42)
	require.Equal(t, mix, r.MixHash)
	require.Equal(t, final, r.Value)
}

func TestVerifierIdempotent(t *testing.T) {
	v := NewVerifier(ModeTest, 2, lib.NewTestLogger())
	header := common.HexToHash("0xabcdef")

	first := v.Eval(1, header, 77)
	for epoch := 2; epoch < 5; epoch++ {
		v.Eval(epoch, header, 77)
	}
	require.Equal(t, first, v.Eval(1, header, 77))
	require.Equal(t, NewEpochContext(1, ModeTest).Hash(header, 77), first)
	require.NotEqual(t, first, v.Eval(2, header, 77))
}
