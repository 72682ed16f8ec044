package ethash

import (
	"encoding/binary"
	"hash"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/bitutil"
	"golang.org/x/crypto/sha3"
)

type hasher func(dest []byte, data []byte)

// makeHasher writes the digest of data into dest, which must hold at least h.Size() bytes
func makeHasher(h hash.Hash) hasher {
	return func(dest []byte, data []byte) {
		h.Reset()
		h.Write(data)
		h.Sum(dest[:0])
	}
}

func keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

func keccak512(data []byte) []byte {
	h := sha3.NewLegacyKeccak512()
	h.Write(data)
	return h.Sum(nil)
}

// SeedHash is keccak256 applied epoch times to 32 zero bytes
func SeedHash(epoch int) common.Hash {
	var seed common.Hash
	hashFn := makeHasher(sha3.NewLegacyKeccak256())
	for i := 0; i < epoch; i++ {
		hashFn(seed[:], seed[:])
	}
	return seed
}

func generateCache(size uint64, seed common.Hash) []uint32 {
	cache := make([]byte, size)
	rows := int(size) / hashBytes

	hashFn := makeHasher(sha3.NewLegacyKeccak512())
	hashFn(cache, seed[:])
	for offset := uint64(hashBytes); offset < size; offset += hashBytes {
		hashFn(cache[offset:], cache[offset-hashBytes:offset])
	}

	temp := make([]byte, hashBytes)
	for i := 0; i < cacheRounds; i++ {
		for j := 0; j < rows; j++ {
			var (
				srcOff = ((j - 1 + rows) % rows) * hashBytes
				dstOff = j * hashBytes
				xorOff = int(binary.LittleEndian.Uint32(cache[dstOff:])%uint32(rows)) * hashBytes
			)
			bitutil.XORBytes(temp, cache[srcOff:srcOff+hashBytes], cache[xorOff:xorOff+hashBytes])
			hashFn(cache[dstOff:], temp)
		}
	}

	words := make([]uint32, size/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(cache[i*4:])
	}
	return words
}

func fnv(a, b uint32) uint32 {
	return a*0x01000193 ^ b
}

func fnvHash(mix []uint32, data []uint32) {
	for i := 0; i < len(mix); i++ {
		mix[i] = mix[i]*0x01000193 ^ data[i]
	}
}

// generateDatasetItem derives one 64 byte DAG node from the light cache
func generateDatasetItem(cache []uint32, index uint32, hashFn hasher) []uint32 {
	rows := uint32(len(cache) / hashWords)

	mix := make([]byte, hashBytes)
	binary.LittleEndian.PutUint32(mix, cache[(index%rows)*hashWords]^index)
	for i := 1; i < hashWords; i++ {
		binary.LittleEndian.PutUint32(mix[i*4:], cache[(index%rows)*hashWords+uint32(i)])
	}
	hashFn(mix, mix)

	intMix := make([]uint32, hashWords)
	for i := range intMix {
		intMix[i] = binary.LittleEndian.Uint32(mix[i*4:])
	}
	for i := uint32(0); i < datasetParents; i++ {
		parent := fnv(index^i, intMix[i%16]) % rows
		fnvHash(intMix, cache[parent*hashWords:])
	}

	for i, val := range intMix {
		binary.LittleEndian.PutUint32(mix[i*4:], val)
	}
	hashFn(mix, mix)

	for i := range intMix {
		intMix[i] = binary.LittleEndian.Uint32(mix[i*4:])
	}
	return intMix
}

func hashimoto(header common.Hash, nonce uint64, size uint64, lookup func(index uint32) []uint32) (common.Hash, common.Hash) {
	rows := uint32(size / mixBytes)

	seed := make([]byte, 40)
	copy(seed, header[:])
	binary.LittleEndian.PutUint64(seed[32:], nonce)
	seed = keccak512(seed)
	seedHead := binary.LittleEndian.Uint32(seed)

	mix := make([]uint32, mixBytes/4)
	for i := range mix {
		mix[i] = binary.LittleEndian.Uint32(seed[i%16*4:])
	}

	temp := make([]uint32, len(mix))
	for i := 0; i < loopAccesses; i++ {
		parent := fnv(uint32(i)^seedHead, mix[i%len(mix)]) % rows
		for j := uint32(0); j < mixBytes/hashBytes; j++ {
			copy(temp[j*hashWords:], lookup(2*parent+j))
		}
		fnvHash(mix, temp)
	}

	for i := 0; i < len(mix); i += 4 {
		mix[i/4] = fnv(fnv(fnv(mix[i], mix[i+1]), mix[i+2]), mix[i+3])
	}
	mix = mix[:len(mix)/4]

	var digest common.Hash
	for i, val := range mix {
		binary.LittleEndian.PutUint32(digest[i*4:], val)
	}
	return digest, common.BytesToHash(keccak256(seed, digest[:]))
}

func hashimotoLight(size uint64, cache []uint32, header common.Hash, nonce uint64) (common.Hash, common.Hash) {
	hashFn := makeHasher(sha3.NewLegacyKeccak512())
	lookup := func(index uint32) []uint32 {
		return generateDatasetItem(cache, index, hashFn)
	}
	return hashimoto(header, nonce, size, lookup)
}
