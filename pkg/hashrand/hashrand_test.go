package hashrand

import (
	"hash/fnv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashKnownVectors(t *testing.T) {
	assert.Equal(t, uint32(0x811c9dc5), Hash(""))
	assert.Equal(t, uint32(0xe40c292c), Hash("a"))
	assert.Equal(t, uint32(0xbf9cf968), Hash("foobar"))
	// Non-ASCII input hashes the UTF-16 code unit, not its UTF-8 bytes.
	assert.Equal(t, uint32(0x6c0b6c44), Hash("é"))
}

func TestHashMatchesByteWiseFNVForASCII(t *testing.T) {
	for _, key := range []string{"curso-1::turma-1::aluno-1", "PROVA", "x"} {
		h := fnv.New32a()
		_, _ = h.Write([]byte(key))
		assert.Equal(t, h.Sum32(), Hash(key), key)
	}
}

func TestBoundedHelpers(t *testing.T) {
	assert.Equal(t, 0, Intn("anything", 0))
	for _, key := range []string{"a", "b", "c", "d"} {
		v := Between(key, 3, 7)
		assert.GreaterOrEqual(t, v, 3)
		assert.LessOrEqual(t, v, 7)
		assert.Equal(t, v, Between(key, 7, 3))
	}
	assert.True(t, Chance("a", 1))
	assert.False(t, Chance("a", 0))
	assert.Equal(t, "", Pick("a", nil))
	assert.Equal(t, Pick("seed", []string{"x", "y", "z"}), Pick("seed", []string{"x", "y", "z"}))
}
