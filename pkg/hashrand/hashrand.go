// Package hashrand derives reproducible pseudo-random values from string keys.
//
// Values depend only on the key, never on wall-clock time or process state, so
// mock data generated in one environment matches every other environment.
package hashrand

import "unicode/utf16"

const (
	offset32 uint32 = 2166136261
	prime32  uint32 = 16777619
)

// Hash computes a 32-bit FNV-1a hash over the UTF-16 code units of s.
// For ASCII input this equals the standard byte-wise FNV-1a.
func Hash(s string) uint32 {
	h := offset32
	for _, unit := range utf16.Encode([]rune(s)) {
		h ^= uint32(unit)
		h *= prime32
	}
	return h
}

// Intn maps key into [0, n). It returns 0 when n <= 0.
func Intn(key string, n int) int {
	if n <= 0 {
		return 0
	}
	return int(Hash(key) % uint32(n))
}

// Between maps key into [lo, hi].
func Between(key string, lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + Intn(key, hi-lo+1)
}

// Chance reports whether key falls into the 1-in-n bucket.
func Chance(key string, n int) bool {
	if n <= 0 {
		return false
	}
	return Hash(key)%uint32(n) == 0
}

// Pick selects one option for key. It returns "" for an empty slice.
func Pick(key string, options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[Intn(key, len(options))]
}
