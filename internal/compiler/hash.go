package compiler

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// ContentHash derives a stable 64-bit identity from the given parts.
// Parts are length-prefixed so that ("ab", "c") and ("a", "bc") differ.
func ContentHash(parts ...string) uint64 {
	h, _ := blake2b.New256(nil)
	var n [8]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write([]byte(p))
	}
	return binary.LittleEndian.Uint64(h.Sum(nil)[:8])
}
