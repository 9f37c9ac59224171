// Package hrw implements rendezvous (highest random weight) hashing over a
// fixed set of names.
package hrw

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// Best returns the name with the highest score for key. Ties go to the
// earlier name. ok=false if names is empty.
func Best(key string, names []string, seed string) (best string, ok bool) {
	var top uint64
	for i, n := range names {
		s := Score(key, n, seed)
		if i == 0 || s > top {
			best, top = n, s
		}
	}
	return best, len(names) > 0
}

// Score is the weight of name for key. seed is optional and separates
// otherwise identical name sets.
func Score(key, name, seed string) uint64 {
	// 8-byte digest => uint64 score
	h, _ := blake2b.New(8, nil)

	if seed != "" {
		h.Write([]byte(seed))
		h.Write([]byte{0})
	}
	h.Write([]byte(key))
	h.Write([]byte{0})
	h.Write([]byte(name))

	return binary.BigEndian.Uint64(h.Sum(nil))
}
