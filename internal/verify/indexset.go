package verify

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

// IndexSet is a set of feature indices in [0, size).
type IndexSet struct {
	words []uint64
	size  int
	n     int
}

// NewIndexSet creates an empty set over [0, size).
func NewIndexSet(size int) *IndexSet {
	return &IndexSet{words: make([]uint64, (size+63)/64), size: size}
}

// Size returns the capacity of the index space.
func (s *IndexSet) Size() int { return s.size }

// Len returns the number of indices in the set.
func (s *IndexSet) Len() int { return s.n }

// InRange reports whether idx lies in [0, size).
func (s *IndexSet) InRange(idx int) bool {
	return idx >= 0 && idx < s.size
}

// Has reports whether idx is in the set.
func (s *IndexSet) Has(idx int) bool {
	return s.words[idx>>6]&(1<<(uint(idx)&63)) != 0
}

// Add inserts idx and reports whether it was absent.
func (s *IndexSet) Add(idx int) bool {
	w, bit := idx>>6, uint64(1)<<(uint(idx)&63)
	if s.words[w]&bit != 0 {
		return false
	}
	s.words[w] |= bit
	s.n++
	return true
}

// Remove deletes idx and reports whether it was present.
func (s *IndexSet) Remove(idx int) bool {
	w, bit := idx>>6, uint64(1)<<(uint(idx)&63)
	if s.words[w]&bit == 0 {
		return false
	}
	s.words[w] &^= bit
	s.n--
	return true
}

// Clear empties the set.
func (s *IndexSet) Clear() {
	clear(s.words)
	s.n = 0
}

// Union adds every index of other to s.
func (s *IndexSet) Union(other *IndexSet) {
	n := 0
	for i := range s.words {
		s.words[i] |= other.words[i]
		n += bits.OnesCount64(s.words[i])
	}
	s.n = n
}

// Equal reports whether both sets hold the same indices.
func (s *IndexSet) Equal(other *IndexSet) bool {
	if s.size != other.size || s.n != other.n {
		return false
	}
	for i := range s.words {
		if s.words[i] != other.words[i] {
			return false
		}
	}
	return true
}

// MarshalBinary encodes the set as little-endian words.
func (s *IndexSet) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 8*len(s.words))
	for i, w := range s.words {
		binary.LittleEndian.PutUint64(buf[8*i:], w)
	}
	return buf, nil
}

// UnmarshalBinary decodes a set written by MarshalBinary. The receiver's
// size must already be set, typically via NewIndexSet.
func (s *IndexSet) UnmarshalBinary(data []byte) error {
	if len(data) != 8*len(s.words) {
		return fmt.Errorf("index set: got %d bytes, want %d", len(data), 8*len(s.words))
	}
	n := 0
	for i := range s.words {
		s.words[i] = binary.LittleEndian.Uint64(data[8*i:])
		n += bits.OnesCount64(s.words[i])
	}
	s.n = n
	return nil
}
