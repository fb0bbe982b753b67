// Package simhash implements 64-bit SimHash fingerprints for detecting
// near-duplicate article text, such as the same wire story syndicated
// across several outlets in one batch.
package simhash

import (
	"hash/fnv"
	"math/bits"
	"strings"
)

// shingleSize is the word n-gram width used for article fingerprints.
// Shingles keep word order significant, so two stories sharing vocabulary
// but not phrasing stay apart.
const shingleSize = 3

// Fingerprint computes a 64-bit SimHash of article text.
// Word 3-gram shingles are hashed with FNV-64a and accumulated into a bit
// vector; texts shorter than one shingle fall back to plain words.
func Fingerprint(text string) uint64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	tokens := makeShingles(words, shingleSize)
	if len(tokens) == 0 {
		tokens = words
	}

	var vector [64]int
	for _, token := range tokens {
		h := fnv.New64a()
		h.Write([]byte(token))
		hash := h.Sum64()

		for i := 0; i < 64; i++ {
			if hash&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fingerprint uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			fingerprint |= 1 << uint(i)
		}
	}

	return fingerprint
}

// makeShingles creates n-gram shingles from a slice of words.
func makeShingles(words []string, n int) []string {
	if len(words) < n {
		return nil
	}

	shingles := make([]string, 0, len(words)-n+1)
	for i := 0; i <= len(words)-n; i++ {
		shingles = append(shingles, strings.Join(words[i:i+n], "_"))
	}
	return shingles
}

// Distance returns the Hamming distance between two SimHash fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Similar returns true if the Hamming distance between two fingerprints
// is less than or equal to the threshold.
func Similar(a, b uint64, threshold int) bool {
	return Distance(a, b) <= threshold
}
