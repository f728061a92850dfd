package checksum

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"io"
	"sort"
	"sync"
)

var ErrEmptyBatch = errors.New("nothing to fingerprint")

// Entry is one named payload of a batch.
type Entry struct {
	Name string
	Data []byte
}

// Fingerprint hashes a batch independently of entry order. Names and
// payloads are length-prefixed so that concatenations cannot collide.
func Fingerprint(entries []Entry) (string, error) {
	if len(entries) == 0 {
		return "", ErrEmptyBatch
	}
	sorted := append([]Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	hash := sha256.New()
	for _, e := range sorted {
		writeField(hash, []byte(e.Name))
		writeField(hash, e.Data)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

func writeField(w io.Writer, b []byte) {
	var size [8]byte
	binary.BigEndian.PutUint64(size[:], uint64(len(b)))
	w.Write(size[:])
	w.Write(b)
}

// ChecksumMatcher remembers the last fingerprint it accepted.
type ChecksumMatcher struct {
	mu       sync.Mutex
	expected string
}

func NewChecksumMatcher(expectedChecksum string) *ChecksumMatcher {
	return &ChecksumMatcher{expected: expectedChecksum}
}

// Match reports whether the batch hashes to the remembered fingerprint.
func (cm *ChecksumMatcher) Match(entries []Entry) (bool, error) {
	sum, err := Fingerprint(entries)
	if err != nil {
		return false, err
	}
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.expected != "" && sum == cm.expected, nil
}

// Remember stores sum as the fingerprint to match against.
func (cm *ChecksumMatcher) Remember(sum string) {
	cm.mu.Lock()
	cm.expected = sum
	cm.mu.Unlock()
}

func (cm *ChecksumMatcher) Expected() string {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.expected
}
