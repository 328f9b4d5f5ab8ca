package cache

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Key identifies a cached result: a namespace followed by a 64-bit xxhash
// digest, e.g. "timeline:9f86d081884c7d65".
type Key string

// NewKey hashes the canonical JSON encoding of parts under namespace.
// Parts must be JSON-encodable; map keys are sorted by encoding/json, so
// equal values always produce equal keys.
func NewKey(namespace string, parts ...any) (Key, error) {
	d := xxhash.New()
	enc := json.NewEncoder(d)
	for i, p := range parts {
		if err := enc.Encode(p); err != nil {
			return "", fmt.Errorf("hash key part %d: %w", i, err)
		}
	}
	return Key(fmt.Sprintf("%s:%016x", namespace, d.Sum64())), nil
}

// Namespace returns the part of the key before the digest.
func (k Key) Namespace() string {
	ns, _, _ := strings.Cut(string(k), ":")
	return ns
}
