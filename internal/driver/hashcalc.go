package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"
	"strconv"

	"amend/internal/config"
)

// Digest is a SHA-256 value used as a cache key.
type Digest [32]byte

// cacheKey is H(schema || settings || rule ids || content). Anything that
// changes what rules report must be part of it.
func cacheKey(content [32]byte, rules []string, cfg config.Config) Digest {
	h := sha256.New()
	var schema [2]byte
	binary.BigEndian.PutUint16(schema[:], diskCacheSchemaVersion)
	_, _ = h.Write(schema[:])

	ids := append([]string(nil), rules...)
	sort.Strings(ids)
	for _, id := range ids {
		_, _ = h.Write([]byte(id))
		_, _ = h.Write([]byte{0})
	}
	_, _ = h.Write([]byte(strconv.Itoa(cfg.Inspect.TabWidth)))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(cfg.Inspect.TodoOwner))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(content[:])

	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
