package places

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strings"

	"pantryscout-discovery/internal/model"
)

// Fingerprint derives a cache key from a search's center, radius, and
// variant list, rounding lat/lng to decimals places so that nearby
// searches within the same grid cell share a cache entry. Grounded on
// the original places client's _make_cache_key, which rounds
// coordinates and sorts query variants before hashing for the same
// reason.
func Fingerprint(center model.Point, radiusMeters int, variants []string, decimals int) string {
	round := func(v float64) float64 {
		p := math.Pow(10, float64(decimals))
		return math.Round(v*p) / p
	}

	sorted := make([]string, len(variants))
	for i, v := range variants {
		sorted[i] = strings.ToLower(strings.TrimSpace(v))
	}
	sort.Strings(sorted)

	raw := fmt.Sprintf("%.*f,%.*f,%d,%s", decimals, round(center.Lat), decimals, round(center.Lng), radiusMeters, strings.Join(sorted, "|"))
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
