// Package scoring maps raw conversion probabilities onto discrete buckets
// and letter tiers. The mapping is a pure function and its boundaries are a
// stable contract: edge values belong to the lower bucket, except 0.0 which
// belongs to bucket 1.
package scoring

// Tier is the human-facing letter grade derived from the bucket.
type Tier string

const (
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
	TierD Tier = "D"
	TierE Tier = "E"
)

// Bucket bounds of the 1..5 range.
const (
	MinBucket = 1
	MaxBucket = 5
)

// tierByBucket maps bucket 1..5 to tier E..A.
var tierByBucket = [MaxBucket + 1]Tier{"", TierE, TierD, TierC, TierB, TierA}

// Map converts a raw probability in [0,1] into its bucket and tier:
//
//	[0.00, 0.20] -> 1 -> E
//	(0.20, 0.40] -> 2 -> D
//	(0.40, 0.60] -> 3 -> C
//	(0.60, 0.80] -> 4 -> B
//	(0.80, 1.00] -> 5 -> A
//
// Boundaries are compared explicitly rather than derived arithmetically so
// that values like exactly 0.20 land in the lower bucket bit-for-bit.
// Callers must uphold the [0,1] precondition; the provider layer clamps
// out-of-range scores before mapping.
func Map(rawScore float64) (int, Tier) {
	var bucket int
	switch {
	case rawScore <= 0.20:
		bucket = 1
	case rawScore <= 0.40:
		bucket = 2
	case rawScore <= 0.60:
		bucket = 3
	case rawScore <= 0.80:
		bucket = 4
	default:
		bucket = 5
	}
	return bucket, tierByBucket[bucket]
}

// TierDefinitions describes each tier for API documentation responses.
func TierDefinitions() map[Tier]string {
	return map[Tier]string{
		TierA: "Highest conversion likelihood (bucket 5)",
		TierB: "High conversion likelihood (bucket 4)",
		TierC: "Medium conversion likelihood (bucket 3)",
		TierD: "Low conversion likelihood (bucket 2)",
		TierE: "Lowest conversion likelihood (bucket 1)",
	}
}
