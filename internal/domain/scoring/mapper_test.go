package scoring_test

import (
	"testing"

	"github.com/convertly/leadscore/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMap(t *testing.T) {
	Convey("Given the probability-to-tier mapping", t, func() {
		Convey("Then boundary values land in the lower bucket", func() {
			cases := []struct {
				raw    float64
				bucket int
				tier   scoring.Tier
			}{
				{0.00, 1, scoring.TierE},
				{0.10, 1, scoring.TierE},
				{0.20, 1, scoring.TierE},
				{0.2000001, 2, scoring.TierD},
				{0.40, 2, scoring.TierD},
				{0.4000001, 3, scoring.TierC},
				{0.50, 3, scoring.TierC},
				{0.60, 3, scoring.TierC},
				{0.6000001, 4, scoring.TierB},
				{0.80, 4, scoring.TierB},
				{0.8000001, 5, scoring.TierA},
				{0.82, 5, scoring.TierA},
				{1.00, 5, scoring.TierA},
			}
			for _, tc := range cases {
				bucket, tier := scoring.Map(tc.raw)
				So(bucket, ShouldEqual, tc.bucket)
				So(tier, ShouldEqual, tc.tier)
			}
		})

		Convey("Then buckets are monotonic non-decreasing across [0,1]", func() {
			prev := 0
			for i := 0; i <= 10000; i++ {
				raw := float64(i) / 10000.0
				bucket, tier := scoring.Map(raw)
				So(bucket, ShouldBeGreaterThanOrEqualTo, prev)
				So(bucket, ShouldBeBetweenOrEqual, scoring.MinBucket, scoring.MaxBucket)
				So(tier, ShouldBeIn, []scoring.Tier{
					scoring.TierA, scoring.TierB, scoring.TierC, scoring.TierD, scoring.TierE,
				})
				prev = bucket
			}
		})

		Convey("Then mapping is deterministic", func() {
			for _, raw := range []float64{0.0, 0.2, 0.33, 0.8, 1.0} {
				b1, t1 := scoring.Map(raw)
				b2, t2 := scoring.Map(raw)
				So(b1, ShouldEqual, b2)
				So(t1, ShouldEqual, t2)
			}
		})

		Convey("Then bucket and tier pair monotonically (A is bucket 5)", func() {
			bucket, tier := scoring.Map(0.999)
			So(bucket, ShouldEqual, 5)
			So(tier, ShouldEqual, scoring.TierA)

			bucket, tier = scoring.Map(0.001)
			So(bucket, ShouldEqual, 1)
			So(tier, ShouldEqual, scoring.TierE)
		})
	})
}

func TestTierDefinitions(t *testing.T) {
	Convey("Given the tier definition table", t, func() {
		defs := scoring.TierDefinitions()

		Convey("Then every tier is described", func() {
			So(len(defs), ShouldEqual, 5)
			for _, tier := range []scoring.Tier{
				scoring.TierA, scoring.TierB, scoring.TierC, scoring.TierD, scoring.TierE,
			} {
				So(defs[tier], ShouldNotBeEmpty)
			}
		})
	})
}
