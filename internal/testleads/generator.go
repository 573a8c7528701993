package testleads

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"

	"github.com/convertly/leadscore/internal/domain/schema"
	"github.com/convertly/leadscore/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	maxCategoricalTier = 4
	maxUnboundedCount  = 40
	maxRevenue         = 50_000_000
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generateLeads creates the specified number of leads with unique IDs, each
// carrying a complete, valid 50-feature payload.
func generateLeads(ctx context.Context, config *Config, stats *Stats) []Lead {
	logger.Get().Info(ctx, "generating leads", logger.Int("numLeads", config.NumLeads))

	leads := make([]Lead, config.NumLeads)
	for i := range leads {
		leads[i] = Lead{
			LeadID:   uuid.New().String(),
			Features: randomFeatures(),
		}
	}
	stats.LeadsGenerated = len(leads)
	return leads
}

// randomFeatures builds one valid payload from the published field contract:
// bounded fields draw inside their range, integral kinds round down, and the
// unbounded counts stay small enough to look like real telemetry.
func randomFeatures() map[string]float64 {
	features := make(map[string]float64, schema.NumFeatures)
	for _, spec := range schema.Fields() {
		features[spec.Name] = randomValue(spec)
	}
	return features
}

func randomValue(spec schema.FieldSpec) float64 {
	r := getRandomFloat()
	switch spec.Kind {
	case schema.KindBinary:
		if r < 0.5 {
			return 0
		}
		return 1
	case schema.KindCategorical:
		hi := maxCategoricalTier
		if spec.HasMax {
			hi = int(spec.Max)
		}
		lo := 0
		if spec.HasMin {
			lo = int(spec.Min)
		}
		return float64(lo + int(r*float64(hi-lo+1)))
	case schema.KindInt:
		lo := 0.0
		if spec.HasMin {
			lo = spec.Min
		}
		if spec.HasMax {
			return float64(int(lo + r*(spec.Max-lo)))
		}
		return float64(int(lo + r*maxUnboundedCount))
	default: // KindFloat
		if spec.HasMin && spec.HasMax {
			return spec.Min + r*(spec.Max-spec.Min)
		}
		if spec.HasMin {
			if spec.Name == "company_revenue" || spec.Name == "company_funding_total" {
				return spec.Min + r*maxRevenue
			}
			return spec.Min + r*365
		}
		// Growth rate is the one fully open field; keep it in a
		// plausible band around zero.
		return (r - 0.25) * 2
	}
}
