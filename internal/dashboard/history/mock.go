package history

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"fraudlens/internal/models"

	"github.com/google/uuid"
)

// FallbackCount is the number of synthetic records shown when the
// backend cannot be reached.
const FallbackCount = 25

// fraudRate approximates the share of fraud in demo data.
const fraudRate = 0.15

// MockRecords generates n synthetic records, newest first, all tagged
// Synthetic. The shape is fixed; values come from rng.
func MockRecords(n int, rng *rand.Rand, now time.Time) []models.TransactionRecord {
	if rng == nil {
		rng = rand.New(rand.NewSource(now.UnixNano()))
	}

	records := make([]models.TransactionRecord, 0, n)
	ts := now.UTC()
	for i := 0; i < n; i++ {
		fraud := rng.Float64() < fraudRate
		confidence := 0.80 + rng.Float64()*0.20
		if fraud {
			confidence = 0.60 + rng.Float64()*0.40
		}
		ts = ts.Add(-time.Duration(1+rng.Intn(30)) * time.Minute)

		records = append(records, models.TransactionRecord{
			ID:            randomUUID(rng).String(),
			TransactionID: "txn_" + strings.ReplaceAll(randomUUID(rng).String(), "-", "")[:16],
			Prediction:    fraud,
			Confidence:    math.Round(confidence*10000) / 10000,
			Timestamp:     ts.Format(time.RFC3339Nano),
			InputFeatures: &models.RecordFeatures{
				Amount: math.Round(math.Exp(4+1.5*rng.NormFloat64())*100) / 100,
				Time:   math.Round(rng.Float64()*172792*100) / 100,
			},
			Synthetic: true,
		})
	}
	return records
}

func randomUUID(rng *rand.Rand) uuid.UUID {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return uuid.New()
	}
	return id
}
