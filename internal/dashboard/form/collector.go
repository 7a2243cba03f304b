// Package form holds the transaction draft edited before submission.
package form

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"sync"

	"fraudlens/internal/models"
)

var ErrUnknownField = errors.New("unknown feature field")

// Profile selects the distribution used by Randomize.
type Profile int

const (
	ProfileSafe Profile = iota
	ProfileFraud
)

func (p Profile) String() string {
	if p == ProfileFraud {
		return "fraud"
	}
	return "safe"
}

// ParseProfile accepts "safe" or "fraud".
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "safe", "":
		return ProfileSafe, nil
	case "fraud":
		return ProfileFraud, nil
	default:
		return ProfileSafe, errors.New("unknown profile " + strconv.Quote(s))
	}
}

// maxTime is the largest elapsed-seconds value seen in the training data.
const maxTime = 172792

// Submitter receives a finished draft.
type Submitter interface {
	Submit(ctx context.Context, features models.TransactionFeatures) error
}

// Collector is the 30-field draft plus a per-field touched flag.
type Collector struct {
	mu      sync.RWMutex
	values  [models.FeatureCount]float64
	touched [models.FeatureCount]bool
}

func NewCollector() *Collector {
	return &Collector{}
}

// Set parses raw into the named field. Text that does not parse as a
// number stores 0; the field still counts as touched.
func (c *Collector) Set(field, raw string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return c.SetValue(field, v)
}

func (c *Collector) SetValue(field string, value float64) error {
	i := models.FeatureIndex(strings.ToLower(strings.TrimSpace(field)))
	if i < 0 {
		return ErrUnknownField
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[i] = value
	c.touched[i] = true
	return nil
}

// Completion is 100 × (non-zero fields) / 30. A field deliberately set to
// zero is indistinguishable from an untouched one here; see TouchedCompletion.
func (c *Collector) Completion() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, v := range c.values {
		if v != 0 {
			n++
		}
	}
	return percent(n)
}

// TouchedCompletion is 100 × (edited fields) / 30.
func (c *Collector) TouchedCompletion() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, t := range c.touched {
		if t {
			n++
		}
	}
	return percent(n)
}

func percent(n int) float64 {
	return float64(n) / models.FeatureCount * 100
}

// Reset restores every field to zero and clears touched flags.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = [models.FeatureCount]float64{}
	c.touched = [models.FeatureCount]bool{}
}

// Randomize fills every field from the profile's distribution.
func (c *Collector) Randomize(profile Profile, rng *rand.Rand) {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	var values [models.FeatureCount]float64
	values[0] = math.Round(rng.Float64()*maxTime*100) / 100

	switch profile {
	case ProfileFraud:
		for i := 1; i <= 28; i++ {
			mean := rng.NormFloat64() * 1.5
			values[i] = mean + rng.NormFloat64()*math.Sqrt2
		}
		values[models.FeatureCount-1] = lognormal(rng, 5, 1.2)
	default:
		for i := 1; i <= 28; i++ {
			values[i] = rng.NormFloat64() * math.Sqrt(0.5)
		}
		values[models.FeatureCount-1] = lognormal(rng, 4, 1.5)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = values
	for i := range c.touched {
		c.touched[i] = true
	}
}

// lognormal draws exp(N(mu, sigma)) rounded to cents.
func lognormal(rng *rand.Rand, mu, sigma float64) float64 {
	return math.Round(math.Exp(mu+sigma*rng.NormFloat64())*100) / 100
}

// Features returns the current draft.
func (c *Collector) Features() models.TransactionFeatures {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return models.FeaturesFromVector(c.values[:])
}

// Submit hands the draft to s unchanged.
func (c *Collector) Submit(ctx context.Context, s Submitter) error {
	return s.Submit(ctx, c.Features())
}
