package reviewgen

import (
	"fmt"
	"math"

	"github.com/spacesedan/reviewseed/internal/models"
)

const (
	MinQuantity = 1
	MaxQuantity = 50
)

// BucketCounts returns how many reviews each star value gets, indexed by star (index 0 unused).
//
// 5★ through 2★ are rounded from their percentage and 1★ takes whatever is left, so the total always equals
// quantity. When rounding up overshoots quantity the excess is taken back from the buckets that were rounded
// up the most, larger stars first on ties, so no bucket goes negative. Percentages are clamped to [0, 100] and
// NaN counts as 0; Sample rejects such input before it gets here.
func BucketCounts(quantity int, dist models.RatingDistribution) [6]int {
	var counts [6]int
	exact := [6]float64{
		5: float64(quantity) * clampPercent(dist.Star5) / 100,
		4: float64(quantity) * clampPercent(dist.Star4) / 100,
		3: float64(quantity) * clampPercent(dist.Star3) / 100,
		2: float64(quantity) * clampPercent(dist.Star2) / 100,
	}

	assigned := 0
	for star := 5; star >= 2; star-- {
		counts[star] = int(math.Round(exact[star]))
		assigned += counts[star]
	}

	for excess := assigned - quantity; excess > 0; excess-- {
		pick := 0
		for star := 5; star >= 2; star-- {
			if counts[star] == 0 {
				continue
			}
			if pick == 0 || float64(counts[star])-exact[star] > float64(counts[pick])-exact[pick] {
				pick = star
			}
		}
		if pick == 0 {
			break
		}
		counts[pick]--
		assigned--
	}

	counts[1] = quantity - assigned
	return counts
}

const invalidDistributionMsg = "Rating distribution percentages must be between 0 and 100"

func validPercent(pct float64) bool {
	return !math.IsNaN(pct) && pct >= 0 && pct <= 100
}

func clampPercent(pct float64) float64 {
	if math.IsNaN(pct) || pct < 0 {
		return 0
	}
	return math.Min(pct, 100)
}

type Sampler struct {
	rand Rand
}

func NewSampler(r Rand) *Sampler {
	return &Sampler{rand: r}
}

// Sample produces a shuffled sequence of star ratings whose bucket counts follow BucketCounts exactly.
func (s *Sampler) Sample(quantity int, dist *models.RatingDistribution) ([]int, error) {
	if quantity < MinQuantity || quantity > MaxQuantity {
		return nil, newError(KindValidation,
			fmt.Sprintf("Quantity must be between %d and %d reviews", MinQuantity, MaxQuantity), nil)
	}

	d := models.DefaultRatingDistribution
	if dist != nil {
		d = *dist
	}
	for _, pct := range []float64{d.Star5, d.Star4, d.Star3, d.Star2, d.Star1} {
		if !validPercent(pct) {
			return nil, newError(KindValidation, invalidDistributionMsg, nil)
		}
	}

	counts := BucketCounts(quantity, d)
	ratings := make([]int, 0, quantity)
	for star := 5; star >= 1; star-- {
		for range counts[star] {
			ratings = append(ratings, star)
		}
	}

	s.rand.Shuffle(len(ratings), func(i, j int) {
		ratings[i], ratings[j] = ratings[j], ratings[i]
	})
	return ratings, nil
}
