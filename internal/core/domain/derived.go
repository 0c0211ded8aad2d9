package domain

import (
	"math"
	"math/rand/v2"
)

const (
	maxSynthDiscount = 39
	minSynthRating   = 3.0
	maxSynthRating   = 5.0
	MustHaveRating   = 4.5
)

// synthRand is deterministic for a (seed, game id) pair, so a snapshot
// always yields the same synthesized values.
func synthRand(seed uint64, id int, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed^stream, uint64(id)))
}

// WithDiscount fills absent discounts with a value in [0, 39]. Present
// values are kept verbatim.
func WithDiscount(games []Game, seed uint64) []Game {
	out := make([]Game, len(games))
	for i, g := range games {
		if g.Discount == nil {
			d := synthRand(seed, g.ID, 0xd15c).IntN(maxSynthDiscount + 1)
			g.Discount = &d
		}
		out[i] = g
	}
	return out
}

// WithRating fills absent ratings with a value in [3.0, 5.0] rounded to
// one decimal. Present values are kept verbatim.
func WithRating(games []Game, seed uint64) []Game {
	out := make([]Game, len(games))
	for i, g := range games {
		if g.Rating == nil {
			f := synthRand(seed, g.ID, 0x4a7e).Float64()
			r := math.Round((minSynthRating+f*(maxSynthRating-minSynthRating))*10) / 10
			g.Rating = &r
		}
		out[i] = g
	}
	return out
}

// Offers returns the games with a positive discount.
func Offers(games []Game) []Game {
	out := make([]Game, 0)
	for _, g := range games {
		if g.discountValue() > 0 {
			out = append(out, g)
		}
	}
	return out
}

// MustHave returns the games rated MustHaveRating or higher.
func MustHave(games []Game) []Game {
	out := make([]Game, 0)
	for _, g := range games {
		if g.ratingValue() >= MustHaveRating {
			out = append(out, g)
		}
	}
	return out
}
