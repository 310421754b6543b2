package converter

import (
	"math"
	"math/rand"
	"time"

	"github.com/xshopai/seeder/internal/identity"
)

// Context carries what converters share: the run's identity mapper and the
// clock/randomness source used for non-deterministic fields.
type Context struct {
	IDs  *identity.Mapper
	Now  func() time.Time
	Rand *rand.Rand
}

func NewContext(ids *identity.Mapper) *Context {
	return &Context{
		IDs:  ids,
		Now:  time.Now,
		Rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewSeededContext pins both the clock and the random source, for tests.
func NewSeededContext(ids *identity.Mapper, now time.Time, seed int64) *Context {
	return &Context{
		IDs:  ids,
		Now:  func() time.Time { return now },
		Rand: rand.New(rand.NewSource(seed)),
	}
}

// RecentTime returns a random instant within the last days days.
func (c *Context) RecentTime(days int) time.Time {
	now := c.Now().UTC()
	if days <= 0 {
		return now
	}
	window := int64(days) * int64(24*time.Hour)
	return now.Add(-time.Duration(c.Rand.Int63n(window)))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
