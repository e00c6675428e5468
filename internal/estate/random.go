package estate

import (
	mathrand "math/rand"
	"sync"
	"time"
)

// Source is the single uniform random stream every stochastic decision draws
// from. Float64 returns a value in [0, 1).
type Source interface {
	Float64() float64
}

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns wall-clock UTC time.
func SystemClock() Clock { return systemClock{} }

type lockedSource struct {
	mu   sync.Mutex
	rand *mathrand.Rand
}

// NewSource returns a seedable, goroutine-safe Source. A zero seed seeds from
// the current time.
func NewSource(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedSource{rand: mathrand.New(mathrand.NewSource(seed))}
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rand.Float64()
}

// Intn draws an int in [0, n) from src.
func Intn(src Source, n int) int {
	if n <= 1 {
		return 0
	}
	v := int(src.Float64() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

// Between draws a float in [lo, hi) from src.
func Between(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// Pick returns a uniformly chosen element of items.
func Pick[T any](src Source, items []T) T {
	return items[Intn(src, len(items))]
}
