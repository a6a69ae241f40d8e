// internal/service/purchase/infrastructure/payment_random.go
package infrastructure

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"pulsequeue/internal/service/purchase/domain"
)

// RandomAuthorizer stands in for a payment gateway with an unweighted coin
// flip. A real deployment swaps this for a gateway adapter behind the same
// port; the saga contract does not change.
type RandomAuthorizer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomAuthorizer() *RandomAuthorizer {
	return &RandomAuthorizer{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (a *RandomAuthorizer) Authorize(ctx context.Context, orderID string) (domain.PaymentOutcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.rng.Intn(2) == 0 {
		return domain.OutcomeSuccess, nil
	}
	return domain.OutcomeFailure, nil
}
