// Package refid issues the short tracking codes stamped on every posting row.
package refid

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Allocator hands out two-letter five-digit codes, one per posting identity.
// The registry is shared process-wide, so the check-then-mint sequence runs
// under one lock: two concurrent requests for the same identity must not race
// into two different codes.
type Allocator struct {
	mu         sync.Mutex
	byIdentity map[string]string
	issued     map[string]bool
	rng        *rand.Rand
}

func NewAllocator() *Allocator {
	return &Allocator{
		byIdentity: make(map[string]string),
		issued:     make(map[string]bool),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Allocate returns the code for an identity, minting one on first request.
// Repeated calls with the same identity return the same code, and a code is
// never issued to two identities.
func (a *Allocator) Allocate(identity string) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if code, ok := a.byIdentity[identity]; ok {
		return code
	}

	code := a.mint()
	for a.issued[code] {
		code = a.mint()
	}
	a.issued[code] = true
	a.byIdentity[identity] = code
	return code
}

// Issued reports how many codes the registry has handed out.
func (a *Allocator) Issued() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.issued)
}

func (a *Allocator) mint() string {
	first := byte('A' + a.rng.Intn(26))
	second := byte('A' + a.rng.Intn(26))
	digits := 10000 + a.rng.Intn(90000)
	return fmt.Sprintf("%c%c%05d", first, second, digits)
}
