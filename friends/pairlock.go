package friends

import (
	"fmt"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// pairLocks serializes mutations on an unordered account pair. The key is the
// sorted pair, so opposite-direction operations on the same two accounts
// contend on the same mutex and can never interleave their two writes.
type pairLocks struct {
	mus *xsync.MapOf[string, *sync.Mutex]
}

func newPairLocks() *pairLocks {
	return &pairLocks{mus: xsync.NewMapOf[string, *sync.Mutex]()}
}

func (p *pairLocks) lock(a, b uint) func() {
	if a > b {
		a, b = b, a
	}
	mu, _ := p.mus.LoadOrStore(fmt.Sprintf("%d:%d", a, b), &sync.Mutex{})
	mu.Lock()
	return mu.Unlock
}
