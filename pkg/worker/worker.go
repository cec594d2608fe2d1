package worker

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/mejiasd3v/lifi-create3-crunch/internal/crypto"
	"github.com/mejiasd3v/lifi-create3-crunch/internal/patterns"
	"github.com/mejiasd3v/lifi-create3-crunch/pkg/types"
)

// progressInterval is the aggregate-attempt cadence of the shared progress line.
const progressInterval = 1000

// Worker grinds candidate salts for one goroutine. The scratch buffer holds
// creator || nonce; only the trailing nonce bytes are refilled per attempt, so
// the loop allocates nothing until a match is found. Not safe for concurrent
// use; the shared attempt counter is the only state crossing goroutines.
type Worker struct {
	deriver *crypto.Deriver
	matcher *patterns.Matcher
	counter *atomic.Uint64

	scratch [crypto.SaltInputLen]byte
	addrHex [2 + 2*common.AddressLength]byte
}

// New creates a worker bound to a shared attempt counter.
func New(id crypto.Identity, creator common.Address, m *patterns.Matcher, counter *atomic.Uint64) *Worker {
	w := &Worker{
		deriver: crypto.NewDeriver(id),
		matcher: m,
		counter: counter,
	}
	copy(w.scratch[:common.AddressLength], creator[:])
	w.addrHex[0] = '0'
	w.addrHex[1] = 'x'
	return w
}

// Attempt draws one nonce, derives the deployed address and tests it.
// Returns a Result on match, nil otherwise. The caller reads the attempt
// count from the shared counter.
func (w *Worker) Attempt() (*types.Result, error) {
	_, match, err := w.attempt()
	if err != nil {
		return nil, err
	}
	if match {
		return w.result(), nil
	}
	return nil, nil
}

// ProcessBatch runs batchSize attempts, returning early on a match. When
// progress is non-nil the shared in-place progress line is refreshed every
// progressInterval aggregate attempts.
func (w *Worker) ProcessBatch(batchSize int, progress io.Writer) (*types.Result, error) {
	for i := 0; i < batchSize; i++ {
		n, match, err := w.attempt()
		if err != nil {
			return nil, err
		}
		if progress != nil && n%progressInterval == 0 {
			fmt.Fprintf(progress, "\rAttempt %d", n)
		}
		if match {
			return w.result(), nil
		}
	}
	return nil, nil
}

// AddressHex returns the canonical rendering of the last derived address.
func (w *Worker) AddressHex() string {
	return string(w.addrHex[:])
}

func (w *Worker) attempt() (uint64, bool, error) {
	if _, err := rand.Read(w.scratch[common.AddressLength:]); err != nil {
		return 0, false, fmt.Errorf("read random nonce: %w", err)
	}
	salt := w.deriver.HashSalt(w.scratch[:])
	addr := w.deriver.Derive(salt)
	hex.Encode(w.addrHex[2:], addr[:])
	n := w.counter.Add(1)
	return n, w.matcher.Matches(w.addrHex[:]), nil
}

// result snapshots the current nonce and address. The reported salt is the
// pre-hash nonce, the value the factory expects (see types.Result).
func (w *Worker) result() *types.Result {
	return &types.Result{
		Salt:    hexutil.Encode(w.scratch[common.AddressLength:]),
		Address: w.AddressHex(),
	}
}
