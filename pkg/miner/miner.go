package miner

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/mejiasd3v/lifi-create3-crunch/internal/config"
	"github.com/mejiasd3v/lifi-create3-crunch/internal/crypto"
	"github.com/mejiasd3v/lifi-create3-crunch/internal/patterns"
	"github.com/mejiasd3v/lifi-create3-crunch/pkg/types"
	"github.com/mejiasd3v/lifi-create3-crunch/pkg/worker"
)

// batchSize is the inner batch of the parallel strategy: cancellation and the
// per-worker budget are checked once per batch, not per attempt.
const batchSize = 10_000

// Miner coordinates the salt search. One Miner runs one search.
type Miner struct {
	cfg      *config.Config
	log      *zap.SugaredLogger
	identity crypto.Identity
	creator  common.Address
	matcher  *patterns.Matcher
	progress io.Writer // nil when silent
	attempts atomic.Uint64
}

// New validates cfg and builds a miner for the given deployment identity.
// progress receives the live in-place attempt line; pass nil to suppress it.
func New(cfg *config.Config, id crypto.Identity, log *zap.SugaredLogger, progress io.Writer) (*Miner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Silent {
		progress = nil
	}
	return &Miner{
		cfg:      cfg,
		log:      log,
		identity: id,
		creator:  cfg.CreatorAddress(),
		matcher:  patterns.New(cfg.Prefix(), cfg.Suffix()),
		progress: progress,
	}, nil
}

// Search runs the configured strategy until a match is found, the attempt
// budget is exhausted (nil result, nil error) or ctx is cancelled.
func (m *Miner) Search(ctx context.Context) (*types.Result, error) {
	start := time.Now()
	m.attempts.Store(0)

	var (
		res *types.Result
		err error
	)
	if m.cfg.Parallel {
		res, err = m.searchParallel(ctx)
	} else {
		res, err = m.searchSequential(ctx)
	}
	if err != nil {
		return nil, err
	}
	if res != nil {
		res.Attempts = m.attempts.Load()
		res.Duration = time.Since(start)
	}
	return res, nil
}

// Attempts returns the aggregate attempt count of the current or finished run.
func (m *Miner) Attempts() uint64 {
	return m.attempts.Load()
}

// searchSequential is the single-goroutine strategy: one worker, one attempt
// per loop, budget checked per attempt.
func (m *Miner) searchSequential(ctx context.Context) (*types.Result, error) {
	w := worker.New(m.identity, m.creator, m.matcher, &m.attempts)

	for n := uint64(0); n < m.cfg.MaxAttempts; n++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		res, err := w.Attempt()
		if err != nil {
			return nil, err
		}
		if m.progress != nil {
			fmt.Fprintf(m.progress, "\rAttempt %d: %s", n+1, w.AddressHex())
		}
		if res != nil {
			return res, nil
		}
	}
	return nil, nil
}

// searchParallel fans the budget out over a fixed pool of workers. The budget
// is split evenly; the integer-division remainder is dropped. First success
// wins: the winning worker cancels the shared context and losing workers stop
// at their next batch boundary (an in-flight batch may finish, harmlessly).
func (m *Miner) searchParallel(parent context.Context) (*types.Result, error) {
	workers := m.cfg.WorkerCount()
	perWorker := m.cfg.MaxAttempts / uint64(workers)
	m.log.Debugw("parallel search", "workers", workers, "attempts_per_worker", perWorker)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	results := make(chan *types.Result, 1)
	errc := make(chan error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := worker.New(m.identity, m.creator, m.matcher, &m.attempts)

			for done := uint64(0); done < perWorker; done += batchSize {
				if ctx.Err() != nil {
					return
				}
				res, err := w.ProcessBatch(batchSize, m.progress)
				if err != nil {
					errc <- err
					cancel()
					return
				}
				if res != nil {
					// only the first successful send is consulted
					select {
					case results <- res:
						cancel()
					default:
					}
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errc)

	if err := <-errc; err != nil {
		return nil, err
	}
	select {
	case res := <-results:
		return res, nil
	default:
	}
	if err := parent.Err(); err != nil {
		return nil, err
	}
	return nil, nil
}
