package pow

import (
	"context"
	"strings"
	"sync"

	"github.com/gomotjhb025-create/Creating-a-simple-blockchain/blockchain/model"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// Result is a winning nonce and the digest it produces. The search never
// writes to the block it was given; committing the result is the
// caller's job.
type Result struct {
	Nonce uint64
	Hash  string
}

// Search looks for a nonce whose digest starts with `difficulty` zero
// hex characters, counting upward from the block's current nonce. The
// block's own nonce is tried first, so difficulty 0 returns after a
// single attempt with the nonce unchanged.
//
// The loop is unbounded on purpose; the cost of an unreachable target is
// proof-of-work's point. ctx is polled between attempts and is the only
// way to abandon a search.
func Search(ctx context.Context, block model.Block, difficulty int, workers int) (Result, error) {
	if difficulty < 0 {
		return Result{}, errors.Newf("difficulty must be non-negative, got %d", difficulty)
	}
	if workers < 1 {
		workers = 1
	}

	target := strings.Repeat("0", difficulty)

	hash, err := block.CanonicalHash()
	if err != nil {
		return Result{}, err
	}
	if strings.HasPrefix(hash, target) {
		return Result{Nonce: block.Nonce, Hash: hash}, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan Result, workers)
	failures := make(chan error, workers)
	wg := sync.WaitGroup{}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerNum int) {
			defer wg.Done()
			search(ctx, cancel, workerNum, block, target, uint64(workers), results, failures)
		}(w)
	}
	wg.Wait()

	select {
	case res := <-results:
		return res, nil
	default:
	}
	select {
	case err := <-failures:
		return Result{}, err
	default:
	}
	return Result{}, errors.WithStack(ctx.Err())
}

// search strides nonces block.Nonce+1+workerNum, +stride, ... so workers
// cover disjoint ranges. First finisher cancels the rest.
func search(ctx context.Context, cancel context.CancelFunc, workerNum int, block model.Block, target string, stride uint64, results chan<- Result, failures chan<- error) {
	attempts := 0
	for nonce := block.Nonce + 1 + uint64(workerNum); ; nonce += stride {
		if ctx.Err() != nil {
			logrus.Debugf("worker %d: search abandoned after %d attempts", workerNum, attempts)
			return
		}

		hash, err := model.CanonicalHash(block.Height, block.TimeStamp, block.Payload, block.PrevHash, nonce)
		if err != nil {
			failures <- err
			cancel()
			return
		}
		attempts++

		if strings.HasPrefix(hash, target) {
			logrus.Debugf("worker %d: found nonce %d after %d attempts", workerNum, nonce, attempts)
			results <- Result{Nonce: nonce, Hash: hash}
			cancel()
			return
		}
	}
}
