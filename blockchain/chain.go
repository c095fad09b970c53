package blockchain

import (
	"context"
	"sync"
	"time"

	"github.com/gomotjhb025-create/Creating-a-simple-blockchain/blockchain/model"
	"github.com/gomotjhb025-create/Creating-a-simple-blockchain/blockchain/pow"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// GenesisPrevHash is the sentinel predecessor hash of the genesis block.
const GenesisPrevHash = "0"

const genesisPayload = "Block genesis"

type Config struct {
	// Difficulty is the number of leading zero hex characters a mined
	// block's hash must carry. Fixed for the chain's lifetime.
	Difficulty int

	// MiningWorkers is how many goroutines race for a nonce during
	// admission. Zero means one.
	MiningWorkers int
}

// Chain is an append-only sequence of blocks, genesis at index 0. It is
// caller-owned; there is no package-level instance.
type Chain struct {
	mu            sync.RWMutex
	blocks        []*model.Block
	difficulty    int
	miningWorkers int
}

func New(config Config) (*Chain, error) {
	if config.Difficulty < 0 {
		return nil, errors.Newf("difficulty must be non-negative, got %d", config.Difficulty)
	}

	genesis, err := createGenesis()
	if err != nil {
		return nil, err
	}

	return &Chain{
		blocks:        []*model.Block{genesis},
		difficulty:    config.Difficulty,
		miningWorkers: config.MiningWorkers,
	}, nil
}

// createGenesis builds the unmined root block. Its hash is whatever the
// initial field values produce; genesis is exempt from the difficulty
// target.
func createGenesis() (*model.Block, error) {
	return model.New(0, genesisPayload, GenesisPrevHash)
}

// Latest returns the tail block. The chain is never empty.
func (c *Chain) Latest() *model.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blocks[len(c.blocks)-1]
}

// AddBlock links the candidate to the current tail, drives the
// proof-of-work search at the chain's difficulty and appends the mined
// block. The candidate's PrevHash, Nonce and Hash are overwritten with
// the admission results. There is no rollback: the only failures are bad
// preconditions, an unserializable payload, or cancellation via ctx.
func (c *Chain) AddBlock(ctx context.Context, candidate *model.Block) error {
	if candidate == nil {
		return errors.New("candidate block is nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	tip := c.blocks[len(c.blocks)-1]
	if candidate.Height != tip.Height+1 {
		return errors.Newf("candidate height %d does not follow tip height %d", candidate.Height, tip.Height)
	}

	candidate.PrevHash = tip.Hash

	start := time.Now()
	res, err := pow.Search(ctx, *candidate, c.difficulty, c.miningWorkers)
	if err != nil {
		return err
	}
	candidate.Nonce = res.Nonce
	candidate.Hash = res.Hash

	c.blocks = append(c.blocks, candidate)
	logrus.Infof("mined block %d in %s (nonce %d): %s", candidate.Height, time.Since(start), candidate.Nonce, candidate.Hash)
	return nil
}

// Validate walks the chain re-deriving every content hash and checking
// linkage, returning a descriptive error for the first violation found.
// Genesis has no predecessor, so only its content hash is checked; its
// hash is not held to the difficulty target.
func (c *Chain) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	genesis := c.blocks[0]
	derived, err := genesis.CanonicalHash()
	if err != nil {
		return errors.Wrap(err, "genesis block")
	}
	if derived != genesis.Hash {
		return errors.Newf("genesis block: content hash mismatch: expected %s, got %s", derived, genesis.Hash)
	}

	for i := 1; i < len(c.blocks); i++ {
		current := c.blocks[i]
		previous := c.blocks[i-1]

		derived, err := current.CanonicalHash()
		if err != nil {
			return errors.Wrapf(err, "block %d", i)
		}
		if derived != current.Hash {
			return errors.Newf("block %d: content hash mismatch: expected %s, got %s", i, derived, current.Hash)
		}
		if current.PrevHash != previous.Hash {
			return errors.Newf("block %d: broken linkage: expected prev hash %s, got %s", i, previous.Hash, current.PrevHash)
		}
	}
	return nil
}

// IsValid is the boolean view of Validate. Tampering and broken linkage
// are outcomes, not failures.
func (c *Chain) IsValid() bool {
	err := c.Validate()
	if err != nil {
		logrus.Debugf("chain validation: %+v", err)
		return false
	}
	return true
}

// Blocks returns a snapshot of the chain's block sequence.
func (c *Chain) Blocks() []*model.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*model.Block, len(c.blocks))
	copy(out, c.blocks)
	return out
}

// Block returns the block at the given height.
func (c *Chain) Block(height int) (*model.Block, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if height < 0 || height >= len(c.blocks) {
		return nil, errors.Newf("height %d out of range [0, %d]", height, len(c.blocks)-1)
	}
	return c.blocks[height], nil
}

func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.blocks)
}

func (c *Chain) Difficulty() int {
	return c.difficulty
}
