package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
)

// Block is a single ledger entry. Height and Payload are fixed by the
// caller at construction; PrevHash, Nonce and Hash are set by the chain
// during admission, after which the block is immutable.
type Block struct {
	Height    int
	TimeStamp time.Time
	Payload   interface{}
	PrevHash  string
	Nonce     uint64
	Hash      string
}

func New(height int, payload interface{}, prevHash string) (*Block, error) {
	if height < 0 {
		return nil, errors.Newf("block height must be non-negative, got %d", height)
	}

	block := &Block{
		Height:    height,
		TimeStamp: time.Now().UTC(),
		Payload:   payload,
		PrevHash:  prevHash,
	}

	hash, err := block.CanonicalHash()
	if err != nil {
		return nil, err
	}
	block.Hash = hash

	return block, nil
}

// CanonicalHash recomputes the digest over the block's current field
// values. It does not touch b.Hash; comparing the two is how tampering
// is detected.
func (b *Block) CanonicalHash() (string, error) {
	return CanonicalHash(b.Height, b.TimeStamp, b.Payload, b.PrevHash, b.Nonce)
}

// CanonicalHash serializes the five hashed fields as a JSON object and
// returns the hex SHA-256 of the bytes. encoding/json writes map keys in
// lexicographic order, so logically identical field sets always produce
// byte-identical input regardless of construction order. The timestamp
// is rendered as RFC3339Nano in UTC so the digest never depends on the
// host zone.
func CanonicalHash(height int, timeStamp time.Time, payload interface{}, prevHash string, nonce uint64) (string, error) {
	serialized, err := json.Marshal(map[string]interface{}{
		"height":    height,
		"timestamp": timeStamp.UTC().Format(time.RFC3339Nano),
		"payload":   payload,
		"prevhash":  prevHash,
		"nonce":     nonce,
	})
	if err != nil {
		return "", errors.Wrap(err, "canonical serialization")
	}

	sum := sha256.Sum256(serialized)
	return hex.EncodeToString(sum[:]), nil
}

func (b Block) String() string {
	return b.Hash
}
