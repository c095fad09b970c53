package pow

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gomotjhb025-create/Creating-a-simple-blockchain/blockchain/model"

	"github.com/cockroachdb/errors"
)

func testBlock(t *testing.T) model.Block {
	t.Helper()
	block, err := model.New(1, map[string]interface{}{"amount": 100}, "0")
	if err != nil {
		t.Fatal(err)
	}
	return *block
}

func TestSearchZeroDifficulty(t *testing.T) {
	block := testBlock(t)

	res, err := Search(context.Background(), block, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if res.Nonce != block.Nonce {
		t.Errorf("difficulty 0 should leave the nonce unchanged: expected %d, got %d", block.Nonce, res.Nonce)
	}
	if res.Hash != block.Hash {
		t.Errorf("expected %s, got %s", block.Hash, res.Hash)
	}
}

func TestSearchMeetsTarget(t *testing.T) {
	block := testBlock(t)

	res, err := Search(context.Background(), block, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(res.Hash, "0") {
		t.Errorf("digest %s does not meet difficulty 1", res.Hash)
	}

	derived, err := model.CanonicalHash(block.Height, block.TimeStamp, block.Payload, block.PrevHash, res.Nonce)
	if err != nil {
		t.Fatal(err)
	}
	if derived != res.Hash {
		t.Errorf("expected %s, got %s", derived, res.Hash)
	}
}

func TestSearchParallel(t *testing.T) {
	block := testBlock(t)

	res, err := Search(context.Background(), block, 2, 4)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(res.Hash, "00") {
		t.Errorf("digest %s does not meet difficulty 2", res.Hash)
	}
}

func TestSearchDoesNotMutateBlock(t *testing.T) {
	block := testBlock(t)
	nonce, hash := block.Nonce, block.Hash

	_, err := Search(context.Background(), block, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if block.Nonce != nonce || block.Hash != hash {
		t.Error("search mutated its input block")
	}
}

func TestSearchCancellation(t *testing.T) {
	block := testBlock(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	// a full-digest run of zeros is unreachable in any practical time
	_, err := Search(ctx, block, 64, 2)
	if err == nil {
		t.Fatal("expected cancellation to abort the search")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSearchNegativeDifficulty(t *testing.T) {
	block := testBlock(t)

	_, err := Search(context.Background(), block, -1, 1)
	if err == nil {
		t.Fatal("expected an error for negative difficulty")
	}
}
