package main

import (
	"context"

	"github.com/gomotjhb025-create/Creating-a-simple-blockchain/blockchain"
	"github.com/gomotjhb025-create/Creating-a-simple-blockchain/blockchain/model"

	"github.com/pkg/profile"
	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"
)

const demoDifficulty = 4

func main() {
	defer profile.Start(profile.CPUProfile).Stop()
	//logrus.SetLevel(logrus.DebugLevel)

	chain, err := blockchain.New(blockchain.Config{
		Difficulty:    demoDifficulty,
		MiningWorkers: 4,
	})
	if err != nil {
		logrus.Fatalf("%+v", err)
	}

	payloads := []interface{}{
		map[string]interface{}{"amount": 100},
		map[string]interface{}{"amount": 50},
		map[string]interface{}{"amount": 200},
	}

	ctx := context.Background()
	for i, payload := range payloads {
		candidate, err := model.New(i+1, payload, "")
		if err != nil {
			logrus.Fatalf("%+v", err)
		}
		if err := chain.AddBlock(ctx, candidate); err != nil {
			logrus.Fatalf("%+v", err)
		}
	}

	printChain(chain)
	printVerdict(chain)

	// tamper with a mined payload and show validation catching it
	tampered, err := chain.Block(2)
	if err != nil {
		logrus.Fatalf("%+v", err)
	}
	tampered.Payload = map[string]interface{}{"amount": 999}
	logrus.Warnf("overwrote payload of block %d without re-mining", tampered.Height)
	printVerdict(chain)
}

func printChain(chain *blockchain.Chain) {
	for _, block := range chain.Blocks() {
		box := pterm.DefaultBox.WithTitle(pterm.Sprintf("block %d", block.Height)).WithTitleTopCenter()
		box.Println(pterm.Sprintf(
			"time      %s\npayload   %v\nprev hash %s\nnonce     %d\nhash      %s",
			block.TimeStamp, block.Payload, block.PrevHash, block.Nonce, block.Hash,
		))
	}
}

func printVerdict(chain *blockchain.Chain) {
	if err := chain.Validate(); err != nil {
		pterm.Error.Printfln("chain invalid: %v", err)
		return
	}
	pterm.Success.Printfln("chain valid (%d blocks, difficulty %d)", chain.Len(), chain.Difficulty())
}
