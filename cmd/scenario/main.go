// scenario drives a scripted sequence of game transactions against a
// deployed contract through a dev node's unlocked accounts, logging
// player and cell details between steps.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"thistoken/indexer/chain"
	"thistoken/indexer/config"
	"thistoken/indexer/coord"
	"thistoken/indexer/log"
	"thistoken/indexer/store"
)

const (
	txGas = 250000
	// 100 szabo, same flat fee every game transaction carries
	txFee = 100 * 1e12
)

type step struct {
	player int
	action string
	team   int
	x, y   int
}

// the canonical three-attackers scenario: by the end only the last
// attacker survives and holds 2:3
var steps = []step{
	{player: 1, action: "start", team: 0, x: 2, y: 3},
	{player: 2, action: "start", team: 1, x: 3, y: 1},
	{player: 3, action: "start", team: 1, x: 3, y: 1},
	{player: 4, action: "start", team: 1, x: 3, y: 1},

	{player: 2, action: "move", x: 3, y: 2},
	{player: 3, action: "move", x: 3, y: 2},
	{player: 4, action: "move", x: 3, y: 2},

	{player: 2, action: "move", x: 2, y: 3},
	{player: 3, action: "move", x: 2, y: 3},
	{player: 4, action: "move", x: 2, y: 3},
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	if err := config.Load(*configPath); err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg := config.GetConfig()
	ctx := context.Background()

	client, err := chain.GetClient(cfg.Chain.RPC)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	nid, err := client.NetworkID(ctx)
	if err != nil {
		log.Fatalf("network id: %v", err)
	}

	st := store.NewClient(cfg.Couch.URL, cfg.Couch.Database)
	mapDoc, err := chain.DownloadMap(ctx, st, cfg.Game.Map, nid.String())
	if err != nil {
		log.Fatalf("download map: %v", err)
	}
	contract := common.HexToAddress(mapDoc.Address)
	log.Infof("map %s contract %s block %d", mapDoc.Name, mapDoc.Address, mapDoc.BlockNumber)

	rpcc, err := rpc.DialContext(ctx, cfg.Chain.RPC)
	if err != nil {
		log.Fatalf("dial rpc: %v", err)
	}
	var accounts []common.Address
	if err := rpcc.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		log.Fatalf("list accounts: %v", err)
	}

	gameABI, err := abi.JSON(strings.NewReader(chain.GameABI))
	if err != nil {
		log.Fatalf("parse abi: %v", err)
	}
	teams := config.Teams()

	for _, q := range steps {
		if q.player >= len(accounts) {
			log.Fatalf("scenario needs account %d, node has %d", q.player, len(accounts))
		}
		from := accounts[q.player]
		cell := coord.FromXY(q.x, q.y)

		var data []byte
		switch q.action {
		case "start":
			team := common.HexToAddress(teams[q.team])
			log.Infof("START from=%s team=%s x=%d y=%d", from.Hex(), team.Hex(), q.x, q.y)
			data, err = gameABI.Pack("start", team, big.NewInt(int64(cell)))
		case "move":
			logPlayer(ctx, client, &gameABI, contract, from)
			log.Infof("MOVE player=%s to x=%d y=%d", from.Hex(), q.x, q.y)
			data, err = gameABI.Pack("move", big.NewInt(int64(cell)))
		default:
			continue
		}
		if err != nil {
			log.Fatalf("pack %s: %v", q.action, err)
		}

		var txHash common.Hash
		err = rpcc.CallContext(ctx, &txHash, "eth_sendTransaction", map[string]interface{}{
			"from":  from,
			"to":    contract,
			"gas":   hexutil.Uint64(txGas),
			"value": (*hexutil.Big)(big.NewInt(txFee)),
			"data":  hexutil.Bytes(data),
		})
		if err != nil {
			log.Fatalf("send %s for player %d: %v", q.action, q.player, err)
		}
		log.Infof("tx %s", txHash.Hex())

		if q.action == "move" {
			logPlayer(ctx, client, &gameABI, contract, from)
			logCell(ctx, client, &gameABI, contract, cell)
		}
	}
}

func logPlayer(ctx context.Context, caller ethereum.ContractCaller, gameABI *abi.ABI, contract, player common.Address) {
	data, err := gameABI.Pack("players", player)
	if err != nil {
		log.Errorf("pack players: %v", err)
		return
	}
	out, err := caller.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		log.Errorf("call players: %v", err)
		return
	}
	vals, err := gameABI.Unpack("players", out)
	if err != nil || len(vals) != 4 {
		log.Errorf("unpack players: %v", err)
		return
	}
	token := vals[0].(common.Address)
	cell, _ := coord.Parse(vals[1])
	log.Infof("PLAYER %s team=%s %s health=%v cellIndex=%v",
		player.Hex(), token.Hex(), cell, vals[2], vals[3])
}

func logCell(ctx context.Context, caller ethereum.ContractCaller, gameABI *abi.ABI, contract common.Address, cell coord.Coord) {
	data, err := gameABI.Pack("getCellPlayers", big.NewInt(int64(cell)))
	if err != nil {
		log.Errorf("pack getCellPlayers: %v", err)
		return
	}
	out, err := caller.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		log.Errorf("call getCellPlayers: %v", err)
		return
	}
	vals, err := gameABI.Unpack("getCellPlayers", out)
	if err != nil || len(vals) != 1 {
		log.Errorf("unpack getCellPlayers: %v", err)
		return
	}
	players := vals[0].([]common.Address)
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Hex()
	}
	log.Infof("CELL %s players=%s", cell, fmt.Sprint(names))
}
