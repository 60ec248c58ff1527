package chain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"thistoken/indexer/game"
)

// GameABI is the event/function surface of the ThisTokenRocks contract
// that this side consumes.
const GameABI = `[
  {"type":"event","name":"CityUpdate","inputs":[
    {"name":"coord","type":"uint256","indexed":true},
    {"name":"title","type":"bytes32","indexed":false},
    {"name":"defence","type":"uint256","indexed":false}]},
  {"type":"event","name":"PlayerStart","inputs":[
    {"name":"player","type":"address","indexed":true},
    {"name":"token","type":"address","indexed":false},
    {"name":"coord","type":"uint256","indexed":false}]},
  {"type":"event","name":"PlayerMove","inputs":[
    {"name":"player","type":"address","indexed":true},
    {"name":"oldCoord","type":"uint256","indexed":false},
    {"name":"newCoord","type":"uint256","indexed":false}]},
  {"type":"event","name":"DefenderDamage","inputs":[
    {"name":"defender","type":"address","indexed":true},
    {"name":"cityDefence","type":"uint256","indexed":false},
    {"name":"defenderHealth","type":"uint256","indexed":false},
    {"name":"damage","type":"uint256","indexed":false}]},
  {"type":"event","name":"HealthUpdate","inputs":[
    {"name":"player","type":"address","indexed":true},
    {"name":"health","type":"uint256","indexed":false}]},
  {"type":"event","name":"DefenderDeath","inputs":[
    {"name":"player","type":"address","indexed":true},
    {"name":"token","type":"address","indexed":false},
    {"name":"coord","type":"uint256","indexed":false}]},
  {"type":"event","name":"AttackerDeath","inputs":[
    {"name":"player","type":"address","indexed":true},
    {"name":"token","type":"address","indexed":false},
    {"name":"oldCoord","type":"uint256","indexed":false},
    {"name":"newCoord","type":"uint256","indexed":false}]},
  {"type":"event","name":"PlayerCellAdded","inputs":[
    {"name":"player","type":"address","indexed":true},
    {"name":"coord","type":"uint256","indexed":false},
    {"name":"cellIndex","type":"uint256","indexed":false},
    {"name":"len","type":"uint256","indexed":false}]},
  {"type":"event","name":"PlayerCellRemoved","inputs":[
    {"name":"player","type":"address","indexed":true},
    {"name":"coord","type":"uint256","indexed":false}]},
  {"type":"event","name":"PlayerCellTrimmed","inputs":[
    {"name":"coord","type":"uint256","indexed":true},
    {"name":"len","type":"uint256","indexed":false}]},
  {"type":"function","name":"addCities","inputs":[{"name":"coords","type":"uint256[]"}],"outputs":[],"stateMutability":"payable"},
  {"type":"function","name":"start","inputs":[{"name":"token","type":"address"},{"name":"coord","type":"uint256"}],"outputs":[],"stateMutability":"payable"},
  {"type":"function","name":"move","inputs":[{"name":"coord","type":"uint256"}],"outputs":[],"stateMutability":"payable"},
  {"type":"function","name":"addDefence","inputs":[],"outputs":[],"stateMutability":"payable"},
  {"type":"function","name":"players","inputs":[{"name":"","type":"address"}],"outputs":[
    {"name":"token","type":"address"},{"name":"coord","type":"uint256"},
    {"name":"health","type":"uint256"},{"name":"cellIndex","type":"uint256"}],"stateMutability":"view"},
  {"type":"function","name":"getCellPlayers","inputs":[{"name":"coord","type":"uint256"}],"outputs":[
    {"name":"","type":"address[]"}],"stateMutability":"view"}
]`

var gameABI = mustParseABI(GameABI)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(fmt.Sprintf("parse game abi: %v", err))
	}
	return parsed
}

// DecodeLog turns a receipt log into the raw record consumed by the
// decoder. Logs whose signature is not in the ABI come back named by
// their topic hash so they surface as Unknown events instead of being
// dropped.
func DecodeLog(lg types.Log) game.Record {
	if len(lg.Topics) == 0 {
		return game.Record{Name: "anonymous", Args: map[string]interface{}{
			"data": hexutil.Encode(lg.Data),
		}}
	}
	ev, err := gameABI.EventByID(lg.Topics[0])
	if err != nil {
		return game.Record{Name: lg.Topics[0].Hex(), Args: map[string]interface{}{
			"data": hexutil.Encode(lg.Data),
		}}
	}

	args := make(map[string]interface{})
	indexed := make(abi.Arguments, 0, len(ev.Inputs))
	for _, input := range ev.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}
	if err := abi.ParseTopicsIntoMap(args, indexed, lg.Topics[1:]); err != nil {
		return game.Record{Name: ev.Name, Args: normalizeArgs(args)}
	}
	if len(lg.Data) > 0 {
		if err := gameABI.UnpackIntoMap(args, ev.Name, lg.Data); err != nil {
			return game.Record{Name: ev.Name, Args: normalizeArgs(args)}
		}
	}
	return game.Record{Name: ev.Name, Args: normalizeArgs(args)}
}

// normalizeArgs flattens go-ethereum value types so the decoder only
// deals with strings, big ints and byte arrays.
func normalizeArgs(args map[string]interface{}) map[string]interface{} {
	for k, v := range args {
		switch t := v.(type) {
		case common.Address:
			args[k] = strings.ToLower(t.Hex())
		case common.Hash:
			args[k] = t.Hex()
		}
	}
	return args
}
