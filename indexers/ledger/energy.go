package ledger

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/goran-ethernal/ThorIndexor/pkg/thor"
)

const energyABI = `[
	{"type":"event","name":"Transfer","anonymous":false,"inputs":[
		{"name":"_from","type":"address","indexed":true},
		{"name":"_to","type":"address","indexed":true},
		{"name":"_value","type":"uint256","indexed":false}
	]}
]`

var (
	builtinEnergy = func() abi.ABI {
		parsed, err := abi.JSON(strings.NewReader(energyABI))
		if err != nil {
			panic(err)
		}
		return parsed
	}()

	// TransferTopic is the topic0 of the VTHO Transfer event.
	TransferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

	// energyGrowthRate is the VTHO wei generated per VET per second.
	energyGrowthRate = big.NewInt(5_000_000_000)
	oneVET           = big.NewInt(1_000_000_000_000_000_000)
)

// accrue returns energy grown by the VET balance held from one timestamp to another.
// The result is truncated, like the node does.
func accrue(balance, energy *big.Int, from, to uint64) *big.Int {
	grown := new(big.Int).Set(energy)
	if to <= from || balance.Sign() <= 0 {
		return grown
	}

	x := new(big.Int).Mul(balance, new(big.Int).SetUint64(to-from))
	x.Mul(x, energyGrowthRate)
	x.Quo(x, oneVET)

	return grown.Add(grown, x)
}

// energyTransfer is a VTHO transfer logged by the Energy builtin.
type energyTransfer struct {
	From  common.Address
	To    common.Address
	Value *big.Int
}

// decodeEnergyTransfer returns the VTHO transfer logged by ev, false for any other event.
func decodeEnergyTransfer(ev thor.Event) (*energyTransfer, bool) {
	if ev.Address != thor.EnergyAddress || len(ev.Topics) != 3 || ev.Topics[0] != TransferTopic {
		return nil, false
	}

	values, err := builtinEnergy.Unpack("Transfer", ev.Data)
	if err != nil || len(values) != 1 {
		return nil, false
	}

	value, ok := values[0].(*big.Int)
	if !ok {
		return nil, false
	}

	return &energyTransfer{
		From:  common.BytesToAddress(ev.Topics[1].Bytes()),
		To:    common.BytesToAddress(ev.Topics[2].Bytes()),
		Value: value,
	}, true
}
