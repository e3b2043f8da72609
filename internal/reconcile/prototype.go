package reconcile

import (
	"bytes"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// prototypeABI lists the Prototype builtin methods and events. Every method takes
// the contract it acts on as its first argument (_self), and the events it emits
// are logged at that address instead of the Prototype address.
const prototypeABI = `[
	{"type":"function","name":"master","stateMutability":"view","inputs":[{"name":"_self","type":"address"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"setMaster","inputs":[{"name":"_self","type":"address"},{"name":"_newMaster","type":"address"}],"outputs":[]},
	{"type":"function","name":"balance","stateMutability":"view","inputs":[{"name":"_self","type":"address"},{"name":"_blockNumber","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"energy","stateMutability":"view","inputs":[{"name":"_self","type":"address"},{"name":"_blockNumber","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"hasCode","stateMutability":"view","inputs":[{"name":"_self","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"storageFor","stateMutability":"view","inputs":[{"name":"_self","type":"address"},{"name":"_key","type":"bytes32"}],"outputs":[{"name":"","type":"bytes32"}]},
	{"type":"function","name":"creditPlan","stateMutability":"view","inputs":[{"name":"_self","type":"address"}],"outputs":[{"name":"credit","type":"uint256"},{"name":"recoveryRate","type":"uint256"}]},
	{"type":"function","name":"setCreditPlan","inputs":[{"name":"_self","type":"address"},{"name":"_credit","type":"uint256"},{"name":"_recoveryRate","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"isUser","stateMutability":"view","inputs":[{"name":"_self","type":"address"},{"name":"_user","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"userCredit","stateMutability":"view","inputs":[{"name":"_self","type":"address"},{"name":"_user","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"addUser","inputs":[{"name":"_self","type":"address"},{"name":"_user","type":"address"}],"outputs":[]},
	{"type":"function","name":"removeUser","inputs":[{"name":"_self","type":"address"},{"name":"_user","type":"address"}],"outputs":[]},
	{"type":"function","name":"sponsor","inputs":[{"name":"_self","type":"address"}],"outputs":[]},
	{"type":"function","name":"unsponsor","inputs":[{"name":"_self","type":"address"}],"outputs":[]},
	{"type":"function","name":"isSponsor","stateMutability":"view","inputs":[{"name":"_self","type":"address"},{"name":"_sponsor","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"selectSponsor","inputs":[{"name":"_self","type":"address"},{"name":"_sponsor","type":"address"}],"outputs":[]},
	{"type":"function","name":"currentSponsor","stateMutability":"view","inputs":[{"name":"_self","type":"address"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"event","name":"$Master","anonymous":false,"inputs":[{"name":"newMaster","type":"address","indexed":false}]},
	{"type":"event","name":"$CreditPlan","anonymous":false,"inputs":[{"name":"credit","type":"uint256","indexed":false},{"name":"recoveryRate","type":"uint256","indexed":false}]},
	{"type":"event","name":"$User","anonymous":false,"inputs":[{"name":"user","type":"address","indexed":true},{"name":"action","type":"bytes32","indexed":false}]},
	{"type":"event","name":"$Sponsor","anonymous":false,"inputs":[{"name":"sponsor","type":"address","indexed":true},{"name":"action","type":"bytes32","indexed":false}]}
]`

var (
	prototype   = mustParseABI(prototypeABI)
	masterEvent = prototype.Events["$Master"]

	// MasterTopic is the topic0 of the $Master event logged when a contract is created.
	MasterTopic = masterEvent.ID
)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// prototypeSelf returns the _self argument of a Prototype call.
func prototypeSelf(input []byte) (common.Address, bool) {
	if len(input) < 4 {
		return common.Address{}, false
	}

	for _, method := range prototype.Methods {
		if !bytes.Equal(method.ID, input[:4]) {
			continue
		}

		args, err := method.Inputs.Unpack(input[4:])
		if err != nil || len(args) == 0 {
			return common.Address{}, false
		}

		self, ok := args[0].(common.Address)
		return self, ok
	}

	return common.Address{}, false
}

// decodeMaster returns the newMaster argument of a $Master event.
func decodeMaster(data []byte) (common.Address, bool) {
	args, err := masterEvent.Inputs.Unpack(data)
	if err != nil || len(args) != 1 {
		return common.Address{}, false
	}

	master, ok := args[0].(common.Address)
	return master, ok
}

// EncodeMaster returns the data of a $Master event naming newMaster.
func EncodeMaster(newMaster common.Address) []byte {
	data, err := masterEvent.Inputs.Pack(newMaster)
	if err != nil {
		panic(err)
	}
	return data
}

// EncodePrototypeCall returns the input of a Prototype method call.
func EncodePrototypeCall(method string, args ...any) ([]byte, error) {
	return prototype.Pack(method, args...)
}
