package thor

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestNumberOf(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want uint32
	}{
		{name: "genesis", id: "0x00000000851caf3cfdb6e899cf5958bfb1ac3413d346d43539627e6be7ec1b4a", want: 0},
		{name: "block 1", id: "0x00000001b7d7e4f0e3b8d2b0c3ab1ed3d4d6e35bde3b1f8c66f3a89e2eb5b3a1", want: 1},
		{name: "large height", id: "0x00ff00aa00000000000000000000000000000000000000000000000000000000", want: 0x00ff00aa},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, NumberOf(common.HexToHash(tt.id)))
		})
	}
}

func TestRevisions(t *testing.T) {
	require.Equal(t, Revision("12345"), RevisionNumber(12345))

	id := common.HexToHash("0x0000000a")
	require.Equal(t, Revision(id.Hex()), RevisionID(id))
}

func TestExpandedBlock_Decode(t *testing.T) {
	raw := `{
		"number": 10,
		"id": "0x0000000a00000000000000000000000000000000000000000000000000000000",
		"parentID": "0x0000000900000000000000000000000000000000000000000000000000000000",
		"timestamp": 1530014500,
		"gasLimit": 10000000,
		"beneficiary": "0xb4094c25f86d628fdd571afc4077f0d0196afb48",
		"signer": "0xb4094c25f86d628fdd571afc4077f0d0196afb48",
		"isTrunk": true,
		"transactions": [{
			"id": "0x4de71f2d588aa8a1ea00fe8312d92966da424d9939a511fc0be81e65fad52af8",
			"origin": "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed",
			"gasPayer": "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed",
			"paid": "0x1236efcbcbb340000",
			"reward": "0x576e189f04f60000",
			"reverted": false,
			"clauses": [{"to": "0x5034aa590125b64023a0262112b98d72e3c8e40e", "value": "0xde0b6b3a7640000", "data": "0x"}],
			"outputs": [{
				"contractAddress": null,
				"events": [],
				"transfers": [{
					"sender": "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed",
					"recipient": "0x5034aa590125b64023a0262112b98d72e3c8e40e",
					"amount": "0xde0b6b3a7640000"
				}]
			}]
		}]
	}`

	var block ExpandedBlock
	require.NoError(t, json.Unmarshal([]byte(raw), &block))
	require.Equal(t, uint32(10), block.Number)
	require.Equal(t, block.Number, NumberOf(block.ID))
	require.True(t, block.IsTrunk)
	require.Len(t, block.Transactions, 1)

	tx := block.Transactions[0]
	require.Len(t, tx.Outputs, 1)
	require.Nil(t, tx.Outputs[0].ContractAddress)
	require.Len(t, tx.Outputs[0].Transfers, 1)
	require.Equal(t, "1000000000000000000", tx.Outputs[0].Transfers[0].Amount.ToInt().String())
}

func TestCallTrace_HasValue(t *testing.T) {
	var trace CallTrace
	require.NoError(t, json.Unmarshal([]byte(`{"type":"CALL","value":"0x0","calls":[{"type":"CALL","value":"0x1"}]}`), &trace))
	require.False(t, trace.HasValue())
	require.True(t, trace.Calls[0].HasValue())
}
