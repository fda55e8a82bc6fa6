package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_JSONIsNumber(t *testing.T) {
	out, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{Amount: MustMoney("150.50")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":150.5}`, string(out))
}

func TestMoney_AcceptsQuotedAndBare(t *testing.T) {
	var v struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"0.10","b":0.2}`), &v))
	assert.True(t, v.A.Add(v.B).Equal(MustMoney("0.3")))
}

func TestMinMoney(t *testing.T) {
	assert.True(t, MinMoney(NewMoney(200), NewMoney(150)).Equal(NewMoney(150)))
	assert.True(t, MinMoney(NewMoney(10), NewMoney(150)).Equal(NewMoney(10)))
}
