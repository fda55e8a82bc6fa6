package postgres

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLog_CompressesLargeChanges(t *testing.T) {
	log, err := NewAuditLog(nil)
	require.NoError(t, err)

	small := changeRow(json.RawMessage(`{"amount":200}`))
	enc := log.encode(small)
	assert.Equal(t, CompressionNone, enc.CompressionAlgo)
	assert.JSONEq(t, `{"amount":200}`, string(enc.Changes))

	big := json.RawMessage(`{"note":"` + strings.Repeat("rice ", 2000) + `"}`)
	enc = log.encode(changeRow(big))
	assert.Equal(t, CompressionZstd, enc.CompressionAlgo)
	assert.Nil(t, enc.Changes)
	assert.Less(t, len(enc.ChangesCompressed), len(big))

	dec, err := log.decode(enc)
	require.NoError(t, err)
	assert.Equal(t, string(big), string(dec.Changes))
	assert.Nil(t, dec.ChangesCompressed)
}

func changeRow(changes json.RawMessage) auditRow {
	return auditRow{Changes: changes}
}
