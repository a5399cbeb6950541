package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	b, err := json.Marshal(OK(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":0,"msg":"OK","data":{}}`, string(b))

	b, err = json.Marshal(Error(CodeConflict, "").WithKind("duplicate_item"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":409,"msg":"Conflict","kind":"duplicate_item","data":{}}`, string(b))

	assert.Equal(t, "list not found", Error(CodeNotFound, "list not found").Msg)
}
