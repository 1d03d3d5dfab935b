package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID int `json:"id"`
}

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []row
	}{
		{"bare array", `[{"id":1},{"id":2}]`, []row{{1}, {2}}},
		{"one wrapper", `{"data":[{"id":1}]}`, []row{{1}}},
		{"paginated wrapper", `{"current_page":1,"data":{"data":[{"id":3}]}}`, []row{{3}}},
		{"null", `null`, []row{}},
		{"empty", ``, []row{}},
		{"missing data", `{"total":0}`, []row{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeList[row](json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := decodeList[row](json.RawMessage(`{"data":{"data":{"data":{"data":[]}}}}`))
	assert.Error(t, err)
}

func TestDecodeObject(t *testing.T) {
	var r row
	require.NoError(t, decodeObject(json.RawMessage(`{"data":{"id":4}}`), &r, "data"))
	assert.Equal(t, 4, r.ID)

	r = row{}
	require.NoError(t, decodeObject(json.RawMessage(`{"id":5}`), &r, "data"))
	assert.Equal(t, 5, r.ID)

	r = row{}
	require.NoError(t, decodeObject(json.RawMessage(`{"measurement":{"id":6},"id":1}`), &r, "measurement", "data"))
	assert.Equal(t, 6, r.ID)
}

func TestDecodeEnvelope(t *testing.T) {
	env, err := decodeEnvelope([]byte(`{"status":false,"message":"nope"}`))
	require.NoError(t, err)
	assert.False(t, env.OK())
	assert.Equal(t, "nope", env.Message)

	env, err = decodeEnvelope([]byte(` [{"id":1}]`))
	require.NoError(t, err)
	assert.True(t, env.OK())
	assert.JSONEq(t, `[{"id":1}]`, string(env.Data))

	env, err = decodeEnvelope([]byte(`{"status":200,"data":{}}`))
	require.NoError(t, err)
	assert.True(t, env.OK())

	_, err = decodeEnvelope([]byte(`<html>`))
	assert.Error(t, err)
}
