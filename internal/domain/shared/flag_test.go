package shared

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlag_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want Flag
	}{
		{`1`, true},
		{`0`, false},
		{`true`, true},
		{`false`, false},
		{`"1"`, true},
		{`"0"`, false},
		{`null`, false},
		{`""`, false},
		{`2`, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var f Flag
			require.NoError(t, json.Unmarshal([]byte(tt.in), &f))
			assert.Equal(t, tt.want, f)
		})
	}

	var f Flag
	assert.Error(t, json.Unmarshal([]byte(`"yes please"`), &f))
}

func TestFlag_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		A Flag `json:"a"`
		B Flag `json:"b"`
	}{A: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1,"b":0}`, string(out))
	assert.Equal(t, 1, Flag(true).Int())
}

func TestText_UnmarshalJSON(t *testing.T) {
	var v struct {
		A Text `json:"a"`
		B Text `json:"b"`
		C Text `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"F-12","b":1042,"c":null}`), &v))
	assert.Equal(t, Text("F-12"), v.A)
	assert.Equal(t, "1042", v.B.String())
	assert.Equal(t, 1042, v.B.Int())
	assert.Empty(t, v.C)
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"phone": "Phone is required",
		"name":  "Name is required",
	}}
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrNetworkFailure)
	assert.Equal(t, "Name is required", err.First())
	assert.Equal(t, "Name is required; Phone is required", err.Error())
}

func TestDomainError_Is(t *testing.T) {
	wrapped := NewDomainError(CodeNetworkFailure, "HTTP 500 on /admin/customers")
	assert.ErrorIs(t, wrapped, ErrNetworkFailure)
	assert.NotErrorIs(t, wrapped, ErrNotFound)
}
