package partner

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomer_Decode(t *testing.T) {
	raw := `{"id":5,"file_number":1042,"first_name":"Asha","second_name":"Rao",
		"phone_number_1":"0300-1234567","address":"12 Mall Rd","is_active":1}`

	var c Customer
	require.NoError(t, json.Unmarshal([]byte(raw), &c))

	assert.Equal(t, 5, c.RecordID())
	assert.Equal(t, "1042", c.FileNumber.String())
	assert.Equal(t, "Asha Rao", c.FullName())
	assert.True(t, c.Active())

	c.SetActive(false)
	out, err := json.Marshal(&c)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"is_active":0`)
}

func TestCustomer_MatchesName(t *testing.T) {
	c := &Customer{FirstName: "Asha", SecondName: "Rao"}

	assert.True(t, c.MatchesName(""))
	assert.True(t, c.MatchesName("sha r"))
	assert.True(t, c.MatchesName("RAO"))
	assert.False(t, c.MatchesName("Bilal"))

	assert.Equal(t, "Asha", (&Customer{FirstName: "Asha"}).FullName())
}

func TestCustomerInput_Apply(t *testing.T) {
	c := &Customer{ID: 3, Date: "2024-01-01", IsActive: true}
	CustomerInput{FileNumber: "F-9", FirstName: "Bilal", Phone: "555"}.Apply(c)

	assert.Equal(t, 3, c.ID)
	assert.Equal(t, "F-9", c.FileNumber.String())
	assert.Equal(t, "Bilal", c.FirstName)
	assert.Equal(t, "2024-01-01", c.Date)
	assert.True(t, c.Active())
}

func TestFilterActive(t *testing.T) {
	list := []*Customer{
		{ID: 1, IsActive: true},
		{ID: 2},
		{ID: 3, IsActive: true},
	}
	active := FilterActive(list)
	require.Len(t, active, 2)
	assert.Equal(t, 3, active[1].ID)
}
