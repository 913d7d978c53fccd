package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEpochMillisMarshal(t *testing.T) {
	b, err := json.Marshal(Millis(1700000000000))
	require.NoError(t, err)
	assert.Equal(t, "1700000000000", string(b))

	b, err = json.Marshal(EpochMillis{})
	require.NoError(t, err)
	assert.Equal(t, "0", string(b))
}

func TestEpochMillisUnmarshal(t *testing.T) {
	var e EpochMillis
	require.NoError(t, json.Unmarshal([]byte("1700000000000"), &e))
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), e.Time)

	require.NoError(t, json.Unmarshal([]byte("0"), &e))
	assert.True(t, e.IsZero())

	require.NoError(t, json.Unmarshal([]byte("null"), &e))
	assert.True(t, e.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`"2024-01-01"`), &e))
}

func TestEpochMillisInStruct(t *testing.T) {
	n := Note{ID: "n1", Title: "reminder", ReminderDate: Millis(1700000000000)}
	b, err := json.Marshal(n)
	require.NoError(t, err)

	var back Note
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, n.ReminderDate, back.ReminderDate)
	assert.Equal(t, int64(1700000000000), back.ReminderDate.UnixMilli())
}

func TestBillTotal(t *testing.T) {
	items := []ItemBill{
		{Quantity: 2, MarketRate: 30, ExtraCharges: 5},
		{Quantity: 1, MarketRate: 100},
		{},
	}
	assert.Equal(t, 165.0, BillTotal(items))
	assert.Equal(t, 0.0, BillTotal(nil))
}

func TestValidTaskStatus(t *testing.T) {
	assert.True(t, ValidTaskStatus(TaskPending))
	assert.True(t, ValidTaskStatus(TaskCompleted))
	assert.True(t, ValidTaskStatus(TaskCanceled))
	assert.False(t, ValidTaskStatus("DONE"))
	assert.False(t, ValidTaskStatus(""))
}
