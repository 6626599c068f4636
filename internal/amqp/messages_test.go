package amqp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet/internal/core"
	"wallet/internal/notify"
)

func TestStoreChangedMessageFromEvent(t *testing.T) {
	at := time.Date(2024, 3, 15, 10, 30, 0, 0, time.FixedZone("CET", 3600))
	msg := NewStoreChangedMessage(notify.Event{Kind: core.KindTransaction, Op: notify.OpUpdated, ID: "t1", At: at})

	data, err := msg.ToJSON()
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"kind":"transaction","op":"updated","id":"t1","timestamp":"2024-03-15T09:30:00Z"}`,
		string(data))

	back, err := StoreChangedMessageFromJSON(data)
	require.NoError(t, err)
	e := back.Event()
	assert.Equal(t, core.KindTransaction, e.Kind)
	assert.Equal(t, notify.OpUpdated, e.Op)
	assert.Equal(t, "t1", e.ID)
	assert.True(t, at.Equal(e.At))
}

func TestNewStoreChangedMessageStampsZeroTime(t *testing.T) {
	msg := NewStoreChangedMessage(notify.Event{Kind: core.KindAccount, Op: notify.OpDeleted, ID: "a"})
	assert.False(t, msg.Timestamp.IsZero())
}

func TestStoreChangedMessageFromJSONRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{kind`},
		{"missing kind", `{"op":"created","id":"x"}`},
		{"missing op", `{"kind":"account","id":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := StoreChangedMessageFromJSON([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}
