package kafka

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wheat-yield-etl/internal/domain"
)

func yieldTable() *domain.Table {
	t := domain.NewTable("plony_pszenicy",
		domain.Column{Name: "id", Kind: domain.ColumnText},
		domain.Column{Name: "wojewodztwo", Kind: domain.ColumnText},
		domain.Column{Name: "rok", Kind: domain.ColumnInt},
		domain.Column{Name: "plony_dt_ha", Kind: domain.ColumnFloat},
	)
	t.Append("011200000000", "MAŁOPOLSKIE", 2016, 45.3)
	t.Append("012400000000", "ŚLĄSKIE", 2016, nil)
	return t
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	tbl := yieldTable()

	msg, err := serializeToMessage(tbl, 0, now)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(msg.Key), "plony_pszenicy-"))
	assert.JSONEq(t, `{"id":"011200000000","wojewodztwo":"MAŁOPOLSKIE","rok":2016,"plony_dt_ha":45.3}`, string(msg.Value))
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "table", msg.Headers[0].Key)
	assert.Equal(t, []byte("plony_pszenicy"), msg.Headers[0].Value)
	assert.Equal(t, "loaded_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestSerializeToMessage_NullValue(t *testing.T) {
	msg, err := serializeToMessage(yieldTable(), 1, time.Now())
	require.NoError(t, err)
	assert.Contains(t, string(msg.Value), `"plony_dt_ha":null`)
}

func TestSerializeToMessage_DeterministicKey(t *testing.T) {
	tbl := yieldTable()
	a, err := serializeToMessage(tbl, 0, time.Now())
	require.NoError(t, err)
	b, err := serializeToMessage(tbl, 0, time.Now().Add(time.Hour))
	require.NoError(t, err)
	c, err := serializeToMessage(tbl, 1, time.Now())
	require.NoError(t, err)

	assert.Equal(t, a.Key, b.Key)
	assert.NotEqual(t, a.Key, c.Key)
}
