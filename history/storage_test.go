package history

import (
	"testing"
	"time"

	"github.com/callebjorkell/smartcard-gateway/card"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *DB {
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestReadWriteRecord(t *testing.T) {
	db := openDB(t)

	r := FromReading(card.Reading{
		Reader: "ACS ACR39U",
		ATR:    []byte{0x3B, 0x6E},
		ReadAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, db.Store(r))

	b, err := db.Read(r.ID)
	require.NoError(t, err)
	assert.Equal(t, r, b)
	assert.Equal(t, "3B 6E", b.ATR)

	require.NoError(t, db.Delete(r.ID))
	_, err = db.Read(r.ID)
	assert.Equal(t, NotFoundErr, err)
	assert.Equal(t, NotFoundErr, db.Delete(r.ID))
}

func TestRecent(t *testing.T) {
	db := openDB(t)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, db.Store(FromReading(card.Reading{
			Reader: "r",
			ATR:    []byte{byte(i)},
			ReadAt: base.Add(time.Duration(i) * time.Minute),
		})))
	}

	tests := []struct {
		name  string
		limit int
		atrs  []string
	}{
		{"all", 0, []string{"04", "03", "02", "01", "00"}},
		{"limited", 2, []string{"04", "03"}},
		{"above total", 10, []string{"04", "03", "02", "01", "00"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			records, err := db.Recent(tc.limit)
			require.NoError(t, err)
			var atrs []string
			for _, r := range records {
				atrs = append(atrs, r.ATR)
			}
			assert.Equal(t, tc.atrs, atrs)
		})
	}
}

func TestRecentEmpty(t *testing.T) {
	records, err := openDB(t).Recent(10)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestListenerWithGateway(t *testing.T) {
	db := openDB(t)
	g := card.NewGateway(staticSystem{})
	g.OnRead(db.Listener())

	g.ReadFirstCard()
	g.ReadFirstCard()

	records, err := db.Recent(0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "3B 00", records[0].ATR)
	assert.Equal(t, "static", records[0].Reader)
}

type staticSystem struct{}

func (staticSystem) ListReaders() ([]string, error) {
	return []string{"static"}, nil
}

func (staticSystem) Connect(string) ([]byte, error) {
	return []byte{0x3B, 0x00}, nil
}
