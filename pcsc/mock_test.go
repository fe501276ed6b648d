//go:build mock

package pcsc

import (
	"testing"
	"time"

	"github.com/callebjorkell/smartcard-gateway/card"
	"github.com/stretchr/testify/assert"
)

func TestMockCardCycle(t *testing.T) {
	s := CreateSystem()
	readers, err := s.ListReaders()
	assert.NoError(t, err)
	assert.Equal(t, []string{mockReader}, readers)

	atr, err := s.Connect(mockReader)
	assert.NoError(t, err)
	assert.Equal(t, "3B 8F 80 01 80 4F 0C A0 00 00 03 06 03 00 01 00 00 00 00 6A", card.FormatATR(atr))

	removed := mockSystem{started: time.Now().Add(-35 * time.Second)}
	_, err = removed.Connect(mockReader)
	assert.Equal(t, card.NoCardErr, err)
}
