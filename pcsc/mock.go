//go:build mock

package pcsc

import (
	"time"

	"github.com/callebjorkell/smartcard-gateway/card"
)

const mockReader = "Simulated PC/SC Reader 00 00"

// ATR of a contactless storage card as reported through a PC/SC reader
var mockATR = []byte{
	0x3B, 0x8F, 0x80, 0x01, 0x80, 0x4F, 0x0C, 0xA0, 0x00, 0x00,
	0x03, 0x06, 0x03, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x6A,
}

// CreateSystem returns a simulated reader. The card sits in the reader for 30 seconds
// and is then removed for 10, over and over.
func CreateSystem() card.ReaderSystem {
	return mockSystem{started: time.Now()}
}

type mockSystem struct {
	started time.Time
}

func (m mockSystem) ListReaders() ([]string, error) {
	return []string{mockReader}, nil
}

func (m mockSystem) Connect(reader string) ([]byte, error) {
	if time.Since(m.started)%(40*time.Second) >= 30*time.Second {
		return nil, card.NoCardErr
	}
	return mockATR, nil
}
