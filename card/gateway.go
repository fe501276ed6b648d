package card

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// ReaderSystem is the platform smart card subsystem (PC/SC). Connect opens a
// connection to the reader, negotiates a protocol and returns the ATR of the card.
// The connection is released before Connect returns.
type ReaderSystem interface {
	ListReaders() ([]string, error)
	Connect(reader string) ([]byte, error)
}

type Reading struct {
	Reader string
	ATR    []byte
	ReadAt time.Time
}

type Gateway struct {
	system ReaderSystem

	// the reader is a single physical device, only one request talks to it at a time
	lock      sync.Mutex
	listeners []func(Reading)
}

func NewGateway(system ReaderSystem) *Gateway {
	return &Gateway{system: system}
}

// OnRead registers a function that is called after every successful read.
func (g *Gateway) OnRead(f func(Reading)) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.listeners = append(g.listeners, f)
}

// ReadFirstCard reads the ATR of the card in the first available reader and returns the
// response body together with the HTTP status it should be served with.
func (g *Gateway) ReadFirstCard() (Result, int) {
	r, err := g.Read()
	if err != nil {
		re := classify(err)
		return Failure(re), re.Kind.Status()
	}
	return Success(r), http.StatusOK
}

// Read returns the first reader's card. Failures are always a *ReadError.
func (g *Gateway) Read() (Reading, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	r, err := g.read()
	if err != nil {
		switch err.Kind {
		case NoReader:
			log.Warn("No reader detected")
		case NoCard:
			log.Warn("No card in the reader")
		case ConnectionFailed:
			log.Errorf("Card connection failed: %v", err.Cause)
		default:
			log.Errorf("Card read failed: %v", err.Message)
		}
		return Reading{}, err
	}

	log.Infof("Read card with ATR %v from %v", FormatATR(r.ATR), r.Reader)
	for _, l := range g.listeners {
		l(r)
	}
	return r, nil
}

// Readers lists the connected readers in enumeration order. A panicking backend is
// reported as an Unknown *ReadError.
func (g *Gateway) Readers() (readers []string, err error) {
	g.lock.Lock()
	defer g.lock.Unlock()
	defer func() {
		if p := recover(); p != nil {
			log.Errorf("Listing readers failed: %v", p)
			readers, err = nil, unknownError(fmt.Sprint(p), nil)
		}
	}()
	return g.system.ListReaders()
}

func (g *Gateway) read() (r Reading, rerr *ReadError) {
	defer func() {
		if p := recover(); p != nil {
			rerr = unknownError(fmt.Sprint(p), nil)
		}
	}()

	readers, err := g.system.ListReaders()
	if err != nil {
		return Reading{}, unknownError(err.Error(), err)
	}
	log.Debugf("Available readers: %v", readers)
	if len(readers) == 0 {
		return Reading{}, noReaderError()
	}

	reader := readers[0]
	log.Debugf("Connecting to %v", reader)
	atr, err := g.system.Connect(reader)
	if err != nil {
		return Reading{}, classify(err)
	}

	return Reading{Reader: reader, ATR: atr, ReadAt: time.Now()}, nil
}
