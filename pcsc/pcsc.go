//go:build !mock

package pcsc

import (
	"errors"
	"fmt"

	"github.com/callebjorkell/smartcard-gateway/card"
	"github.com/ebfe/scard"
	log "github.com/sirupsen/logrus"
)

// errors that pcsc-lite and winscard report when the reader is empty or the card was pulled mid-connect
var noCardErrs = []error{
	scard.ErrNoSmartcard,
	scard.ErrRemovedCard,
}

// CreateSystem returns the PC/SC subsystem of the host. A new PC/SC context is
// established for every call and released before returning.
func CreateSystem() card.ReaderSystem {
	return pcscSystem{}
}

type pcscSystem struct{}

func (pcscSystem) ListReaders() ([]string, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("could not establish PC/SC context: %w", err)
	}
	defer release(ctx)

	return readerList(ctx.ListReaders())
}

// readerList treats the "no readers available" status as an empty list.
func readerList(readers []string, err error) ([]string, error) {
	if errors.Is(err, scard.ErrNoReadersAvailable) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not list readers: %w", err)
	}
	return readers, nil
}

func (pcscSystem) Connect(reader string) ([]byte, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("could not establish PC/SC context: %w", err)
	}
	defer release(ctx)

	c, err := ctx.Connect(reader, scard.ShareShared, scard.ProtocolAny)
	if err != nil {
		return nil, wrap(err)
	}
	defer func() {
		if err := c.Disconnect(scard.LeaveCard); err != nil {
			log.Debugf("disconnect from %v: %v", reader, err)
		}
	}()

	status, err := c.Status()
	if err != nil {
		return nil, wrap(err)
	}
	log.Debugf("Connected to %v using protocol %v", status.Reader, status.ActiveProtocol)
	return status.Atr, nil
}

func wrap(err error) error {
	for _, e := range noCardErrs {
		if errors.Is(err, e) {
			return fmt.Errorf("%w: %v", card.NoCardErr, err)
		}
	}
	return fmt.Errorf("%w: %v", card.ConnectionErr, err)
}

func release(ctx *scard.Context) {
	if err := ctx.Release(); err != nil {
		log.Debugf("release PC/SC context: %v", err)
	}
}
