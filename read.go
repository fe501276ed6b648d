package main

import (
	"encoding/json"
	"fmt"

	"github.com/callebjorkell/smartcard-gateway/card"
	"github.com/callebjorkell/smartcard-gateway/pcsc"
	log "github.com/sirupsen/logrus"
)

func readCard() bool {
	r, _ := card.NewGateway(pcsc.CreateSystem()).ReadFirstCard()
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		log.Error(err)
		return false
	}
	fmt.Println(string(b))
	return r.Success
}

func listReaders() {
	readers, err := card.NewGateway(pcsc.CreateSystem()).Readers()
	if err != nil {
		log.Fatal(err)
	}

	if len(readers) == 0 {
		fmt.Println("No readers found. Check that the reader is plugged in.")
		return
	}
	for i, r := range readers {
		fmt.Printf("%2v │ %v\n", i, r)
	}
}
