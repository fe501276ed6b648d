package main

import (
	"fmt"
	"unicode/utf8"

	"github.com/callebjorkell/smartcard-gateway/history"
	log "github.com/sirupsen/logrus"
)

func dumpHistory() {
	db, err := history.Open(*dumpPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if *dumpDelete != "" {
		if err := db.Delete(*dumpDelete); err != nil {
			log.Warnf("Could not remove read %v: %v", *dumpDelete, err)
		}
		return
	}

	if *dumpShow != "" {
		r, err := db.Read(*dumpShow)
		if err != nil {
			log.Error(err)
			return
		}
		fmt.Println(r)
		return
	}

	records, err := db.Recent(*dumpLimit)
	if err != nil {
		log.Error(err)
		return
	}

	if len(records) == 0 {
		fmt.Println("No reads found in the history...")
		return
	}

	if *dumpVerbose {
		for _, r := range records {
			fmt.Println(r)
		}
		return
	}

	fmt.Println("                          ID │             Read at  │ Reader                         │ ATR")
	fmt.Println("─────────────────────────────┼──────────────────────┼────────────────────────────────┼─────────────────────────────────────────")
	for _, r := range records {
		fmt.Printf("%28v │ %20v │ %-30v │ %v\n", r.ID, r.ReadAt.Local().Format("2006-01-02 15:04:05"), checkLength(r.Reader, 30), r.ATR)
	}
}

func checkLength(s string, l int) string {
	if utf8.RuneCountInString(s) > l {
		return fmt.Sprintf("%.*v…", l-1, s)
	}
	return s
}
