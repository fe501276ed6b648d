package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/callebjorkell/smartcard-gateway/api"
	log "github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	app   = kingpin.New("smartcard-gateway", "Local HTTP service that reports the ATR of the card in the first connected PC/SC smart card reader.")
	debug = app.Flag("debug", "Enable debug logging.").Envar("CARD_GATEWAY_DEBUG").Bool()

	serve            = app.Command("serve", "Start the HTTP service.").Default()
	serveHost        = serve.Flag("host", "Host to bind to.").Envar("CARD_GATEWAY_HOST").Default("127.0.0.1").String()
	servePort        = serve.Flag("port", "Port to listen on.").Envar("CARD_GATEWAY_PORT").Default("5000").Uint16()
	serveCORS        = serve.Flag("cors", "Routes that accept cross origin requests, 'api' for /api/* or 'all'.").Envar("CARD_GATEWAY_CORS").Default(api.CORSAPI).Enum(api.CORSAPI, api.CORSAll)
	serveHealthMsg   = serve.Flag("health-message", "Message added to the health check response.").Envar("CARD_GATEWAY_HEALTH_MESSAGE").String()
	serveHistoryPath = serve.Flag("history", "Store successful reads in this file. Empty disables the history.").Envar("CARD_GATEWAY_HISTORY").String()

	read = app.Command("read", "Read the card in the first reader and print the result.")

	readers = app.Command("readers", "List the connected readers.")

	dump        = app.Command("history", "Dump the stored reads onto standard out.")
	dumpPath    = dump.Flag("history", "The history file.").Envar("CARD_GATEWAY_HISTORY").Required().String()
	dumpLimit   = dump.Flag("limit", "Number of reads to show, newest first. 0 shows all of them.").Default("0").Int()
	dumpVerbose = dump.Flag("verbose", "Print the full records instead of a table.").Short('v').Bool()
	dumpShow    = dump.Flag("id", "Print a single read.").String()
	dumpDelete  = dump.Flag("delete", "Remove the read with this ID from the history.").String()
)

func main() {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	command := kingpin.MustParse(app.Parse(os.Args[1:]))
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	if command != serve.FullCommand() {
		go func() {
			<-signalChan
			os.Exit(0)
		}()
	}

	switch command {
	case serve.FullCommand():
		startServer(signalChan)
	case read.FullCommand():
		if !readCard() {
			os.Exit(1)
		}
	case readers.FullCommand():
		listReaders()
	case dump.FullCommand():
		dumpHistory()
	default:
		kingpin.FatalUsage("Unrecognized command")
	}
}
