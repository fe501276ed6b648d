package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/callebjorkell/smartcard-gateway/api"
	"github.com/callebjorkell/smartcard-gateway/card"
	"github.com/callebjorkell/smartcard-gateway/history"
	"github.com/callebjorkell/smartcard-gateway/pcsc"
	log "github.com/sirupsen/logrus"
)

func startServer(stop <-chan os.Signal) {
	gateway := card.NewGateway(pcsc.CreateSystem())
	opts := api.Options{
		HealthMessage: *serveHealthMsg,
		CORS:          *serveCORS,
	}

	if *serveHistoryPath != "" {
		db, err := history.Open(*serveHistoryPath)
		if err != nil {
			log.Fatalf("Could not open history %v: %v", *serveHistoryPath, err)
		}
		defer db.Close()
		gateway.OnRead(db.Listener())
		opts.History = db
		log.Infof("Storing reads in %v", *serveHistoryPath)
	}

	srv := &http.Server{
		Addr:         net.JoinHostPort(*serveHost, strconv.Itoa(int(*servePort))),
		Handler:      api.NewRouter(gateway, opts),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: time.Minute,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Infof("Card gateway listening on http://%v (CORS: %v)", srv.Addr, *serveCORS)
	log.Infoln("Make sure the card reader is plugged in")
	if err := runServer(srv, ln, stop); err != nil {
		log.Fatal(err)
	}
}

// runServer serves on ln until stop fires, and only returns once in-flight requests are done.
func runServer(srv *http.Server, ln net.Listener, stop <-chan os.Signal) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-stop
		log.Infoln("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warnf("Shutdown: %v", err)
		}
	}()

	if err := srv.Serve(ln); err != http.ErrServerClosed {
		return err
	}
	<-done
	return nil
}
