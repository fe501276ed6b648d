package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/callebjorkell/smartcard-gateway/card"
	"github.com/callebjorkell/smartcard-gateway/history"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const (
	// CORSAPI allows cross origin requests to /api/* only.
	CORSAPI = "api"
	// CORSAll allows cross origin requests to every route.
	CORSAll = "all"
)

type CardReader interface {
	ReadFirstCard() (card.Result, int)
	Readers() ([]string, error)
}

type History interface {
	Recent(limit int) ([]history.Record, error)
	Read(id string) (history.Record, error)
	Delete(id string) error
}

type Options struct {
	// HealthMessage is added to the health response when set.
	HealthMessage string
	CORS          string
	// History is nil when read history is disabled.
	History       History
}

type server struct {
	reader        CardReader
	history       History
	healthMessage string
}

func NewRouter(reader CardReader, opts Options) http.Handler {
	s := &server{
		reader:        reader,
		history:       opts.History,
		healthMessage: opts.HealthMessage,
	}

	r := mux.NewRouter()
	a := r.PathPrefix("/api").Subrouter()
	a.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	a.HandleFunc("/card/read", s.handleRead).Methods(http.MethodGet)
	a.HandleFunc("/card/history", s.handleHistory).Methods(http.MethodGet)
	a.HandleFunc("/card/history/{id}", s.handleHistoryRecord).Methods(http.MethodGet)
	a.HandleFunc("/card/history/{id}", s.handleHistoryDelete).Methods(http.MethodDelete)
	a.HandleFunc("/readers", s.handleReaders).Methods(http.MethodGet)

	return handlers.CustomLoggingHandler(log.StandardLogger().Out, withCORS(r, opts.CORS), logRequest)
}

func withCORS(h http.Handler, scope string) http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodDelete, http.MethodOptions}),
	)(h)
	if scope == CORSAll {
		return cors
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			cors.ServeHTTP(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func logRequest(_ io.Writer, p handlers.LogFormatterParams) {
	log.WithFields(log.Fields{
		"method": p.Request.Method,
		"path":   p.URL.Path,
		"status": p.StatusCode,
		"size":   p.Size,
		"remote": p.Request.RemoteAddr,
	}).Debug("Request served")
}
