package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/callebjorkell/smartcard-gateway/history"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type readersResponse struct {
	Readers []string `json:"readers"`
}

type historyResponse struct {
	Reads []history.Record `json:"reads"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "online", Message: s.healthMessage})
}

func (s *server) handleRead(w http.ResponseWriter, r *http.Request) {
	result, status := s.reader.ReadFirstCard()
	writeJSON(w, status, result)
}

func (s *server) handleReaders(w http.ResponseWriter, r *http.Request) {
	readers, err := s.reader.Readers()
	if err != nil {
		log.Errorf("Could not list readers: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if readers == nil {
		readers = []string{}
	}
	writeJSON(w, http.StatusOK, readersResponse{Readers: readers})
}

func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "history disabled"})
		return
	}

	limit := defaultHistoryLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a number between 1 and 500"})
			return
		}
		limit = n
	}

	reads, err := s.history.Recent(limit)
	if err != nil {
		log.Errorf("Could not read history: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{Reads: reads})
}

func (s *server) handleHistoryRecord(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "history disabled"})
		return
	}

	rec, err := s.history.Read(mux.Vars(r)["id"])
	if err != nil {
		writeHistoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *server) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "history disabled"})
		return
	}

	id := mux.Vars(r)["id"]
	if err := s.history.Delete(id); err != nil {
		writeHistoryError(w, err)
		return
	}
	log.Infof("Removed read %v from the history", id)
	w.WriteHeader(http.StatusNoContent)
}

func writeHistoryError(w http.ResponseWriter, err error) {
	if errors.Is(err, history.NotFoundErr) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	log.Errorf("Could not access history: %v", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("Could not write response: %v", err)
	}
}
