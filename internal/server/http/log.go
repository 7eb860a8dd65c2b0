package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/rzbill/ringlog/internal/record"
	"github.com/rzbill/ringlog/pkg/log"
)

type appendReq struct {
	// Record is appended as raw bytes, unframed.
	Record string `json:"record"`
	// Fields, when present, are framed as one fixed-width page instead.
	Fields []string `json:"fields"`
}

func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req appendReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	var data []byte
	if len(req.Fields) > 0 {
		page, err := record.Encode(req.Fields...)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		data = page
	} else {
		data = []byte(req.Record)
	}

	engine := s.rt.Engine()
	if err := engine.Append(data); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]any{"position": engine.Position()})
}

type positionReq struct {
	Addr uint32 `json:"addr"`
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	engine := s.rt.Engine()
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, map[string]any{
			"position":    engine.Position(),
			"initialized": engine.Initialized(),
		})
	case http.MethodPost:
		var req positionReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
		if err := engine.SetPosition(req.Addr); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, map[string]any{"position": engine.Position()})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.rt.Engine().Reset()
	writeJSON(w, map[string]any{"position": uint32(0)})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.rt.Engine().Pause()
	writeNoContent(w)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.rt.Engine().Resume()
	writeNoContent(w)
}

func (s *Server) handlePaused(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]any{"paused": s.rt.Engine().Paused()})
}

func (s *Server) handleRecover(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	engine := s.rt.Engine()
	if err := engine.InitFromScan(r.Context()); err != nil {
		s.logger.Error("recovery scan failed", log.Err(err))
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]any{"position": engine.Position()})
}
