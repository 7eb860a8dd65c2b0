package httpserver

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rzbill/ringlog/internal/flash"
	"github.com/rzbill/ringlog/pkg/log"
)

// maxReadLen caps a single range read; larger spans go through the dump.
const maxReadLen = 4096

func (s *Server) handleDeviceInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, flash.InfoFor(s.rt.Device()))
}

func (s *Server) handleDeviceRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	addr, err := parseUint32(r.URL.Query().Get("addr"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid addr")
		return
	}
	n, err := parseUint32(r.URL.Query().Get("len"))
	if err != nil || n == 0 || n > maxReadLen {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("len must be 1-%d", maxReadLen))
		return
	}
	buf := make([]byte, n)
	if err := s.rt.Device().ReadAt(addr, buf); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"addr": addr,
		"len":  n,
		"hex":  hex.EncodeToString(buf),
	})
}

// handleDeviceDump streams the whole device as a hex listing, 16 bytes per
// line. It brackets itself with the pause gate so the producer stops
// advancing the ring during the walk; a gate the client set beforehand is
// left set afterwards.
func (s *Server) handleDeviceDump(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	engine := s.rt.Engine()
	wasPaused := engine.Paused()
	engine.Pause()
	defer func() {
		if !wasPaused {
			engine.Resume()
		}
	}()

	dev := s.rt.Device()
	geom := dev.Geometry()
	s.logger.Info("device dump started", log.Uint32("capacity", geom.Capacity))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	flusher, _ := w.(http.Flusher)

	buf := make([]byte, flash.PageSize)
	for addr := uint32(0); addr < geom.Capacity; addr += flash.PageSize {
		if r.Context().Err() != nil {
			return
		}
		if err := dev.ReadAt(addr, buf); err != nil {
			fmt.Fprintf(w, "read failed at %#08x: %v\n", addr, err)
			s.logger.Error("device dump aborted", log.Uint32("addr", addr), log.Err(err))
			return
		}
		for i := 0; i < len(buf); i += 16 {
			fmt.Fprintf(w, "[%08X] % X\n", addr+uint32(i), buf[i:i+16])
		}
		if flusher != nil && addr%(64<<10) == 0 {
			flusher.Flush()
		}
	}
	if flusher != nil {
		flusher.Flush()
	}
	s.logger.Info("device dump complete", log.Uint32("bytes", geom.Capacity))
}

type eraseReq struct {
	Addr uint32 `json:"addr"`
}

func (s *Server) handleErase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req eraseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	dev := s.rt.Device()
	geom := dev.Geometry()
	if req.Addr >= geom.Capacity {
		writeError(w, http.StatusBadRequest, "addr out of bounds")
		return
	}
	block := req.Addr / geom.BlockSize
	if err := dev.EraseBlock(block); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]any{"block": block})
}

type eraseRangeReq struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

func (s *Server) handleEraseRange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req eraseRangeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	dev := s.rt.Device()
	geom := dev.Geometry()
	if req.Start > req.End || req.End >= geom.Capacity {
		writeError(w, http.StatusBadRequest, "invalid range")
		return
	}
	startBlock := req.Start / geom.BlockSize
	endBlock := req.End / geom.BlockSize
	for b := startBlock; b <= endBlock; b++ {
		if err := dev.EraseBlock(b); err != nil {
			writeEngineError(w, err)
			return
		}
	}
	writeJSON(w, map[string]any{"blocks": endBlock - startBlock + 1})
}

func (s *Server) handleEraseAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.logger.Warn("full chip erase requested")
	if err := s.rt.Device().EraseAll(); err != nil {
		writeEngineError(w, err)
		return
	}
	writeNoContent(w)
}
