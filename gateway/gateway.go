// Package gateway is the thin HTTP presentation layer in front of
// mcp/batch: it decodes requests, delegates to a batch.Dispatcher or a
// direct mcp.Client read, and serializes the result. Routing, CORS, and
// OpenAPI export stay intentionally minimal here; the read/parse/group
// logic they front lives entirely in mcp and batch. Grounded on
// original_source/gateway.py's route table (FastAPI there, stdlib
// net/http here).
package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/hi-ropon/go-melsec/batch"
	"github.com/hi-ropon/go-melsec/internal/logging"
	"github.com/hi-ropon/go-melsec/mcp"
)

var errInvalidPath = errors.New("gateway: expected /api/read/{device}/{addr}/{length}")

// ReadRequest is the body of POST /api/read.
type ReadRequest struct {
	Device  string `json:"device"`
	Addr    int    `json:"addr"`
	Length  int    `json:"length"`
	PLCHost string `json:"plc_host,omitempty"`
	Port    int    `json:"port,omitempty"`
}

// ReadResponse is the body of a successful single read.
type ReadResponse struct {
	Values []int64 `json:"values"`
}

// BatchReadRequest is the body of POST /api/batch_read.
type BatchReadRequest struct {
	Devices []string `json:"devices"`
	PLCHost string   `json:"plc_host,omitempty"`
	Port    int      `json:"port,omitempty"`
}

// ReadOutcomeDTO is one device's batch-read result over the wire.
type ReadOutcomeDTO struct {
	Device  string  `json:"device"`
	Values  []int64 `json:"values"`
	Success bool    `json:"success"`
	Error   string  `json:"error,omitempty"`
}

// BatchReadResponse is the body of a successful batch read.
type BatchReadResponse struct {
	Results            []ReadOutcomeDTO `json:"results"`
	TotalDevices       int              `json:"total_devices"`
	SuccessfulDevices  int              `json:"successful_devices"`
}

// Handler serves the gateway's HTTP surface. It holds the base
// ConnectionConfig; a request's plc_host/port override the host/port
// fields for that one call only.
type Handler struct {
	base ConnectionConfigProvider
	mux  *http.ServeMux
}

// ConnectionConfigProvider supplies the base ConnectionConfig the
// gateway dials against when a request doesn't override host/port.
type ConnectionConfigProvider func() mcp.ConnectionConfig

// NewHandler builds the gateway's http.Handler.
func NewHandler(base ConnectionConfigProvider) *Handler {
	h := &Handler{base: base, mux: http.NewServeMux()}
	h.mux.HandleFunc("/api/read", h.handleRead)
	h.mux.HandleFunc("/api/read/", h.handleReadPath)
	h.mux.HandleFunc("/api/batch_read", h.handleBatchRead)
	h.mux.HandleFunc("/api/batch_read_status", h.handleBatchReadStatus)
	h.mux.HandleFunc("/api/openapi/", h.handleOpenAPI)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) configFor(host string, port int) mcp.ConnectionConfig {
	cfg := h.base()
	if host != "" {
		cfg.Host = host
	}
	if port != 0 {
		cfg.Port = port
	}
	return cfg
}

func (h *Handler) handleRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req ReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h.doRead(w, r, req)
}

// handleReadPath serves GET /api/read/{device}/{addr}/{length}.
func (h *Handler) handleReadPath(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/read/"), "/")
	if len(parts) != 3 {
		writeError(w, http.StatusBadRequest, errInvalidPath)
		return
	}
	addr, err := strconv.Atoi(parts[1])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	length, err := strconv.Atoi(parts[2])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req := ReadRequest{Device: parts[0], Addr: addr, Length: length}
	req.PLCHost = r.URL.Query().Get("plc_host")
	if p := r.URL.Query().Get("port"); p != "" {
		if port, err := strconv.Atoi(p); err == nil {
			req.Port = port
		}
	}
	h.doRead(w, r, req)
}

func (h *Handler) doRead(w http.ResponseWriter, r *http.Request, req ReadRequest) {
	spec := mcp.DeviceSpec{Kind: strings.ToUpper(req.Device), Address: req.Addr, Length: req.Length}
	cfg := h.configFor(req.PLCHost, req.Port)

	code, err := mcp.LookupDeviceCode(cfg.Series, spec.Kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	client := mcp.NewClient(cfg)
	var values []int64
	switch code.Class {
	case mcp.ClassBit:
		bits, err := client.ReadBit(r.Context(), spec, req.Length)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		values = make([]int64, len(bits))
		for i, v := range bits {
			values[i] = int64(v)
		}
	default:
		words, err := client.ReadWord(r.Context(), spec, req.Length)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		values = make([]int64, len(words))
		for i, v := range words {
			values[i] = int64(v)
		}
	}

	writeJSON(w, http.StatusOK, ReadResponse{Values: values})
}

func (h *Handler) handleBatchRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req BatchReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if len(req.Devices) == 0 {
		writeJSON(w, http.StatusOK, BatchReadResponse{Results: []ReadOutcomeDTO{}})
		return
	}

	cfg := h.configFor(req.PLCHost, req.Port)
	dispatcher := batch.NewDispatcher(cfg)
	outcomes := dispatcher.Read(r.Context(), req.Devices)

	results := make([]ReadOutcomeDTO, len(outcomes))
	successful := 0
	for i, o := range outcomes {
		results[i] = ReadOutcomeDTO{Device: o.Spec, Values: o.Values, Success: o.Success, Error: o.Error}
		if o.Success {
			successful++
		}
	}

	writeJSON(w, http.StatusOK, BatchReadResponse{
		Results:           results,
		TotalDevices:      len(req.Devices),
		SuccessfulDevices: successful,
	})
}

// batchReadStatus is the capability report returned by
// GET /api/batch_read_status. maxDevicesPerRequest is advisory only;
// mcp and batch do not enforce it (see DESIGN.md's Open Questions).
type batchReadStatus struct {
	BatchReadAvailable   bool     `json:"batch_read_available"`
	SupportedDevices     []string `json:"supported_devices"`
	MaxDevicesPerRequest int      `json:"max_devices_per_request"`
	RandomReadFallback   bool     `json:"randomread_fallback"`
}

func (h *Handler) handleBatchReadStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, batchReadStatus{
		BatchReadAvailable: true,
		SupportedDevices: []string{
			"X", "Y", "B", "M", "D", "W", "R", "ZR", "SM", "SD",
			"TS", "TC", "TN", "CS", "CC", "CN", "SB", "SW", "DX", "DY",
		},
		MaxDevicesPerRequest: 32,
		RandomReadFallback:   true,
	})
}

// handleOpenAPI returns a minimal static schema document; OpenAPI
// generation itself stays out of scope (the thin-presentation-layer
// boundary in spec.md §1's Non-goals).
func (h *Handler) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"openapi": "3.0.0",
		"info":    "go-melsec gateway",
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("failed to encode gateway response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	logging.Error("gateway request failed", "error", err)
	writeJSON(w, status, map[string]string{"detail": err.Error()})
}
