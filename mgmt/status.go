/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package mgmt implements the HTTP status surface (spec.md §6's status
// port, given a concrete body by SPEC_FULL.md §12 item 4): a read-only
// GET /status returning a JSON snapshot of table sizes and the
// counters ccnd itself reports in its periodic status log, grounded in
// the shape of YaNFD's mgmt.ForwarderStatusModule but served over
// net/http rather than an NDN-native management protocol, since no
// example repo in the retrieval pack ships a codec for one.
package mgmt

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ccnlabs/ccnd/core"
	"github.com/ccnlabs/ccnd/fw"
)

// Status is the JSON body returned by GET /status.
type Status struct {
	Version       string  `json:"version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Faces         int     `json:"faces"`
	Prefixes      int     `json:"interest_prefix_entries"`
	Content       int     `json:"content_store_entries"`
	Propagating   int     `json:"propagating_entries"`

	NInInterests     uint64 `json:"in_interests"`
	NInData          uint64 `json:"in_data"`
	NOutInterests    uint64 `json:"out_interests"`
	NOutData         uint64 `json:"out_data"`
	InterestsDropped uint64 `json:"interests_dropped"`
}

// SnapshotOf reads d's counters and table sizes into a Status. Every
// field it touches is daemon state that spec.md §5 says only the
// single event-loop goroutine may access, so this must only ever be
// called from that goroutine — never directly from an HTTP handler
// goroutine (see Handler below).
func SnapshotOf(d *fw.Daemon) Status {
	return Status{
		Version:          core.Version,
		UptimeSeconds:    time.Since(core.StartTimestamp).Seconds(),
		Faces:            d.Faces.Len(),
		Prefixes:         d.Prefixes.Len(),
		Content:          d.Content.Len(),
		Propagating:      d.Propagating.Len(),
		NInInterests:     d.NInInterests,
		NInData:          d.NInData,
		NOutInterests:    d.NOutInterests,
		NOutData:         d.NOutData,
		InterestsDropped: d.InterestsDropped,
	}
}

// Handler serves GET /status by asking Snapshot for a Status and
// encoding it as JSON. Snapshot is expected to hand the request to the
// event-loop goroutine and block for its answer (ioloop.Loop.Status
// does exactly that) rather than read daemon state directly from this
// handler's own goroutine.
type Handler struct {
	Snapshot func() Status
}

// NewHandler builds a Handler that calls snapshot for each request.
func NewHandler(snapshot func() Status) *Handler {
	return &Handler{Snapshot: snapshot}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.Snapshot()); err != nil {
		core.LogWarn("mgmt", "status encode: ", err)
	}
}

// NewServer builds the status HTTP server bound to addr, left unstarted
// so the caller can run ListenAndServe in its own goroutine and Close
// it during shutdown. wsHandler, when non-nil, is mounted at /ws
// alongside /status so a face.WebSocketListener's upgrade handler
// shares this same listening socket (SPEC_FULL.md §11 "WebSocket
// listener") rather than needing a second bound port.
func NewServer(addr string, snapshot func() Status, wsHandler http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/status", NewHandler(snapshot))
	if wsHandler != nil {
		mux.Handle("/ws", wsHandler)
	}
	return &http.Server{Addr: addr, Handler: mux}
}
