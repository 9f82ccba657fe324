package httpx

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/you/go-flightscan/internal/service"
)

// progressEvent is one diagnostic update emitted while a scan runs. It is
// not part of the final report contract.
type progressEvent struct {
	Event         string `json:"event"`
	DepartureDate string `json:"departure_date"`
	ReturnDate    string `json:"return_date"`
	Checked       int    `json:"checked"`
	Total         int    `json:"total"`
}

type scanOutcome struct {
	report *service.ScanReport
	err    error
}

func splitScanPath(path, prefix string) (origin, dest string, ok bool) {
	parts := strings.Split(strings.TrimPrefix(path, prefix), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return strings.ToUpper(parts[0]), strings.ToUpper(parts[1]), true
}

// startScan runs the range scan in the background, forwarding progress into
// a channel the caller drains. Progress events are dropped, not buffered
// unboundedly, when the consumer falls behind.
func startScan(svc *service.ScanService, r *http.Request, params service.ScanParams) (<-chan progressEvent, <-chan scanOutcome) {
	progressCh := make(chan progressEvent, 32)
	done := make(chan scanOutcome, 1)

	params.Progress = func(pair service.DatePair, checked, total int) {
		ev := progressEvent{
			Event:         "progress",
			DepartureDate: pair.DepartStr(),
			ReturnDate:    pair.ReturnStr(),
			Checked:       checked,
			Total:         total,
		}
		select {
		case progressCh <- ev:
		default:
		}
	}

	go func() {
		report, err := svc.ScanRange(r.Context(), params)
		done <- scanOutcome{report: report, err: err}
	}()

	return progressCh, done
}

func SSEScanHandler(svc *service.ScanService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin, dest, ok := splitScanPath(r.URL.Path, "/sse/scan/")
		if !ok {
			http.Error(w, "use /sse/scan/{origin}/{destination}?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD", 400)
			return
		}
		params, err := scanParamsFromQuery(origin, dest, r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", 500)
			return
		}

		progressCh, done := startScan(svc, r, params)
		ctx := r.Context()
		for {
			select {
			case <-ctx.Done():
				log.Println("SSE client closed mid-scan")
				return

			case ev := <-progressCh:
				payload, _ := json.Marshal(ev)
				fmt.Fprintf(w, "event: progress\ndata: %s\n\n", payload)
				flusher.Flush()

			case out := <-done:
				if out.err != nil {
					fmt.Fprintf(w, "event: error\ndata: %q\n\n", out.err.Error())
					flusher.Flush()
					return
				}
				payload, _ := json.Marshal(renderReport(out.report))
				fmt.Fprintf(w, "event: report\ndata: %s\n\n", payload)
				flusher.Flush()
				return
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // in prod, restrict origin
	},
}

func WSScanHandler(svc *service.ScanService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin, dest, ok := splitScanPath(r.URL.Path, "/ws/scan/")
		if !ok {
			http.Error(w, "use /ws/scan/{origin}/{destination}?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD", 400)
			return
		}
		params, err := scanParamsFromQuery(origin, dest, r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade error: %v", err)
			return
		}
		defer conn.Close()

		progressCh, done := startScan(svc, r, params)
		ctx := r.Context()
		for {
			select {
			case <-ctx.Done():
				return

			case ev := <-progressCh:
				if err := conn.WriteJSON(ev); err != nil {
					log.Printf("write error: %v", err)
					return
				}

			case out := <-done:
				if out.err != nil {
					_ = conn.WriteJSON(map[string]string{"error": out.err.Error()})
					return
				}
				if err := conn.WriteJSON(renderReport(out.report)); err != nil {
					log.Printf("write error: %v", err)
				}
				return
			}
		}
	}
}
