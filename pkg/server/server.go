// Package server exposes loaded log summaries over HTTP: a small HTML
// dashboard plus JSON endpoints for charting frontends.
package server

import (
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/goccy/go-json"

	"github.com/kaede/loglens/pkg/analyze"
	"github.com/kaede/loglens/pkg/loader"
	"github.com/kaede/loglens/pkg/parser"
	"github.com/kaede/loglens/pkg/systemd"
)

type Config struct {
	Listen      string
	TopN        int
	Granularity analyze.Granularity
	SampleSize  int
	MaxRecords  int
}

type Server struct {
	cfg    Config
	files  []string
	loader loader.Loader
	logger *log.Logger

	mu      sync.RWMutex
	result  *loader.MultiResult
	records []parser.LogRecord
}

func New(cfg Config, files []string) *Server {
	return &Server{
		cfg:    cfg,
		files:  files,
		loader: loader.Loader{SampleSize: cfg.SampleSize, MaxRecords: cfg.MaxRecords},
		logger: log.New(os.Stderr, "", log.LstdFlags),
	}
}

// Reload re-reads every configured file. Partial failures keep the
// server up; it only errors when nothing loaded at all.
func (s *Server) Reload() error {
	m := s.loader.LoadFiles(s.files)
	for _, w := range m.Warnings {
		s.logger.Printf("warning: %v", w)
	}
	for _, e := range m.Errors {
		s.logger.Printf("load error: %v", e)
	}
	if len(m.Files) == 0 && len(m.Errors) > 0 {
		errs := make([]error, 0, len(m.Errors))
		for _, e := range m.Errors {
			errs = append(errs, e)
		}
		return fmt.Errorf("no file loaded: %w", errors.Join(errs...))
	}

	records := m.Records()
	s.mu.Lock()
	s.result = m
	s.records = records
	s.mu.Unlock()
	s.logger.Printf("loaded %d records from %d files (%d malformed)",
		len(records), len(m.Files), m.Malformed())
	return nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/logs", s.handleLogs)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	return mux
}

// ListenAndServe loads the files, installs a SIGHUP reload handler, and
// serves until the listener fails.
func (s *Server) ListenAndServe() error {
	if err := s.Reload(); err != nil {
		return err
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGHUP)
	go func() {
		for range c {
			systemd.MustNotifyReloading()
			if err := s.Reload(); err != nil {
				s.logger.Printf("reload error: %v", err)
			}
			systemd.MustNotifyReady()
		}
	}()

	if err := systemd.NotifyReady(); err != nil {
		return fmt.Errorf("failed to notify systemd: %w", err)
	}
	s.logger.Printf("listening on %s", s.cfg.Listen)
	return http.ListenAndServe(s.cfg.Listen, s.Handler())
}

func (s *Server) summarize(r *http.Request) (analyze.Summary, analyze.Granularity, error) {
	granularity := s.cfg.Granularity
	if v := r.URL.Query().Get("granularity"); v != "" {
		if err := granularity.Set(v); err != nil {
			return analyze.Summary{}, granularity, err
		}
	}
	topN := s.cfg.TopN
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return analyze.Summary{}, granularity, fmt.Errorf("invalid top %q", v)
		}
		topN = n
	}
	s.mu.RLock()
	records := s.records
	s.mu.RUnlock()
	return analyze.Summarize(records, granularity, topN), granularity, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, _, err := s.summarize(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// logsInfo mirrors what the dashboard header shows: load totals and the
// files behind them.
type logsInfo struct {
	Total         int      `json:"total"`
	Malformed     int      `json:"malformed"`
	UniqueClients int      `json:"unique_clients"`
	DateRange     string   `json:"date_range"`
	Files         []string `json:"files"`
	Errors        []string `json:"errors,omitempty"`
	MixedFormats  bool     `json:"mixed_formats"`
}

func (s *Server) logsInfo() logsInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := logsInfo{DateRange: "no data"}
	if s.result == nil {
		return info
	}
	for _, f := range s.result.Files {
		info.Files = append(info.Files, f.Name)
	}
	for _, e := range s.result.Errors {
		info.Errors = append(info.Errors, e.Error())
	}
	info.Malformed = s.result.Malformed()
	info.MixedFormats = s.result.Mixed()

	summary := analyze.Summarize(s.records, analyze.Daily, 0)
	info.Total = summary.Total
	info.UniqueClients = summary.UniqueClients
	if summary.Total > 0 {
		info.DateRange = fmt.Sprintf("%s to %s",
			summary.First.Format("2006-01-02"), summary.Last.Format("2006-01-02"))
	}
	return info
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.logsInfo())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.Reload(); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.mu.RLock()
	n := len(s.records)
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("reloaded %d log records", n),
	})
}

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head><title>loglens</title></head>
<body>
<h1>Access log summary</h1>
<p>{{.Info.Total}} requests from {{.Info.UniqueClients}} clients, {{.Info.DateRange}} ({{.Info.Malformed}} malformed lines)</p>
{{if .Info.MixedFormats}}<p><em>Note: loaded files use mixed log formats.</em></p>{{end}}
{{if .Info.Errors}}<p><em>{{len .Info.Errors}} file(s) failed to load.</em></p>{{end}}

<h2>Traffic ({{.Granularity}})</h2>
<table border="1">
<tr><th>Bucket</th><th>Requests</th></tr>
{{range .Summary.Buckets}}<tr><td>{{.Start.Format $.BucketLayout}}</td><td>{{.Count}}</td></tr>
{{end}}
</table>

<h2>Top clients</h2>
<table border="1">
<tr><th>Client</th><th>Requests</th></tr>
{{range .Summary.TopClients}}<tr><td>{{.Client}}</td><td>{{.Requests}}</td></tr>
{{end}}
</table>

<h2>Browsers</h2>
<table border="1">
<tr><th>Browser</th><th>Requests</th></tr>
{{range .Summary.Browsers}}<tr><td>{{.Browser}}</td><td>{{.Requests}}</td></tr>
{{end}}
</table>
</body>
</html>
`))

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summary, granularity, err := s.summarize(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	layout := "2006-01-02 15:04"
	if granularity == analyze.Daily {
		layout = "2006-01-02"
	}
	data := struct {
		Summary      analyze.Summary
		Info         logsInfo
		Granularity  analyze.Granularity
		BucketLayout string
	}{
		Summary:      summary,
		Info:         s.logsInfo(),
		Granularity:  granularity,
		BucketLayout: layout,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, data); err != nil {
		s.logger.Printf("render dashboard: %v", err)
	}
}
