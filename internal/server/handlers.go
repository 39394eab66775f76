package server

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/matsen/paperdash/internal/aggregate"
	"github.com/matsen/paperdash/internal/loader"
	"github.com/matsen/paperdash/internal/viz"
	"github.com/matsen/paperdash/internal/wordcloud"
	"github.com/matsen/paperdash/internal/wordfreq"
)

// table returns the current table, writing a 500 when it cannot be loaded.
func (s *Server) table(w http.ResponseWriter, r *http.Request) (*loader.Table, bool) {
	t, err := s.cache.Get(r.Context(), s.opts.DataPath)
	if err != nil {
		s.logger.Error("loading table failed", "path", s.opts.DataPath, "error", err)
		internalError(w, "metadata could not be loaded", s.logger)
		return nil, false
	}
	return t, true
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseViewQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	t, ok := s.table(w, r)
	if !ok {
		return
	}

	d, err := viz.BuildDashboard(t, s.wordsRequest(q))
	if err != nil {
		s.logger.Error("building dashboard failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	opts := viz.DefaultOptions()
	opts.Interactive = true
	page, err := viz.GenerateHTML(d, opts)
	if err != nil {
		s.logger.Error("rendering dashboard failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

// monthPoint is one timeline entry as sent to clients.
type monthPoint struct {
	Month string `json:"month"` // "2006-01"
	Count int    `json:"count"`
}

type timelineResponse struct {
	Months []monthPoint `json:"months"`
	Total  int          `json:"total"`
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	t, ok := s.table(w, r)
	if !ok {
		return
	}

	series := aggregate.MonthlyCounts(t.Records)
	if len(series) == 0 {
		empty(w, viz.MsgNoTimeline, s.logger)
		return
	}
	resp := timelineResponse{
		Months: make([]monthPoint, len(series)),
		Total:  aggregate.Total(series),
	}
	for i, m := range series {
		resp.Months[i] = monthPoint{Month: m.Label(), Count: m.Count}
	}
	success(w, resp, s.logger)
}

func (s *Server) handleJournals(w http.ResponseWriter, r *http.Request) {
	t, ok := s.table(w, r)
	if !ok {
		return
	}

	journals, err := aggregate.JournalFrequency(t.Records)
	if errors.Is(err, aggregate.ErrEmpty) {
		empty(w, viz.MsgNoJournalsPlot, s.logger)
		return
	}
	if err != nil {
		internalError(w, "internal server error", s.logger)
		return
	}
	success(w, journals, s.logger)
}

func (s *Server) handleLongTail(w http.ResponseWriter, r *http.Request) {
	t, ok := s.table(w, r)
	if !ok {
		return
	}

	points, err := aggregate.JournalLongTail(t.Records)
	if errors.Is(err, aggregate.ErrEmpty) {
		empty(w, viz.MsgNoJournals, s.logger)
		return
	}
	if err != nil {
		internalError(w, "internal server error", s.logger)
		return
	}
	success(w, points, s.logger)
}

const msgNoSimilar = "No similar journal names found."

// handleSimilarJournals lists journal names that are probably spellings of
// the same journal. threshold defaults to aggregate.DefaultSimilarity.
func (s *Server) handleSimilarJournals(w http.ResponseWriter, r *http.Request) {
	threshold := float32(aggregate.DefaultSimilarity)
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		f, err := strconv.ParseFloat(raw, 32)
		if err != nil || f <= 0 || f > 1 {
			badRequest(w, "threshold must be a number in (0, 1]", s.logger)
			return
		}
		threshold = float32(f)
	}

	t, ok := s.table(w, r)
	if !ok {
		return
	}
	journals := aggregate.AllJournals(t.Records)
	if len(journals) == 0 {
		empty(w, viz.MsgNoJournals, s.logger)
		return
	}
	pairs, err := aggregate.SimilarJournals(journals, threshold)
	if err != nil {
		internalError(w, "internal server error", s.logger)
		return
	}
	if len(pairs) == 0 {
		empty(w, msgNoSimilar, s.logger)
		return
	}
	success(w, pairs, s.logger)
}

type wordsResponse struct {
	Mode  string               `json:"mode"`
	TopN  int                  `json:"top_n,omitempty"`
	Words []wordfreq.WordCount `json:"words,omitempty"`
	Cloud *wordcloud.Layout    `json:"cloud,omitempty"`
}

func (s *Server) handleWords(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseViewQuery(r)
	if err != nil {
		badRequest(w, err.Error(), s.logger)
		return
	}
	t, ok := s.table(w, r)
	if !ok {
		return
	}

	req := s.wordsRequest(q)
	res, err := wordfreq.Analyze(t.Records, req)
	if errors.Is(err, wordfreq.ErrEmpty) {
		if req.Mode == wordfreq.ModeCloud {
			empty(w, viz.MsgNoTitles, s.logger)
		} else {
			empty(w, viz.MsgNoWords, s.logger)
		}
		return
	}
	if err != nil {
		s.logger.Error("analyzing titles failed", "error", err)
		internalError(w, "internal server error", s.logger)
		return
	}

	success(w, wordsResponse{
		Mode:  res.Mode.String(),
		TopN:  res.TopN,
		Words: res.Words,
		Cloud: res.Cloud,
	}, s.logger)
}

func (s *Server) handleWordCloudPNG(w http.ResponseWriter, r *http.Request) {
	t, ok := s.table(w, r)
	if !ok {
		return
	}

	layout, err := wordfreq.DensityMap(wordfreq.JoinTitles(t.Records), s.opts.Stopwords, s.opts.Cloud)
	if errors.Is(err, wordfreq.ErrEmpty) {
		notFound(w, viz.MsgNoTitles, s.logger)
		return
	}
	if err != nil {
		s.logger.Error("laying out word cloud failed", "error", err)
		internalError(w, "internal server error", s.logger)
		return
	}

	var buf bytes.Buffer
	if err := layout.RenderPNG(&buf); err != nil {
		s.logger.Error("rendering word cloud failed", "error", err)
		internalError(w, "internal server error", s.logger)
		return
	}
	s.logger.Debug("rendered word cloud", "layout", layout.Summary())

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("ETag", strconv.Quote(t.Source.Hash))
	w.Write(buf.Bytes())
}

type healthResponse struct {
	Status   string            `json:"status"`
	DataPath string            `json:"data_path"`
	Records  int               `json:"records"`
	Dropped  int               `json:"dropped"`
	LoadedAt time.Time         `json:"loaded_at"`
	Cache    loader.CacheStats `json:"cache"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	t, err := s.cache.Get(r.Context(), s.opts.DataPath)
	if err != nil {
		writeEnvelope(w, http.StatusServiceUnavailable, Envelope{
			Error: err.Error(),
			Data:  healthResponse{Status: "unhealthy", DataPath: s.opts.DataPath, Cache: s.cache.Stats()},
		}, s.logger)
		return
	}
	success(w, healthResponse{
		Status:   "healthy",
		DataPath: t.Source.Path,
		Records:  t.Len(),
		Dropped:  t.Dropped,
		LoadedAt: t.LoadedAt,
		Cache:    s.cache.Stats(),
	}, s.logger)
}
