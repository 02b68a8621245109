package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/KaramelBytes/speedatlas-cli/internal/analysis"
	"github.com/KaramelBytes/speedatlas-cli/internal/dataset"
	"github.com/KaramelBytes/speedatlas-cli/internal/logging"
	"github.com/KaramelBytes/speedatlas-cli/internal/pipeline"
	"github.com/KaramelBytes/speedatlas-cli/internal/query"
	"github.com/KaramelBytes/speedatlas-cli/internal/render"
	"github.com/KaramelBytes/speedatlas-cli/internal/source"
	"github.com/google/uuid"
)

const maxRequestBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// badRequest is a query parameter the client got wrong.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func scope(r *http.Request) query.Query {
	q := r.URL.Query()
	return query.Query{
		Continent: q.Get("continent"),
		Region:    q.Get("region"),
		Countries: q.Get("countries"),
		Search:    q.Get("search"),
	}
}

func (s *Server) yearParam(r *http.Request) (string, error) {
	y := strings.TrimSpace(r.URL.Query().Get("year"))
	if y == "" {
		y = s.cfg.Analysis.Year
	}
	if y == "" {
		y = s.cfg.Analysis.LatestYear
	}
	if y == "" {
		y = dataset.LatestYear
	}
	if !dataset.IsYear(y) {
		return "", badRequest{fmt.Sprintf("unknown year %q (use %s..%s)", y, dataset.Years[0], dataset.Years[len(dataset.Years)-1])}
	}
	return y, nil
}

func intParam(r *http.Request, key string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, badRequest{fmt.Sprintf("invalid %s: %q", key, v)}
	}
	return n, nil
}

func floatParam(r *http.Request, key string, def float64) (float64, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, badRequest{fmt.Sprintf("invalid %s: %q", key, v)}
	}
	return f, nil
}

// scoped returns the filtered snapshot, the scope and the requested year.
func (s *Server) scoped(r *http.Request) ([]dataset.Record, query.Query, string, error) {
	year, err := s.yearParam(r)
	if err != nil {
		return nil, query.Query{}, "", err
	}
	records, _ := s.store.Snapshot()
	q := scope(r)
	return q.Apply(records), q, year, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, src := s.store.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"source":     src,
		"records":    s.store.Len(),
		"generation": s.store.Generation(),
	})
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	records, q, _, err := s.scoped(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scope":   q.String(),
		"count":   len(records),
		"records": records,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	records, q, year, err := s.scoped(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	opt := s.cfg.Analysis
	opt.Year = year
	_, src := s.store.Snapshot()
	rep := analysis.BuildReport(src, q.String(), records, opt)
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "", "json":
		writeJSON(w, http.StatusOK, rep)
	case "markdown", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(rep.Markdown()))
	case "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(render.HTML("Speed summary", rep.Markdown()))
	default:
		writeError(w, http.StatusBadRequest, "unsupported format (use json|markdown|html)")
	}
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	records, q, year, err := s.scoped(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scope":  q.String(),
		"year":   year,
		"groups": analysis.GroupAverages(records, year),
	})
}

func (s *Server) handleOutliers(w http.ResponseWriter, r *http.Request) {
	records, _, year, err := s.scoped(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sigma, err := floatParam(r, "sigma", s.cfg.Analysis.Sigma)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, analysis.DetectOutliers(records, year, sigma))
}

func (s *Server) topN(r *http.Request) (int, error) {
	def := s.cfg.Analysis.TopN
	if def <= 0 {
		def = analysis.DefaultOptions().TopN
	}
	return intParam(r, "n", def)
}

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	records, q, year, err := s.scoped(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n, err := s.topN(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scope": q.String(),
		"year":  year,
		"top":   analysis.TopN(records, year, n),
	})
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	records, _, year, err := s.scoped(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	switch kind := strings.ToLower(r.URL.Query().Get("kind")); kind {
	case "", "top":
		n, err := s.topN(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		top := render.Valid(analysis.TopN(records, year, n), year)
		writeJSON(w, http.StatusOK, render.FromEntries(fmt.Sprintf("Top %d (%s)", len(top), year), top))
	case "groups":
		writeJSON(w, http.StatusOK, render.FromGroups(fmt.Sprintf("Group averages (%s)", year), analysis.GroupAverages(records, year)))
	case "country":
		if len(records) == 0 {
			writeError(w, http.StatusNotFound, "no record matches the scope")
			return
		}
		writeJSON(w, http.StatusOK, render.FromYears(records[0]))
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown series kind %q (use top|groups|country)", kind))
	}
}

// addRequest is the body of POST /api/records. A null or absent year is a
// missing reading.
type addRequest struct {
	Country   string              `json:"country"`
	MajorArea string              `json:"major_area"`
	Region    string              `json:"region"`
	Speeds    map[string]*float64 `json:"speeds"`
}

func (s *Server) handleAddRecord(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decode body: %v", err))
		return
	}
	if strings.TrimSpace(req.Country) == "" {
		writeError(w, http.StatusBadRequest, "country is required")
		return
	}
	rec := dataset.NewRecord(req.Country, req.MajorArea, req.Region, dataset.NullAsMissing)
	for y, v := range req.Speeds {
		if !dataset.IsYear(y) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown year %q", y))
			return
		}
		if v != nil {
			rec.Speeds[y] = dataset.Speed{Mbps: *v, Valid: true}
		}
	}
	if ws := s.cfg.Workspace; ws != nil {
		added, err := ws.AddEntry(rec)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := ws.Save(); err != nil {
			logging.LogError(logging.FromContext(r.Context()), "workspace_save_failed", err)
			writeError(w, http.StatusInternalServerError, "could not persist record")
			return
		}
		rec = added
	} else {
		rec.ID = uuid.NewString()
		rec.Manual = true
	}
	rec = rec.WithPolicy(s.cfg.Parse.Policy)
	s.store.Prepend(rec)
	writeJSON(w, http.StatusCreated, rec)
}

type loadRequest struct {
	Source string `json:"source"`
	Sheet  string `json:"sheet,omitempty"`
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req loadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decode body: %v", err))
		return
	}
	src := s.cfg.Resolve(req.Source, s.cfg.HTTPTimeout)
	if x, ok := src.(source.XLSX); ok && req.Sheet != "" {
		x.Sheet = req.Sheet
		src = x
	}
	out, err := pipeline.Load(r.Context(), s.store, src, s.cfg.Parse, s.cfg.Workspace)
	var acq *source.AcquisitionError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, out)
	case errors.Is(err, pipeline.ErrSuperseded):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &acq):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
