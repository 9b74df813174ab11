package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mapfolk/language-atlas/internal/domain"
	"github.com/mapfolk/language-atlas/internal/observability"
)

type handler struct {
	provider SnapshotProvider
	metrics  *observability.Metrics
	memo     *memoCache
	logger   *slog.Logger
}

func (h *handler) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/atlas", h.getAtlas)
	r.Get("/languages", h.getLanguageTotals)
	r.Get("/languages/coverage", h.getLanguageCoverage)
	r.Get("/states", h.searchStates)
	r.Get("/states/{state}", h.getStateSummary)
	r.Get("/states/{state}/shares", h.getStateShares)
	r.Get("/nationwide", h.getNationwideSummary)
	r.Get("/quartiles", h.getQuartiles)
	r.Get("/proficiency", h.getProficiency)

	return r
}

// snapshot fetches the current snapshot, answering with the "no data
// available" placeholder when the load has not completed.
func (h *handler) snapshot(w http.ResponseWriter, r *http.Request) (*domain.Snapshot, bool) {
	s := h.provider.Snapshot()
	if s == nil {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, placeholder())
		return nil, false
	}
	return s, true
}

func placeholder() map[string]string {
	return map[string]string{"status": "no data available"}
}

// atlasFeature is one map polygon joined with the per-state figures the
// choropleth colors by.
type atlasFeature struct {
	ID                string          `json:"id"`
	State             string          `json:"state,omitempty"`
	Population        *int64          `json:"population"`
	DistinctLanguages int             `json:"distinct_languages"`
	Geometry          json.RawMessage `json:"geometry"`
}

type atlasResponse struct {
	Features  []atlasFeature  `json:"features"`
	Arcs      json.RawMessage `json:"arcs,omitempty"`
	Transform json.RawMessage `json:"transform,omitempty"`
}

func (h *handler) getAtlas(w http.ResponseWriter, r *http.Request) {
	h.metrics.QueryRequests.WithLabelValues("atlas").Inc()
	s, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	if s.Atlas == nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, placeholder())
		return
	}

	resp := atlasResponse{
		Features:  make([]atlasFeature, 0, len(s.Atlas.Features)),
		Arcs:      s.Atlas.Arcs,
		Transform: s.Atlas.Transform,
	}
	for _, f := range s.Atlas.Features {
		af := atlasFeature{ID: f.ID, State: f.State, Geometry: f.Geometry}
		if f.State != "" {
			af.Population = s.Population(&f.State)
			af.DistinctLanguages = domain.LanguageDiversityCount(s, f.State)
		}
		resp.Features = append(resp.Features, af)
	}
	render.JSON(w, r, resp)
}

type languageTotalsResponse struct {
	State  *string            `json:"state"`
	Totals map[string]float64 `json:"totals"`
}

func (h *handler) getLanguageTotals(w http.ResponseWriter, r *http.Request) {
	h.metrics.QueryRequests.WithLabelValues("languages").Inc()
	s, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	state := stateParam(r.URL.Query().Get("state"))
	render.JSON(w, r, languageTotalsResponse{
		State:  state,
		Totals: domain.LanguageTotals(s, state),
	})
}

func (h *handler) getLanguageCoverage(w http.ResponseWriter, r *http.Request) {
	h.metrics.QueryRequests.WithLabelValues("coverage").Inc()
	s, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, domain.LanguageCoverage(s))
}

func (h *handler) searchStates(w http.ResponseWriter, r *http.Request) {
	h.metrics.QueryRequests.WithLabelValues("states").Inc()
	render.JSON(w, r, domain.SearchStates(r.URL.Query().Get("q")))
}

func (h *handler) getStateSummary(w http.ResponseWriter, r *http.Request) {
	h.metrics.QueryRequests.WithLabelValues("state_summary").Inc()
	s, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	state := domain.Canonicalize(chi.URLParam(r, "state"))
	if !domain.IsKnownState(state) && len(s.LanguageByState[state]) == 0 {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, placeholder())
		return
	}
	render.JSON(w, r, h.memoized(s, "summary|"+state, func() any {
		return domain.StateSummary(s, state)
	}))
}

func (h *handler) getStateShares(w http.ResponseWriter, r *http.Request) {
	h.metrics.QueryRequests.WithLabelValues("shares").Inc()
	s, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	state := domain.Canonicalize(chi.URLParam(r, "state"))
	if !domain.IsKnownState(state) && len(s.LanguageByState[state]) == 0 {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, placeholder())
		return
	}

	exclude := excludeParam(r.URL.Query().Get("exclude"))
	key := "shares|" + state + "|" + sortedKey(exclude)
	render.JSON(w, r, h.memoized(s, key, func() any {
		totals := domain.LanguageTotals(s, &state)
		var denominator float64
		if pop := s.Population(&state); pop != nil {
			denominator = float64(*pop)
		}
		return domain.SharesWithOtherBucket(totals, denominator, exclude)
	}))
}

func (h *handler) getNationwideSummary(w http.ResponseWriter, r *http.Request) {
	h.metrics.QueryRequests.WithLabelValues("nationwide").Inc()
	s, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, h.memoized(s, "nationwide", func() any {
		return domain.NationwideSummary(s)
	}))
}

type quartilesResponse struct {
	Language string                 `json:"language,omitempty"`
	States   int                    `json:"states"`
	Summary  domain.QuartileSummary `json:"summary"`
}

// getQuartiles returns the nearest-rank quartile summary of per-state total
// speaker counts, optionally restricted to one language (the box plot's
// distribution across states).
func (h *handler) getQuartiles(w http.ResponseWriter, r *http.Request) {
	h.metrics.QueryRequests.WithLabelValues("quartiles").Inc()
	s, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	language := strings.TrimSpace(r.URL.Query().Get("language"))
	key := "quartiles|" + language
	resp, ok := h.memoized(s, key, func() any {
		values := perStateTotals(s, language)
		summary, ok := domain.Quartiles(values)
		if !ok {
			return nil
		}
		return quartilesResponse{Language: language, States: len(values), Summary: summary}
	}).(quartilesResponse)
	if !ok {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, placeholder())
		return
	}
	render.JSON(w, r, resp)
}

type proficiencyResponse struct {
	State      *string `json:"state"`
	Proportion float64 `json:"proportion"`
}

func (h *handler) getProficiency(w http.ResponseWriter, r *http.Request) {
	h.metrics.QueryRequests.WithLabelValues("proficiency").Inc()
	s, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	state := stateParam(r.URL.Query().Get("state"))
	render.JSON(w, r, proficiencyResponse{
		State:      state,
		Proportion: domain.EnglishProficiencyProportion(s, state),
	})
}

// memoized runs compute once per (snapshot, key) pair, caching the result.
func (h *handler) memoized(s *domain.Snapshot, key string, compute func() any) any {
	full := s.Fingerprint() + "|" + key
	if v, ok := h.memo.get(full); ok {
		h.metrics.QueryCache.WithLabelValues("hit").Inc()
		return v
	}
	h.metrics.QueryCache.WithLabelValues("miss").Inc()
	v := compute()
	h.memo.put(full, v)
	return v
}

// perStateTotals sums speakers per state, ascending sorted, ready for
// Quartiles. An empty language means all languages together.
func perStateTotals(s *domain.Snapshot, language string) []float64 {
	var values []float64
	for _, records := range s.LanguageByState {
		var sum float64
		matched := false
		for _, rec := range records {
			if language != "" && !strings.EqualFold(rec.Language, language) {
				continue
			}
			matched = true
			if rec.Speakers != nil {
				sum += *rec.Speakers
			}
		}
		if matched {
			values = append(values, sum)
		}
	}
	sort.Float64s(values)
	return values
}

// stateParam canonicalizes an optional state query parameter; empty input
// means nationwide and maps to nil.
func stateParam(raw string) *string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	state := domain.Canonicalize(raw)
	return &state
}

// excludeParam parses the comma-separated exclusion list. Returns nil (no
// exclusion, denominator untouched) when the parameter is absent.
func excludeParam(raw string) map[string]bool {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	exclude := make(map[string]bool)
	for _, label := range strings.Split(raw, ",") {
		if label = strings.TrimSpace(label); label != "" {
			exclude[label] = true
		}
	}
	return exclude
}

func sortedKey(set map[string]bool) string {
	if len(set) == 0 {
		return ""
	}
	labels := make([]string, 0, len(set))
	for label := range set {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return strings.Join(labels, ",")
}
