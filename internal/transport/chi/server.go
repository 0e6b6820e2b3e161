// Package chi is the HTTP transport: routing, parameter parsing, and
// the uniform problem-response error mapping.
package chi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/genomebank/searchgw/internal/domain"
	"github.com/genomebank/searchgw/internal/domain/entrytype"
	"github.com/genomebank/searchgw/internal/domain/search/facet"
	"github.com/genomebank/searchgw/internal/domain/search/filter"
	bulkuc "github.com/genomebank/searchgw/internal/usecase/bulk"
	entryuc "github.com/genomebank/searchgw/internal/usecase/entry"
	healthuc "github.com/genomebank/searchgw/internal/usecase/health"
	searchuc "github.com/genomebank/searchgw/internal/usecase/search"
	"github.com/genomebank/searchgw/internal/version"
)

// Server routes HTTP requests to the use case services.
type Server struct {
	search *searchuc.Service
	entry  *entryuc.Service
	bulk   *bulkuc.Service
	health *healthuc.Service
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	entry *entryuc.Service,
	bulk *bulkuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		search: search,
		entry:  entry,
		bulk:   bulk,
		health: health,
		logger: logger,
	}
}

// Routes registers every endpoint on the router. Trailing-slash
// variants are registered alongside the canonical paths so both forms
// resolve without redirects.
func (s *Server) Routes(r chi.Router) {
	r.Get("/service-info", s.ServiceInfo)
	r.Get("/health", s.Health)
	r.Get("/metrics", s.Metrics)

	r.Get("/count/types", s.CountTypes)
	r.Get("/count/types/", s.CountTypes)

	r.Get("/facets", s.GetFacets)
	r.Get("/facets/{type}", s.GetTypeFacets)

	r.Get("/entries", s.ListEntries)
	r.Get("/entries/", s.ListEntries)
	r.Get("/entries/{type}", s.ListTypeEntries)
	r.Get("/entries/{type}/", s.ListTypeEntries)
	r.Post("/entries/{type}/bulk", s.BulkEntries)
	r.Get("/entries/{type}/{id}/dbxrefs.json", s.GetDbXrefs)
	r.Get("/entries/{type}/{id}", s.GetEntry)
}

// listResponse is the search result envelope.
type listResponse struct {
	Pagination pagination   `json:"pagination"`
	Items      any          `json:"items"`
	Facets     facet.Result `json:"facets,omitempty"`
}

type pagination struct {
	Page    int   `json:"page"`
	PerPage int   `json:"perPage"`
	Total   int64 `json:"total"`
}

// ListEntries handles GET /entries: cross-type search.
func (s *Server) ListEntries(w http.ResponseWriter, r *http.Request) {
	fc, err := filter.NewCrossType(filterParams(r.URL.Query()))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.listEntries(w, r, searchuc.CrossType(), fc)
}

// ListTypeEntries handles GET /entries/{type}: single-type search.
func (s *Server) ListTypeEntries(w http.ResponseWriter, r *http.Request) {
	t, err := entrytype.Parse(chi.URLParam(r, "type"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	fc, err := filter.NewForType(t, filterParams(r.URL.Query()))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.listEntries(w, r, searchuc.ForType(t), fc)
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request, scope searchuc.Scope, fc filter.Context) {
	q := r.URL.Query()

	pg, err := parsePage(q)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	sort, err := parseSort(q)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	opts, err := parseListOptions(q)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	withFacets, err := boolParam(q, "includeFacets", false)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	result, err := s.search.Search(r.Context(), searchuc.Request{
		Scope:      scope,
		Filter:     fc,
		Sort:       sort,
		Page:       pg,
		Projection: opts,
		WithFacets: withFacets,
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{
		Pagination: pagination{Page: pg.Page(), PerPage: pg.PerPage(), Total: result.Total},
		Items:      result.Entries,
		Facets:     result.Facets,
	})
}

// GetFacets handles GET /facets: cross-type facet aggregation.
func (s *Server) GetFacets(w http.ResponseWriter, r *http.Request) {
	fc, err := filter.NewCrossType(filterParams(r.URL.Query()))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.facets(w, r, searchuc.CrossType(), fc)
}

// GetTypeFacets handles GET /facets/{type}.
func (s *Server) GetTypeFacets(w http.ResponseWriter, r *http.Request) {
	t, err := entrytype.Parse(chi.URLParam(r, "type"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	fc, err := filter.NewForType(t, filterParams(r.URL.Query()))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.facets(w, r, searchuc.ForType(t), fc)
}

func (s *Server) facets(w http.ResponseWriter, r *http.Request, scope searchuc.Scope, fc filter.Context) {
	result, err := s.search.Facets(r.Context(), scope, fc)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"facets": result})
}

// CountTypes handles GET /count/types: per-type hit counts for a
// cross-type filter.
func (s *Server) CountTypes(w http.ResponseWriter, r *http.Request) {
	fc, err := filter.NewCrossType(filterParams(r.URL.Query()))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	counts, err := s.search.TypeCounts(r.Context(), fc)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// GetEntry handles GET /entries/{type}/{id} and its extension
// variants. The id path segment carries the rendition: a ".json"
// suffix selects the raw document, ".jsonld" the linked-data form, and
// a bare id the frontend detail with truncated dbXrefs.
func (s *Server) GetEntry(w http.ResponseWriter, r *http.Request) {
	t, err := entrytype.Parse(chi.URLParam(r, "type"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")

	switch {
	case strings.HasSuffix(id, ".jsonld"):
		doc, err := s.entry.JSONLD(r.Context(), t, strings.TrimSuffix(id, ".jsonld"))
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/ld+json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(doc)

	case strings.HasSuffix(id, ".json"):
		doc, err := s.entry.Raw(r.Context(), t, strings.TrimSuffix(id, ".json"))
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)

	default:
		limit, err := xrefLimitParam(r.URL.Query())
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		doc, err := s.entry.Detail(r.Context(), t, id, limit)
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

// GetDbXrefs handles GET /entries/{type}/{id}/dbxrefs.json: the full
// cross-reference list in one response.
func (s *Server) GetDbXrefs(w http.ResponseWriter, r *http.Request) {
	t, err := entrytype.Parse(chi.URLParam(r, "type"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	xrefs, err := s.entry.DbXrefs(r.Context(), t, chi.URLParam(r, "id"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dbXrefs": xrefs})
}

// bulkRequest is the POST /entries/{type}/bulk body.
type bulkRequest struct {
	IDs []string `json:"ids"`
}

// BulkEntries handles POST /entries/{type}/bulk. format=json (default)
// returns {entries, notFound}; format=ndjson streams one found entry
// per line.
func (s *Server) BulkEntries(w http.ResponseWriter, r *http.Request) {
	t, err := entrytype.Parse(chi.URLParam(r, "type"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, r, http.StatusUnprocessableEntity, "Invalid request body: "+err.Error())
		return
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "", "json":
		s.bulkJSON(w, r, t, req.IDs)
	case "ndjson":
		s.bulkNDJSON(w, r, t, req.IDs)
	default:
		s.handleError(w, r, &formatError{format: format})
	}
}

type formatError struct{ format string }

func (e *formatError) Error() string {
	return "invalid format \"" + e.format + "\", allowed: json, ndjson"
}

func (e *formatError) Unwrap() error { return domain.ErrInvalidParameter }

func (s *Server) bulkJSON(w http.ResponseWriter, r *http.Request, t entrytype.Type, ids []string) {
	result, err := s.bulk.Resolve(r.Context(), t, ids)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries":  result.Entries(),
		"notFound": result.NotFound(),
	})
}

func (s *Server) bulkNDJSON(w http.ResponseWriter, r *http.Request, t entrytype.Type, ids []string) {
	stream, err := s.bulk.ResolveStream(r.Context(), t, ids)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	for {
		doc, ok := stream.Next()
		if !ok {
			return
		}
		select {
		case <-r.Context().Done():
			return
		default:
		}
		if err := enc.Encode(doc); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// ServiceInfo handles GET /service-info.
func (s *Server) ServiceInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":    "GenomeBank Search API",
		"version": version.Version,
		"description": "RESTful API for searching and retrieving BioProject, " +
			"BioSample, SRA, and JGA entries.",
	})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}
