package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/chandu-machineni/iconify/internal/cache"
	ierrors "github.com/chandu-machineni/iconify/internal/errors"
	"github.com/chandu-machineni/iconify/internal/icon"
	"github.com/chandu-machineni/iconify/internal/normalize"
	"github.com/chandu-machineni/iconify/internal/provider"
	"github.com/chandu-machineni/iconify/internal/search"
	"github.com/chandu-machineni/iconify/internal/telemetry"
)

// Routes defines the routes for the icon API.
type Routes struct {
	engine   Engine
	svg      SVGFetcher
	recorder *telemetry.Recorder
}

// Router creates a new router for the icon API.
func Router(engine Engine, svg SVGFetcher, recorder *telemetry.Recorder) http.Handler {
	routes := &Routes{engine: engine, svg: svg, recorder: recorder}

	r := chi.NewRouter()
	r.Get("/icons", routes.searchIcons)
	r.Get("/icons/popular", routes.popularIcons)
	r.Get("/libraries", routes.listLibraries)
	r.Get("/libraries/{prefix}/icons", routes.libraryIcons)
	r.Get("/categories", routes.listCategories)
	r.Get("/stats", routes.stats)
	r.Get("/svg/{qualified}", routes.renderSVG)
	return r
}

// SearchResponse is the body of /icons.
type SearchResponse struct {
	Query string      `json:"query"`
	Page  int         `json:"page"`
	Count int         `json:"count"`
	Icons []icon.Icon `json:"icons"`
}

// IconsResponse is the body of the popular and library listings.
type IconsResponse struct {
	Count int         `json:"count"`
	Icons []icon.Icon `json:"icons"`
}

// LibrariesResponse is the body of /libraries.
type LibrariesResponse struct {
	Libraries  []icon.Library `json:"libraries"`
	TotalIcons int            `json:"total_icons"`
}

// StatsResponse is the body of /stats.
type StatsResponse struct {
	Cache   cache.Stats              `json:"cache"`
	Queries *telemetry.QuerySnapshot `json:"queries,omitempty"`
}

func (routes *Routes) searchIcons(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	text := q.Get("q")
	if err := search.ValidateQuery(text); err != nil {
		WriteError(w, err)
		return
	}
	page, err := intParam(q, "page", 1, ierrors.ErrCodeInvalidPage)
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := search.ValidatePage(page); err != nil {
		WriteError(w, err)
		return
	}
	if page == 0 {
		page = 1
	}
	filters, err := search.ParseFilters(q["library"], q["style"], q["category"])
	if err != nil {
		WriteError(w, err)
		return
	}

	icons, err := routes.engine.Search(r.Context(), text, filters, page)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSONResponse(w, SearchResponse{
		Query: strings.TrimSpace(text),
		Page:  page,
		Count: len(icons),
		Icons: icons,
	}, http.StatusOK)
}

func (routes *Routes) popularIcons(w http.ResponseWriter, r *http.Request) {
	icons, err := routes.engine.Popular(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSONResponse(w, IconsResponse{Count: len(icons), Icons: icons}, http.StatusOK)
}

func (routes *Routes) listLibraries(w http.ResponseWriter, _ *http.Request) {
	WriteJSONResponse(w, LibrariesResponse{
		Libraries:  routes.engine.Libraries(),
		TotalIcons: routes.engine.EstimateTotalIconCount(),
	}, http.StatusOK)
}

func (routes *Routes) libraryIcons(w http.ResponseWriter, r *http.Request) {
	prefix := chi.URLParam(r, "prefix")
	if prefix == "" || strings.Contains(prefix, ":") {
		WriteError(w, ierrors.New(ierrors.ErrCodeUnknownLibrary, fmt.Sprintf("invalid library prefix %q", prefix), nil))
		return
	}
	limit, err := intParam(r.URL.Query(), "limit", 0, ierrors.ErrCodeInvalidInput)
	if err != nil {
		WriteError(w, err)
		return
	}

	icons, err := routes.engine.Library(r.Context(), prefix, limit)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSONResponse(w, IconsResponse{Count: len(icons), Icons: icons}, http.StatusOK)
}

func (routes *Routes) listCategories(w http.ResponseWriter, _ *http.Request) {
	WriteJSONResponse(w, map[string][]icon.CategoryInfo{"categories": routes.engine.Categories()}, http.StatusOK)
}

func (routes *Routes) stats(w http.ResponseWriter, _ *http.Request) {
	WriteJSONResponse(w, StatsResponse{
		Cache:   routes.engine.CacheStats(),
		Queries: routes.recorder.Snapshot(),
	}, http.StatusOK)
}

func (routes *Routes) renderSVG(w http.ResponseWriter, r *http.Request) {
	if routes.svg == nil {
		WriteJSONResponse(w, ErrorResponse{Error: "svg export is not enabled"}, http.StatusNotImplemented)
		return
	}

	raw, err := url.PathUnescape(chi.URLParam(r, "qualified"))
	if err != nil {
		WriteError(w, ierrors.New(ierrors.ErrCodeInvalidQualifiedName, "invalid icon name encoding", err))
		return
	}
	raw = strings.TrimSuffix(raw, ".svg")
	qn, err := icon.ParseQualifiedName(raw)
	if err != nil {
		WriteError(w, ierrors.New(ierrors.ErrCodeInvalidQualifiedName, err.Error(), err))
		return
	}

	opts, err := svgOptions(r.URL.Query())
	if err != nil {
		WriteError(w, err)
		return
	}

	body, err := routes.svg.SVG(r.Context(), qn, opts)
	if err != nil {
		WriteError(w, err)
		return
	}

	ic, _ := normalize.Default().Normalize("", provider.RawHit{QualifiedName: qn.String()})
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", icon.Filename(ic, opts)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func svgOptions(q url.Values) (icon.SVGOptions, error) {
	size, err := intParam(q, "size", icon.DefaultSize, ierrors.ErrCodeInvalidInput)
	if err != nil {
		return icon.SVGOptions{}, err
	}
	if size <= 0 || size > 1024 {
		return icon.SVGOptions{}, ierrors.ValidationError(fmt.Sprintf("size must be between 1 and 1024, got %d", size), nil)
	}

	opts := icon.SVGOptions{Size: size, Color: q.Get("color")}
	if s := q.Get("stroke"); s != "" {
		stroke, err := strconv.ParseFloat(s, 64)
		if err != nil || stroke <= 0 {
			return icon.SVGOptions{}, ierrors.ValidationError(fmt.Sprintf("invalid stroke width %q", s), err)
		}
		opts.StrokeWidth = stroke
	}
	return opts, nil
}

// intParam reads an optional integer query parameter, failing with code when
// the value is present but not a number.
func intParam(q url.Values, name string, def int, code string) (int, error) {
	s := strings.TrimSpace(q.Get(name))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, ierrors.New(code, fmt.Sprintf("%s must be an integer, got %q", name, s), err)
	}
	return n, nil
}
