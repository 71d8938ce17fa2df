package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	ierrors "github.com/chandu-machineni/iconify/internal/errors"
	"github.com/chandu-machineni/iconify/internal/icon"
	"github.com/chandu-machineni/iconify/internal/normalize"
	"github.com/chandu-machineni/iconify/internal/provider"
	"github.com/chandu-machineni/iconify/internal/search"
	"github.com/chandu-machineni/iconify/internal/telemetry"
	"github.com/chandu-machineni/iconify/pkg/version"
)

// ServerName is the implementation name reported to MCP clients.
const ServerName = "iconify"

// SVGFetcher returns rendered SVG documents.
type SVGFetcher interface {
	SVG(ctx context.Context, qn icon.QualifiedName, opts icon.SVGOptions) ([]byte, error)
}

// Server is the MCP server for iconify.
// It exposes the aggregation engine to AI clients as tools. One Server
// holds one search feed, so a new search_icons call supersedes the last.
type Server struct {
	mcp      *mcp.Server
	engine   *search.Engine
	feed     *search.Feed
	svg      SVGFetcher
	recorder *telemetry.Recorder
	logger   *slog.Logger
	pageSize int

	tools []ToolInfo
	calls map[string]func(context.Context, map[string]any) (string, error)
}

// ToolInfo contains information about a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

// Option configures a Server.
type Option func(*Server)

// WithSVG registers the get_svg tool backed by f.
func WithSVG(f SVGFetcher) Option {
	return func(s *Server) {
		s.svg = f
	}
}

// WithRecorder registers the stats resource.
func WithRecorder(r *telemetry.Recorder) Option {
	return func(s *Server) {
		s.recorder = r
	}
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPageSize sets how many icons search_icons and more_icons return per call.
func WithPageSize(n int) Option {
	return func(s *Server) {
		s.pageSize = n
	}
}

// NewServer creates a new MCP server over engine.
func NewServer(engine *search.Engine, opts ...Option) (*Server, error) {
	if engine == nil {
		return nil, errors.New("search engine is required")
	}

	s := &Server{
		engine: engine,
		logger: slog.Default(),
		calls:  make(map[string]func(context.Context, map[string]any) (string, error)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.feed = search.NewFeed(engine, s.pageSize)

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    ServerName,
			Version: version.Version,
		},
		nil,
	)

	s.registerTools()
	if s.recorder != nil {
		s.registerStatsResource()
	}
	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return ServerName, version.Version
}

// ListTools returns all registered tools in registration order.
func (s *Server) ListTools() []ToolInfo {
	return append([]ToolInfo(nil), s.tools...)
}

// CallTool invokes a tool by name and returns its markdown rendering.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	call, ok := s.calls[name]
	if !ok {
		return "", NewMethodNotFoundError(name)
	}
	return call(ctx, args)
}

func (s *Server) registerTools() {
	s.logger.Debug("Registering MCP tools")

	addTool(s, &mcp.Tool{
		Name:        "search_icons",
		Description: "Search icons across many open-source icon libraries at once. Returns the first page of merged, deduplicated results with style and category for each icon. Call more_icons for further pages.",
	}, s.searchIcons, func(out IconsOutput) string {
		return FormatIcons(fmt.Sprintf("Icons for \"%s\"", out.Query), out)
	})

	addTool(s, &mcp.Tool{
		Name:        "more_icons",
		Description: "Return the next page of the most recent search_icons query.",
	}, s.moreIcons, func(out IconsOutput) string {
		return FormatIcons(fmt.Sprintf("More icons for \"%s\"", out.Query), out)
	})

	addTool(s, &mcp.Tool{
		Name:        "popular_icons",
		Description: "Return a curated set of commonly used icons (home, search, user, settings and so on).",
	}, s.popularIcons, func(out IconsOutput) string {
		return FormatIcons("Popular Icons", out)
	})

	addTool(s, &mcp.Tool{
		Name:        "library_icons",
		Description: "List icons of a single library by prefix, e.g. heroicons or lucide.",
	}, s.libraryIcons, func(out IconsOutput) string {
		return FormatIcons(fmt.Sprintf("Icons in %s", out.Query), out)
	})

	addTool(s, &mcp.Tool{
		Name:        "list_libraries",
		Description: "List the known icon libraries with their prefixes and approximate icon counts.",
	}, s.listLibraries, FormatLibraries)

	addTool(s, &mcp.Tool{
		Name:        "list_categories",
		Description: "List the icon categories accepted by search_icons.",
	}, s.listCategories, FormatCategories)

	if s.svg != nil {
		addTool(s, &mcp.Tool{
			Name:        "get_svg",
			Description: "Fetch the SVG markup of one icon by qualified name, optionally resized, recolored or with a custom stroke width.",
		}, s.getSVG, FormatSVG)
	}

	s.logger.Info("MCP tools registered", slog.Int("count", len(s.tools)))
}

// addTool registers a tool with both the SDK server and the CallTool table.
// Both paths run the same function and render the same markdown.
func addTool[In, Out any](s *Server, def *mcp.Tool, run func(context.Context, In) (Out, error), format func(Out) string) {
	mcp.AddTool(s.mcp, def, func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, Out, error) {
		start := time.Now()
		out, err := run(ctx, in)
		if err != nil {
			s.logger.Warn("Tool failed",
				slog.String("tool", def.Name),
				slog.String("error", err.Error()),
				slog.Duration("duration", time.Since(start)))
			var zero Out
			return nil, zero, MapError(err)
		}
		s.logger.Debug("Tool completed",
			slog.String("tool", def.Name),
			slog.Duration("duration", time.Since(start)))
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: format(out)}},
		}, out, nil
	})

	s.tools = append(s.tools, ToolInfo{Name: def.Name, Description: def.Description})
	s.calls[def.Name] = func(ctx context.Context, args map[string]any) (string, error) {
		var in In
		if err := decodeArgs(args, &in); err != nil {
			return "", NewInvalidParamsError(err.Error())
		}
		out, err := run(ctx, in)
		if err != nil {
			return "", MapError(err)
		}
		return format(out), nil
	}
	s.logger.Debug("Registered tool", slog.String("name", def.Name))
}

func decodeArgs(args map[string]any, into any) error {
	if len(args) == 0 {
		return nil
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, into)
}

func (s *Server) searchIcons(ctx context.Context, in SearchIconsInput) (IconsOutput, error) {
	if err := search.ValidateQuery(in.Query); err != nil {
		return IconsOutput{}, err
	}
	filters, err := search.ParseFilters(in.Libraries, in.Styles, in.Categories)
	if err != nil {
		return IconsOutput{}, err
	}
	page, err := s.feed.Start(ctx, in.Query, filters)
	if err != nil {
		return IconsOutput{}, err
	}
	return pageOutput(page), nil
}

func (s *Server) moreIcons(ctx context.Context, _ MoreIconsInput) (IconsOutput, error) {
	page, err := s.feed.More(ctx)
	if err != nil {
		return IconsOutput{}, err
	}
	return pageOutput(page), nil
}

func (s *Server) popularIcons(ctx context.Context, _ PopularIconsInput) (IconsOutput, error) {
	icons, err := s.engine.Popular(ctx)
	if err != nil {
		return IconsOutput{}, err
	}
	return iconsOutput(icons), nil
}

func (s *Server) libraryIcons(ctx context.Context, in LibraryIconsInput) (IconsOutput, error) {
	prefix := strings.TrimSpace(in.Prefix)
	if prefix == "" || strings.Contains(prefix, ":") {
		return IconsOutput{}, NewInvalidParamsError("prefix must be a library prefix such as heroicons")
	}
	icons, err := s.engine.Library(ctx, prefix, in.Limit)
	if err != nil {
		return IconsOutput{}, err
	}
	out := iconsOutput(icons)
	out.Query = prefix
	return out, nil
}

func (s *Server) listLibraries(context.Context, ListInput) (LibrariesOutput, error) {
	return LibrariesOutput{
		Libraries:  s.engine.Libraries(),
		TotalIcons: s.engine.EstimateTotalIconCount(),
	}, nil
}

func (s *Server) listCategories(context.Context, ListInput) (CategoriesOutput, error) {
	return CategoriesOutput{Categories: s.engine.Categories()}, nil
}

func (s *Server) getSVG(ctx context.Context, in GetSVGInput) (SVGOutput, error) {
	qn, err := icon.ParseQualifiedName(strings.TrimSpace(in.Name))
	if err != nil {
		return SVGOutput{}, ierrors.New(ierrors.ErrCodeInvalidQualifiedName, err.Error(), err)
	}
	if in.Size < 0 || in.StrokeWidth < 0 {
		return SVGOutput{}, NewInvalidParamsError("size and stroke_width must not be negative")
	}

	opts := icon.SVGOptions{Size: in.Size, StrokeWidth: in.StrokeWidth, Color: in.Color}.WithDefaults()
	body, err := s.svg.SVG(ctx, qn, opts)
	if err != nil {
		return SVGOutput{}, err
	}

	ic, _ := normalize.Default().Normalize("", provider.RawHit{QualifiedName: qn.String()})
	return SVGOutput{
		Name:     qn.String(),
		Filename: icon.Filename(ic, opts),
		SVG:      string(body),
	}, nil
}

func pageOutput(p search.Page) IconsOutput {
	return IconsOutput{
		Query:   p.Query,
		Page:    p.Number,
		Count:   len(p.Icons),
		HasMore: p.HasMore,
		Icons:   p.Icons,
	}
}

// Serve starts the server with the specified transport.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("Starting MCP server", slog.String("transport", transport))

	switch transport {
	case "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
		} else {
			s.logger.Info("MCP server stopped gracefully")
		}
		return err
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}
