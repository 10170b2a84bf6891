// Package server wires all components and creates the MCP server instance.
//
// This is the composition root: it creates concrete implementations and
// injects them into the tools, prompts and resources that depend on
// abstractions. No business logic lives here, only wiring.
package server

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/HendryAvila/hoofy-research/internal/config"
	"github.com/HendryAvila/hoofy-research/internal/logging"
	"github.com/HendryAvila/hoofy-research/internal/memory"
	"github.com/HendryAvila/hoofy-research/internal/memtools"
	"github.com/HendryAvila/hoofy-research/internal/prompts"
	"github.com/HendryAvila/hoofy-research/internal/research"
	"github.com/HendryAvila/hoofy-research/internal/resources"
	"github.com/HendryAvila/hoofy-research/internal/sources"
	"github.com/HendryAvila/hoofy-research/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// openMemory is swapped in tests to simulate an unusable database.
var openMemory = memory.New

// Options configures the composition root.
type Options struct {
	// ProjectRoot is the directory the project-files and environment
	// providers inspect.
	ProjectRoot string
	// Settings defaults to config.Default().
	Settings *config.Config
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// Registerer receives the research metrics. Nil disables metrics.
	Registerer prometheus.Registerer
}

// Research is a ready orchestrator and the stores it owns.
type Research struct {
	Orchestrator *research.Orchestrator
	// Memory is nil when the knowledge graph could not be opened.
	Memory *memory.Store

	logger *zap.Logger
}

// Close releases the knowledge-graph database. It is safe to call when
// memory is disabled.
func (r *Research) Close() {
	if r.Memory == nil {
		return
	}
	if err := r.Memory.Close(); err != nil {
		r.logger.Warn("memory store close", zap.Error(err))
	}
}

// Reload applies new settings to the running orchestrator. Calls already in
// flight keep their configuration. Provider limits and the knowledge-graph
// location are fixed at construction and are not reloaded.
func (r *Research) Reload(settings *config.Config) error {
	cfg, err := settings.ToResearch()
	if err != nil {
		return err
	}
	if err := r.Orchestrator.SetConfig(cfg); err != nil {
		return err
	}
	r.logger.Info("settings reloaded",
		zap.Float64("threshold", cfg.ConfidenceThreshold),
		zap.Bool("parallel", cfg.Parallel),
	)
	return nil
}

// NewResearch builds the orchestrator over every available provider.
//
// The knowledge graph is an independent subsystem: if its database fails to
// open, research continues with the remaining sources and a warning is
// logged.
func NewResearch(opts Options) (*Research, error) {
	settings := opts.Settings
	if settings == nil {
		settings = config.Default()
	}
	cfg, err := settings.ToResearch()
	if err != nil {
		return nil, err
	}
	logger := logging.Component(opts.Logger, "server")

	r := &Research{logger: logger}

	providers := []research.Provider{
		sources.NewProjectFiles(sources.ProjectFilesOptions{
			Root:        opts.ProjectRoot,
			MaxFiles:    settings.ProjectFiles.MaxFiles,
			MaxFileSize: settings.ProjectFiles.MaxFileSize,
			Logger:      opts.Logger,
		}),
		sources.NewEnvironment(sources.EnvironmentOptions{Root: opts.ProjectRoot}),
	}

	store, memErr := openMemory(memory.Config{DataDir: settings.KnowledgeGraph.DataDir})
	if memErr != nil {
		logger.Warn("memory subsystem disabled; knowledge graph source skipped", zap.Error(memErr))
	} else {
		r.Memory = store
		providers = append(providers, sources.NewKnowledgeGraph(store, sources.KnowledgeGraphOptions{
			Project: settings.KnowledgeGraph.Project,
		}))
	}

	ropts := []research.Option{
		research.WithLogger(opts.Logger),
		research.WithSuggester(sources.NewWebSearch(settings.WebSearch.MaxQueries)),
	}
	if opts.Registerer != nil {
		ropts = append(ropts, research.WithMetrics(research.NewMetrics(opts.Registerer)))
	}

	o, err := research.New(cfg, providers, ropts...)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("creating orchestrator: %w", err)
	}
	r.Orchestrator = o
	return r, nil
}

// New creates the MCP server with all tools, prompts and resources
// registered. The returned cleanup function closes the knowledge-graph
// database and must be called on shutdown. It is always non-nil.
func New(opts Options) (*server.MCPServer, func(), error) {
	r, err := NewResearch(opts)
	if err != nil {
		return nil, noop, err
	}
	return NewMCP(r, opts.Logger), r.Close, nil
}

// NewMCP exposes an existing Research over MCP. The caller keeps
// ownership of r and closes it.
func NewMCP(r *Research, logger *zap.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"hoofy-research",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Research tools ---

	answerTool := tools.NewAnswerTool(r.Orchestrator, logger)
	s.AddTool(answerTool.Definition(), answerTool.Handle)

	thresholdTool := tools.NewThresholdTool(r.Orchestrator)
	s.AddTool(thresholdTool.Definition(), thresholdTool.Handle)

	// --- Knowledge graph curation ---
	//
	// Registered only when memory opened; research works without them.

	if r.Memory != nil {
		registerMemoryTools(s, r.Memory)
	}

	// --- Prompts ---

	researchPrompt := prompts.NewResearchPrompt()
	s.AddPrompt(researchPrompt.Definition(), researchPrompt.Handle)

	// --- Resources ---

	resourceHandler := resources.NewHandler(r.Orchestrator)
	s.AddResource(resourceHandler.ConfigResource(), resourceHandler.HandleConfig)

	return s
}

// noop is the cleanup returned when construction fails.
func noop() {}

// registerMemoryTools registers the knowledge-graph MCP tools.
func registerMemoryTools(s *server.MCPServer, ms *memory.Store) {
	saveTool := memtools.NewSaveTool(ms)
	s.AddTool(saveTool.Definition(), saveTool.Handle)

	relateTool := memtools.NewRelateTool(ms)
	s.AddTool(relateTool.Definition(), relateTool.Handle)

	unrelateTool := memtools.NewUnrelateTool(ms)
	s.AddTool(unrelateTool.Definition(), unrelateTool.Handle)

	searchTool := memtools.NewSearchTool(ms)
	s.AddTool(searchTool.Definition(), searchTool.Handle)

	buildCtx := memtools.NewBuildContextTool(ms)
	s.AddTool(buildCtx.Definition(), buildCtx.Handle)

	statsTool := memtools.NewStatsTool(ms)
	s.AddTool(statsTool.Definition(), statsTool.Handle)
}

// serverInstructions tells the AI how to use the research server.
func serverInstructions() string {
	return `You have access to Hoofy Research, a local-first research MCP server.

## WHEN TO USE IT

Call research_answer BEFORE searching the web whenever the user asks about
their own project: which database, broker or framework it uses, how something
is configured, what tooling is installed, what was decided earlier.

## HOW IT WORKS

research_answer probes local sources in priority order:
1. Project files (manifests, configs, source)
2. Knowledge graph (facts and decisions saved with kg_save)
3. Environment (binaries on PATH, environment variables, marker files)

Each source adds confidence. The cascade stops as soon as the combined
confidence reaches the threshold (default 0.6), so cheap sources answer first.

## ESCALATION

If the result has needs_web_search = true, local knowledge was not enough.
Run the suggested web_search_queries yourself and combine them with the
partial local evidence. The server never searches the web.

## KEEPING THE GRAPH USEFUL

When you learn a durable fact (a decision, a convention, a dependency),
save it with kg_save and connect related nodes with kg_relate. The next
question about it is then answered locally.
kg_search with a question shows which nodes research_answer would find for it.

## TUNING

- confidence_threshold on a single call raises or lowers the bar once.
- research_set_threshold changes the default for later calls.
- The research://config resource shows the live configuration.`
}
