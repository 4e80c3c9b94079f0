package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/ritzau/topology-lens/pkg/config"
	"github.com/ritzau/topology-lens/pkg/criteria"
	"github.com/ritzau/topology-lens/pkg/lens"
	"github.com/ritzau/topology-lens/pkg/logging"
	"github.com/ritzau/topology-lens/pkg/model"
	"github.com/ritzau/topology-lens/pkg/output"
	"github.com/ritzau/topology-lens/pkg/provider"
	"github.com/ritzau/topology-lens/pkg/source"
	"github.com/ritzau/topology-lens/pkg/watcher"
	"github.com/ritzau/topology-lens/pkg/web"
)

func main() {
	// Parse command-line flags
	flags := pflag.NewFlagSet("topology-lens", pflag.ExitOnError)
	flags.String("source", "topology.toml", "Topology document (.toml, .yaml or .json)")
	flags.String("links", "", "Directory of link documents bound as extra edge providers")
	flags.Bool("web", false, "Start web server instead of printing to console")
	flags.Int("port", 8080, "Port for web server (only used with --web)")
	flags.Bool("open", false, "Open the browser when the web server starts")
	flags.Bool("watch", false, "Reload the document when it changes")
	flags.Int("zoom", 0, "Semantic zoom level")
	flags.StringSlice("focus", nil, "Focus vertices as namespace:id, or id in the base namespace")
	flags.String("layering", "flat", "Provider chain: flat, default, reference, or a list of merge,hop")
	flags.String("verbosity", "", "Log level: trace, debug, info, warn, error")
	flags.CountP("verbose", "v", "Increase log verbosity (-v info, -vv debug, -vvv trace)")
	flags.Bool("json-logs", false, "Write logs as JSON")
	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level := logging.ParseLevel(cfg.Verbosity, cfg.VerboseCnt)
	if cfg.JSONLogs {
		logging.SetJSONOutput(level)
	} else {
		logging.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app ties a topology document to a container and its outputs
type app struct {
	src       *source.FileSource
	links     *source.LinkDirectory // nil without --links
	container *lens.Container
	server    *web.Server // nil in console mode
}

func run(ctx context.Context, cfg *config.Config) error {
	chain, err := lens.ParseChain(cfg.Layering)
	if err != nil {
		return err
	}

	src, err := source.NewFileSource(cfg.Source)
	if err != nil {
		return err
	}

	a := &app{src: src}
	if cfg.Links != "" {
		a.links = source.NewLinkDirectory(cfg.Links)
	}

	logging.Info("Loading topology", "source", src.Name(), "links", cfg.Links)
	base, links, err := a.load(ctx)
	if err != nil {
		return err
	}

	container, err := lens.NewContainer(base, lens.WithChain(chain), lens.WithEdgeProviders(links...))
	if err != nil {
		return err
	}
	defer container.Close()

	container.SetSemanticZoomLevel(cfg.Zoom)
	if len(cfg.Focus) > 0 {
		focus := criteria.NewFocusHop(web.FocusName)
		for _, v := range cfg.Focus {
			focus.Add(model.ParseVertexRef(v, base.Namespace()))
		}
		container.AddCriteria(focus)
		if !chain.Has(lens.StageHop) {
			logging.Warn("Focus has no effect without a hop stage", "layering", chain.String())
		}
	}
	logging.Info("Topology loaded", "vertices", len(base.Vertices()), "edgeProviders", len(links), "chain", chain.String())

	a.container = container

	if !cfg.WebMode {
		if err := a.print(); err != nil {
			return err
		}
		if !cfg.Watch {
			return nil
		}
		return a.watch(ctx)
	}

	a.server = web.NewServer(container)
	if _, err := a.server.Refresh(); err != nil {
		return err
	}
	_ = a.server.PublishSourceStatus("ready", src.Name(), "Topology loaded")

	if cfg.Watch {
		go func() {
			if err := a.watch(ctx); err != nil {
				logging.Error("File watching stopped", "error", err)
			}
		}()
	}

	if cfg.Open {
		go func() {
			// Wait a moment for server to start
			time.Sleep(500 * time.Millisecond)
			openBrowser(fmt.Sprintf("http://localhost:%d", cfg.Port))
		}()
	}

	return a.server.Start(ctx, cfg.Port)
}

func (a *app) print() error {
	g, err := a.container.Graph()
	if err != nil {
		return err
	}
	output.PrintGraph(os.Stdout, a.src.Name(), g)
	return nil
}

// watch reloads the document on change until the context is cancelled
func (a *app) watch(ctx context.Context) error {
	fw, err := watcher.NewFileWatcher(a.src.Path())
	if err != nil {
		return err
	}
	if a.links != nil {
		// Watch the directory so link documents added later trigger a reload
		if err := fw.WatchDirectory(a.links.Root()); err != nil {
			fw.Stop()
			return err
		}
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}
	defer fw.Stop()

	debouncer := watcher.NewDebouncer(fw.Events(), 300*time.Millisecond, 2*time.Second)
	debouncer.Start(ctx)
	logging.Info("Watching for changes", "source", a.src.Name())

	for event := range debouncer.Output() {
		decision := watcher.AnalyzeChanges(event)
		if decision.Removed {
			logging.Warn("Topology document removed, keeping last graph", "source", a.src.Name())
			a.publishStatus("error", "Document removed")
			continue
		}
		if !decision.Reload {
			continue
		}

		logging.Info("Topology document changed", "files", decision.ChangedFiles)
		a.publishStatus("loading", "Reloading topology")
		if err := a.reload(ctx); err != nil {
			logging.Error("Reload failed, keeping last graph", "error", err)
			a.publishStatus("error", err.Error())
			continue
		}
		a.publishStatus("ready", "Topology reloaded")
	}
	return nil
}

// load reads the document and the link directory into providers
func (a *app) load(ctx context.Context) (*provider.SimpleGraphProvider, []provider.EdgeProvider, error) {
	topology, err := a.src.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	if a.links != nil {
		extra, err := a.links.Load(ctx)
		if err != nil {
			return nil, nil, err
		}
		topology.Links = append(topology.Links, extra...)
	}
	return source.Providers(topology)
}

// reload swaps in the providers of the current documents. Edge providers that
// are gone from the documents are unbound.
func (a *app) reload(ctx context.Context) error {
	base, links, err := a.load(ctx)
	if err != nil {
		return err
	}

	if err := a.container.SetBaseProvider(base); err != nil {
		return err
	}
	present := make(map[string]bool, len(links))
	for _, p := range links {
		present[p.Namespace()] = true
		a.container.BindEdgeProvider(p)
	}
	for _, p := range a.container.EdgeProviders() {
		if !present[p.Namespace()] {
			a.container.UnbindEdgeProvider(p.Namespace())
		}
	}

	if a.server != nil {
		_, err = a.server.Refresh()
		return err
	}
	return a.print()
}

func (a *app) publishStatus(state, message string) {
	if a.server == nil {
		return
	}
	if err := a.server.PublishSourceStatus(state, a.src.Name(), message); err != nil {
		logging.Debug("Source status not published", "error", err)
	}
}

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "linux":
		cmd = "xdg-open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		logging.Warn("Cannot open browser on platform", "os", runtime.GOOS)
		return
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		logging.Warn("Failed to open browser", "error", err)
	}
}
