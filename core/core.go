package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Plugin is one named unit of the application. Load is called exactly once
// at startup, in registration order; it may add HTTP routes to the shell and
// grab capabilities from already-loaded plugins.
type Plugin interface {
	Name() string
	Load(app *App) error
}

// Starter is an optional plugin hook run after every plugin has loaded.
type Starter interface {
	Start(ctx context.Context) error
}

// Stopper is an optional plugin hook run at shutdown, in reverse
// registration order.
type Stopper interface {
	Stop(ctx context.Context) error
}

// App is the application shell: the named plugin registry, the process-wide
// outbound HTTP client, and the HTTP mux the webhook endpoints hang off.
// Plugins have no compile-time dependency on each other; they exchange
// capabilities through Plugin lookup by name.
type App struct {
	ListenPort string

	mux     *http.ServeMux
	client  *http.Client
	plugins map[string]Plugin
	order   []string
	loaded  bool
}

// New builds an empty shell with the health and introspection routes
// registered.
func New() *App {
	app := &App{
		mux:     http.NewServeMux(),
		client:  &http.Client{Timeout: 30 * time.Second},
		plugins: make(map[string]Plugin),
	}
	app.mux.HandleFunc("/healthz", app.handleHealth)
	app.mux.HandleFunc("/plugins", app.handlePlugins)
	return app
}

// RegisterPlugin adds a plugin to the registry. Registration is a startup
// concern only; once Load has run the registry is frozen.
func (app *App) RegisterPlugin(p Plugin) error {
	if app.loaded {
		return errors.New("plugin registry is frozen after load")
	}
	name := p.Name()
	if _, exists := app.plugins[name]; exists {
		return fmt.Errorf("plugin %q already registered", name)
	}
	app.plugins[name] = p
	app.order = append(app.order, name)
	return nil
}

// Plugin looks up a loaded plugin by name.
func (app *App) Plugin(name string) (interface{}, bool) {
	p, ok := app.plugins[name]
	return p, ok
}

// PluginNames lists registered plugins in registration order.
func (app *App) PluginNames() []string {
	names := make([]string, len(app.order))
	copy(names, app.order)
	return names
}

// HTTPClient is the shared outbound client. It is safe for concurrent use
// and lives for the whole process.
func (app *App) HTTPClient() *http.Client {
	return app.client
}

// Handle registers an HTTP route on the shell's mux. Meant to be called from
// a plugin's Load.
func (app *App) Handle(pattern string, handler http.HandlerFunc) {
	app.mux.HandleFunc(pattern, handler)
}

// Load calls each plugin's Load once, in registration order, then freezes
// the registry.
func (app *App) Load() error {
	if app.loaded {
		return errors.New("plugins already loaded")
	}
	for _, name := range app.order {
		log.Debug().Str("plugin", name).Msg("Loading plugin")
		if err := app.plugins[name].Load(app); err != nil {
			return fmt.Errorf("loading plugin %q: %w", name, err)
		}
	}
	app.loaded = true
	return nil
}

// Handler returns the shell's HTTP handler with request logging.
func (app *App) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		app.mux.ServeHTTP(rec, r)
		requestLog(rec.code, r)
	})
}

// Run loads the plugins and serves until ctx is canceled. The shared HTTP
// client's idle connections are released on the way out even when startup
// fails partway.
func (app *App) Run(ctx context.Context) error {
	defer app.close(ctx)

	if err := app.Load(); err != nil {
		return err
	}

	for _, name := range app.order {
		if starter, ok := app.plugins[name].(Starter); ok {
			if err := starter.Start(ctx); err != nil {
				return fmt.Errorf("starting plugin %q: %w", name, err)
			}
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", app.listenPort()),
		Handler: app.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Info().Str("port", app.listenPort()).Msg("Server listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (app *App) close(ctx context.Context) {
	for i := len(app.order) - 1; i >= 0; i-- {
		if stopper, ok := app.plugins[app.order[i]].(Stopper); ok {
			if err := stopper.Stop(ctx); err != nil {
				log.Error().Err(err).Str("plugin", app.order[i]).Msg("Plugin shutdown failed")
			}
		}
	}
	app.client.CloseIdleConnections()
}

func (app *App) listenPort() string {
	if app.ListenPort != "" {
		return app.ListenPort
	}
	return "3000"
}

func (app *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}

func (app *App) handlePlugins(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string][]string{"plugins": app.PluginNames()}); err != nil {
		log.Error().Err(err).Msg("Failed to write plugin list")
	}
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.code = code
	rec.ResponseWriter.WriteHeader(code)
}

func requestLog(code int, r *http.Request) {
	log.Info().
		Str("method", r.Method).
		Str("code", strconv.Itoa(code)).
		Str("uri", r.URL.String()).
		Msg("")
}
