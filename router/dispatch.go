package router

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Task is the completion handle of one awaited handler invocation. Its
// fields are written by the handler goroutine before done is closed and read
// by the reconciler afterwards.
type Task struct {
	Name string
	done chan struct{}
	resp *Response
	err  error
}

// Done is closed when the handler has finished, panicked included.
func (t *Task) Done() <-chan struct{} { return t.done }

func (t *Task) run(ctx context.Context, env Env, p Payload, handler HandlerFunc) {
	defer func() {
		if r := recover(); r != nil {
			t.err = fmt.Errorf("handler %s panicked: %v", t.Name, r)
		}
		close(t.done)
	}()
	t.resp, t.err = handler(ctx, env, p)
}

// Dispatcher fans a payload out to every matching registration. Awaited
// handlers come back as Tasks for the reconciler to join on; detached
// handlers run supervised in the background, their errors logged and their
// results discarded.
type Dispatcher struct {
	Router *Router
	// Admins is the allow-list consulted for Admin-flagged registrations.
	Admins []string
	Logger zerolog.Logger
}

// Run launches every matched handler and returns the must-await set. It
// never blocks on handler completion and never lets a handler failure
// escape; converting failures into logged events or failed Tasks is this
// layer's job.
func (d *Dispatcher) Run(ctx context.Context, env Env, p Payload) []*Task {
	regs := d.Router.Dispatch(p)
	logger := d.Logger.With().
		Str("dispatch_id", uuid.NewString()).
		Str("kind", p.Kind().String()).
		Str("key", p.Key()).
		Logger()

	var awaited []*Task
	for _, reg := range regs {
		if reg.Config.Mention && !p.Mentioned() {
			continue
		}
		if reg.Config.Admin && !d.isAdmin(p.UserID()) {
			logger.Warn().Str("user", p.UserID()).Str("handler", reg.Name).Msg("Admin-only handler skipped")
			continue
		}

		logger.Debug().Str("handler", reg.Name).Bool("wait", reg.Config.Wait).Msg("Dispatching")

		if reg.Config.Wait {
			t := &Task{Name: reg.Name, done: make(chan struct{})}
			go t.run(ctx, env, p, reg.Handler)
			awaited = append(awaited, t)
			continue
		}

		// Detached handlers outlive the webhook response, and the server
		// cancels the request context as soon as it is written. Cut the
		// cancellation chain so their outbound calls keep working.
		dctx := context.WithoutCancel(ctx)
		detach(reg.Name, logger, func() error {
			// A detached handler can never answer the webhook; whatever
			// response it returns is dropped here.
			_, err := reg.Handler(dctx, env, p)
			return err
		})
	}
	return awaited
}

func (d *Dispatcher) isAdmin(userID string) bool {
	if userID == "" {
		return false
	}
	for _, admin := range d.Admins {
		if admin == userID {
			return true
		}
	}
	return false
}

// detach runs fn in a supervised goroutine whose panics and errors are
// logged, never propagated. The goroutine may outlive the webhook response.
func detach(name string, logger zerolog.Logger, fn func() error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().
					Interface("panic", r).
					Str("handler", name).
					Str("stack", string(debug.Stack())).
					Msg("Detached handler panicked")
			}
		}()
		if err := fn(); err != nil {
			logger.Error().Err(err).Str("handler", name).Msg("Detached handler failed")
		}
	}()
}
