package router

import "sort"

// Wildcard matches any action sub-key that has no dedicated registration.
const Wildcard = "*"

// Router is the keyed handler registry. Registration happens during startup
// only; once the application begins serving, the maps are read-only and need
// no locking. The Router never invokes a handler itself.
type Router struct {
	events   map[string][]Registration
	commands map[string][]Registration
	// actions is keyed by callback id, then by sub-key (action_id or legacy
	// action name). Every callback id has at least the wildcard level.
	actions map[string]map[string][]Registration
}

// NewRouter returns a new Router
func NewRouter() *Router {
	return &Router{
		events:   make(map[string][]Registration),
		commands: make(map[string][]Registration),
		actions:  make(map[string]map[string][]Registration),
	}
}

// OnEvent appends a registration for an Events API inner event type, e.g.
// "team_join" or "message".
func (r *Router) OnEvent(eventType string, reg Registration) {
	r.events[eventType] = append(r.events[eventType], reg)
}

// OnCommand appends a registration for a slash command, e.g. "/mentorship".
func (r *Router) OnCommand(command string, reg Registration) {
	r.commands[command] = append(r.commands[command], reg)
}

// OnAction appends a registration for an interactive callback id. An empty
// actionName registers under the wildcard sub-key.
func (r *Router) OnAction(callbackID, actionName string, reg Registration) {
	if actionName == "" {
		actionName = Wildcard
	}
	subs := r.actions[callbackID]
	if subs == nil {
		subs = make(map[string][]Registration)
		r.actions[callbackID] = subs
	}
	subs[actionName] = append(subs[actionName], reg)
}

// Dispatch resolves the payload's key (and sub-key for actions) and returns
// the matching registrations in registration order. A dedicated sub-key
// registration shadows the wildcard. Unknown keys yield an empty match, not
// an error; the endpoint adapters acknowledge those with a bare 200.
func (r *Router) Dispatch(p Payload) []Registration {
	switch p.Kind() {
	case KindEvent:
		return copyRegs(r.events[p.Key()])
	case KindCommand:
		return copyRegs(r.commands[p.Key()])
	case KindAction:
		subs := r.actions[p.Key()]
		if subs == nil {
			return nil
		}
		if sub := p.SubKey(); sub != "" && sub != Wildcard {
			if regs := subs[sub]; len(regs) > 0 {
				return copyRegs(regs)
			}
		}
		return copyRegs(subs[Wildcard])
	}
	return nil
}

// RouteInfo describes one registration for introspection.
type RouteInfo struct {
	Kind   Kind
	Key    string
	SubKey string
	Name   string
	Config Config
}

// Routes lists every registration, sorted by kind, key, sub-key and name.
func (r *Router) Routes() []RouteInfo {
	var routes []RouteInfo
	for key, regs := range r.events {
		for _, reg := range regs {
			routes = append(routes, RouteInfo{Kind: KindEvent, Key: key, Name: reg.Name, Config: reg.Config})
		}
	}
	for key, regs := range r.commands {
		for _, reg := range regs {
			routes = append(routes, RouteInfo{Kind: KindCommand, Key: key, Name: reg.Name, Config: reg.Config})
		}
	}
	for key, subs := range r.actions {
		for sub, regs := range subs {
			for _, reg := range regs {
				routes = append(routes, RouteInfo{Kind: KindAction, Key: key, SubKey: sub, Name: reg.Name, Config: reg.Config})
			}
		}
	}
	sort.Slice(routes, func(i, j int) bool {
		a, b := routes[i], routes[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Key != b.Key {
			return a.Key < b.Key
		}
		if a.SubKey != b.SubKey {
			return a.SubKey < b.SubKey
		}
		return a.Name < b.Name
	})
	return routes
}

func copyRegs(regs []Registration) []Registration {
	if len(regs) == 0 {
		return nil
	}
	out := make([]Registration, len(regs))
	copy(out, regs)
	return out
}
