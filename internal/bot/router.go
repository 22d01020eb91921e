package bot

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/aurum-community/aurum-bot/internal/bot/handlers"
)

// Router dispatches slash command interactions to registered handlers
// through the middleware chain. Dispatch is a name lookup, not a branch
// ladder.
type Router struct {
	mu          sync.RWMutex
	commands    map[string]handlers.Handler
	middlewares []handlers.Middleware
	log         *slog.Logger
}

// NewRouter builds a Router with empty registries.
func NewRouter(log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}

	return &Router{
		commands:    make(map[string]handlers.Handler),
		middlewares: make([]handlers.Middleware, 0),
		log:         log,
	}
}

// RegisterCommand registers a handler for a slash command name.
func (r *Router) RegisterCommand(name string, h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[name] = h
}

// Use appends a middleware to the chain.
func (r *Router) Use(mw handlers.Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = append(r.middlewares, mw)
}

// Route directs the incoming interaction to the appropriate handler.
func (r *Router) Route(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i == nil || i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name

	r.mu.RLock()
	handler := r.commands[name]
	r.mu.RUnlock()

	if handler == nil {
		r.log.Info("no handler registered for command", slog.String("command", name))
		return
	}

	wrapped := r.applyMiddlewares(handler)
	if err := wrapped(ctx, s, i); err != nil {
		// Middlewares convert errors into user replies; anything left over
		// is only worth a log line.
		r.log.Error("command handler failed",
			slog.String("command", name),
			slog.Any("error", err),
		)
	}
}

// applyMiddlewares wraps the handler with all registered middlewares.
func (r *Router) applyMiddlewares(h handlers.Handler) handlers.Handler {
	r.mu.RLock()
	middlewares := append([]handlers.Middleware(nil), r.middlewares...)
	r.mu.RUnlock()

	wrapped := h
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}

	return wrapped
}
