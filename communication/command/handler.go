package command

import (
	"context"
	"sort"

	"github.com/blocklords/ballot/communication/message"
	"github.com/blocklords/ballot/log"
)

// HandleFunc is the function type that executes the command.
// It accepts the message.Request and log.Logger then returns message.Reply.
//
// The context is cancelled when the controller stops.
type HandleFunc = func(context.Context, message.Request, *log.Logger) message.Reply

// Handlers binds the commands to their handlers
type Handlers map[Name]HandleFunc

// EmptyHandlers returns the handlers without any command
func EmptyHandlers() Handlers {
	return Handlers{}
}

// Add the handler of the command. Returns itself for chaining.
func (handlers Handlers) Add(name Name, handler HandleFunc) Handlers {
	handlers[name] = handler
	return handlers
}

// Exist returns true if the command has a handler
func (handlers Handlers) Exist(name Name) bool {
	_, ok := handlers[name]
	return ok
}

// CommandNames returns the sorted command names
func (handlers Handlers) CommandNames() []string {
	names := make([]string, 0, len(handlers))
	for name := range handlers {
		names = append(names, name.String())
	}
	sort.Strings(names)

	return names
}
