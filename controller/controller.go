// Package controller is the zeromq reply socket that executes the commands.
// The users send the message.Request, the controller finds the command handler
// and replies with the message.Reply returned by the handler.
package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/blocklords/ballot/common/data_type/key_value"
	"github.com/blocklords/ballot/communication/command"
	"github.com/blocklords/ballot/communication/message"
	"github.com/blocklords/ballot/configuration"
	"github.com/blocklords/ballot/log"

	zmq "github.com/pebbe/zmq4"
)

const (
	PortName = "CONTROLLER_PORT"
	Surface  = "controller"
	// UnknownCommand is the metrics label of the commands without a handler
	UnknownCommand = "unknown"
	// PollTimeout is how often the controller checks whether it should stop
	PollTimeout = 100 * time.Millisecond
)

// Counter records the received commands
type Counter interface {
	CountRequest(surface string, command string)
}

// Controller is the socket wrapper for the service.
type Controller struct {
	url     string
	logger  *log.Logger
	counter Counter
}

// NewReply creates a new synchronous reply controller.
// The socket is created and bound in Run.
func NewReply(url string, parent *log.Logger) (*Controller, error) {
	if len(url) == 0 {
		return nil, fmt.Errorf("missing controller url")
	}

	return &Controller{
		url:    url,
		logger: parent.Child("controller", "type", "reply", "url", url),
	}, nil
}

// SetCounter sets where the received commands are counted
func (c *Controller) SetCounter(counter Counter) {
	c.counter = counter
}

// Url creates url of the controller url for binding.
// The port 0 means the controller is available only within the process.
func Url(name string, port uint64) string {
	if port == 0 {
		return fmt.Sprintf("inproc://%s", name)
	}
	url := fmt.Sprintf("tcp://*:%d", port)
	return url
}

// DefaultConfiguration of the controller.
// Setting the port to 0 disables the controller.
func DefaultConfiguration() configuration.DefaultConfig {
	return configuration.DefaultConfig{
		Title:      "Controller",
		Parameters: key_value.Empty().Set(PortName, uint64(4100)),
	}
}

// reply sends to the caller the message.
// If the message is not valid, then the failure is sent instead.
func (c *Controller) reply(socket *zmq.Socket, reply message.Reply) error {
	raw, err := reply.String()
	if err != nil {
		c.logger.Error("reply.String", "error", err)
		fail := messageFail(reply.Uuid, fmt.Errorf("failed to encode the reply: %w", err))
		raw, _ = fail.String()
	}
	if _, err := socket.SendMessage(raw); err != nil {
		return fmt.Errorf("socket.SendMessage: %w", err)
	}

	return nil
}

func messageFail(uuid string, err error) message.Reply {
	reply := message.Fail(err.Error())
	reply.Uuid = uuid
	return reply
}

func (c *Controller) count(requestCommand string) {
	if c.counter != nil {
		c.counter.CountRequest(Surface, requestCommand)
	}
}

// processMessage parses the request and executes its handler.
func (c *Controller) processMessage(ctx context.Context, handlers command.Handlers, raw []string) message.Reply {
	request, err := message.ParseRequest(raw)
	if err != nil {
		return messageFail("", fmt.Errorf("message.ParseRequest: %w", err))
	}

	requestCommand := command.New(request.Command)
	if !handlers.Exist(requestCommand) {
		c.count(UnknownCommand)
		return request.Fail(fmt.Sprintf("handler not found for command: %s", request.Command))
	}
	c.count(request.Command)

	reply := handlers[requestCommand](ctx, request, c.logger)
	reply.Uuid = request.Uuid
	if !reply.IsOK() {
		c.logger.Warn("handler replied an error", "command", request.Command, "request parameters", request.Parameters, "error message", reply.Message)
	}

	return reply
}

// Run the controller.
//
// It will bind itself to the socket endpoint and waits for the message.Request.
// If message.Request.Command is defined in the handlers, then executes it.
// Returns when the context is cancelled.
//
// The socket is created in this function since the zeromq sockets
// should be used by the goroutine that created them.
//
// Valid call:
//
//	reply, _ := controller.NewReply(url, logger)
//	go reply.Run(ctx, handlers)
func (c *Controller) Run(ctx context.Context, handlers command.Handlers) error {
	socket, err := zmq.NewSocket(zmq.REP)
	if err != nil {
		return fmt.Errorf("zmq.NewSocket: %w", err)
	}
	defer func() {
		_ = socket.Close()
	}()
	if err := socket.SetLinger(0); err != nil {
		return fmt.Errorf("socket.SetLinger: %w", err)
	}
	if err := socket.Bind(c.url); err != nil {
		return fmt.Errorf("socket.Bind(%s): %w", c.url, err)
	}
	c.logger.Info("waiting for the requests", "commands", handlers.CommandNames())

	poller := zmq.NewPoller()
	poller.Add(socket, zmq.POLLIN)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("stopped")
			return nil
		default:
		}

		sockets, err := poller.Poll(PollTimeout)
		if err != nil {
			return fmt.Errorf("poller.Poll: %w", err)
		}
		if len(sockets) == 0 {
			continue
		}

		raw, err := socket.RecvMessage(0)
		if err != nil {
			newErr := fmt.Errorf("socket.RecvMessage: %w", err)
			if err := c.reply(socket, messageFail("", newErr)); err != nil {
				return err
			}
			return newErr
		}

		if err := c.reply(socket, c.processMessage(ctx, handlers, raw)); err != nil {
			return fmt.Errorf("reply: %w", err)
		}
	}
}
