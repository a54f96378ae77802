package controller

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/blocklords/ballot/common/data_type/key_value"
	"github.com/blocklords/ballot/communication/command"
	"github.com/blocklords/ballot/communication/message"
	"github.com/blocklords/ballot/log"
	zmq "github.com/pebbe/zmq4"
	"github.com/stretchr/testify/suite"
)

type countedRequests struct {
	mu       sync.Mutex
	commands []string
}

func (c *countedRequests) CountRequest(surface string, command string) {
	c.mu.Lock()
	c.commands = append(c.commands, surface+":"+command)
	c.mu.Unlock()
}

// Define the suite, and absorb the built-in basic suite
// functionality from testify - including a T() method which
// returns the current testing context
type TestReplyControllerSuite struct {
	suite.Suite
	url      string
	client   *zmq.Socket
	commands []command.Name
	counter  *countedRequests
	cancel   context.CancelFunc
	done     chan error
}

func (suite *TestReplyControllerSuite) SetupTest() {
	logger, err := log.New("test_suite", false)
	suite.Require().NoError(err)

	_, err = NewReply("", logger)
	suite.Require().Error(err)

	suite.url = Url("controller_test", 0)
	suite.Require().Equal("inproc://controller_test", suite.url)
	suite.Require().Equal("tcp://*:4100", Url("controller_test", 4100))

	controller, err := NewReply(suite.url, logger)
	suite.Require().NoError(err)
	suite.counter = &countedRequests{}
	controller.SetCounter(suite.counter)

	command1 := command.New("command_1")
	command1Handler := func(_ context.Context, request message.Request, _ *log.Logger) message.Reply {
		return request.Ok(request.Parameters.Set("id", command1.String()))
	}
	command2 := command.New("command_2")
	command2Handler := func(_ context.Context, request message.Request, _ *log.Logger) message.Reply {
		return request.Ok(request.Parameters.Set("id", command2.String()))
	}
	invalid := command.New("invalid")
	invalidHandler := func(_ context.Context, request message.Request, _ *log.Logger) message.Reply {
		// the failure without a message is not valid
		return message.Reply{Status: message.FAIL, Parameters: key_value.Empty()}
	}
	handlers := command.EmptyHandlers().
		Add(command1, command1Handler).
		Add(command2, command2Handler).
		Add(invalid, invalidHandler)
	suite.commands = []command.Name{command1, command2}

	ctx, cancel := context.WithCancel(context.Background())
	suite.cancel = cancel
	suite.done = make(chan error, 1)
	go func() {
		suite.done <- controller.Run(ctx, handlers)
	}()

	// Prepare for the controller to be ready
	time.Sleep(time.Millisecond * 200)

	client, err := zmq.NewSocket(zmq.REQ)
	suite.Require().NoError(err)
	suite.Require().NoError(client.SetLinger(0))
	suite.Require().NoError(client.Connect(suite.url))
	suite.client = client
}

func (suite *TestReplyControllerSuite) TearDownTest() {
	_ = suite.client.Close()
	suite.cancel()

	select {
	case err := <-suite.done:
		suite.Require().NoError(err)
	case <-time.After(time.Second):
		suite.Fail("controller didn't stop")
	}
}

func (suite *TestReplyControllerSuite) TestRun() {
	for i := 0; i < 5; i++ {
		requestParameters := key_value.Empty().
			Set("counter", uint64(i))
		var replyParameters key_value.KeyValue

		commandIndex := i % 2

		err := suite.commands[commandIndex].Request(suite.client, requestParameters, &replyParameters)
		suite.Require().NoError(err)

		counter, err := replyParameters.GetUint64("counter")
		suite.Require().NoError(err)
		suite.Equal(uint64(i), counter)

		id, err := replyParameters.GetString("id")
		suite.Require().NoError(err)
		suite.Equal(suite.commands[commandIndex].String(), id)
	}

	// no command found
	var replyParameters key_value.KeyValue
	err := command.New("command_3").Request(suite.client, key_value.Empty(), &replyParameters)
	suite.Require().Error(err)

	// the handler returned an invalid reply
	err = command.New("invalid").Request(suite.client, key_value.Empty(), &replyParameters)
	suite.Require().Error(err)

	suite.Require().Len(suite.counter.commands, 7)
	suite.Require().Equal("controller:command_1", suite.counter.commands[0])
	suite.Require().Equal("controller:"+UnknownCommand, suite.counter.commands[5])
	suite.Require().Equal("controller:invalid", suite.counter.commands[6])

	// any number of the missing commands is counted under one label
	for i := 0; i < 3; i++ {
		err = command.New(fmt.Sprintf("random_%d", i)).Request(suite.client, key_value.Empty(), &replyParameters)
		suite.Require().Error(err)
	}
	suite.Require().Len(suite.counter.commands, 10)
	suite.Require().Equal("controller:"+UnknownCommand, suite.counter.commands[9])
}

func (suite *TestReplyControllerSuite) TestInvalidRequest() {
	_, err := suite.client.SendMessage("not a json")
	suite.Require().NoError(err)

	raw, err := suite.client.RecvMessage(0)
	suite.Require().NoError(err)
	reply, err := message.ParseReply(raw)
	suite.Require().NoError(err)
	suite.Require().False(reply.IsOK())
	suite.Require().Contains(reply.Message, "message.ParseRequest")

	// the uuid of the request is returned
	request := message.Request{Command: "command_1", Parameters: key_value.Empty()}
	request.SetUuid()
	requestString, err := request.String()
	suite.Require().NoError(err)
	_, err = suite.client.SendMessage(requestString)
	suite.Require().NoError(err)

	raw, err = suite.client.RecvMessage(0)
	suite.Require().NoError(err)
	reply, err = message.ParseReply(raw)
	suite.Require().NoError(err)
	suite.Require().True(reply.IsOK())
	suite.Require().Equal(request.Uuid, reply.Uuid)
}

// In order for 'go test' to run this suite, we need to create
// a normal test function and pass our suite to suite.Run
func TestReplyController(t *testing.T) {
	suite.Run(t, new(TestReplyControllerSuite))
}
