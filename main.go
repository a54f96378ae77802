// Ballot coordinates the users with the Ballot contract on the ledger.
//
// On start it:
//   - connects to the ledger and stops if the ledger is unreachable,
//   - compiles contracts/Ballot.sol with solc,
//   - deploys the contract with the Rama, Niki and Jose proposals.
//
// The deployer becomes the administrator, the only account allowed
// to give the voting right.
//
// Then the ballot is served over http (see the gateway package)
// and over the zeromq reply controller (see the ballot/handler package).
//
// The parameters are read from the environment variables or the .env files
// passed as the arguments:
//
//	ballot --debug ledger.env
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/blocklords/ballot/ballot/handler"
	"github.com/blocklords/ballot/bootstrap"
	"github.com/blocklords/ballot/configuration"
	"github.com/blocklords/ballot/controller"
	"github.com/blocklords/ballot/gateway"
	"github.com/blocklords/ballot/log"
	"github.com/blocklords/ballot/metrics"
	"golang.org/x/sync/errgroup"
)

const LogLevelName = "LOG_LEVEL"

var errNothingToServe = errors.New("both the controller and the gateway are disabled")

// controllerPort returns the port of the enabled controller or 0 if it's disabled.
// At least one of the surfaces must be served.
func controllerPort(noController bool, port uint64, noGateway bool) (uint64, error) {
	if noController {
		port = 0
	}
	if port == 0 && noGateway {
		return 0, errNothingToServe
	}
	return port, nil
}

func main() {
	logger, err := log.New("main", log.WithTimestamp)
	if err != nil {
		log.Fatal("log.New(`main`)", "error", err)
	}

	logger.Info("Load app configuration")
	config, err := configuration.New(logger)
	if err != nil {
		logger.Fatal("configuration.New", "error", err)
	}
	config.SetDefaults(gateway.DefaultConfiguration())
	config.SetDefaults(controller.DefaultConfiguration())
	logger.SetDebug(config.Debug || strings.EqualFold(config.GetString(LogLevelName), "debug"))

	port, err := controllerPort(config.NoController, config.GetUint64(controller.PortName), config.NoGateway)
	if err != nil {
		logger.Fatal("controllerPort", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deployment, err := bootstrap.NewFromConfig(config)
	if err != nil {
		logger.Fatal("bootstrap.NewFromConfig", "error", err)
	}
	service, err := deployment.Run(ctx, logger)
	if err != nil {
		logger.Fatal("bootstrap.Run", "error", err)
	}
	defer service.Close()

	counters := metrics.New()
	service.Core.SetCounter(counters)

	group, ctx := errgroup.WithContext(ctx)

	if port == 0 {
		logger.Warn("the controller is disabled")
	} else {
		reply, err := controller.NewReply(controller.Url("ballot", port), logger)
		if err != nil {
			logger.Fatal("controller.NewReply", "error", err)
		}
		reply.SetCounter(counters)
		group.Go(func() error {
			return reply.Run(ctx, handler.New(service.Core))
		})
	}

	if config.NoGateway {
		logger.Warn("the gateway is disabled")
	} else {
		httpGateway := gateway.New(service.Core, counters, gateway.NewLimitFromConfig(config), logger)
		addr := fmt.Sprintf(":%d", config.GetUint64(gateway.PortName))
		group.Go(func() error {
			return httpGateway.Run(ctx, addr)
		})
	}

	if err := group.Wait(); err != nil {
		logger.Error("stopped", "error", err)
		service.Close()
		os.Exit(1)
	}
	logger.Info("stopped")
}
