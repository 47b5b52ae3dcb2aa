package command

import (
	"fmt"

	"github.com/pixil98/go-service"
	"github.com/pixil98/go-tinyplaces/internal/commands"
	"github.com/pixil98/go-tinyplaces/internal/driver"
	"github.com/pixil98/go-tinyplaces/internal/listener"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Create the embedded nats server used to route messages to clients
	nats, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	// Create the world
	world, err := cfg.World.BuildWorld(nats)
	if err != nil {
		return nil, fmt.Errorf("creating world: %w", err)
	}

	// Create the command queue and its single consumer
	queue := commands.NewQueue()
	processor, err := commands.NewProcessor(queue, world)
	if err != nil {
		return nil, fmt.Errorf("creating command processor: %w", err)
	}

	// Create listeners
	cm := listener.NewConnectionManager(queue, nats)
	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		lis, err := l.BuildListener(cm)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d", i)] = lis
	}

	// Setup the game driver
	var opts []driver.Opt
	tick, err := cfg.tickInterval()
	if err != nil {
		return nil, fmt.Errorf("parsing tick_interval: %w", err)
	}
	if tick > 0 {
		opts = append(opts, driver.WithTickLength(tick))
	}
	drv := driver.New([]driver.Manager{world}, opts...)

	// Create a worker list
	return service.WorkerList{
		"nats":      nats,
		"driver":    drv,
		"processor": processor,
		"listeners": &listeners,
	}, nil
}
