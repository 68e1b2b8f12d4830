// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package listener consumes the region's notification channels. The
// listener is deliberately dumb: it treats every message as
// level-triggered ("something about this entity changed") and leaves
// re-fetching entity state to its own consumers, who must tolerate
// duplicate and out-of-order delivery.
package listener

import (
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/worker/v4"
	"gopkg.in/tomb.v2"

	"github.com/dut3062796s/maas/core/notify"
)

var logger = loggo.GetLogger("regiond.listener")

// backlogReportInterval is how often a listener that cannot keep up
// has its backlog depth logged.
const backlogReportInterval = time.Minute

// Hub is the subscribing side of the notification transport.
type Hub interface {
	Subscribe(topic string, handler func(string, interface{})) func()
}

// Config holds the dependencies of a Listener.
type Config struct {
	// Hub is where notifications are delivered.
	Hub Hub
	// Clock is used for the backlog report timer.
	Clock clock.Clock
	// Channels is the set of channels to subscribe to. Defaults to
	// every channel the region publishes on.
	Channels []notify.Channel
}

// Validate ensures that all the values that have to be set are set.
func (config Config) Validate() error {
	if config.Hub == nil {
		return errors.NotValidf("missing Hub")
	}
	if config.Clock == nil {
		return errors.NotValidf("missing Clock")
	}
	return nil
}

// Listener subscribes to the notification channels and exposes them as
// a single ordered stream.
type Listener struct {
	tomb   tomb.Tomb
	config Config

	mu      sync.Mutex
	backlog []notify.Notification
	wake    chan struct{}

	out chan notify.Notification
}

// New returns a running Listener.
func New(config Config) (*Listener, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Annotate(err, "new Listener invalid config")
	}
	if len(config.Channels) == 0 {
		config.Channels = notify.Channels()
	}
	l := &Listener{
		config: config,
		wake:   make(chan struct{}, 1),
		out:    make(chan notify.Notification),
	}
	l.tomb.Go(l.loop)
	return l, nil
}

// Changes returns the stream of notifications. The channel is closed
// when the listener dies.
func (l *Listener) Changes() <-chan notify.Notification {
	return l.out
}

// Kill is part of the worker.Worker interface.
func (l *Listener) Kill() {
	l.tomb.Kill(nil)
}

// Wait is part of the worker.Worker interface.
func (l *Listener) Wait() error {
	return l.tomb.Wait()
}

var _ worker.Worker = (*Listener)(nil)

func (l *Listener) loop() error {
	defer close(l.out)

	var unsubscribers []func()
	for _, channel := range l.config.Channels {
		unsubscribers = append(unsubscribers, l.config.Hub.Subscribe(string(channel), l.onMessage))
	}
	defer func() {
		for _, unsubscribe := range unsubscribers {
			unsubscribe()
		}
	}()
	logger.Debugf("subscribed to %d channels", len(unsubscribers))

	report := l.config.Clock.After(backlogReportInterval)
	for {
		select {
		case <-l.tomb.Dying():
			return tomb.ErrDying
		case <-report:
			if depth := l.backlogDepth(); depth > 0 {
				logger.Warningf("listener backlog at %d notifications", depth)
			}
			report = l.config.Clock.After(backlogReportInterval)
		case <-l.wake:
		}

		for _, n := range l.takeBacklog() {
			select {
			case <-l.tomb.Dying():
				return tomb.ErrDying
			case l.out <- n:
			}
		}
	}
}

// onMessage runs on the hub's goroutine; it must not block.
func (l *Listener) onMessage(topic string, data interface{}) {
	payload, ok := data.(string)
	if !ok {
		logger.Warningf("discarding non-string payload on %q", topic)
		return
	}

	l.mu.Lock()
	l.backlog = append(l.backlog, notify.Notification{
		Channel: notify.Channel(topic),
		Payload: payload,
	})
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Listener) takeBacklog() []notify.Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	backlog := l.backlog
	l.backlog = nil
	return backlog
}

func (l *Listener) backlogDepth() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.backlog)
}
