package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/atomicstack/nui-overlay/internal/backend"
	"github.com/atomicstack/nui-overlay/internal/channel"
	"github.com/atomicstack/nui-overlay/internal/data/dispatcher"
	"github.com/atomicstack/nui-overlay/internal/engine"
	"github.com/atomicstack/nui-overlay/internal/journal"
	"github.com/atomicstack/nui-overlay/internal/logging"
	"github.com/atomicstack/nui-overlay/internal/state"
	"github.com/atomicstack/nui-overlay/internal/ui"
)

// Config describes user-provided application options.
type Config struct {
	HostURL      string
	Route        string
	InboundURL   string
	WindowLength int
	Width        int
	Height       int
	ShowFooter   bool
	Headless     bool
	JournalPath  string
	SendTimeout  time.Duration
}

// Run wires the store, engine and transports together and blocks until ctx
// is cancelled or the user quits the UI.
func Run(ctx context.Context, cfg Config) error {
	store := state.NewStore()
	router := channel.NewRouter()
	dispatcher.New(store).Bind(router)

	var observer channel.Observer
	if cfg.JournalPath != "" {
		j, err := journal.Open(cfg.JournalPath, logging.RunID())
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer j.Close()
		router.Subscribe(journal.Subscriber, j.Handlers())
		observer = j
	}

	client, err := channel.NewClient(channel.Options{
		Host:     cfg.HostURL,
		Route:    cfg.Route,
		Timeout:  cfg.SendTimeout,
		Observer: observer,
	})
	if err != nil {
		return fmt.Errorf("create host client: %w", err)
	}
	defer client.Close()

	eng := engine.New(store, client, engine.Options{WindowLength: cfg.WindowLength})
	defer eng.Stop()

	var listener *backend.Listener
	if cfg.InboundURL != "" {
		listener = backend.NewListener(backend.Options{URL: cfg.InboundURL})
		defer listener.Stop()
	}

	if cfg.Headless {
		return runHeadless(ctx, eng, router, listener)
	}

	model := ui.NewModel(ui.Options{
		Store:    store,
		Engine:   eng,
		Router:   router,
		Listener: listener,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Footer:   cfg.ShowFooter,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// runHeadless drives the engine from listener events alone. A single
// goroutine dispatches, so store mutation stays sequential.
func runHeadless(ctx context.Context, eng *engine.Engine, router *channel.Router, listener *backend.Listener) error {
	eng.Activate(router)
	defer eng.Deactivate(router)
	eng.Start()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		if listener != nil {
			listener.Stop()
		}
		return nil
	})
	if listener != nil {
		g.Go(func() error {
			for evt := range listener.Events() {
				dispatchEvent(router, evt)
			}
			return nil
		})
	}
	return g.Wait()
}

func dispatchEvent(router *channel.Router, evt backend.Event) {
	switch evt.Kind {
	case backend.KindMessage:
		router.Dispatch(evt.Message)
	case backend.KindDisconnected:
		if evt.Err != nil {
			logging.Error(fmt.Errorf("inbound connection: %w", evt.Err))
		}
	}
}
