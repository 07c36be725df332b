// Package monitor renders live bridge traffic in the terminal and lets the
// operator fire bridge calls by hand.
package monitor

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jalleeeee/profiler/pkg/substrate"
	"github.com/jalleeeee/profiler/pkg/webchannel"
)

// Run drives the traffic view until the operator quits or ctx is done. The
// monitor holds its own subscriptions to both broadcast directions, so
// watching never steals events from pending bridge calls.
func Run(ctx context.Context, bus substrate.Bus, client *webchannel.Client) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	requests, unsubscribeRequests := bus.Subscribe(ctx, webchannel.RequestEventName)
	defer unsubscribeRequests()
	responses, unsubscribeResponses := bus.Subscribe(ctx, webchannel.ResponseEventName)
	defer unsubscribeResponses()

	model := newModel(ctx, client, mergeStreams(ctx, requests, responses))
	program := tea.NewProgram(model)
	_, err := program.Run()
	return err
}

// mergeStreams interleaves both event directions into one channel for the
// model. The merged channel closes once every input does; canceling ctx
// releases the pumps even if the model stopped reading.
func mergeStreams(ctx context.Context, streams ...<-chan substrate.Event) <-chan substrate.Event {
	merged := make(chan substrate.Event)

	var wg sync.WaitGroup
	wg.Add(len(streams))
	for _, stream := range streams {
		go func() {
			defer wg.Done()
			for ev := range stream {
				select {
				case merged <- ev:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(merged)
	}()

	return merged
}
