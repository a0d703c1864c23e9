// Package session drives the interactive pager for `ossctl ls`.
//
// The pager is a small state machine. Next computes transitions without side
// effects; Run performs the fetches and redraws those transitions call for.
package session

import (
	"context"
	"sync"
	"time"

	"Ossctl/internal/listing"
	"Ossctl/internal/logger"
)

// PollInterval is how long Run waits for a key before checking for a
// finished fetch.
const PollInterval = 16 * time.Millisecond

const loadingMsg = "loading..."

const (
	KeyAdvance rune = 's'
	KeyQuit    rune = 'q'
	KeyCtrlC   rune = 0x03
)

type Phase int

const (
	// Fetching is the initial request for the first page.
	Fetching Phase = iota
	Displaying
	// Advancing is a request for the page after the one on screen.
	Advancing
	Exiting
)

func (p Phase) String() string {
	switch p {
	case Fetching:
		return "fetching"
	case Displaying:
		return "displaying"
	case Advancing:
		return "advancing"
	case Exiting:
		return "exiting"
	default:
		return "unknown"
	}
}

// State is one snapshot of the pager. Token is the cursor of the page being
// fetched or shown; Pagination is the cursor state returned with it.
type State struct {
	Phase      Phase
	Prefix     string
	Token      string
	Page       listing.ClassifiedPage
	Pagination listing.PaginationState
	Err        error
}

// Start is the state before the first page is requested.
func Start(prefix string) State {
	return State{Phase: Fetching, Prefix: prefix}
}

func (s State) fetching() bool {
	return s.Phase == Fetching || s.Phase == Advancing
}

type EventKind int

const (
	EventPageLoaded EventKind = iota
	EventFetchFailed
	EventKey
)

type Event struct {
	Kind       EventKind
	Page       listing.ClassifiedPage
	Pagination listing.PaginationState
	Err        error
	Key        rune
}

func PageLoaded(page listing.ClassifiedPage, p listing.PaginationState) Event {
	return Event{Kind: EventPageLoaded, Page: page, Pagination: p}
}

func FetchFailed(err error) Event {
	return Event{Kind: EventFetchFailed, Err: err}
}

func Key(r rune) Event {
	return Event{Kind: EventKey, Key: r}
}

// Next returns the state that follows s on e. Exiting is terminal.
func Next(s State, e Event) State {
	if s.Phase == Exiting {
		return s
	}
	switch e.Kind {
	case EventPageLoaded:
		if !s.fetching() {
			return s
		}
		s.Phase = Displaying
		s.Page = e.Page
		s.Pagination = e.Pagination
	case EventFetchFailed:
		if !s.fetching() {
			return s
		}
		s.Phase = Exiting
		s.Err = e.Err
	case EventKey:
		switch e.Key {
		case KeyQuit, KeyCtrlC:
			s.Phase = Exiting
		case KeyAdvance:
			if s.Phase != Displaying || s.Pagination.IsLastPage {
				return s
			}
			s.Phase = Advancing
			s.Token = s.Pagination.NextToken
		}
	}
	return s
}

// FetchFunc loads one page. (*listing.Paginator).ListPage satisfies it.
type FetchFunc func(ctx context.Context, prefix, token string) (listing.ClassifiedPage, listing.PaginationState, error)

type Screen interface {
	Show(page listing.ClassifiedPage, isLast bool) error
	Status(msg string) error
}

// Input delivers key presses. Poll returns ok=false if no key arrived within timeout.
type Input interface {
	Poll(timeout time.Duration) (key rune, ok bool, err error)
}

// Run pages through prefix until the user quits or a fetch fails. A fetch in
// flight when the user quits is canceled and waited for before Run returns.
func Run(ctx context.Context, fetch FetchFunc, screen Screen, input Input, prefix string) error {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	results := make(chan Event, 1)
	startFetch := func(s State) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			page, pagination, err := fetch(ctx, s.Prefix, s.Token)
			ev := PageLoaded(page, pagination)
			if err != nil {
				ev = FetchFailed(err)
			}
			select {
			case results <- ev:
			case <-ctx.Done():
			}
		}()
	}

	r := runner{screen: screen, startFetch: startFetch}
	state := Start(prefix)
	if err := screen.Status(loadingMsg); err != nil {
		return err
	}
	startFetch(state)

	for state.Phase != Exiting {
		select {
		case ev := <-results:
			next := Next(state, ev)
			if err := r.enter(state, next); err != nil {
				return err
			}
			state = next
			continue
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		key, ok, err := input.Poll(PollInterval)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		next := Next(state, Key(key))
		if err := r.enter(state, next); err != nil {
			return err
		}
		state = next
	}
	return state.Err
}

type runner struct {
	screen     Screen
	startFetch func(State)
}

// enter performs the side effects of moving from prev to next.
func (r runner) enter(prev, next State) error {
	if prev.Phase == next.Phase && prev.Token == next.Token {
		return nil
	}
	logger.Log.Debug().Stringer("from", prev.Phase).Stringer("to", next.Phase).Str("token", next.Token).Msg("session transition")

	switch next.Phase {
	case Fetching, Advancing:
		if err := r.screen.Status(loadingMsg); err != nil {
			return err
		}
		r.startFetch(next)
	case Displaying:
		return r.screen.Show(next.Page, next.Pagination.IsLastPage)
	}
	return nil
}
