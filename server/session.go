package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"vehicle-storefront/models"
	"vehicle-storefront/services"
)

const writeWait = 10 * time.Second

// clientMessage is what a storefront page sends.
type clientMessage struct {
	Action   string                `json:"action"`
	Filter   *models.ListingFilter `json:"filter,omitempty"`
	Viewport *services.Viewport    `json:"viewport,omitempty"`
}

// serverMessage is what the server pushes.
type serverMessage struct {
	Type    string              `json:"type"`
	State   *models.LoaderState `json:"state,omitempty"`
	Message string              `json:"message,omitempty"`
}

type session struct {
	srv      *Server
	conn     *websocket.Conn
	filter   models.ListingFilter
	feed     *services.StateFeed
	loader   *services.Loader
	trigger  *services.ScrollTrigger
	outbound chan serverMessage
	wg       sync.WaitGroup
}

func newSession(srv *Server, conn *websocket.Conn, filter models.ListingFilter) *session {
	feed := services.NewStateFeed()
	loader := services.NewLoader(srv.source, srv.validator, srv.logger, filter, srv.opts.Loader,
		services.WithStateFeed(feed))
	return &session{
		srv:      srv,
		conn:     conn,
		filter:   filter,
		feed:     feed,
		loader:   loader,
		trigger:  services.NewScrollTrigger(loader, srv.opts.ScrollThresholdPx, srv.logger),
		outbound: make(chan serverMessage, 4),
	}
}

// run owns the connection until the page goes away. conn is written only
// by writeLoop.
func (s *session) run() {
	ctx, cancel := context.WithCancel(context.Background())

	states, unsubscribe := s.feed.Subscribe(4)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop(ctx, states)
	}()

	filter := s.filter
	s.dispatch(ctx, func(ctx context.Context) error { return s.loader.SetFilter(ctx, filter) })
	s.readLoop(ctx)

	s.loader.Stop()
	cancel()
	s.wg.Wait()
	unsubscribe()
	<-writerDone
	s.feed.Close()
	_ = s.conn.Close()
}

func (s *session) readLoop(ctx context.Context) {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.reply(serverMessage{Type: "error", Message: "invalid message: " + err.Error()})
			continue
		}
		if err := s.handle(ctx, msg); err != nil {
			s.reply(serverMessage{Type: "error", Message: err.Error()})
		}
	}
}

func (s *session) handle(ctx context.Context, msg clientMessage) error {
	switch msg.Action {
	case "refresh":
		s.dispatch(ctx, s.loader.Refresh)
	case "loadMore":
		s.dispatch(ctx, s.loader.LoadMore)
	case "filter":
		if msg.Filter == nil {
			return fmt.Errorf("filter action needs a filter")
		}
		if err := msg.Filter.Validate(); err != nil {
			return err
		}
		f := *msg.Filter
		s.dispatch(ctx, func(ctx context.Context) error { return s.loader.SetFilter(ctx, f) })
	case "scroll":
		if msg.Viewport == nil {
			return fmt.Errorf("scroll action needs a viewport")
		}
		vp := *msg.Viewport
		s.dispatch(ctx, func(ctx context.Context) error {
			_, err := s.trigger.OnScroll(ctx, vp)
			return err
		})
	case "state":
		st := s.loader.State()
		s.reply(serverMessage{Type: "state", State: &st})
	default:
		return fmt.Errorf("unknown action %q", msg.Action)
	}
	return nil
}

// dispatch runs a loader call off the read loop so a slow page does not
// hold back a refresh or filter change. Failures reach the page through
// the state's lastError.
func (s *session) dispatch(ctx context.Context, fn func(context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := fn(ctx); err != nil {
			s.srv.logger.Debug("[server] Loader call failed: %v", err)
		}
	}()
}

func (s *session) reply(m serverMessage) {
	select {
	case s.outbound <- m:
	default:
		s.srv.logger.Warn("[server] Dropping %s message, client is not reading", m.Type)
	}
}

func (s *session) writeLoop(ctx context.Context, states <-chan models.LoaderState) {
	for {
		var m serverMessage
		select {
		case <-ctx.Done():
			return
		case st, ok := <-states:
			if !ok {
				return
			}
			m = serverMessage{Type: "state", State: &st}
		case m = <-s.outbound:
		}

		_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := s.conn.WriteJSON(m); err != nil {
			s.srv.logger.Debug("[server] ws write error: %v", err)
			_ = s.conn.Close()
			return
		}
	}
}
