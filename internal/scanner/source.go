// Package scanner consumes badge scans pushed by an RFID reader over a
// websocket. Each message carries exactly one badge identifier.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// State is the transport lifecycle as shown to the operator
type State string

const (
	StateConnected    State = "connected"
	StateDisconnected State = "disconnected"
	StateError        State = "error"
)

// Scan is one badge tap
type Scan struct {
	BadgeID    string
	ReceivedAt time.Time
}

// Handler consumes scans and lifecycle transitions.
// HandleScan is called for one scan at a time, in arrival order.
type Handler interface {
	HandleScan(ctx context.Context, scan Scan)
	HandleState(state State, err error)
}

// DefaultHandshakeTimeout bounds the websocket opening handshake
const DefaultHandshakeTimeout = 10 * time.Second

// Source is a websocket connection to a badge reader
type Source struct {
	url    string
	dialer *websocket.Dialer
	now    func() time.Time
}

// NewSource creates a source for the reader at url (ws:// or wss://)
func NewSource(url string, handshakeTimeout time.Duration) *Source {
	if handshakeTimeout <= 0 {
		handshakeTimeout = DefaultHandshakeTimeout
	}
	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = handshakeTimeout

	return &Source{
		url:    url,
		dialer: &dialer,
		now:    time.Now,
	}
}

// URL returns the reader address
func (s *Source) URL() string {
	return s.url
}

// Run dials the reader once and delivers its messages to h until the
// connection closes or ctx is cancelled. It never redials.
//
// A clean close or cancellation reports StateDisconnected and returns nil.
// Dial and read failures report StateError and are returned.
func (s *Source) Run(ctx context.Context, h Handler) error {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		if ctx.Err() != nil {
			h.HandleState(StateDisconnected, nil)
			return nil
		}
		h.HandleState(StateError, err)
		return fmt.Errorf("dial reader %s: %w", s.url, err)
	}
	log.Printf("Connected to badge reader at %s", s.url)
	h.HandleState(StateConnected, nil)

	// unblock ReadMessage on cancellation
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
		case <-done:
		}
	}()
	defer conn.Close()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || isCleanClose(err) {
				log.Printf("Badge reader at %s disconnected", s.url)
				h.HandleState(StateDisconnected, nil)
				return nil
			}
			h.HandleState(StateError, err)
			return fmt.Errorf("read from reader %s: %w", s.url, err)
		}

		badgeID := strings.TrimSpace(string(payload))
		if badgeID == "" {
			log.Printf("Dropping empty scan from %s", s.url)
			continue
		}
		h.HandleScan(ctx, Scan{BadgeID: badgeID, ReceivedAt: s.now()})
	}
}

func isCleanClose(err error) bool {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return true
	}
	var closeErr *websocket.CloseError
	return errors.As(err, &closeErr) && closeErr.Code == websocket.CloseNoStatusReceived
}

// Supervise keeps src running, waiting delay between connections,
// until ctx is cancelled
func Supervise(ctx context.Context, src *Source, h Handler, delay time.Duration) {
	for {
		if err := src.Run(ctx, h); err != nil {
			log.Printf("Badge reader: %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
			log.Printf("Reconnecting to badge reader at %s", src.URL())
		}
	}
}
