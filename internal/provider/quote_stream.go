package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kridt/bets-api-ev-calc-sub002/internal/models"
)

// QuoteUpdate is a live price push from the odds provider's stream
type QuoteUpdate struct {
	Op      string                  `json:"op"`
	EventID string                  `json:"event_id"`
	Market  string                  `json:"market"`
	Line    float64                 `json:"line"`
	Side    models.BetSide          `json:"side"`
	Quotes  []models.BookmakerQuote `json:"quotes"`
}

// QuoteHandler is called for every quote update received from the stream
type QuoteHandler func(update QuoteUpdate) error

// ReconnectConfig controls reconnection behavior
type ReconnectConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultReconnectConfig returns default reconnection configuration
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		MaxRetries:        10,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 1.5,
	}
}

// QuoteStreamClient maintains a WebSocket subscription to the odds
// provider's quote stream
type QuoteStreamClient struct {
	conn            *websocket.Conn
	apiKey          string
	streamURL       string
	mu              sync.RWMutex
	isConnected     bool
	handlers        []QuoteHandler
	reconnectConfig ReconnectConfig
	lastMessageTime time.Time
	logger          *log.Logger
}

// NewQuoteStreamClient creates a new quote stream client
func NewQuoteStreamClient(streamURL, apiKey string, logger *log.Logger) *QuoteStreamClient {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &QuoteStreamClient{
		apiKey:          apiKey,
		streamURL:       streamURL,
		handlers:        make([]QuoteHandler, 0),
		reconnectConfig: DefaultReconnectConfig(),
		logger:          logger,
	}
}

// AddHandler registers a handler for incoming quote updates
func (s *QuoteStreamClient) AddHandler(handler QuoteHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// Connect establishes the WebSocket connection and starts the read loop
func (s *QuoteStreamClient) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isConnected {
		return fmt.Errorf("already connected")
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, s.streamURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to quote stream: %w", err)
	}

	s.conn = conn
	s.isConnected = true
	s.lastMessageTime = time.Now()

	s.logger.Printf("Connected to quote stream: %s", s.streamURL)

	go s.readMessages()

	return nil
}

// Subscribe requests quote updates for the given event ids
func (s *QuoteStreamClient) Subscribe(eventIDs []string) error {
	s.mu.RLock()
	if !s.isConnected || s.conn == nil {
		s.mu.RUnlock()
		return fmt.Errorf("not connected to quote stream")
	}
	s.mu.RUnlock()

	subMsg := map[string]interface{}{
		"op":        "subscribe",
		"api_key":   s.apiKey,
		"event_ids": eventIDs,
		"heartbeat": true,
	}

	s.logger.Printf("Subscribing to %d events", len(eventIDs))
	return s.sendMessage(subMsg)
}

// Close shuts the stream connection down
func (s *QuoteStreamClient) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isConnected || s.conn == nil {
		return nil
	}

	s.isConnected = false
	return s.conn.Close()
}

// IsConnected reports whether the stream connection is up
func (s *QuoteStreamClient) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isConnected
}

func (s *QuoteStreamClient) sendMessage(msg interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(msg)
}

func (s *QuoteStreamClient) readMessages() {
	for {
		s.mu.RLock()
		conn := s.conn
		connected := s.isConnected
		s.mu.RUnlock()

		if !connected || conn == nil {
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			s.logger.Printf("Quote stream read error: %v", err)
			s.mu.Lock()
			s.isConnected = false
			s.mu.Unlock()
			return
		}

		s.mu.Lock()
		s.lastMessageTime = time.Now()
		s.mu.Unlock()

		var update QuoteUpdate
		if err := json.Unmarshal(data, &update); err != nil {
			s.logger.Printf("Failed to parse quote update: %v", err)
			continue
		}

		if update.Op == "heartbeat" {
			continue
		}

		s.mu.RLock()
		handlers := s.handlers
		s.mu.RUnlock()

		for _, handler := range handlers {
			if err := handler(update); err != nil {
				s.logger.Printf("Quote handler error: %v", err)
			}
		}
	}
}
