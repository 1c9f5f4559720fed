package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"safetrip/models"
)

// Hub is the presentation-layer collaborator: it keeps one connection set
// per user and pushes NotificationDelivered / SoundCue frames to whoever
// is listening. The core never learns whether anyone rendered them.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// User to client mapping for direct delivery
	userClients map[string][]*Client

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Send message to specific user
	sendToUser chan UserMessage

	// Hub statistics
	stats HubStats

	mutex sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
}

type UserMessage struct {
	UserID  string
	Message models.WSMessage
}

type HubStats struct {
	TotalConnections  int64
	ActiveConnections int
	MessagesSent      int64
	StartTime         time.Time

	mutex sync.RWMutex
}

func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		clients:     make(map[*Client]bool),
		userClients: make(map[string][]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		sendToUser:  make(chan UserMessage, 256),
		stats: HubStats{
			StartTime: time.Now(),
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

func (h *Hub) Run() {
	logrus.Info("WebSocket hub starting")

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.sendToUser:
			h.deliverToUser(msg)

		case <-h.ctx.Done():
			h.shutdown()
			return
		}
	}
}

func (h *Hub) Stop() {
	h.cancel()
}

// NotificationDelivered implements interfaces.Presenter.
func (h *Hub) NotificationDelivered(userID string, notification models.Notification) {
	h.enqueue(userID, models.WSMessage{
		Type:   models.WSTypeNotification,
		UserID: userID,
		Data: models.WSNotification{
			NotificationID: notification.ID.Hex(),
			Category:       notification.Category,
			Priority:       notification.Priority,
			Title:          notification.Title,
			Message:        notification.Message,
			Metadata:       notification.Metadata,
			Timestamp:      notification.CreatedAt,
		},
		Timestamp: time.Now(),
	})
}

// SoundCue implements interfaces.Presenter.
func (h *Hub) SoundCue(userID string, category string) {
	h.enqueue(userID, models.WSMessage{
		Type:   models.WSTypeSoundCue,
		UserID: userID,
		Data: models.WSSoundCue{
			Category:  category,
			Timestamp: time.Now(),
		},
		Timestamp: time.Now(),
	})
}

// SendSOSAlert pushes a live SOS state change to the user's own devices.
func (h *Hub) SendSOSAlert(userID string, alert models.SOSAlert) {
	h.enqueue(userID, models.WSMessage{
		Type:   models.WSTypeSOSAlert,
		UserID: userID,
		Data: models.WSSOSAlert{
			AlertID:   alert.ID.Hex(),
			Status:    alert.Status,
			Message:   alert.Message,
			Location:  alert.Location,
			Timestamp: alert.UpdatedAt,
		},
		Timestamp: time.Now(),
	})
}

func (h *Hub) enqueue(userID string, msg models.WSMessage) {
	select {
	case h.sendToUser <- UserMessage{UserID: userID, Message: msg}:
	default:
		logrus.Warn("WebSocket hub delivery queue full, dropping frame for user ", userID)
	}
}

func (h *Hub) IsUserOnline(userID string) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.userClients[userID]) > 0
}

func (h *Hub) ConnectedUsers() []string {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	users := make([]string, 0, len(h.userClients))
	for userID := range h.userClients {
		users = append(users, userID)
	}
	return users
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client] = true
	h.userClients[client.userID] = append(h.userClients[client.userID], client)

	h.stats.mutex.Lock()
	h.stats.TotalConnections++
	h.stats.ActiveConnections = len(h.clients)
	h.stats.mutex.Unlock()

	logrus.WithFields(logrus.Fields{
		"userId":       client.userID,
		"connectionId": client.connectionID,
	}).Debug("WebSocket client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}

	delete(h.clients, client)
	close(client.send)

	remaining := h.userClients[client.userID][:0]
	for _, c := range h.userClients[client.userID] {
		if c != client {
			remaining = append(remaining, c)
		}
	}
	if len(remaining) == 0 {
		delete(h.userClients, client.userID)
	} else {
		h.userClients[client.userID] = remaining
	}

	h.stats.mutex.Lock()
	h.stats.ActiveConnections = len(h.clients)
	h.stats.mutex.Unlock()

	logrus.WithFields(logrus.Fields{
		"userId":       client.userID,
		"connectionId": client.connectionID,
	}).Debug("WebSocket client unregistered")
}

func (h *Hub) deliverToUser(msg UserMessage) {
	h.mutex.RLock()
	clients := h.userClients[msg.UserID]
	h.mutex.RUnlock()

	for _, client := range clients {
		select {
		case client.send <- msg.Message:
			h.stats.mutex.Lock()
			h.stats.MessagesSent++
			h.stats.mutex.Unlock()
		default:
			// Slow consumer, drop the frame rather than block the hub.
			logrus.Debug("Dropping frame for slow client ", client.connectionID)
		}
	}
}

func (h *Hub) shutdown() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		close(client.send)
		client.conn.Close()
	}
	h.clients = make(map[*Client]bool)
	h.userClients = make(map[string][]*Client)

	logrus.Info("WebSocket hub stopped")
}
