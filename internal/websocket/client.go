package websocket

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Время, которое разрешено писать сообщение клиенту
	defaultWriteWait = 10 * time.Second

	// Время ожидания pong-ответа от клиента
	defaultPongWait = 30 * time.Second

	// Максимальный размер входящего сообщения (патчи черновика)
	defaultMaxMessageSize = 64 * 1024

	// Размер буфера канала отправки
	clientBufferSize = 128
)

// ClientConfig содержит настройки соединения редактора
type ClientConfig struct {
	WriteWait      time.Duration
	PongWait       time.Duration
	MaxMessageSize int64
}

// DefaultClientConfig возвращает конфигурацию клиента по умолчанию
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		WriteWait:      defaultWriteWait,
		PongWait:       defaultPongWait,
		MaxMessageSize: defaultMaxMessageSize,
	}
}

// Client - одно websocket-соединение редактора в комнате формы
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	formID uint
	userID uint
	sendCh chan []byte
	config ClientConfig
}

// NewClient создает клиента и регистрирует его в комнате формы.
// Запускает read/write насосы.
func NewClient(hub *Hub, conn *websocket.Conn, formID, userID uint, config ClientConfig) *Client {
	client := &Client{
		hub:    hub,
		conn:   conn,
		formID: formID,
		userID: userID,
		sendCh: make(chan []byte, clientBufferSize),
		config: config,
	}
	hub.register <- client

	go client.writePump()
	go client.readPump()
	return client
}

// send сериализует и ставит событие в очередь отправки
func (c *Client) send(event *Event) {
	data, err := event.Marshal()
	if err != nil {
		log.Printf("[CollabClient] Ошибка сериализации события для пользователя #%d: %v", c.userID, err)
		return
	}
	c.sendRaw(data)
}

// sendRaw ставит готовые байты в очередь отправки.
// Переполненный буфер означает зависшего клиента - сообщение отбрасывается.
func (c *Client) sendRaw(data []byte) {
	select {
	case c.sendCh <- data:
	default:
		log.Printf("[CollabClient] Буфер пользователя #%d переполнен, сообщение отброшено", c.userID)
	}
}

// readPump читает патчи редактора и транслирует их в комнату
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[CollabClient] Соединение пользователя #%d закрыто с ошибкой: %v", c.userID, err)
			}
			return
		}

		var incoming Event
		if err := json.Unmarshal(data, &incoming); err != nil {
			log.Printf("[CollabClient] Невалидное сообщение от пользователя #%d: %v", c.userID, err)
			continue
		}
		if incoming.Type != EventPatch && incoming.Type != EventState {
			continue
		}

		// Идентичность события берется из соединения, не из сообщения
		c.hub.Broadcast(NewEvent(incoming.Type, c.formID, c.userID, incoming.Payload))
	}
}

// writePump пишет события из очереди в сокет и поддерживает ping
func (c *Client) writePump() {
	pingPeriod := (c.config.PongWait * 9) / 10
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.sendCh:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
