package websocket

import (
	"encoding/json"
	"log"
	"sync"
)

// room - одна комната совместного редактирования (одна форма).
// Хранит последнее состояние черновика, чтобы опоздавший редактор
// получил актуальную картину без запроса к остальным.
type room struct {
	clients   map[*Client]bool
	lastState json.RawMessage
}

// Hub управляет комнатами совместного редактирования форм.
// Однопроцессная реализация: все редакторы формы обслуживаются
// одним инстансом API.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uint]*room

	register   chan *Client
	unregister chan *Client
	broadcast  chan *Event
}

// NewHub создает новый hub совместного редактирования
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uint]*room),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		broadcast:  make(chan *Event, 256),
	}
}

// Run запускает цикл обработки событий hub. Блокирует, вызывать в горутине.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case event := <-h.broadcast:
			h.dispatch(event)
		}
	}
}

// Broadcast рассылает событие всем редакторам комнаты формы
func (h *Hub) Broadcast(event *Event) {
	select {
	case h.broadcast <- event:
	default:
		log.Printf("[CollabHub] Канал рассылки переполнен, событие %s для формы #%d отброшено", event.Type, event.FormID)
	}
}

// NotifyPublished сообщает редакторам формы, что вышла новая версия
func (h *Hub) NotifyPublished(formID uint, revision string) {
	payload, _ := json.Marshal(map[string]string{"revision": revision})
	h.Broadcast(NewEvent(EventPublished, formID, 0, payload))
}

// RoomSize возвращает число подключенных редакторов формы
func (h *Hub) RoomSize(formID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if r, ok := h.rooms[formID]; ok {
		return len(r.clients)
	}
	return 0
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	r, ok := h.rooms[client.formID]
	if !ok {
		r = &room{clients: make(map[*Client]bool)}
		h.rooms[client.formID] = r
	}
	r.clients[client] = true
	lastState := r.lastState
	h.mu.Unlock()

	log.Printf("[CollabHub] Пользователь #%d подключился к форме #%d (%d в комнате)", client.userID, client.formID, len(r.clients))

	// Снимок последнего состояния для опоздавшего редактора
	if lastState != nil {
		client.send(NewEvent(EventState, client.formID, 0, lastState))
	}
	h.broadcastPresence(client.formID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	r, ok := h.rooms[client.formID]
	if ok {
		if _, exists := r.clients[client]; exists {
			delete(r.clients, client)
			close(client.sendCh)
		}
		if len(r.clients) == 0 {
			// Пустая комната выбрасывается вместе с накопленным состоянием
			delete(h.rooms, client.formID)
		}
	}
	h.mu.Unlock()

	if ok {
		h.broadcastPresence(client.formID)
	}
}

// dispatch рассылает событие комнате; патчи и полные состояния
// дополнительно запоминаются как последнее состояние комнаты
func (h *Hub) dispatch(event *Event) {
	data, err := event.Marshal()
	if err != nil {
		log.Printf("[CollabHub] Ошибка сериализации события %s: %v", event.Type, err)
		return
	}

	h.mu.Lock()
	r, ok := h.rooms[event.FormID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if event.Type == EventState || event.Type == EventPatch {
		r.lastState = event.Payload
	}
	clients := make([]*Client, 0, len(r.clients))
	for client := range r.clients {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		// Автор патча свое событие не получает
		if event.UserID != 0 && client.userID == event.UserID && event.Type == EventPatch {
			continue
		}
		client.sendRaw(data)
	}
}

// broadcastPresence рассылает комнате актуальный список редакторов
func (h *Hub) broadcastPresence(formID uint) {
	h.mu.RLock()
	r, ok := h.rooms[formID]
	if !ok {
		h.mu.RUnlock()
		return
	}
	userIDs := make([]uint, 0, len(r.clients))
	for client := range r.clients {
		userIDs = append(userIDs, client.userID)
	}
	h.mu.RUnlock()

	payload, _ := json.Marshal(map[string]interface{}{"editors": userIDs})
	h.dispatch(NewEvent(EventPresence, formID, 0, payload))
}
