package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient создает клиента без сетевого соединения и насосов:
// проверяем только маршрутизацию hub
func testClient(hub *Hub, formID, userID uint) *Client {
	return &Client{
		hub:    hub,
		formID: formID,
		userID: userID,
		sendCh: make(chan []byte, clientBufferSize),
		config: DefaultClientConfig(),
	}
}

func drain(c *Client) []*Event {
	var events []*Event
	for {
		select {
		case data := <-c.sendCh:
			var e Event
			if json.Unmarshal(data, &e) == nil {
				events = append(events, &e)
			}
		default:
			return events
		}
	}
}

func TestHub_LateJoinerReceivesLastState(t *testing.T) {
	hub := NewHub()

	first := testClient(hub, 1, 7)
	hub.addClient(first)

	state := json.RawMessage(`{"title":"Черновик"}`)
	hub.dispatch(NewEvent(EventPatch, 1, 7, state))

	late := testClient(hub, 1, 9)
	hub.addClient(late)

	events := drain(late)
	require.NotEmpty(t, events)
	assert.Equal(t, EventState, events[0].Type)
	assert.JSONEq(t, string(state), string(events[0].Payload))
}

func TestHub_PatchNotEchoedToAuthor(t *testing.T) {
	hub := NewHub()

	author := testClient(hub, 1, 7)
	peer := testClient(hub, 1, 9)
	hub.addClient(author)
	hub.addClient(peer)
	drain(author)
	drain(peer)

	hub.dispatch(NewEvent(EventPatch, 1, 7, json.RawMessage(`{"x":1}`)))

	for _, e := range drain(author) {
		assert.NotEqual(t, EventPatch, e.Type, "автор не должен получить собственный патч")
	}

	var patches int
	for _, e := range drain(peer) {
		if e.Type == EventPatch {
			patches++
		}
	}
	assert.Equal(t, 1, patches)
}

func TestHub_RoomsAreIsolatedByForm(t *testing.T) {
	hub := NewHub()

	formA := testClient(hub, 1, 7)
	formB := testClient(hub, 2, 9)
	hub.addClient(formA)
	hub.addClient(formB)
	drain(formA)
	drain(formB)

	hub.dispatch(NewEvent(EventPatch, 1, 0, json.RawMessage(`{"x":1}`)))

	assert.Empty(t, drain(formB), "событие формы 1 не должно попасть в комнату формы 2")
}

func TestHub_EmptyRoomDropsState(t *testing.T) {
	hub := NewHub()

	client := testClient(hub, 1, 7)
	hub.addClient(client)
	hub.dispatch(NewEvent(EventPatch, 1, 7, json.RawMessage(`{"x":1}`)))
	hub.removeClient(client)

	assert.Equal(t, 0, hub.RoomSize(1))

	// Новый редактор пустой комнаты не получает устаревший снимок
	fresh := testClient(hub, 1, 9)
	hub.addClient(fresh)
	for _, e := range drain(fresh) {
		assert.NotEqual(t, EventState, e.Type)
	}
}

func TestHub_RoomSize(t *testing.T) {
	hub := NewHub()
	assert.Equal(t, 0, hub.RoomSize(1))

	a := testClient(hub, 1, 7)
	b := testClient(hub, 1, 9)
	hub.addClient(a)
	hub.addClient(b)
	assert.Equal(t, 2, hub.RoomSize(1))

	hub.removeClient(a)
	assert.Equal(t, 1, hub.RoomSize(1))
}
