package stream

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/catalog"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/checkout"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/storage/memory"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/workflow"
)

func dial(t *testing.T) (*websocket.Conn, *workflow.Machine) {
	t.Helper()
	machine, err := workflow.NewMachine(workflow.Config{
		Catalog:  catalog.Default(),
		Checkout: checkout.New(memory.New(), nil, checkout.Options{}),
	})
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}

	server := httptest.NewServer(NewHandler(machine, nil))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	t.Cleanup(machine.Close)
	return conn, machine
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f Frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return f
}

func TestStreamSendsCurrentView(t *testing.T) {
	conn, _ := dial(t)

	f := readFrame(t, conn)
	if f.Type != "view" || f.View == nil || f.View.Step != workflow.StepWelcome {
		t.Fatalf("first frame = %+v", f)
	}
}

func TestStreamDispatchesCommands(t *testing.T) {
	conn, machine := dial(t)
	readFrame(t, conn)

	if err := conn.WriteJSON(workflow.Command{Type: workflow.ActionStart}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	f := readFrame(t, conn)
	if f.Type != "view" || f.View.Step != workflow.StepAuth {
		t.Fatalf("frame after start = %+v", f)
	}
	if machine.View().Step != workflow.StepAuth {
		t.Errorf("machine step = %s", machine.View().Step)
	}

	if err := conn.WriteJSON(workflow.Command{Type: "fly"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	f = readFrame(t, conn)
	if f.Type != "error" || !strings.Contains(f.Error, "unknown command") {
		t.Errorf("frame after bad command = %+v", f)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	if f := readFrame(t, conn); f.Type != "error" {
		t.Errorf("frame after malformed json = %+v", f)
	}
}

func TestStreamPushesOtherSessionChanges(t *testing.T) {
	conn, machine := dial(t)
	readFrame(t, conn)

	// A change made through another transport still reaches the screen.
	go machine.Dispatch(t.Context(), workflow.Start{})
	if f := readFrame(t, conn); f.View == nil || f.View.Step != workflow.StepAuth {
		t.Errorf("pushed frame = %+v", f)
	}
}

func TestStreamClosesWithMachine(t *testing.T) {
	conn, machine := dial(t)
	readFrame(t, conn)

	machine.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("read error = %v, want going-away close", err)
	}
}
