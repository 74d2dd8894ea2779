package main

import (
	"bufio"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// send wraps a payload in the {type,data} envelope and writes it.
func send(c *websocket.Conn, msgType string, data interface{}) error {
	envelope := map[string]interface{}{"type": msgType}
	if data != nil {
		envelope["data"] = data
	}
	return c.WriteJSON(envelope)
}

func main() {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: "localhost:8080", Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			var evt struct {
				Type string          `json:"type"`
				Data json.RawMessage `json:"data"`
			}
			if err := json.Unmarshal(message, &evt); err != nil {
				log.Printf("Received invalid frame: %s", string(message))
				continue
			}
			log.Printf("<- RECV (%s): %s", evt.Type, string(evt.Data))
		}
	}()

	log.Println("Commands: create <name> | join <room> <name> | start | say <text> | draw | clear | leave")

	// Write loop
	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		default:
			text, _ := reader.ReadString('\n')
			fields := strings.Fields(strings.TrimSpace(text))
			if len(fields) == 0 {
				continue
			}

			var err error
			switch fields[0] {
			case "create":
				if len(fields) < 2 {
					log.Println("Usage: create <name>")
					continue
				}
				err = send(c, "create_room", map[string]string{"username": fields[1]})
			case "join":
				if len(fields) < 3 {
					log.Println("Usage: join <room> <name>")
					continue
				}
				err = send(c, "join_room", map[string]string{"roomId": fields[1], "username": fields[2]})
			case "start":
				err = send(c, "start_game", nil)
			case "say":
				err = send(c, "chat_message", map[string]string{"message": strings.Join(fields[1:], " ")})
			case "draw":
				err = send(c, "draw", map[string]interface{}{"tool": "pen", "x": 10, "y": 20})
			case "clear":
				err = send(c, "clear_canvas", nil)
			case "leave":
				err = send(c, "leave_game", nil)
			default:
				log.Printf("Unknown command: %s", fields[0])
				continue
			}
			if err != nil {
				log.Println("Write error:", err)
				return
			}
			log.Printf("-> SENT: %s", fields[0])
		}
	}
}
