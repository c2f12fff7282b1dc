package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/term"
)

// ============================================================================
// gpv-overlay - terminal HUD for the gamepadviewer state stream
// ============================================================================
// Connects to the daemon's WebSocket, then redraws the HUD for every frame.
// When stdout is not a terminal each message is printed as one line of JSON
// instead, which is handy for piping into other tools.
// ============================================================================

func main() {
	var (
		wsURL   = flag.String("url", "ws://127.0.0.1:3002/ws/state", "gamepadviewer state WebSocket URL")
		noColor = flag.Bool("no-color", false, "Disable ANSI colors")
		raw     = flag.Bool("raw", false, "Print raw JSON messages instead of drawing the HUD")
	)
	flag.Parse()

	u, err := url.Parse(*wsURL)
	if err != nil {
		log.Fatalf("invalid websocket URL: %v", err)
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	d := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	log.Printf("connecting to %s...", u.String())
	conn, _, err := d.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	fd := int(os.Stdout.Fd())
	interactive := term.IsTerminal(fd) && !*raw

	// Protects concurrent writes to the websocket (pong replies are written by the reader).
	var writeMu sync.Mutex

	// The daemon pings every 20s.
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	r := &renderer{color: !*noColor}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			messageType, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("websocket error: %v", err)
				}
				return
			}
			if messageType != websocket.TextMessage {
				continue
			}

			if !interactive {
				fmt.Printf("%s\n", message)
				continue
			}

			if err := r.handle(message); err != nil {
				log.Printf("bad message: %v", err)
				continue
			}

			width := 80
			if w, _, err := term.GetSize(fd); err == nil && w > 0 {
				width = w
			}
			// Home the cursor and clear, then draw.
			fmt.Print("\x1b[H\x1b[2J" + r.render(width))
		}
	}()

	select {
	case <-sigc:
		writeMu.Lock()
		err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		writeMu.Unlock()
		if err != nil {
			log.Printf("error closing connection: %v", err)
		}
	case <-done:
		log.Printf("connection closed")
	}
}

// Wire types (duplicated from the daemon for a standalone binary)

type envelope struct {
	Type string          `json:"type"`
	Ts   time.Time       `json:"ts"`
	Data json.RawMessage `json:"data"`
}

type displaySettings struct {
	ControllerID    int  `json:"controller_id"`
	ShowText        bool `json:"show_text"`
	ShowElapsedTime bool `json:"show_elapsed_time"`
	Colors          struct {
		Lines         string `json:"lines"`
		Highlight     string `json:"highlight"`
		ParryActive   string `json:"parry_active"`
		ParryInactive string `json:"parry_inactive"`
	} `json:"colors"`
}

type stateSnapshot struct {
	Display    displaySettings `json:"display"`
	Frame      *hudFrame       `json:"frame"`
	ConfigPath string          `json:"config_path"`
}

type hudFrame struct {
	Valid               bool        `json:"valid"`
	PacketNumber        uint32      `json:"packet_number"`
	ControllerID        int         `json:"controller_id"`
	Buttons             []string    `json:"buttons"`
	LeftTrigger         uint8       `json:"left_trigger"`
	RightTrigger        uint8       `json:"right_trigger"`
	LeftTriggerPressed  bool        `json:"left_trigger_pressed"`
	RightTriggerPressed bool        `json:"right_trigger_pressed"`
	LeftStick           string      `json:"left_stick"`
	RightStickActive    bool        `json:"right_stick_active"`
	ShowText            bool        `json:"show_text"`
	Timers              []timerView `json:"timers"`
}

type timerView struct {
	ID             string  `json:"id"`
	Running        bool    `json:"running"`
	Queued         bool    `json:"queued"`
	ElapsedMS      uint64  `json:"elapsed_ms"`
	Fill           float64 `json:"fill"`
	Segments       int     `json:"segments"`
	FilledSegments int     `json:"filled_segments"`
	Active         bool    `json:"active"`
	Text           string  `json:"text"`
}
