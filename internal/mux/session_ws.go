package mux

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"variate-server/pkg/session"
	"variate-server/pkg/variate"
)

const writeWait = time.Second * 10
const pongWait = time.Second * 60
const pingPeriod = pongWait * 9 / 10

// Distribution names accepted over the websocket
const (
	distUniform = "uniform"
	distNormal  = "normal"
)

type wsRequest struct {
	Dist string `json:"dist"`
	N    int    `json:"n"`
}

type wsResponse struct {
	Dist   string    `json:"dist,omitempty"`
	Values []float64 `json:"values,omitempty"`
	Error  string    `json:"error,omitempty"`
}

func (m *Mux) getSessionUUIDWS() http.HandlerFunc {
	upgrader := &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		s := sessionFromRequest(r)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logrus.WithError(err).Error("could not upgrade connected")
			return
		}

		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})

		send := make(chan wsResponse, 16)
		done := make(chan bool)

		go m.webSocketWriteLoop(conn, s, send, done)
		m.webSocketReadLoop(conn, s, send)

		close(send)
		<-done
		_ = conn.Close()
	}
}

func (m *Mux) webSocketWriteLoop(conn *websocket.Conn, s *session.Session, send chan wsResponse, done chan bool) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(done)
	}()

	for {
		select {
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case msg, ok := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			logrus.WithField("uuid", s.UUID).WithField("dist", msg.Dist).WithField("n", len(msg.Values)).Trace("sending values to client")
			if err := conn.WriteJSON(msg); err != nil {
				logrus.WithError(err).WithField("uuid", s.UUID).Error("could not write message")
				// keep draining so the read loop never blocks on send
				for range send {
				}
				return
			}
		}
	}
}

func (m *Mux) webSocketReadLoop(conn *websocket.Conn, s *session.Session, send chan<- wsResponse) {
	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.WithError(err).WithField("uuid", s.UUID).Error("could not read JSON")
			}

			return
		}

		send <- m.answer(s, req)
	}
}

// answer draws the values a websocket request asks for
func (m *Mux) answer(s *session.Session, req wsRequest) wsResponse {
	n, err := m.checkCount(req.N)
	if err != nil {
		return wsResponse{Dist: req.Dist, Error: err.Error()}
	}

	values := make([]float64, n)
	err = s.Do(func(g *variate.Generator) error {
		switch req.Dist {
		case distNormal:
			return g.NormalBatch(values)
		case distUniform:
			for i := range values {
				v, err := g.Uniform()
				if err != nil {
					return err
				}

				values[i] = v
			}

			return nil
		default:
			return fmt.Errorf("unknown distribution: %q", req.Dist)
		}
	})

	if err != nil {
		return wsResponse{Dist: req.Dist, Error: err.Error()}
	}

	return wsResponse{Dist: req.Dist, Values: values}
}
