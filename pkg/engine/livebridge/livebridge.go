// Package livebridge adapts the engine's UCI driver to a websocket transport instead of
// stdio, for use behind a live-chess-style relay that speaks UCI text frames over a
// persistent connection rather than a subprocess's stdin/stdout.
package livebridge

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/jprovost/brindle/pkg/engine"
	"github.com/jprovost/brindle/pkg/engine/uci"
	"github.com/seekerror/logw"
)

// ProtocolName identifies this adapter in logs and the initial handshake.
const ProtocolName = "livebridge"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// A live-chess relay connects from its own origin, not a browser page this engine serves,
	// so there is no same-origin policy to enforce here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Serve listens at addr and, for every websocket connection accepted, drives a fresh
// uci.Driver against e over that connection: each inbound text frame is a UCI command line,
// each outbound line the driver emits is written back as a text frame. Blocks until ctx is
// cancelled or the listener fails.
func Serve(ctx context.Context, addr string, e *engine.Engine, opts ...uci.Option) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		serveConn(ctx, w, r, e, opts)
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	logw.Infof(ctx, "livebridge listening on %v", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func serveConn(ctx context.Context, w http.ResponseWriter, r *http.Request, e *engine.Engine, opts []uci.Option) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logw.Errorf(ctx, "livebridge upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	in := make(chan string, 100)
	driver, out := uci.NewDriver(ctx, e, in, opts...)
	go pumpIn(ctx, conn, in)

	for {
		select {
		case line, ok := <-out:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				logw.Errorf(ctx, "livebridge write failed: %v", err)
				return
			}
		case <-driver.Closed():
			return
		}
	}
}

// pumpIn relays inbound text frames to the driver's input channel until the connection
// errors or closes, then closes in so the driver's process loop unwinds.
func pumpIn(ctx context.Context, conn *websocket.Conn, in chan<- string) {
	defer close(in)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			logw.Infof(ctx, "livebridge connection closed: %v", err)
			return
		}
		in <- string(data)
	}
}
