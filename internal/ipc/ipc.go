// Package ipc exposes a unix control socket so a hotkey or script can poke
// the running assistant: trigger a push-to-talk capture or ask it to stop.
package ipc

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
)

const (
	CmdTrigger = "trigger"
	CmdStop    = "stop"
)

type ControlMessage struct {
	Cmd string `json:"cmd"`
}

// Server owns the socket; Close removes the socket file.
type Server struct {
	ln   net.Listener
	path string
}

func StartServer(path string, handler func(ControlMessage)) (*Server, error) {
	os.Remove(path)

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go handleConn(conn, handler)
		}
	}()

	return &Server{ln: ln, path: path}, nil
}

func (s *Server) Close() error {
	err := s.ln.Close()
	os.Remove(s.path)
	return err
}

func handleConn(conn net.Conn, handler func(ControlMessage)) {
	defer conn.Close()

	var msg ControlMessage
	if err := json.NewDecoder(conn).Decode(&msg); err != nil {
		return
	}
	handler(msg)
}

// SendCommand connects, writes one command and returns.
func SendCommand(path, cmd string) error {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return err
	}
	defer conn.Close()

	return json.NewEncoder(conn).Encode(ControlMessage{Cmd: cmd})
}
