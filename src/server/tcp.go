package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"trade-brain/src/logger"
	"trade-brain/src/models"
)

// -----------------------------------------------------------------------------
// TCPServer owns the protocol listener. One goroutine per accepted
// connection runs a read-frame-dispatch-respond loop over newline-delimited
// JSON; the accept loop never does per-connection work itself.
// -----------------------------------------------------------------------------

const tcpWriteWait = 10 * time.Second

type TCPServer struct {
	Config       *models.MConfig
	Orchestrator *Orchestrator
	Logger       *logger.Logger

	mu       sync.Mutex
	listener net.Listener
	running  bool
	wg       sync.WaitGroup
}

// -----------------------------------------------------------------------------

func NewTCPServer(cfg *models.MConfig, orch *Orchestrator, log *logger.Logger) *TCPServer {
	return &TCPServer{
		Config:       cfg,
		Orchestrator: orch,
		Logger:       log,
	}
}

// -----------------------------------------------------------------------------

// Start binds the listener and blocks in the accept loop until Stop. A bind
// failure is returned to the caller; it is the one fatal startup error.
func (s *TCPServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.running = true
	s.mu.Unlock()

	s.Logger.Info("Listening on %s", ln.Addr())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if !s.isRunning() {
				return nil
			}
			s.Logger.Error("Accept error: %v", err)
			continue
		}

		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

// -----------------------------------------------------------------------------

// Addr returns the bound address (useful when the configured port is 0).
func (s *TCPServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// -----------------------------------------------------------------------------

func (s *TCPServer) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// -----------------------------------------------------------------------------

// Stop closes the listener and waits for in-flight connections to drain.
func (s *TCPServer) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	ln := s.listener
	s.mu.Unlock()

	if ln != nil {
		ln.Close()
	}
	s.wg.Wait()
	s.Logger.Info("Server stopped and port released")
}

// -----------------------------------------------------------------------------

// handleConn runs one connection's loop. Responses go back in request
// order; a malformed frame gets an error response and the connection
// survives. Peer close or a read error ends the loop without touching any
// other connection or an in-flight training run.
func (s *TCPServer) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	remote := conn.RemoteAddr()
	s.Logger.Info("Client connected: %s", remote)

	scanner := bufio.NewScanner(conn)
	// Bounds per-connection buffering against peers that never send a
	// newline; an oversized frame fails the scan with ErrTooLong.
	scanner.Buffer(make([]byte, 64*1024), s.Config.Protocol.MaxLineBytes)

	for {
		if t := s.Config.Protocol.ReadTimeoutSeconds; t > 0 {
			conn.SetReadDeadline(time.Now().Add(time.Duration(t) * time.Second))
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				s.Logger.Warning("Connection error from %s: %v", remote, err)
			}
			break
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		if err := s.writeResponse(conn, s.dispatch(line)); err != nil {
			s.Logger.Warning("Write error to %s: %v", remote, err)
			break
		}
	}

	s.Logger.Info("Client disconnected: %s", remote)
}

// -----------------------------------------------------------------------------

func (s *TCPServer) dispatch(line []byte) interface{} {
	var req models.MRequest
	if err := json.Unmarshal(line, &req); err != nil {
		return models.MErrorResponse{Status: "error", Msg: "Invalid JSON: " + err.Error()}
	}
	return s.Orchestrator.Process(req)
}

// -----------------------------------------------------------------------------

func (s *TCPServer) writeResponse(conn net.Conn, resp interface{}) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		s.Logger.Error("Response encoding failed: %v", err)
		payload, _ = json.Marshal(models.MErrorResponse{Status: "error", Msg: "internal encoding error"})
	}
	payload = append(payload, '\n')

	conn.SetWriteDeadline(time.Now().Add(tcpWriteWait))
	_, err = conn.Write(payload)
	return err
}
