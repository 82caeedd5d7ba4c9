package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
)

// Start starts the TCP evaluation server and blocks until ctx is cancelled
func Start(ctx context.Context, port int, svc *Service) error {
	addr := fmt.Sprintf(":%d", port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", port, err)
	}

	svc.Logger.Info("Running on port", "port", port)
	return Serve(ctx, listener, svc)
}

// Serve accepts connections on listener until ctx is cancelled. Each
// connection speaks newline-delimited JSON: one Request in, one Response out.
func Serve(ctx context.Context, listener net.Listener, svc *Service) error {
	defer listener.Close()

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			svc.Logger.Error("Failed to accept connection", "error", err)
			continue
		}
		go handleConnection(conn, svc)
	}
}

func handleConnection(conn net.Conn, svc *Service) {
	defer conn.Close()

	logger := svc.Logger.With("remote", conn.RemoteAddr().String())

	// Use Decoder instead of Scanner for network streams
	decoder := json.NewDecoder(conn)
	encoder := json.NewEncoder(conn)

	for {
		var req Request
		// Decode directly from the connection
		if err := decoder.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return // Connection closed gracefully
			}
			logger.Error("decode error", "error", err)

			// Send error back to client
			_ = encoder.Encode(Response{Error: fmt.Sprintf("Invalid request format: %v", err)})
			return
		}

		if req.Command == "exit" || req.Command == "\\q" {
			return
		}

		result, err := svc.Evaluate(req)
		if err != nil {
			if err := encoder.Encode(Response{Error: err.Error()}); err != nil {
				logger.Error("encode error", "error", err)
				return
			}
			continue
		}

		if err := encoder.Encode(Response{Result: &result}); err != nil {
			logger.Error("encode error", "error", err)
			return
		}
	}
}
