package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// trafficLoggingMiddleware logs each request and response at debug level.
// Tool calls additionally get an info line with their outcome and duration.
func trafficLoggingMiddleware(logger *slog.Logger, direction string) sdkmcp.Middleware {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			debug := logger.Enabled(ctx, slog.LevelDebug)
			sessionID := requestSessionID(req)
			tool := toolName(req)

			if debug {
				logger.Debug("mcp traffic", "direction", direction, "stage", "request", "method", method,
					"session_id", sessionID, "params", formatPayload(requestParams(req)))
			}

			start := time.Now()
			result, err := next(ctx, method, req)

			if debug && !strings.HasPrefix(method, "notifications/") {
				attrs := []any{"direction", direction, "stage", "response", "method", method,
					"session_id", sessionID, "result", formatPayload(result)}
				if err != nil {
					attrs = append(attrs, "error", err)
				}
				logger.Debug("mcp traffic", attrs...)
			}
			if direction == "inbound" && tool != "" {
				logger.Info("mcp tool call", "tool", tool, "session_id", sessionID,
					"is_error", err != nil || isErrorResult(result), "duration", time.Since(start))
			}
			return result, err
		}
	}
}

// requestSessionID prefers the Mcp-Session-Id header, then the transport session.
func requestSessionID(req sdkmcp.Request) (id string) {
	if req == nil {
		return ""
	}
	defer func() {
		if recover() != nil {
			id = ""
		}
	}()
	if extra := req.GetExtra(); extra != nil && extra.Header != nil {
		if h := extra.Header.Get("Mcp-Session-Id"); h != "" {
			return h
		}
	}
	if session := req.GetSession(); session != nil {
		return session.ID()
	}
	return ""
}

func requestParams(req sdkmcp.Request) (params any) {
	if req == nil {
		return nil
	}
	// Some notifications carry typed nil params.
	defer func() {
		if recover() != nil {
			params = nil
		}
	}()
	return req.GetParams()
}

func toolName(req sdkmcp.Request) string {
	if call, ok := requestParams(req).(*sdkmcp.CallToolParamsRaw); ok && call != nil {
		return call.Name
	}
	return ""
}

func isErrorResult(result sdkmcp.Result) bool {
	res, ok := result.(*sdkmcp.CallToolResult)
	return ok && res != nil && res.IsError
}

func formatPayload(payload any) string {
	if payload == nil {
		return "<nil>"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%T", payload)
	}
	return string(data)
}
