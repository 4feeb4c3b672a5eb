package handler

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/labstack/echo/v4"

	"gowa-blast/internal/service"
)

// Session ids become directory names under the session-data root, so
// only filesystem-safe characters are accepted.
var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

const restartTimeout = 30 * time.Second

// GET /sessions
func ListSessions(reg *service.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"success":  true,
			"sessions": reg.List(),
		})
	}
}

type initSessionRequest struct {
	SessionID string `json:"sessionId"`
}

// POST /session/init
func InitSession(reg *service.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req initSessionRequest
		if err := c.Bind(&req); err != nil {
			return ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		}
		if req.SessionID == "" {
			return ErrorResponse(c, http.StatusBadRequest, "sessionId is required")
		}
		if !sessionIDPattern.MatchString(req.SessionID) {
			return ErrorResponse(c, http.StatusBadRequest, "sessionId may only contain letters, digits, '-' and '_'")
		}

		sess := reg.Init(req.SessionID)

		return c.JSON(http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Session initialization started",
			"status":  sess.Status(),
		})
	}
}

// GET /session/:sessionId/status
func GetSessionStatus(reg *service.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		sessionID := c.Param("sessionId")

		sess, ok := reg.Get(sessionID)
		if !ok {
			return ErrorResponse(c, http.StatusNotFound, "Session not found")
		}

		info := sess.Snapshot()
		return c.JSON(http.StatusOK, map[string]interface{}{
			"success":   true,
			"sessionId": info.ID,
			"status":    info.Status,
			"lastError": info.LastError,
		})
	}
}

// GET /session/:sessionId/qr
func GetSessionQR(reg *service.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		sessionID := c.Param("sessionId")

		sess, ok := reg.Get(sessionID)
		if !ok {
			return ErrorResponse(c, http.StatusNotFound, "Session not found")
		}

		// qr is null outside QR_READY.
		var qr interface{}
		if code := sess.QR(); code != "" {
			qr = code
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"success":   true,
			"sessionId": sessionID,
			"qr":        qr,
			"status":    sess.Status(),
		})
	}
}

type restartSessionRequest struct {
	ClearSession      bool `json:"clearSession"`
	ClearSessionSnake bool `json:"clear_session"`
}

// POST /session/:sessionId/restart
//
// Responds immediately; the stop / clear / re-init sequence runs in
// the background.
func RestartSession(reg *service.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		sessionID := c.Param("sessionId")
		if !sessionIDPattern.MatchString(sessionID) {
			return ErrorResponse(c, http.StatusBadRequest, "sessionId may only contain letters, digits, '-' and '_'")
		}

		var req restartSessionRequest
		_ = c.Bind(&req)
		clear := req.ClearSession || req.ClearSessionSnake

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), restartTimeout)
			defer cancel()
			reg.Restart(ctx, sessionID, clear)
		}()

		return c.JSON(http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Session restarting...",
		})
	}
}
