package handler

import (
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"gowa-blast/internal/helper"
	"gowa-blast/internal/model"
	"gowa-blast/internal/service"
)

type sendRequest struct {
	SessionID string          `json:"sessionId"`
	Contacts  []model.Contact `json:"contacts"`
	Message   string          `json:"message"`
	MediaURL  string          `json:"mediaUrl"`
}

// POST /send
//
// Starts a dispatch job in the background and responds immediately.
// The job is only started against a READY session; the state check
// happens once, here.
func SendBlast(reg *service.Registry, blaster *service.Blaster) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req sendRequest
		if err := c.Bind(&req); err != nil {
			return ErrorResponse(c, http.StatusBadRequest, "Invalid contacts data")
		}

		if req.SessionID == "" {
			return ErrorResponse(c, http.StatusBadRequest, "sessionId is required")
		}
		if len(req.Contacts) == 0 {
			return ErrorResponse(c, http.StatusBadRequest, "Invalid contacts data")
		}

		sess, ok := reg.Get(req.SessionID)
		if !ok || sess.Status() != model.StatusReady {
			return ErrorResponse(c, http.StatusServiceUnavailable, "Session not ready or not found")
		}

		jobID := blaster.Start(sess, req.Contacts, req.Message, req.MediaURL)

		return c.JSON(http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Process started",
			"jobId":   jobID,
		})
	}
}

type sendFileRequest struct {
	SessionID string `json:"sessionId"`
	File      string `json:"file"`
	Message   string `json:"message"`
	MediaURL  string `json:"mediaUrl"`
}

// POST /send-file
//
// Like /send, but the contact list comes from a .json or .xlsx file in
// the contacts directory.
func SendBlastFromFile(reg *service.Registry, blaster *service.Blaster, contactsDir, countryPrefix, addressSuffix string) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req sendFileRequest
		if err := c.Bind(&req); err != nil {
			return ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		}

		if req.SessionID == "" {
			return ErrorResponse(c, http.StatusBadRequest, "sessionId is required")
		}
		if req.File == "" {
			return ErrorResponse(c, http.StatusBadRequest, "file is required")
		}

		// Only plain file names; the list must live in the contacts
		// directory.
		path := filepath.Join(contactsDir, filepath.Base(req.File))
		contacts, err := helper.LoadContacts(path, countryPrefix, addressSuffix)
		if err != nil {
			return ErrorResponse(c, http.StatusBadRequest, err.Error())
		}
		if len(contacts) == 0 {
			return ErrorResponse(c, http.StatusBadRequest, "Contact file has no usable rows")
		}

		sess, ok := reg.Get(req.SessionID)
		if !ok || sess.Status() != model.StatusReady {
			return ErrorResponse(c, http.StatusServiceUnavailable, "Session not ready or not found")
		}

		jobID := blaster.Start(sess, contacts, req.Message, req.MediaURL)

		return c.JSON(http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Process started",
			"jobId":   jobID,
			"total":   len(contacts),
		})
	}
}
