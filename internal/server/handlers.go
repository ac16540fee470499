package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sleepstars/personachat/internal/proxy"
	"github.com/sleepstars/personachat/internal/server/render"
)

// handleChat reads the bounded body and hands it to the chat proxy
func (s *Server) handleChat(c *gin.Context) {
	ctx := c.Request.Context()
	limit := s.cfg.Server.MaxBodyBytes

	body := c.Request.Body
	if limit > 0 {
		body = http.MaxBytesReader(c.Writer, body, limit)
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			err = &proxy.BodyTooLargeError{Limit: maxErr.Limit}
		} else {
			err = &proxy.ValidationError{Reason: "unreadable body", Err: err}
		}
		status, payload := s.chat.Fail(ctx, err)
		render.JSON(c, status, payload)
		return
	}

	status, payload := s.chat.HandleChat(ctx, raw)
	render.JSON(c, status, payload)
}
