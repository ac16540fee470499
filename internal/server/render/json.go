package render

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const jsonContentType = "application/json; charset=utf-8"

// fallbackBody is written when obj cannot be encoded
var fallbackBody = []byte(`{"error":"Internal server error"}`)

// JSON writes obj the way a browser's JSON.stringify would: HTML characters
// are left as-is and no trailing newline follows the document.
func JSON(c *gin.Context, status int, obj interface{}) {
	data, err := Marshal(obj)
	if err != nil {
		_ = c.Error(err)
		c.Data(http.StatusInternalServerError, jsonContentType, fallbackBody)
		return
	}
	c.Data(status, jsonContentType, data)
}

// Marshal encodes obj without HTML escaping or a trailing newline
func Marshal(obj interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(obj); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
