package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
)

type envelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    any              `json:"data,omitempty"`
	Meta    *pagination.Meta `json:"meta,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func respondOK(c *gin.Context, message string, data any) {
	respond(c, http.StatusOK, message, data)
}

func respondCreated(c *gin.Context, message string, data any) {
	respond(c, http.StatusCreated, message, data)
}

func respondList(c *gin.Context, message string, data any, meta pagination.Meta) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: message, Data: data, Meta: &meta})
}

// respondFile streams a generated document as an attachment.
func respondFile(c *gin.Context, fileName, contentType string, body []byte) {
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(fileName))
	c.Data(http.StatusOK, contentType, body)
}
