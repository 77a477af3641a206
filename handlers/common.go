package handlers

import (
	"log"
	"net/http"

	"gallery/service"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Error string `json:"error"`
}

var (
	OKResponse = Response{}
)

// AbortWithError converts a typed service error to the status a client
// depends on; anything untyped is a server error
func AbortWithError(c *gin.Context, err error) {
	status := service.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[%v] %s %s: %v", c.GetString("request_id"), c.Request.Method, c.Request.URL.Path, err)
		c.JSON(status, Response{Error: "server error"})
		return
	}
	c.JSON(status, Response{Error: err.Error()})
}
