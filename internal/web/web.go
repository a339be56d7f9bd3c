// Package web serves the single page journal client.
package web

import (
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed static/index.html
var assets embed.FS

// Register mounts the client page at the root path.
func Register(router gin.IRoutes) {
	page, err := assets.ReadFile("static/index.html")
	if err != nil {
		panic("web: embedded client page missing: " + err.Error())
	}
	router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	})
}
