package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/mindquest/internal/middleware"
	"github.com/yourusername/mindquest/pkg/auth"
)

// renderPage дополняет данные шаблона общими полями макета и отрисовывает страницу
func renderPage(c *gin.Context, status int, name string, identity auth.Identity, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["User"] = identity.Username
	data["CSRFToken"] = middleware.CSRFToken(c)
	c.HTML(status, name, data)
}

// renderErrorPage отрисовывает страницу ошибки с указанным статусом
func renderErrorPage(c *gin.Context, status int, identity auth.Identity) {
	renderPage(c, status, "error.html", identity, gin.H{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": errorPageMessage(status),
	})
	c.Abort()
}

func errorPageMessage(status int) string {
	switch status {
	case http.StatusNotFound:
		return "The requested page was not found."
	case http.StatusBadRequest:
		return "The request could not be understood."
	default:
		return "Something went wrong on our side. Please try again later."
	}
}
