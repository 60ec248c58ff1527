package http

import (
	"github.com/gin-gonic/gin"

	"thistoken/indexer/api/http/controller/home"
)

func Routers(e *gin.RouterGroup) {
	homeGroup := e.Group("/")
	homeGroup.GET("map", home.Map)
	homeGroup.GET("state", home.State)
	homeGroup.GET("state/cell/:coord", home.Cell)
}
