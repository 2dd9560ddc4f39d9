package handlers

import (
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/kalpovskii/todolist/docs"
)

const docsPath = "/api-docs"

// RegisterRoutes mounts the todo API under basePath. The swagger UI is
// always served from the engine root; the document it renders carries
// basePath so "Try it out" hits the mounted routes.
func RegisterRoutes(app *gin.Engine, basePath string, h *TodoHandler) {
	docs.SwaggerInfo.BasePath = basePath
	app.GET(docsPath+"/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	r := app.Group(basePath)
	r.GET("/", h.Index)

	todos := r.Group("/todos")
	{
		todos.GET("", h.List)
		todos.GET("/:id", h.Get)
		todos.POST("", h.Create)
		todos.PUT("/:id", h.Update)
		todos.DELETE("/:id", h.Delete)
	}
}
