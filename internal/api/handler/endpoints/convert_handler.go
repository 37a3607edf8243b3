package endpoints

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	skills "github.com/manarouei/agent-skills-sub004"
	"github.com/manarouei/agent-skills-sub004/internal/api/handler/middleware"
	"github.com/manarouei/agent-skills-sub004/internal/api/handler/request"
	"github.com/manarouei/agent-skills-sub004/internal/api/handler/response"
	"github.com/manarouei/agent-skills-sub004/internal/api/service"
	"github.com/manarouei/agent-skills-sub004/pkg"
)

type convertHandler struct {
	convertService *service.ConvertService
	runService     *service.RunService
	config         skills.AppConfig
	logger         zerolog.Logger
}

func ConvertHandler(router gin.IRouter, convertService *service.ConvertService, runService *service.RunService) {
	h := &convertHandler{
		convertService: convertService,
		runService:     runService,
		config:         skills.GetConfig(),
		logger:         skills.Logger,
	}

	routes := router.Group("/api/v1")
	routes.Use(middleware.AuthMiddleware(h.config))
	{
		routes.GET("/classes", h.classes)
		routes.POST("/convert", h.convert)
		routes.POST("/convert/adapter", h.adapter)
	}

	runs := router.Group("/api/v1/runs")
	runs.Use(middleware.AuthMiddleware(h.config))
	runs.Use(middleware.RequireRole(adminRole))
	{
		runs.POST("", h.startRun)
		runs.GET("/:id", h.getRun)
	}
}

func (slf *convertHandler) classes(c *gin.Context) {
	c.JSON(http.StatusOK, slf.convertService.Classes())
}

func (slf *convertHandler) bind(c *gin.Context) (request.ConvertDTO, bool) {
	var convertDTO request.ConvertDTO
	if err := pkg.ParseAndValidate(c, &convertDTO); err != nil {
		slf.logger.Debug().Err(err).Msg("Error parsing and validating convert DTO")
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid request", Data: pkg.ValidationMessages(err)})
		return convertDTO, false
	}
	return convertDTO, true
}

func (slf *convertHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, service.ErrInvalidDescriptor) {
		c.JSON(http.StatusUnprocessableEntity, response.APIError{Message: err.Error()})
		return
	}
	slf.logger.Error().Err(err).Msg("Error converting node")
	c.JSON(http.StatusInternalServerError, response.APIError{Message: "Conversion failed"})
}

func (slf *convertHandler) convert(c *gin.Context) {
	convertDTO, ok := slf.bind(c)
	if !ok {
		return
	}
	res, cached, err := slf.convertService.Convert(c.Request.Context(), convertDTO)
	if err != nil {
		slf.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.ConvertResponseDTO{Result: res, Cached: cached})
}

func (slf *convertHandler) adapter(c *gin.Context) {
	convertDTO, ok := slf.bind(c)
	if !ok {
		return
	}
	name, src, err := slf.convertService.Adapter(c.Request.Context(), convertDTO)
	if err != nil {
		slf.fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "text/x-go; charset=utf-8", src)
}

func (slf *convertHandler) startRun(c *gin.Context) {
	var runDTO request.RunDTO
	if err := pkg.ParseAndValidate(c, &runDTO); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid request", Data: pkg.ValidationMessages(err)})
		return
	}
	run, err := slf.runService.Start(runDTO, middleware.User(c))
	if errors.Is(err, service.ErrInvalidRunPath) {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to start run"})
		return
	}
	c.JSON(http.StatusAccepted, run)
}

func (slf *convertHandler) getRun(c *gin.Context) {
	run, err := slf.runService.Get(c.Param("id"))
	if errors.Is(err, service.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, response.APIError{Message: "Run not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to load run"})
		return
	}
	c.JSON(http.StatusOK, run)
}
