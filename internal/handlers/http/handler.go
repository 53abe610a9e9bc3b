package http

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/invopop/jsonschema"
	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-viewer/internal/models"
	"github.com/Nazarious-ucu/weather-viewer/internal/services/weather"
	"github.com/Nazarious-ucu/weather-viewer/internal/view"
)

const (
	timeoutDuration = 10 * time.Second
	indexTemplate   = "index.tmpl"
)

type weatherSearcher interface {
	Search(ctx context.Context, city string) (models.Snapshot, error)
}

type viewSession interface {
	Submit(ctx context.Context, city string) error
	State(ctx context.Context) (view.State, error)
}

type searchRequest struct {
	City string `json:"city"`
}

type Handler struct {
	service weatherSearcher
	session viewSession
	page    *template.Template
	schema  *jsonschema.Schema
	logger  zerolog.Logger
}

func NewHandler(svc weatherSearcher, session viewSession, logger zerolog.Logger) *Handler {
	reflector := jsonschema.Reflector{DoNotReference: true}

	return &Handler{
		service: svc,
		session: session,
		page:    pageTemplate(),
		schema:  reflector.Reflect(&view.Page{}),
		logger:  logger,
	}
}

// Register mounts the page and the JSON API on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/", h.Index)
	r.POST("/search", h.SubmitForm)

	api := r.Group("/api")
	{
		api.GET("/view", h.GetView)
		api.POST("/search", h.SubmitJSON)
		api.GET("/weather", h.GetWeather)
		api.GET("/schema", h.GetSchema)
	}
}

func (h *Handler) Index(c *gin.Context) {
	st, err := h.session.State(c.Request.Context())
	if err != nil {
		h.sessionUnavailable(c, err)
		return
	}

	c.Render(http.StatusOK, render.HTML{
		Template: h.page,
		Name:     indexTemplate,
		Data:     view.Present(st),
	})
}

func (h *Handler) SubmitForm(c *gin.Context) {
	if err := h.session.Submit(c.Request.Context(), c.PostForm("city")); err != nil {
		h.sessionUnavailable(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) GetView(c *gin.Context) {
	st, err := h.session.State(c.Request.Context())
	if err != nil {
		h.sessionUnavailable(c, err)
		return
	}

	c.JSON(http.StatusOK, view.Present(st))
}

func (h *Handler) SubmitJSON(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.session.Submit(c.Request.Context(), req.City); err != nil {
		h.sessionUnavailable(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// GetWeather runs a search outside the session and returns the presented page.
func (h *Handler) GetWeather(c *gin.Context) {
	city := strings.TrimSpace(c.Query("city"))
	if city == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "city query parameter is required"})
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	snapshot, err := h.service.Search(ctxWithTimeout, city)
	if err != nil {
		h.logger.Error().Err(err).Str("city", city).Msg("synchronous search failed")

		switch {
		case errors.Is(err, weather.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": view.ErrorMessage(city, err)})
		case errors.Is(err, context.DeadlineExceeded):
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": view.ErrorMessage(city, err)})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": view.ErrorMessage(city, err)})
		}
		return
	}

	c.JSON(http.StatusOK, view.Present(view.State{
		Status:   view.StatusRendered,
		Query:    city,
		Snapshot: &snapshot,
	}))
}

func (h *Handler) GetSchema(c *gin.Context) {
	c.JSON(http.StatusOK, h.schema)
}

func (h *Handler) sessionUnavailable(c *gin.Context, err error) {
	h.logger.Error().Err(err).Msg("view session unavailable")
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service is shutting down"})
}
