package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"MonitorNotify/internal/delivery/middleware"
	"MonitorNotify/internal/domain"
	"MonitorNotify/internal/forms"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"
)

type Handler struct {
	service domain.NotificationService
	forms   forms.Registry
}

func NewHandlersSet(service domain.NotificationService, formRegistry forms.Registry) *Handler {
	return &Handler{
		service: service,
		forms:   formRegistry,
	}
}

var validate = validator.New()

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "обязательное поле"
	case "max":
		return "слишком длинное значение"
	default:
		return "некорректное значение"
	}
}

// Register регистрирует маршруты уведомлений в группе.
func (h *Handler) Register(group *gin.RouterGroup) {
	group.GET("", h.ListHandler)
	group.POST("", h.CreateHandler)
	group.GET("/forms", h.FormsHandler)
	group.GET("/apprise", h.CheckAppriseHandler)
	group.POST("/test", h.TestHandler)
	group.GET("/:id", h.GetHandler)
	group.PUT("/:id", h.UpdateHandler)
	group.DELETE("/:id", h.DeleteHandler)
	group.POST("/:id/apply", h.ApplyHandler)
}

func (h *Handler) ListHandler(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": toResponseList(list)})
}

func (h *Handler) GetHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	n, err := h.service.Get(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": toResponse(n)})
}

func (h *Handler) CreateHandler(c *gin.Context) {
	h.save(c, 0, http.StatusCreated)
}

func (h *Handler) UpdateHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	h.save(c, id, http.StatusOK)
}

func (h *Handler) save(c *gin.Context, id int64, status int) {
	cfg, ok := bindConfig(c)
	if !ok {
		return
	}

	n, err := h.service.Save(c.Request.Context(), cfg, id, middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(status, gin.H{"result": toResponse(n)})
}

func (h *Handler) DeleteHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": strconv.FormatInt(id, 10) + " deleted"})
}

func (h *Handler) ApplyHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.ApplyToEveryMonitor(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": ApplyResponse{NotificationID: id, Applied: true}})
}

// TestHandler отправляет тестовое сообщение без сохранения конфигурации.
func (h *Handler) TestHandler(c *gin.Context) {
	var cfg domain.NotificationConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный JSON: " + err.Error()})
		return
	}
	if cfg.Type() == "" {
		writeError(c, domain.ErrEmptyType)
		return
	}

	msg, err := h.service.Test(c.Request.Context(), cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": msg})
}

func (h *Handler) FormsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"result": h.forms.List()})
}

func (h *Handler) CheckAppriseHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"result": AppriseResponse{Installed: h.service.CheckApprise()}})
}

func bindConfig(c *gin.Context) (domain.NotificationConfig, bool) {
	var cfg domain.NotificationConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный JSON: " + err.Error()})
		return nil, false
	}

	req := SaveRequest{Name: cfg.Name(), Type: cfg.Type()}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			errorsMap := make(map[string]string)
			for _, e := range verrs {
				errorsMap[e.Field()] = validationMessage(e)
			}

			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "Ошибка валидации",
				"errors": errorsMap,
			})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return cfg, true
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is invalid"})
		return 0, false
	}
	return id, true
}

// writeError переводит ошибку сервиса в HTTP статус.
func writeError(c *gin.Context, err error) {
	var (
		perr *domain.ProviderError
		ferr *domain.MissingFieldError
	)
	switch {
	case errors.Is(err, domain.ErrNotificationNotFound), errors.Is(err, domain.ErrMonitorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnsupportedType),
		errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrEmptyType),
		errors.As(err, &ferr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &perr):
		c.JSON(http.StatusBadGateway, gin.H{"error": perr.Error()})
	default:
		zlog.Logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
