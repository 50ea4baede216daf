package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"daybook/internal/auth"
	"daybook/internal/domain"
	"daybook/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users   service.UserService
	entries service.EntryService
	tokens  *auth.Manager
	logger  *logrus.Logger
}

func NewHandler(users service.UserService, entries service.EntryService, tokens *auth.Manager, logger *logrus.Logger) *Handler {
	return &Handler{
		users:   users,
		entries: entries,
		tokens:  tokens,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.POST("/signup", h.signup)
		api.POST("/login", h.login)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		protected := api.Group("")
		protected.Use(h.authMiddleware())
		{
			protected.GET("/diary/:date", h.getEntry)
			protected.POST("/diary", h.saveEntry)
			protected.GET("/diary-dates", h.listEntryDates)
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type signupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type saveEntryRequest struct {
	Date  string `json:"date"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// UserResponse is the public view of an account; the password hash never
// leaves the service layer.
type UserResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type EntryResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Date      string `json:"date"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "all fields are required"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.respondWithToken(c, user)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.respondWithToken(c, user)
}

func (h *Handler) respondWithToken(c *gin.Context, user *domain.User) {
	token, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.Errorf("issue token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	c.JSON(http.StatusOK, authResponse{
		Token: token,
		User: UserResponse{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName,
		},
	})
}

func (h *Handler) getEntry(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		return
	}

	entry, err := h.entries.Get(c.Request.Context(), claims.UserID, c.Param("date"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if entry == nil {
		// "no entry yet" is a normal outcome, not an error
		c.JSON(http.StatusOK, nil)
		return
	}

	c.JSON(http.StatusOK, entryToResponse(entry))
}

func (h *Handler) saveEntry(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		return
	}

	var req saveEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date, title, and body are required"})
		return
	}
	if req.Date == "" || req.Title == "" || req.Body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date, title, and body are required"})
		return
	}

	entry, err := h.entries.Save(c.Request.Context(), claims.UserID, req.Date, req.Title, req.Body)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, entryToResponse(entry))
}

func (h *Handler) listEntryDates(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		return
	}

	dates, err := h.entries.ListDates(c.Request.Context(), claims.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dates)
}

// writeError maps service errors to HTTP statuses. Anything outside the known
// taxonomy is a store-level failure: logged server-side, surfaced as a
// generic 500.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrFutureDate),
		errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	}
}

func entryToResponse(entry *domain.Entry) EntryResponse {
	return EntryResponse{
		ID:        entry.ID,
		UserID:    entry.UserID,
		Date:      entry.Date,
		Title:     entry.Title,
		Body:      entry.Body,
		CreatedAt: entry.CreatedAt.Format(time.RFC3339),
		UpdatedAt: entry.UpdatedAt.Format(time.RFC3339),
	}
}
