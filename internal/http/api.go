package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"travelog/internal/domain"
	"travelog/internal/metrics"
	"travelog/internal/service"
)

// Options configures the surface around the API routes.
type Options struct {
	// UploadDir is served at /uploads when images are stored on local disk.
	UploadDir      string
	AllowedOrigins []string
	AuthRPS        float64
	AuthBurst      int
	Metrics        *metrics.Metrics
	Logger         logrus.FieldLogger
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth     service.AuthService
	captions service.CaptionService
	uploads  service.UploadService
	opts     Options
	logger   logrus.FieldLogger
	limiter  *rateLimiter
}

func NewHandler(auth service.AuthService, captions service.CaptionService, uploads service.UploadService, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	h := &Handler{
		auth:     auth,
		captions: captions,
		uploads:  uploads,
		opts:     opts,
		logger:   logger,
	}
	if opts.AuthRPS > 0 {
		h.limiter = newRateLimiter(opts.AuthRPS, opts.AuthBurst)
	}
	return h
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(recovery(h.logger), requestLogger(h.logger))
	if h.opts.Metrics != nil {
		router.Use(h.opts.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(h.opts.Metrics.Handler()))
	}
	router.Use(corsMiddleware(h.opts.AllowedOrigins))

	router.POST("/create-account", h.rateLimit(h.limiter), h.createAccount)
	router.POST("/login", h.rateLimit(h.limiter), h.login)
	router.POST("/image-upload", h.imageUpload)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "Server is running"})
	})
	if h.opts.UploadDir != "" {
		router.Static("/uploads", h.opts.UploadDir)
	}

	protected := router.Group("")
	protected.Use(h.requireAuth())
	{
		protected.GET("/get-user", h.getUser)
		protected.POST("/caption", h.createCaption)
		protected.GET("/get-caption", h.listCaptions)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": true, "message": "Route not found"})
	})
}

type createAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createCaptionRequest struct {
	Title           string `json:"title"`
	Story           string `json:"story"`
	VisitedLocation string `json:"visitedLocation"`
	ImageURL        string `json:"imageUrl"`
	VisitedDate     string `json:"visitedDate"`
}

// CaptionResponse is the JSON shape of a stored caption.
type CaptionResponse struct {
	ID              string `json:"id"`
	UserID          string `json:"userId"`
	Title           string `json:"title"`
	Story           string `json:"story"`
	VisitedLocation string `json:"visitedLocation"`
	ImageURL        string `json:"imageUrl"`
	VisitedDate     string `json:"visitedDate"`
	CreatedAt       string `json:"createdAt"`
}

// bindJSON decodes the body; a malformed body counts as missing fields.
func (h *Handler) bindJSON(c *gin.Context, dst any) {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.logger.WithError(err).Debug("ignoring malformed request body")
	}
}

func (h *Handler) createAccount(c *gin.Context) {
	var req createAccountRequest
	h.bindJSON(c, &req)

	res, err := h.auth.Register(c.Request.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		h.respondError(c, err, "An error occurred during registration")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"error":       false,
		"user":        res.User,
		"accessToken": res.AccessToken,
		"message":     "Registration Successful",
	})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	h.bindJSON(c, &req)

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err, "An error occurred during login")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error":       false,
		"user":        res.User,
		"accessToken": res.AccessToken,
		"message":     "Login successful",
	})
}

func (h *Handler) getUser(c *gin.Context) {
	user, err := h.auth.GetProfile(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.respondError(c, err, "An error occurred while retrieving user data")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error":   false,
		"user":    user,
		"message": "User data retrieved successfully",
	})
}

func (h *Handler) createCaption(c *gin.Context) {
	var req createCaptionRequest
	h.bindJSON(c, &req)

	caption, err := h.captions.CreateCaption(c.Request.Context(), currentUserID(c), service.CaptionInput{
		Title:           req.Title,
		Story:           req.Story,
		VisitedLocation: req.VisitedLocation,
		ImageURL:        req.ImageURL,
		VisitedDate:     req.VisitedDate,
	})
	if err != nil {
		h.respondError(c, err, "An error occurred while creating caption")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"error":   false,
		"caption": captionToResponse(*caption),
		"message": "Caption created successfully",
	})
}

func (h *Handler) listCaptions(c *gin.Context) {
	captions, err := h.captions.ListCaptions(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.respondError(c, err, "An error occurred while retrieving captions")
		return
	}

	resp := make([]CaptionResponse, len(captions))
	for i := range captions {
		resp[i] = captionToResponse(captions[i])
	}
	c.JSON(http.StatusOK, gin.H{"stories": resp})
}

func (h *Handler) imageUpload(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) {
			h.logger.WithError(err).Debug("read multipart form")
		}
		h.opts.Metrics.ObserveUpload("rejected")
		h.respondError(c, domain.ValidationError("No image uploaded"), "No image uploaded")
		return
	}

	file, err := header.Open()
	if err != nil {
		h.opts.Metrics.ObserveUpload("failed")
		h.respondError(c, err, "An error occurred while uploading image")
		return
	}
	defer file.Close()

	url, err := h.uploads.StoreImage(c.Request.Context(), &service.ImageFile{
		Body:         file,
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Size:         header.Size,
	})
	if err != nil {
		if domain.KindOf(err) == domain.KindValidation {
			h.opts.Metrics.ObserveUpload("rejected")
		} else {
			h.opts.Metrics.ObserveUpload("failed")
		}
		h.respondError(c, err, "An error occurred while uploading image")
		return
	}

	h.opts.Metrics.ObserveUpload("stored")
	c.JSON(http.StatusCreated, gin.H{"imageUrl": url})
}

func captionToResponse(caption domain.Caption) CaptionResponse {
	return CaptionResponse{
		ID:              caption.ID,
		UserID:          caption.UserID,
		Title:           caption.Title,
		Story:           caption.Story,
		VisitedLocation: caption.VisitedLocation,
		ImageURL:        caption.ImageURL,
		VisitedDate:     caption.VisitedDate.UTC().Format(time.RFC3339),
		CreatedAt:       caption.CreatedAt.UTC().Format(time.RFC3339),
	}
}
