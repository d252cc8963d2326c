package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/vegindex-go/internal/config"
	apperrors "github.com/anime-shed/vegindex-go/internal/errors"
	"github.com/anime-shed/vegindex-go/internal/logger"
	"github.com/anime-shed/vegindex-go/internal/service"
	"github.com/anime-shed/vegindex-go/pkg/models"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

func NewHandler(svc service.IndexService, cfg *config.Config) http.Handler {
	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	r.GET("/indices", listIndices(svc))
	r.POST("/indices/compute", computeIndices(svc, cfg))
	r.POST("/indices/:name/render", renderIndex(svc, cfg))

	return r
}

func listIndices(svc service.IndexService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.ListFormulas())
	}
}

func computeIndices(svc service.IndexService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logRequest(c, "Processing index computation request")

		var req models.ComputeRequest
		if !bindJSON(c, &req) {
			return
		}

		logger.WithFields(logrus.Fields{
			"url":        req.URL,
			"formulas":   req.Formulas,
			"collection": req.Collection,
			"clahe":      req.CLAHE,
		}).Debug("Computing indices")

		report, err := svc.ComputeIndices(ctx, req)
		if err != nil {
			respondError(c, determineStatusCode(err), "index computation failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"url":                req.URL,
			"selection":          report.Selection,
			"indices":            len(report.Indices),
			"quality_issues":     len(report.QualityIssues),
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Index computation completed successfully")

		c.JSON(http.StatusOK, report)
	}
}

func renderIndex(svc service.IndexService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logRequest(c, "Processing index render request")

		var req models.RenderRequest
		if !bindJSON(c, &req) {
			return
		}

		name := strings.ToLower(c.Param("name"))
		data, err := svc.RenderIndex(ctx, name, req)
		if err != nil {
			respondError(c, determineStatusCode(err), "index rendering failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"url":                req.URL,
			"formula":            name,
			"colormap":           req.Colormap,
			"bytes":              len(data),
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Index rendered successfully")

		c.Data(http.StatusOK, "image/png", data)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:  "available",
		Version: Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

func logRequest(c *gin.Context, msg string) {
	logger.WithFields(logrus.Fields{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"user_agent": c.Request.UserAgent(),
		"ip":         c.ClientIP(),
	}).Info(msg)
}

// bindJSON decodes the body into req, responding on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(c, http.StatusRequestEntityTooLarge, "request body too large", err)
		return false
	}
	logger.WithError(err).WithFields(logrus.Fields{
		"ip": c.ClientIP(),
	}).Error("Invalid request format")
	respondError(c, http.StatusBadRequest, "invalid request format", err)
	return false
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	// Log the error with context
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
