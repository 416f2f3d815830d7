package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"adminstore/internal/infrastructure/http/v1/middleware"
	"adminstore/pkg/logger"
)

func TestLogger_ErrorsGoThroughRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	r := gin.New()
	r.Use(middleware.Trace())
	r.Use(middleware.Logger(&logger.Logger{SugaredLogger: zap.New(core).Sugar()}))
	r.Use(middleware.ErrorHandler())
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("disk on fire"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom?x=1", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "unhandled error", entries[0].Message)
	assert.NotEmpty(t, entries[0].ContextMap()["request_id"])

	req := entries[1].ContextMap()
	assert.Equal(t, "http request", entries[1].Message)
	assert.Equal(t, "/boom", req["path"])
	assert.Equal(t, "x=1", req["query"])
	assert.EqualValues(t, http.StatusInternalServerError, req["status"])
}
