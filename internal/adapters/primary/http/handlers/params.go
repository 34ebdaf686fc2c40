package handlers

import (
	"strconv"

	"submission-review-service/internal/adapters/primary/http/middleware"
	"submission-review-service/internal/core/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func identity(c *gin.Context) domain.Identity {
	id, _ := middleware.GetIdentity(c)
	return id
}

func pathUUID(c *gin.Context, name string, invalid error) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, invalid
	}
	return id, nil
}

// pageParams reads page and size; missing or malformed values fall back to
// the service defaults.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "0"))
	return page, size
}
