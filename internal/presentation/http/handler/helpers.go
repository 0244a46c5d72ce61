package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/sangkips/investify-pos/pkg/apperror"
)

// GetIndex parses a non-negative integer path parameter
func GetIndex(c *gin.Context, name string) (int, error) {
	index, err := strconv.Atoi(c.Param(name))
	if err != nil || index < 0 {
		return 0, apperror.NewBadRequestError("Invalid " + name)
	}
	return index, nil
}

// GetUUID parses a uuid path parameter
func GetUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperror.NewBadRequestError("Invalid " + name)
	}
	return id, nil
}

// GetDiscountType parses a discount type name, defaulting to percent
func GetDiscountType(name string) (enum.DiscountType, error) {
	if name == "" {
		return enum.DiscountTypePercent, nil
	}
	t, err := enum.ParseDiscountType(name)
	if err != nil {
		return t, apperror.NewBadRequestError("Invalid discount type")
	}
	return t, nil
}
