package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"movie-night-backend/apperrors"
)

// respondError maps service error kinds to HTTP statuses:
// NotFound 404, Forbidden 403, Conflict 409, InvalidRanking 400,
// everything else 500.
func respondError(ctx *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Kind {
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindForbidden:
		status = http.StatusForbidden
	case apperrors.KindConflict:
		status = http.StatusConflict
	case apperrors.KindInvalidRanking:
		status = http.StatusBadRequest
	}

	body := gin.H{"error": appErr.Message, "code": appErr.Code}
	if status == http.StatusInternalServerError {
		body = gin.H{"error": "internal server error", "code": appErr.Code}
	}
	ctx.JSON(status, body)
}

// respondBindingError turns gin/validator binding failures into a 400 with
// the first offending field named.
func respondBindingError(ctx *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid value for field " + ve[0].Field()})
		return
	}
	ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
}

// requestUserID pulls the authenticated user's id out of the gin context,
// where the auth middleware stored it.
func requestUserID(ctx *gin.Context) (primitive.ObjectID, bool) {
	raw, exists := ctx.Get("user_id")
	if !exists {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return primitive.NilObjectID, false
	}

	hex, ok := raw.(string)
	if !ok {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "invalid user id format"})
		return primitive.NilObjectID, false
	}

	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "invalid user id format"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// pathObjectID parses an ObjectID path parameter, responding 400 on bad
// input.
func pathObjectID(ctx *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(ctx.Param(name))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return primitive.NilObjectID, false
	}
	return id, true
}
