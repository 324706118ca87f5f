package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"movie-night-backend/models"
	"movie-night-backend/services"
)

type PoolController struct {
	poolService *services.PoolService
}

func NewPoolController(poolService *services.PoolService) *PoolController {
	return &PoolController{poolService: poolService}
}

func (c *PoolController) AddMovie(ctx *gin.Context) {
	userID, ok := requestUserID(ctx)
	if !ok {
		return
	}
	groupID, ok := pathObjectID(ctx, "groupId")
	if !ok {
		return
	}

	var req models.AddPoolMovieRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindingError(ctx, err)
		return
	}
	movieID, err := primitive.ObjectIDFromHex(req.MovieID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid movie_id"})
		return
	}

	movie, err := c.poolService.AddMovie(ctx.Request.Context(), groupID, movieID, userID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, movie)
}

func (c *PoolController) RemoveMovie(ctx *gin.Context) {
	userID, ok := requestUserID(ctx)
	if !ok {
		return
	}
	groupID, ok := pathObjectID(ctx, "groupId")
	if !ok {
		return
	}
	movieID, ok := pathObjectID(ctx, "movieId")
	if !ok {
		return
	}

	if err := c.poolService.RemoveMovie(ctx.Request.Context(), groupID, movieID, userID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "movie removed from pool"})
}

func (c *PoolController) ListMovies(ctx *gin.Context) {
	userID, ok := requestUserID(ctx)
	if !ok {
		return
	}
	groupID, ok := pathObjectID(ctx, "groupId")
	if !ok {
		return
	}

	movies, err := c.poolService.ListMovies(ctx.Request.Context(), groupID, userID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, movies)
}
