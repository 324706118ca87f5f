package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"movie-night-backend/models"
	"movie-night-backend/services"
)

type RankingController struct {
	rankingService *services.RankingService
}

func NewRankingController(rankingService *services.RankingService) *RankingController {
	return &RankingController{rankingService: rankingService}
}

func (c *RankingController) SubmitRankings(ctx *gin.Context) {
	userID, ok := requestUserID(ctx)
	if !ok {
		return
	}
	groupID, ok := pathObjectID(ctx, "groupId")
	if !ok {
		return
	}

	var req models.SubmitRankingsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindingError(ctx, err)
		return
	}

	entries := make([]services.RankingEntry, 0, len(req.Rankings))
	for _, ranking := range req.Rankings {
		movieID, err := primitive.ObjectIDFromHex(ranking.MovieID)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid movie_id " + ranking.MovieID})
			return
		}
		entries = append(entries, services.RankingEntry{MovieID: movieID, Rank: ranking.Rank})
	}

	if err := c.rankingService.SubmitRankings(ctx.Request.Context(), groupID, userID, entries); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "rankings submitted"})
}

func (c *RankingController) GetUserRankings(ctx *gin.Context) {
	userID, ok := requestUserID(ctx)
	if !ok {
		return
	}
	groupID, ok := pathObjectID(ctx, "groupId")
	if !ok {
		return
	}

	rankings, err := c.rankingService.GetUserRankings(ctx.Request.Context(), groupID, userID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, rankings)
}

func (c *RankingController) GetResults(ctx *gin.Context) {
	if _, ok := requestUserID(ctx); !ok {
		return
	}
	groupID, ok := pathObjectID(ctx, "groupId")
	if !ok {
		return
	}

	results, err := c.rankingService.GetResults(ctx.Request.Context(), groupID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, results)
}
