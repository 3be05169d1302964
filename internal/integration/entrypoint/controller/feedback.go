package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/menuinzicht/backend/internal/application/usecase/feedback"
	domainerror "github.com/menuinzicht/backend/internal/domain/error"
	"github.com/menuinzicht/backend/internal/integration/entrypoint/dto"
)

// FeedbackController handles the dashboard feedback form.
type FeedbackController struct {
	sendFeedbackUseCase *feedback.SendFeedbackUseCase
}

// NewFeedbackController creates a new feedback controller instance.
func NewFeedbackController(sendFeedbackUseCase *feedback.SendFeedbackUseCase) *FeedbackController {
	return &FeedbackController{
		sendFeedbackUseCase: sendFeedbackUseCase,
	}
}

// Send handles POST /feedback requests.
func (c *FeedbackController) Send(ctx *gin.Context) {
	var req dto.FeedbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	output, err := c.sendFeedbackUseCase.Execute(ctx.Request.Context(), feedback.SendFeedbackInput{
		Feedback:  req.Feedback,
		UserName:  req.UserName,
		UserEmail: req.UserEmail,
		Honeypot:  req.Honeypot,
	})
	if err != nil {
		c.handleFeedbackError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToFeedbackResponse(output))
}

// handleFeedbackError maps feedback errors to HTTP responses.
func (c *FeedbackController) handleFeedbackError(ctx *gin.Context, err error) {
	var emailErr *domainerror.EmailError
	if errors.As(err, &emailErr) {
		switch emailErr.Code {
		case domainerror.ErrCodeFeedbackEmpty,
			domainerror.ErrCodeFeedbackTooLong,
			domainerror.ErrCodeFeedbackSpam:
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: emailErr.Message,
				Code:  string(emailErr.Code),
			})
			return
		}
		slog.Error("Failed to send feedback", "code", emailErr.Code, "error", err)
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "Failed to send feedback",
			Code:  string(emailErr.Code),
		})
		return
	}

	slog.Error("Failed to send feedback", "error", err)
	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "Failed to send feedback",
	})
}
