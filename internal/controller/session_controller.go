package controller

import (
	"context"
	"encoding/json"
	"examprep_backend/internal/service"
	"examprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SessionService interface {
	CreateSession(ctx context.Context, userID, testID uint) (*service.CreateSessionResult, error)
	AutosaveAnswers(ctx context.Context, token string, userID uint, answers []service.AnswerInput) error
	SubmitSession(ctx context.Context, token string, userID uint) (*service.SubmitResult, error)
	PostSessionEvent(ctx context.Context, token string, userID uint, eventType string, metadata json.RawMessage) error
	GetSessionStatus(ctx context.Context, token string, userID uint) (*service.SessionStatus, error)
}

type SessionController struct {
	Service SessionService
}

func NewSessionController(svc SessionService) *SessionController {
	return &SessionController{Service: svc}
}

type CreateSessionRequest struct {
	TestID uint `json:"testId"`
}

type AutosaveRequest struct {
	Answers []service.AnswerInput `json:"answers" binding:"required,dive"`
}

type EventRequest struct {
	EventType string          `json:"eventType" binding:"required"`
	Metadata  json.RawMessage `json:"metadata" swaggertype:"object"`
}

// @Summary 开始考试
// @Description 校验时间窗、付费与额度后创建作答与会话，返回题目（不含答案）
// @Tags 考试会话
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateSessionRequest true "试卷ID"
// @Success 201 {object} util.Response{data=service.CreateSessionResult}
// @Failure 400 {object} util.Response
// @Failure 402 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/sessions [post]
func (c *SessionController) CreateSession(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CreateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Service.CreateSession(ctx.Request.Context(), user.UserID, req.TestID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, result)
}

// @Summary 自动保存答案
// @Tags 考试会话
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param token path string true "会话令牌"
// @Param body body AutosaveRequest true "答案列表"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/sessions/{token}/answers [patch]
func (c *SessionController) AutosaveAnswers(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req AutosaveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Service.AutosaveAnswers(ctx.Request.Context(), ctx.Param("token"), user.UserID, req.Answers); err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Ack(ctx, "Answers saved")
}

// @Summary 交卷
// @Description 评分并结束会话；重复交卷返回已保存的成绩
// @Tags 考试会话
// @Produce json
// @Security BearerAuth
// @Param token path string true "会话令牌"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/sessions/{token}/submit [post]
func (c *SessionController) SubmitSession(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.Service.SubmitSession(ctx.Request.Context(), ctx.Param("token"), user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 上报监考事件
// @Description eventType: tab_switch / fullscreen_exit / screenshot / face_detection / multiple_faces / heartbeat
// @Tags 考试会话
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param token path string true "会话令牌"
// @Param body body EventRequest true "事件"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/sessions/{token}/events [post]
func (c *SessionController) PostEvent(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req EventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Service.PostSessionEvent(ctx.Request.Context(), ctx.Param("token"), user.UserID, req.EventType, req.Metadata); err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Ack(ctx, "Event recorded")
}

// @Summary 查询会话状态
// @Tags 考试会话
// @Produce json
// @Security BearerAuth
// @Param token path string true "会话令牌"
// @Success 200 {object} util.Response{data=service.SessionStatus}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/sessions/{token} [get]
func (c *SessionController) GetStatus(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	status, err := c.Service.GetSessionStatus(ctx.Request.Context(), ctx.Param("token"), user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, status)
}

// @Summary 管理员查询任意会话
// @Tags 管理员
// @Produce json
// @Security BearerAuth
// @Param token path string true "会话令牌"
// @Success 200 {object} util.Response{data=service.SessionStatus}
// @Failure 404 {object} util.Response
// @Router /api/admin/sessions/{token} [get]
func (c *SessionController) AdminGetStatus(ctx *gin.Context) {
	// userID 为 0 时跳过归属校验
	status, err := c.Service.GetSessionStatus(ctx.Request.Context(), ctx.Param("token"), 0)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, status)
}
