package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chrissi82/Dashboard-IU/backend/internal/service"
	apperrors "github.com/chrissi82/Dashboard-IU/backend/pkg/errors"
	"github.com/chrissi82/Dashboard-IU/backend/pkg/response"
)

// 业务码
//
//	10xxx 通用 / 认证中间件
//	11xxx 账户
//	12xxx 学期与存储
const (
	CodeInvalidParam  = 10001
	CodeUnauthorized  = 10002
	CodeRateLimited   = 10004
	CodeBodyTooLarge  = 10005
	CodeAuthFailure   = 11001
	CodeNameTaken     = 11002
	CodeNotFound      = 12001
	CodeSegmentIndex  = 12002
	CodeInvalidRange  = 12003
	CodeCorruptRecord = 12004
	CodeStorageWrite  = 12005
	CodeValidation    = 12006
)

// handleDomainError 统一将业务错误映射为 HTTP 状态与业务码
// 各服务共用 pkg/errors 中的错误分类，因此所有 Handler 共用同一映射
func handleDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		response.ErrorWithDetails(c, http.StatusBadRequest, CodeValidation, "输入校验失败", err.Error())
	case errors.Is(err, apperrors.ErrInvalidRange):
		response.BadRequest(c, CodeInvalidRange, "日期区间无效：开始日期必须早于结束日期")
	case errors.Is(err, apperrors.ErrAuthFailure):
		response.Unauthorized(c, CodeAuthFailure, "用户名或密码错误")
	case errors.Is(err, service.ErrRefreshTokenInvalid):
		response.Unauthorized(c, CodeUnauthorized, "Token 无效或已过期")
	case errors.Is(err, apperrors.ErrNameTaken):
		response.Conflict(c, CodeNameTaken, "用户名已被占用")
	case errors.Is(err, apperrors.ErrSegmentIndex):
		response.UnprocessableEntity(c, CodeSegmentIndex, "学期序号超出学习周期范围")
	case errors.Is(err, apperrors.ErrRecordNotFound):
		response.NotFound(c, CodeNotFound, "记录不存在")
	case errors.Is(err, apperrors.ErrCorruptRecord):
		response.Error(c, http.StatusInternalServerError, CodeCorruptRecord, "存储记录已损坏")
	case errors.Is(err, apperrors.ErrStorageWrite):
		response.Error(c, http.StatusInternalServerError, CodeStorageWrite, "写入存储失败")
	default:
		response.InternalError(c)
	}
}
