package api

import (
	"errors"
	"net/http"

	"fintrack/config"
	"fintrack/logger"
	"fintrack/service"

	"github.com/gin-gonic/gin"
)

// SafeErrorMessage 生产环境下不向客户端暴露内部错误详情，避免信息泄露
func SafeErrorMessage(err error, fallback string) string {
	return config.SafeErrorMessage(err, fallback)
}

// handleServiceError 将 service 层错误映射为 HTTP 响应
func handleServiceError(c *gin.Context, err error, fallback string) {
	var (
		validation *service.ValidationError
		rateLimit  *service.RateLimitError
		upstream   *service.UpstreamError
		shape      *service.ShapeError
	)
	switch {
	case errors.As(err, &validation):
		if len(validation.Details) > 0 {
			ErrorWithData(c, http.StatusBadRequest, validation.Message, gin.H{"errors": validation.Details})
			return
		}
		BadRequest(c, validation.Message)
	case errors.Is(err, service.ErrWalletNotFound):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrNotFound):
		NotFound(c, "Registro não encontrado.")
	case errors.As(err, &rateLimit):
		TooManyRequests(c, rateLimit.Error()+" Tente novamente mais tarde.")
	case errors.As(err, &shape):
		ErrorWithData(c, http.StatusUnprocessableEntity, shape.Message, gin.H{"preview": shape.Preview})
	case errors.As(err, &upstream):
		code := http.StatusBadGateway
		if upstream.Timeout {
			code = http.StatusGatewayTimeout
		}
		logger.FromContext(c.Request.Context()).Error("模型调用失败", "error", err)
		Error(c, code, upstream.Message)
	case errors.Is(err, service.ErrEmailDisabled):
		ServiceUnavailable(c, "Serviço de e-mail desativado.")
	default:
		logger.FromContext(c.Request.Context()).Error(fallback, "error", err)
		InternalError(c, SafeErrorMessage(err, fallback))
	}
}
