package util

import (
	"net/http"

	"github.com/as0628/expense-tracker-project/internal/apperr"

	"github.com/gin-gonic/gin"
)

// 通用返回结构里的 data 使用 map
type Response map[string]interface{}

// 业务错误码
const (
	CodeOK           = 0
	CodeInvalidParam = 40001
	CodeAuth         = 40101
	CodeForbidden    = 40301
	CodeNotFound     = 40401
	CodeConflict     = 40901
	CodeServerErr    = 50001
	CodeUpstreamErr  = 50201
)

// Success 统一成功返回
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Created 新建资源成功返回
func Created(c *gin.Context, data Response) {
	c.JSON(http.StatusCreated, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Error 统一错误返回
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":  code,
		"error": msg,
	})
}

// Fail maps a service error to its HTTP status and business code.
func Fail(c *gin.Context, err error) {
	status, code := StatusOf(err)
	_ = c.Error(err)
	Error(c, status, code, apperr.Message(err))
}

// StatusOf returns the HTTP status and business code for err.
func StatusOf(err error) (int, int) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest, CodeInvalidParam
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized, CodeAuth
	case apperr.KindForbidden:
		return http.StatusForbidden, CodeForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound, CodeNotFound
	case apperr.KindConflict:
		return http.StatusConflict, CodeConflict
	case apperr.KindPayment:
		return http.StatusBadGateway, CodeUpstreamErr
	default:
		return http.StatusInternalServerError, CodeServerErr
	}
}
