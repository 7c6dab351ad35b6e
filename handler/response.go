package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hackreg-backend/errs"
)

type response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

func ok(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, response{Code: 0, Msg: msg, Data: data})
}

func fail(c *gin.Context, err error) {
	c.JSON(errs.HTTPStatus(err), response{Code: 1, Msg: err.Error()})
}

func abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(errs.HTTPStatus(err), response{Code: 1, Msg: err.Error()})
}
