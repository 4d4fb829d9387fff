package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"

	grpcadapter "github.com/simaogato/assetflow-backend/internal/adapter/grpc"
	"github.com/simaogato/assetflow-backend/internal/domain"
	"github.com/simaogato/assetflow-backend/internal/i18n"
	"github.com/simaogato/assetflow-backend/internal/logger"
)

var httpStatus = map[codes.Code]int{
	codes.InvalidArgument:    http.StatusBadRequest,
	codes.Unauthenticated:    http.StatusUnauthorized,
	codes.NotFound:           http.StatusNotFound,
	codes.FailedPrecondition: http.StatusConflict,
	codes.Aborted:            http.StatusConflict,
	codes.Unavailable:        http.StatusServiceUnavailable,
	codes.Internal:           http.StatusInternalServerError,
}

// statusCode maps a domain error to an HTTP status using the same table as gRPC
func statusCode(err error) (int, codes.Code) {
	code := grpcadapter.Code(err)
	if s, ok := httpStatus[code]; ok {
		return s, code
	}
	return http.StatusInternalServerError, code
}

func returnErrorJson(c *gin.Context, err error) {
	status, code := statusCode(err)

	var ce *domain.ComputationError
	if errors.As(err, &ce) {
		logger.FromContext(c.Request.Context()).Errorw("computation aborted", "error", err)
	}
	_ = c.Error(err)

	body := gin.H{
		"error": i18n.TranslateError(err),
		"code":  code.String(),
	}
	var pse *domain.PartialSaveError
	if errors.As(err, &pse) {
		failed := make([]string, 0, len(pse.Failed))
		for _, id := range pse.FailedIDs() {
			failed = append(failed, id.String())
		}
		body["failed"] = failed
	}

	c.AbortWithStatusJSON(status, body)
}

// badRequest reports a malformed request body or parameter
func badRequest(c *gin.Context, field string, err error) {
	returnErrorJson(c, &domain.ValidationError{Field: field, Message: err.Error()})
}
