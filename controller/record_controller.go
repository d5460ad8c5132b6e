// controller/record_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	gateway_errors "github.com/notyourkokoro/FDB/errors"
	"github.com/notyourkokoro/FDB/model"
	"github.com/notyourkokoro/FDB/service"
	"github.com/notyourkokoro/FDB/util"
)

type RecordController struct {
	recordService service.IRecordService
}

func NewRecordController(recordService service.IRecordService) *RecordController {
	return &RecordController{
		recordService: recordService,
	}
}

// RegisterRoutes registers the API routes
func (rc *RecordController) RegisterRoutes(r *gin.RouterGroup) {
	records := r.Group("/records")
	{
		records.GET("/:type/:id", rc.GetRecord)
		records.PUT("/:type/:id", rc.PutRecord)
	}
}

func resourceKeyFromRequest(c *gin.Context) model.ResourceKey {
	return model.ResourceKey{
		Type:      c.Param("type"),
		ID:        c.Param("id"),
		Qualifier: c.Query("qualifier"),
	}
}

// respondWithGatewayError maps the error taxonomy onto HTTP statuses.
// Anything outside the taxonomy becomes a generic 500 so internal failure
// detail never reaches the caller.
func respondWithGatewayError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gateway_errors.ErrUnauthenticated):
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthenticated", err)
	case errors.Is(err, gateway_errors.ErrForbidden):
		util.RespondWithError(c, http.StatusForbidden, "Forbidden", err)
	case errors.Is(err, gateway_errors.ErrRecordNotFound):
		util.RespondWithError(c, http.StatusNotFound, "Record not found", err)
	case errors.Is(err, gateway_errors.ErrConflict):
		util.RespondWithError(c, http.StatusConflict, "Version conflict", err)
	case errors.Is(err, gateway_errors.ErrUnavailable):
		util.RespondWithError(c, http.StatusServiceUnavailable, "Service unavailable", err)
	case errors.Is(err, gateway_errors.ErrInvalidRequest):
		util.RespondWithError(c, http.StatusBadRequest, "Invalid request", err)
	default:
		util.RespondWithError(c, http.StatusInternalServerError, "Internal server error", gateway_errors.ErrInternalServer)
	}
}

// GetRecord endpoint
func (rc *RecordController) GetRecord(c *gin.Context) {
	key := resourceKeyFromRequest(c)
	credential := util.BearerToken(c)

	record, err := rc.recordService.GetRecord(c.Request.Context(), credential, key)
	if err != nil {
		respondWithGatewayError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

type putRecordRequest struct {
	Payload         json.RawMessage `json:"payload" binding:"required"`
	ExpectedVersion int64           `json:"expected_version"`
}

type putRecordResponse struct {
	CommitStamp int64 `json:"commit_stamp"`
}

// PutRecord endpoint
func (rc *RecordController) PutRecord(c *gin.Context) {
	var request putRecordRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid request body", gateway_errors.ErrInvalidRequest)
		return
	}

	key := resourceKeyFromRequest(c)
	credential := util.BearerToken(c)

	commitStamp, err := rc.recordService.PutRecord(
		c.Request.Context(), credential, key, request.Payload, request.ExpectedVersion)
	if err != nil {
		respondWithGatewayError(c, err)
		return
	}

	c.JSON(http.StatusOK, putRecordResponse{CommitStamp: commitStamp})
}
