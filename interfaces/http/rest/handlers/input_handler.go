package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"planner-backend/application/dispatch"
	"planner-backend/application/ingestion"
	"planner-backend/domain/core/valueobjects"
	"planner-backend/interfaces/http/rest/middleware"
	"planner-backend/pkg/common"
	pkgerrors "planner-backend/pkg/errors"
	"planner-backend/pkg/observability"
	"planner-backend/pkg/utils"
)

// maxInlinePayload bounds the base64-decoded media size. Voice captures
// run well under this; anything larger belongs in object storage.
const maxInlinePayload = 25 << 20

// InputHandler accepts captured input and runs it through the dispatch
// pipeline
type InputHandler struct {
	dispatcher *dispatch.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewInputHandler creates a new InputHandler
func NewInputHandler(dispatcher *dispatch.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) *InputHandler {
	return &InputHandler{
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
	}
}

// submitInputRequest is the wire shape of one capture
type submitInputRequest struct {
	Kind      string `json:"kind" validate:"required,oneof=audio image video text"`
	Payload   string `json:"payload,omitempty"` // base64 media bytes
	Text      string `json:"text,omitempty"`
	MediaType string `json:"media_type,omitempty"`
	Filename  string `json:"filename,omitempty"`
}

// submitInputResponse is what the capture client speaks back to the user
type submitInputResponse struct {
	EntryID        string `json:"entry_id,omitempty"`
	ModuleKind     string `json:"module_kind,omitempty"`
	Status         string `json:"status"`
	SpokenResponse string `json:"spoken_response"`
	FailureKind    string `json:"failure_kind,omitempty"`
	Replayed       bool   `json:"replayed,omitempty"`
}

// SubmitInput handles POST /api/v1/input
func (h *InputHandler) SubmitInput(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.RespondAppError(w, pkgerrors.NewUnauthorizedError(""))
		return
	}

	var req submitInputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondAppError(w, pkgerrors.NewValidationError("request body must be valid JSON"))
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, pkgerrors.NewValidationError(err.Error()))
		return
	}

	inputKind, err := valueobjects.ParseInputKind(req.Kind)
	if err != nil {
		common.RespondAppError(w, pkgerrors.NewValidationError(err.Error()))
		return
	}

	var payload []byte
	if req.Payload != "" {
		payload, err = base64.StdEncoding.DecodeString(req.Payload)
		if err != nil {
			common.RespondAppError(w, pkgerrors.NewValidationError("payload must be base64 encoded"))
			return
		}
		if len(payload) > maxInlinePayload {
			common.RespondAppError(w, pkgerrors.NewValidationError("payload exceeds the inline size limit"))
			return
		}
	}

	result, err := h.dispatcher.Dispatch(r.Context(), user, ingestion.RawInput{
		Kind:      inputKind,
		Payload:   payload,
		Text:      req.Text,
		MediaType: req.MediaType,
		Filename:  req.Filename,
	})
	if err != nil {
		h.logger.Error("dispatch failed before capture",
			zap.String("user_id", user.ID()),
			zap.String("kind", req.Kind),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	h.metrics.RecordDispatch(r.Context(), result.ModuleKind, result.Status, time.Since(start))

	common.RespondJSON(w, http.StatusOK, submitInputResponse{
		EntryID:        result.EntryID,
		ModuleKind:     result.ModuleKind,
		Status:         result.Status,
		SpokenResponse: result.SpokenResponse,
		FailureKind:    result.FailureKind,
		Replayed:       result.Replayed,
	})
}
