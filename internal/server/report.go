package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tokenpay/metrics-service/internal/errs"
	"github.com/tokenpay/metrics-service/model"
)

// Error codes of the response envelope.
const (
	codeInvalidParameters = "INVALID_PARAMETERS"
	codeInternalError     = "INTERNAL_ERROR"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// metricPayload is the wire shape of one submitted metric. Pointer fields
// distinguish a missing value from a zero one.
type metricPayload struct {
	MetricName string         `json:"metric_name" validate:"required"`
	PagePath   *string        `json:"page_path"`
	Value      *float64       `json:"value" validate:"required"`
	Tags       map[string]any `json:"tags" validate:"required"`
	Type       *string        `json:"type" validate:"required"`
}

type reportRequest struct {
	Metrics []metricPayload `json:"metrics"`
}

type fieldViolation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

type errorBody struct {
	Code    string           `json:"code"`
	Message string           `json:"message"`
	Details []fieldViolation `json:"details,omitempty"`
}

type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorEnvelope struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

// ReportMetricsHandler ingests a metric batch: validate, dedup, store,
// forward. The response carries processed/stored/skipped counters.
func (srv *Server) ReportMetricsHandler(w http.ResponseWriter, r *http.Request) {
	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		http.Error(w, "unsupported content type", http.StatusUnsupportedMediaType)
		return
	}

	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		srv.writeError(w, http.StatusBadRequest, codeInvalidParameters, "invalid JSON body", nil)
		return
	}

	if len(req.Metrics) == 0 {
		srv.writeError(w, http.StatusBadRequest, codeInvalidParameters,
			"Metrics array is required and cannot be empty", nil)
		return
	}

	metrics, details := convertPayload(req.Metrics)
	if len(details) > 0 {
		srv.writeError(w, http.StatusBadRequest, codeInvalidParameters, "invalid metrics", details)
		return
	}

	summary, err := srv.Service.Report(r.Context(), metrics)
	if err != nil {
		if errors.Is(err, errs.ErrEmptyBatch) {
			srv.writeError(w, http.StatusBadRequest, codeInvalidParameters,
				"Metrics array is required and cannot be empty", nil)
			return
		}
		srv.Config.Logger.Errorf("failed to process metrics batch: %v", err)
		srv.writeError(w, http.StatusInternalServerError, codeInternalError, "failed to process metrics", nil)
		return
	}

	srv.writeSuccess(w, summary)
}

// convertPayload validates every element and converts the valid batch.
// Validation inspects the whole batch so the caller sees all violations
// at once; nothing is persisted when any element is invalid.
func convertPayload(payload []metricPayload) ([]model.Metric, []fieldViolation) {
	var details []fieldViolation
	metrics := make([]model.Metric, 0, len(payload))

	for i := range payload {
		p := &payload[i]
		if err := validate.Struct(p); err != nil {
			var ve validator.ValidationErrors
			if errors.As(err, &ve) {
				for _, fe := range ve {
					details = append(details, fieldViolation{
						Path:    fmt.Sprintf("metrics[%d].%s", i, fe.Field()),
						Message: violationMessage(fe),
					})
				}
				continue
			}
			details = append(details, fieldViolation{
				Path:    fmt.Sprintf("metrics[%d]", i),
				Message: err.Error(),
			})
			continue
		}

		metrics = append(metrics, model.Metric{
			Name:     p.MetricName,
			PagePath: p.PagePath,
			Value:    *p.Value,
			Tags:     p.Tags,
			Type:     *p.Type,
		})
	}

	if len(details) > 0 {
		return nil, details
	}
	return metrics, nil
}

func violationMessage(fe validator.FieldError) string {
	if fe.Tag() == "required" {
		return fmt.Sprintf("%s is required", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

func (srv *Server) writeSuccess(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(successEnvelope{Success: true, Data: data}); err != nil {
		srv.Config.Logger.Errorf("failed to write response JSON: %v", err)
	}
}

func (srv *Server) writeError(w http.ResponseWriter, status int, code, message string, details []fieldViolation) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	envelope := errorEnvelope{
		Success: false,
		Error:   errorBody{Code: code, Message: message, Details: details},
	}
	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		srv.Config.Logger.Errorf("failed to write response JSON: %v", err)
	}
}
