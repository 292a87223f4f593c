// Package transport содержит общий для REST и gRPC конверт ответа
// {success, ...payload | error}.
package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"

	"github.com/Leganyst/wellness-booking/internal/model"
)

// Текст для ошибок хранилища: детали драйвера наружу не отдаются.
const storeFailureMessage = "storage failure, please retry later"

// OK разворачивает payload в поля конверта рядом с success:true.
// Payload должен сериализоваться в JSON-объект.
func OK(payload any) (map[string]any, error) {
	out := map[string]any{}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("payload is not an object: %w", err)
		}
		if out == nil {
			out = map[string]any{}
		}
	}
	out["success"] = true
	return out, nil
}

// Fail: конверт неуспешного ответа.
func Fail(err error) map[string]any {
	return map[string]any{
		"success": false,
		"error":   ErrorMessage(err),
	}
}

func ErrorMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	if errors.Is(err, model.ErrStore) {
		return storeFailureMessage
	}
	return err.Error()
}

// ErrorStatus сопоставляет таксономию ошибок с HTTP-статусом.
func ErrorStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, model.ErrStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode: то же для gRPC; используется в логах, ответ всё равно идёт конвертом.
func ErrorCode(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case errors.Is(err, model.ErrValidation):
		return codes.InvalidArgument
	case errors.Is(err, model.ErrNotFound):
		return codes.NotFound
	case errors.Is(err, model.ErrInvalidTransition):
		return codes.FailedPrecondition
	case errors.Is(err, model.ErrStore):
		return codes.Unavailable
	default:
		return codes.Internal
	}
}
