package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"apiscope.dev/internal/audit"
	"apiscope.dev/internal/auth"
	"apiscope.dev/internal/history"
	"apiscope.dev/internal/relay"
)

type sendRequest struct {
	Method  string          `json:"method"`
	URL     string          `json:"url"`
	Headers json.RawMessage `json:"headers,omitempty"`
	Body    json.RawMessage `json:"body,omitempty"`
}

type updateRequest struct {
	ID      int64           `json:"id"`
	Method  string          `json:"method"`
	URL     string          `json:"url"`
	Headers json.RawMessage `json:"headers,omitempty"`
	Body    json.RawMessage `json:"body,omitempty"`
}

type deleteRequest struct {
	ID int64 `json:"id"`
}

type sendResponse struct {
	ID             int64           `json:"id"`
	StatusCode     int             `json:"status_code"`
	ResponseTimeMs int             `json:"response_time_ms"`
	ResponseData   json.RawMessage `json:"response_data"`
}

type historyResponse struct {
	Items []history.Record `json:"items"`
}

// parsedInput is a request description that passed boundary validation.
type parsedInput struct {
	method  string
	url     string
	headers map[string]string
	body    any
}

// parseRequestInput validates and normalizes {method, url, headers, body}.
// All failures are collected before any outbound call or persistence.
func parseRequestInput(method, rawURL string, headers, body json.RawMessage) (parsedInput, []string) {
	var errs []string
	in := parsedInput{method: normalizeMethod(method), url: rawURL}

	errs = validateTarget(in.method, rawURL, errs)

	parsedHeaders, err := parseHeadersField(headers)
	if err != nil {
		errs = append(errs, err.Error())
	} else {
		in.headers = parsedHeaders
	}

	parsedBody, err := parseJSONField(body, "body")
	if err != nil {
		errs = append(errs, err.Error())
	} else {
		in.body = parsedBody
	}

	return in, errs
}

func (a *API) handleSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "Unauthorized: missing bearer token")
		return
	}

	var req sendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	in, errs := parseRequestInput(req.Method, req.URL, req.Headers, req.Body)
	if len(errs) > 0 {
		writeValidationError(w, r, errs)
		return
	}

	res, err := a.executor.Execute(r.Context(), userID, relay.Request{
		Method:  in.method,
		URL:     in.url,
		Headers: in.headers,
		Body:    in.body,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "request.execute", map[string]any{
		"record_id":   res.ID,
		"method":      in.method,
		"url":         in.url,
		"status_code": strconv.Itoa(res.StatusCode),
	})

	writeJSON(w, http.StatusOK, sendResponse{
		ID:             res.ID,
		StatusCode:     res.StatusCode,
		ResponseTimeMs: res.ResponseTimeMs,
		ResponseData:   res.ResponseBody,
	})
}

func (a *API) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "Unauthorized: missing bearer token")
		return
	}

	items, err := a.history.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []history.Record{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Items: items})
}

func (a *API) handleHistoryUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "Unauthorized: missing bearer token")
		return
	}

	var req updateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.ID <= 0 {
		writeError(w, r, http.StatusBadRequest, "Request id is required")
		return
	}

	in, errs := parseRequestInput(req.Method, req.URL, req.Headers, req.Body)
	if len(errs) > 0 {
		writeValidationError(w, r, errs)
		return
	}

	item, err := a.history.Update(r.Context(), req.ID, userID, history.Mutation{
		Method:  in.method,
		URL:     in.url,
		Headers: relay.EncodeHeaders(in.headers),
		Body:    relay.EncodeBody(in.body),
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "request.history.update", map[string]any{
		"record_id": req.ID,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Request updated",
		"item":    item,
	})
}

func (a *API) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "Unauthorized: missing bearer token")
		return
	}

	var req deleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.ID <= 0 {
		writeError(w, r, http.StatusBadRequest, "Request id is required")
		return
	}

	if err := a.history.Delete(r.Context(), req.ID, userID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "request.history.delete", map[string]any{
		"record_id": req.ID,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Request deleted",
	})
}
