// Package httpapi provides the REST HTTP adapter for the board service.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/hylla/fieldboard/internal/adapters/server/common"
)

// maxRequestBodyBytes limits decoded JSON payload size.
const maxRequestBodyBytes int64 = 1 << 20

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	boards common.BoardService
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// moveBody is the POST `/items/{id}/move` payload.
type moveBody struct {
	Status string `json:"status"`
}

// NewHandler constructs one HTTP API adapter.
func NewHandler(boards common.BoardService) *Handler {
	return &Handler{boards: boards}
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.boards == nil {
		writeErrorFrom(w, common.ErrUnavailable)
		return
	}
	segments := splitPath(r.URL.Path)
	switch {
	case len(segments) == 1 && segments[0] == "boards":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleListBoards(w, r)
	case len(segments) == 3 && segments[0] == "boards" && segments[2] == "lanes":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleBoardLanes(w, r, segments[1])
	case len(segments) == 3 && segments[0] == "boards" && segments[2] == "items":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleCreateItem(w, r, segments[1])
	case len(segments) == 3 && segments[0] == "boards" && segments[2] == "activity":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleActivity(w, r, segments[1])
	case len(segments) == 3 && segments[0] == "items" && segments[2] == "move":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleMoveItem(w, r, segments[1])
	default:
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: "endpoint not found",
		})
	}
}

// handleListBoards serves GET `/boards`.
func (h *Handler) handleListBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := h.boards.ListBoards(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"boards": boards,
	})
}

// handleBoardLanes serves GET `/boards/{id}/lanes`.
func (h *Handler) handleBoardLanes(w http.ResponseWriter, r *http.Request, boardID string) {
	includeArchived, err := parseBoolQuery(r, "include_archived")
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	lanes, err := h.boards.BoardLanes(r.Context(), boardID, includeArchived)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lanes)
}

// handleCreateItem serves POST `/boards/{id}/items`.
func (h *Handler) handleCreateItem(w http.ResponseWriter, r *http.Request, boardID string) {
	var req common.CreateItemRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	if req.BoardID != "" && req.BoardID != boardID {
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: "board_id does not match the request path",
			Context: map[string]any{"path_board_id": boardID, "body_board_id": req.BoardID},
		})
		return
	}
	req.BoardID = boardID
	item, err := h.boards.CreateItem(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// handleMoveItem serves POST `/items/{id}/move`.
func (h *Handler) handleMoveItem(w http.ResponseWriter, r *http.Request, itemID string) {
	var body moveBody
	if err := decodeJSONBody(r.Context(), w, r, &body); err != nil {
		writeErrorFrom(w, err)
		return
	}
	res, err := h.boards.MoveItem(r.Context(), common.MoveItemRequest{
		ItemID: itemID,
		Status: body.Status,
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleActivity serves GET `/boards/{id}/activity`.
func (h *Handler) handleActivity(w http.ResponseWriter, r *http.Request, boardID string) {
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, APIError{
				Code:    "invalid_request",
				Message: "limit must be an integer",
			})
			return
		}
		limit = parsed
	}
	events, err := h.boards.ListActivity(r.Context(), common.ActivityRequest{
		BoardID: boardID,
		Limit:   limit,
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events": events,
	})
}

// splitPath canonicalizes one request path into route segments.
func splitPath(path string) []string {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func parseBoolQuery(r *http.Request, key string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, common.ErrInvalidRequest)
	}
	return v, nil
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.Is(err, common.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrInvalidRequest):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrUnavailable):
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: err.Error(),
		})
	default:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeMethodNotAllowed writes a structured 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	})
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", common.ErrInvalidRequest)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return nil
	}
}
