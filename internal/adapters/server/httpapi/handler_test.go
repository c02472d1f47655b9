package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hylla/fieldboard/internal/adapters/server/common"
)

// stubBoardService records requests and returns configured fixtures.
type stubBoardService struct {
	boards       []common.BoardView
	lanes        common.BoardLanesView
	created      common.ItemView
	moved        common.MoveItemResult
	events       []common.ActivityEvent
	err          error
	lastBoardID  string
	lastArchived bool
	lastCreate   common.CreateItemRequest
	lastMove     common.MoveItemRequest
	lastActivity common.ActivityRequest
}

func (s *stubBoardService) ListBoards(context.Context) ([]common.BoardView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.boards, nil
}

func (s *stubBoardService) BoardLanes(_ context.Context, boardID string, includeArchived bool) (common.BoardLanesView, error) {
	s.lastBoardID = boardID
	s.lastArchived = includeArchived
	if s.err != nil {
		return common.BoardLanesView{}, s.err
	}
	return s.lanes, nil
}

func (s *stubBoardService) CreateItem(_ context.Context, req common.CreateItemRequest) (common.ItemView, error) {
	s.lastCreate = req
	if s.err != nil {
		return common.ItemView{}, s.err
	}
	return s.created, nil
}

func (s *stubBoardService) MoveItem(_ context.Context, req common.MoveItemRequest) (common.MoveItemResult, error) {
	s.lastMove = req
	if s.err != nil {
		return common.MoveItemResult{}, s.err
	}
	return s.moved, nil
}

func (s *stubBoardService) ListActivity(_ context.Context, req common.ActivityRequest) ([]common.ActivityEvent, error) {
	s.lastActivity = req
	if s.err != nil {
		return nil, s.err
	}
	return s.events, nil
}

func serve(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerListBoards(t *testing.T) {
	svc := &stubBoardService{boards: []common.BoardView{{ID: "jobs", Kind: "jobs", Name: "Jobs"}}}
	rec := serve(t, NewHandler(svc), http.MethodGet, "/boards", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got struct {
		Boards []common.BoardView `json:"boards"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(got.Boards) != 1 || got.Boards[0].ID != "jobs" {
		t.Fatalf("unexpected boards %#v", got.Boards)
	}
}

func TestHandlerBoardLanes(t *testing.T) {
	svc := &stubBoardService{lanes: common.BoardLanesView{
		Board: common.BoardView{ID: "jobs"},
		Lanes: []common.LaneView{{Column: common.ColumnView{ID: "A", Title: "A"}, Items: []common.ItemView{{ID: "1"}}}},
	}}
	rec := serve(t, NewHandler(svc), http.MethodGet, "/boards/jobs/lanes?include_archived=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if svc.lastBoardID != "jobs" || !svc.lastArchived {
		t.Fatalf("unexpected request board=%q archived=%v", svc.lastBoardID, svc.lastArchived)
	}
	var got common.BoardLanesView
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(got.Lanes) != 1 || got.Lanes[0].Items[0].ID != "1" {
		t.Fatalf("unexpected lanes %#v", got)
	}
}

func TestHandlerCreateItemUsesPathBoard(t *testing.T) {
	svc := &stubBoardService{created: common.ItemView{ID: "i1", BoardID: "jobs", Status: "A"}}
	rec := serve(t, NewHandler(svc), http.MethodPost, "/boards/jobs/items", `{"title":"Fix sink","value_cents":9900}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if svc.lastCreate.BoardID != "jobs" || svc.lastCreate.Title != "Fix sink" || svc.lastCreate.ValueCents != 9900 {
		t.Fatalf("unexpected create request %#v", svc.lastCreate)
	}
}

func TestHandlerCreateItemRejectsMismatchedBoard(t *testing.T) {
	svc := &stubBoardService{}
	rec := serve(t, NewHandler(svc), http.MethodPost, "/boards/jobs/items", `{"board_id":"leads","title":"x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandlerMoveItem(t *testing.T) {
	svc := &stubBoardService{moved: common.MoveItemResult{Item: common.ItemView{ID: "2", Status: "A"}, From: "B", Moved: true}}
	rec := serve(t, NewHandler(svc), http.MethodPost, "/items/2/move", `{"status":"A"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if svc.lastMove.ItemID != "2" || svc.lastMove.Status != "A" {
		t.Fatalf("unexpected move request %#v", svc.lastMove)
	}
	var got common.MoveItemResult
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !got.Moved || got.From != "B" {
		t.Fatalf("unexpected move result %#v", got)
	}
}

func TestHandlerActivity(t *testing.T) {
	svc := &stubBoardService{events: []common.ActivityEvent{{ID: 3, Operation: "move"}}}
	rec := serve(t, NewHandler(svc), http.MethodGet, "/boards/jobs/activity?limit=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if svc.lastActivity.BoardID != "jobs" || svc.lastActivity.Limit != 5 {
		t.Fatalf("unexpected activity request %#v", svc.lastActivity)
	}

	rec = serve(t, NewHandler(svc), http.MethodGet, "/boards/jobs/activity?limit=lots", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{name: "not found", err: fmt.Errorf("board lanes: %w", common.ErrNotFound), wantCode: http.StatusNotFound, wantBody: "not_found"},
		{name: "invalid", err: fmt.Errorf("create: %w", common.ErrInvalidRequest), wantCode: http.StatusBadRequest, wantBody: "invalid_request"},
		{name: "unavailable", err: common.ErrUnavailable, wantCode: http.StatusServiceUnavailable, wantBody: "service_unavailable"},
		{name: "internal", err: errors.New("disk on fire"), wantCode: http.StatusInternalServerError, wantBody: "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubBoardService{err: tc.err}
			rec := serve(t, NewHandler(svc), http.MethodGet, "/boards/jobs/lanes", "")
			if rec.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantCode)
			}
			var envelope ErrorEnvelope
			if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if envelope.Error.Code != tc.wantBody {
				t.Fatalf("code = %q, want %q", envelope.Error.Code, tc.wantBody)
			}
		})
	}
}

func TestHandlerRoutingFailures(t *testing.T) {
	svc := &stubBoardService{}
	cases := []struct {
		name     string
		method   string
		target   string
		body     string
		wantCode int
	}{
		{name: "unknown path", method: http.MethodGet, target: "/nope", wantCode: http.StatusNotFound},
		{name: "wrong method", method: http.MethodDelete, target: "/boards", wantCode: http.StatusMethodNotAllowed},
		{name: "unknown field", method: http.MethodPost, target: "/items/1/move", body: `{"status":"A","extra":1}`, wantCode: http.StatusBadRequest},
		{name: "trailing json", method: http.MethodPost, target: "/items/1/move", body: `{"status":"A"}{}`, wantCode: http.StatusBadRequest},
		{name: "bad bool", method: http.MethodGet, target: "/boards/jobs/lanes?include_archived=maybe", wantCode: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(t, NewHandler(svc), tc.method, tc.target, tc.body)
			if rec.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tc.wantCode, rec.Body.String())
			}
		})
	}
}

func TestHandlerWithoutService(t *testing.T) {
	rec := serve(t, NewHandler(nil), http.MethodGet, "/boards", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}
