package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/4TheSolutions/nest/pkg/mindmap"
	"github.com/4TheSolutions/nest/pkg/scene"
	"github.com/4TheSolutions/nest/pkg/storage"
)

func newTestServer(t *testing.T) (*Server, storage.Store) {
	t.Helper()
	store := storage.NewMemStore()
	doc := storage.NewDocument("test")
	s := New(log.New(io.Discard), store, doc)
	return s, store
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding response %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestAddRootPersists(t *testing.T) {
	s, store := newTestServer(t)
	h := s.Router()

	rr := do(t, h, http.MethodPost, "/api/map/roots", labelRequest{Label: "home"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rr.Code, rr.Body.String())
	}
	if got := decode[idResponse](t, rr); got.ID != 1 {
		t.Errorf("ID = %d, want 1", got.ID)
	}

	rr = do(t, h, http.MethodGet, "/api/map", nil)
	snap := decode[mindmap.Snapshot](t, rr)
	if len(snap.Nodes) != 1 || snap.Nodes[0].Label != "home" {
		t.Errorf("snapshot = %+v, want one node labelled home", snap.Nodes)
	}

	// The mutation must be committed to storage before the response.
	doc, err := store.Load(context.Background(), "test")
	if err != nil {
		t.Fatalf("Load after mutation: %v", err)
	}
	if len(doc.Map.Nodes) != 1 {
		t.Errorf("stored %d nodes, want 1", len(doc.Map.Nodes))
	}
}

func TestAddChildGrowsParent(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Router()

	do(t, h, http.MethodPost, "/api/map/roots", labelRequest{Label: "root"})
	rr := do(t, h, http.MethodPost, "/api/map/nodes/1/children", labelRequest{Label: "kid"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	rr = do(t, h, http.MethodGet, "/api/map", nil)
	snap := decode[mindmap.Snapshot](t, rr)
	if len(snap.Nodes) != 2 {
		t.Fatalf("snapshot has %d nodes, want 2", len(snap.Nodes))
	}
	root := snap.Nodes[0]
	if root.Radius <= mindmap.DefaultRadius {
		t.Errorf("root radius = %g, want grown past %g", root.Radius, mindmap.DefaultRadius)
	}
}

func TestNodeErrorsMapToStatus(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Router()
	do(t, h, http.MethodPost, "/api/map/roots", labelRequest{Label: "root"})

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"child of missing parent", http.MethodPost, "/api/map/nodes/99/children", labelRequest{Label: "x"}, http.StatusNotFound},
		{"insert parent over missing", http.MethodPost, "/api/map/nodes/99/parent", labelRequest{Label: "x"}, http.StatusNotFound},
		{"delete missing", http.MethodDelete, "/api/map/nodes/99", nil, http.StatusNotFound},
		{"resize missing", http.MethodPost, "/api/map/nodes/99/resize", resizeRequest{Delta: 10}, http.StatusNotFound},
		{"move missing", http.MethodPost, "/api/map/nodes/99/move", moveRequest{X: 1, Y: 2}, http.StatusNotFound},
		{"select missing", http.MethodPost, "/api/map/nodes/99/select", nil, http.StatusNotFound},
		{"child without selection", http.MethodPost, "/api/map/children", labelRequest{Label: "x"}, http.StatusConflict},
		{"parent without selection", http.MethodPost, "/api/map/parent", labelRequest{Label: "x"}, http.StatusConflict},
		{"delete without selection", http.MethodDelete, "/api/map/selection", nil, http.StatusConflict},
		{"empty label", http.MethodPost, "/api/map/roots", labelRequest{Label: "   "}, http.StatusUnprocessableEntity},
		{"bad id", http.MethodPost, "/api/map/nodes/abc/resize", resizeRequest{}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, tt.method, tt.path, tt.body)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestSelectionFlow(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Router()
	do(t, h, http.MethodPost, "/api/map/roots", labelRequest{Label: "root"})

	rr := do(t, h, http.MethodPost, "/api/map/nodes/1/select", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("select status = %d", rr.Code)
	}
	sel := decode[selectionResponse](t, rr)
	if sel.Selected == nil || *sel.Selected != 1 {
		t.Fatalf("Selected = %v, want 1", sel.Selected)
	}

	rr = do(t, h, http.MethodPost, "/api/map/children", labelRequest{Label: "kid"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("add child via selection = %d: %s", rr.Code, rr.Body.String())
	}

	// Selecting the same node again clears the selection.
	rr = do(t, h, http.MethodPost, "/api/map/nodes/1/select", nil)
	sel = decode[selectionResponse](t, rr)
	if sel.Selected != nil {
		t.Fatalf("Selected = %v, want nil after toggle", *sel.Selected)
	}
	rr = do(t, h, http.MethodPost, "/api/map/children", labelRequest{Label: "kid2"})
	if rr.Code != http.StatusConflict {
		t.Errorf("add child without selection = %d, want 409", rr.Code)
	}
}

func TestResizeAndMove(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Router()
	do(t, h, http.MethodPost, "/api/map/roots", labelRequest{Label: "root"})

	rr := do(t, h, http.MethodPost, "/api/map/nodes/1/resize", resizeRequest{Delta: mindmap.ResizeStep})
	if rr.Code != http.StatusOK {
		t.Fatalf("resize status = %d: %s", rr.Code, rr.Body.String())
	}
	rec := decode[mindmap.NodeRecord](t, rr)
	if want := mindmap.DefaultRadius + mindmap.ResizeStep; rec.Radius != want {
		t.Errorf("Radius = %g, want %g", rec.Radius, want)
	}

	rr = do(t, h, http.MethodPost, "/api/map/nodes/1/move", moveRequest{X: 500, Y: 400})
	if rr.Code != http.StatusOK {
		t.Fatalf("move status = %d: %s", rr.Code, rr.Body.String())
	}
	rec = decode[mindmap.NodeRecord](t, rr)
	if rec.X != 500 || rec.Y != 400 {
		t.Errorf("position = (%g, %g), want (500, 400)", rec.X, rec.Y)
	}
}

func TestDeleteAndClear(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Router()
	do(t, h, http.MethodPost, "/api/map/roots", labelRequest{Label: "root"})
	do(t, h, http.MethodPost, "/api/map/nodes/1/children", labelRequest{Label: "kid"})

	rr := do(t, h, http.MethodDelete, "/api/map/nodes/2", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}
	snap := decode[mindmap.Snapshot](t, do(t, h, http.MethodGet, "/api/map", nil))
	if len(snap.Nodes) != 1 {
		t.Errorf("after delete: %d nodes, want 1", len(snap.Nodes))
	}

	rr = do(t, h, http.MethodDelete, "/api/map", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("clear status = %d", rr.Code)
	}
	snap = decode[mindmap.Snapshot](t, do(t, h, http.MethodGet, "/api/map", nil))
	if len(snap.Nodes) != 0 {
		t.Errorf("after clear: %d nodes, want 0", len(snap.Nodes))
	}
}

func TestSceneAndSVGEndpoints(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Router()
	do(t, h, http.MethodPost, "/api/map/roots", labelRequest{Label: "root"})

	rr := do(t, h, http.MethodGet, "/api/map/scene", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("scene status = %d", rr.Code)
	}
	sc := decode[scene.Scene](t, rr)
	if len(sc.Circles) != 1 {
		t.Errorf("scene has %d circles, want 1", len(sc.Circles))
	}

	rr = do(t, h, http.MethodGet, "/api/map/svg", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("svg status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rr.Body.String(), "<svg") {
		t.Error("svg response missing <svg element")
	}
}

// countingStore verifies the commit-per-mutation contract at the HTTP
// boundary.
type countingStore struct {
	storage.Store
	saves int
}

func (c *countingStore) Save(ctx context.Context, doc *storage.Document) error {
	c.saves++
	return c.Store.Save(ctx, doc)
}

func TestOneCommitPerMutation(t *testing.T) {
	store := &countingStore{Store: storage.NewMemStore()}
	s := New(log.New(io.Discard), store, storage.NewDocument("test"))
	h := s.Router()

	do(t, h, http.MethodPost, "/api/map/roots", labelRequest{Label: "root"})
	do(t, h, http.MethodPost, "/api/map/nodes/1/children", labelRequest{Label: "kid"})
	do(t, h, http.MethodPost, "/api/map/nodes/1/resize", resizeRequest{Delta: 10})
	do(t, h, http.MethodGet, "/api/map", nil)
	do(t, h, http.MethodGet, "/api/map/scene", nil)

	if store.saves != 3 {
		t.Errorf("saves = %d, want 3 (one per mutation, none for reads)", store.saves)
	}
}

func TestLiveStreamsScene(t *testing.T) {
	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/live"
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing %s: %v", wsURL, err)
	}
	defer ws.Close()

	// The empty scene arrives on connect.
	var sc scene.Scene
	if err := ws.ReadJSON(&sc); err != nil {
		t.Fatalf("reading initial scene: %v", err)
	}
	if len(sc.Circles) != 0 {
		t.Fatalf("initial scene has %d circles, want 0", len(sc.Circles))
	}

	body := bytes.NewBufferString(`{"label":"home"}`)
	resp, err := http.Post(srv.URL+"/api/map/roots", "application/json", body)
	if err != nil {
		t.Fatalf("POST roots: %v", err)
	}
	resp.Body.Close()

	if err := ws.ReadJSON(&sc); err != nil {
		t.Fatalf("reading pushed scene: %v", err)
	}
	if len(sc.Circles) != 1 || sc.Circles[0].Label != "home" {
		t.Errorf("pushed scene = %+v, want one circle labelled home", sc.Circles)
	}
}
