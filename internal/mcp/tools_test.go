package mcpserver

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"photodesigner/internal/domain"
	"photodesigner/internal/secret"
	"photodesigner/internal/service"
)

func newTestServer(t *testing.T) (*Server, *service.Stack, *domain.Design) {
	t.Helper()
	stack, err := service.OpenStack(t.TempDir(), secret.NewMemoryStore(), service.NopEmitter{})
	if err != nil {
		t.Fatalf("open stack: %v", err)
	}
	t.Cleanup(func() { stack.Close() })

	p, err := stack.Designs.CreateProject("Summer")
	if err != nil {
		t.Fatal(err)
	}
	d, err := stack.Designs.CreateDesign(p.ID, "Cover", domain.DesignKindPhotobook, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	s := New(Deps{Designs: stack.Designs, Editors: stack.Editors, Mirrors: stack.Mirrors})
	return s, stack, d
}

func call(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("tool error: %v", err)
	}
	return res
}

func stored(t *testing.T, stack *service.Stack, designID, objectID string) domain.CanvasObject {
	t.Helper()
	st, err := stack.Designs.LoadDesign(designID)
	if err != nil {
		t.Fatal(err)
	}
	for _, o := range st.Objects {
		if o.ID == objectID {
			return o
		}
	}
	t.Fatalf("object %s not stored", objectID)
	return domain.CanvasObject{}
}

func TestResolveDesignID_RequiresActiveDesign(t *testing.T) {
	s, _, _ := newTestServer(t)
	if _, err := s.resolveDesignID(map[string]any{}); err == nil {
		t.Fatal("expected error without an active design")
	}
	if id, _ := s.resolveDesignID(map[string]any{"designId": "d9"}); id != "d9" {
		t.Errorf("id = %q", id)
	}
}

func TestObjectTools_GesturesPersist(t *testing.T) {
	s, stack, d := newTestServer(t)
	call(t, s.handleOpenDesign, map[string]any{"designId": d.ID})

	call(t, s.handleAddObject, map[string]any{"type": "image", "width": 400.0, "height": 300.0, "payload": `{"src":"beach.jpg"}`})
	ed, err := stack.Editors.Get(d.ID)
	if err != nil {
		t.Fatal(err)
	}
	objects := ed.Objects()
	if len(objects) != 1 {
		t.Fatalf("objects = %d, want 1", len(objects))
	}
	id := objects[0].ID
	if o := stored(t, stack, d.ID, id); o.Frame.X != Padding || o.Frame.Y != Padding || o.Content == nil {
		t.Errorf("auto-placed object = %+v", o)
	}

	call(t, s.handleMoveObject, map[string]any{"objectId": id, "x": 200.0, "y": 100.0})
	if o := stored(t, stack, d.ID, id); o.Frame.X != 200 || o.Frame.Y != 100 {
		t.Errorf("after move frame = %+v", o.Frame)
	}

	call(t, s.handleResizeObject, map[string]any{"objectId": id, "handle": "se", "dx": 100.0})
	o := stored(t, stack, d.ID, id)
	if o.Frame.Width != 500 || o.Frame.Height != 375 || o.Frame.X != 200 {
		t.Errorf("after resize frame = %+v", o.Frame)
	}
	if !o.Content.Covers(o.Frame.Width, o.Frame.Height) {
		t.Errorf("content %+v no longer covers the frame", o.Content)
	}

	call(t, s.handleRotateObject, map[string]any{"objectId": id, "rotation": 30.0})
	if o := stored(t, stack, d.ID, id); o.Frame.Rotation != 30 {
		t.Errorf("rotation = %g, want 30", o.Frame.Rotation)
	}
	call(t, s.handleRotateObject, map[string]any{"objectId": id, "rotation": -10.0})
	if o := stored(t, stack, d.ID, id); o.Frame.Rotation != -10 {
		t.Errorf("rotation = %g, want -10", o.Frame.Rotation)
	}

	if ed.ActiveGestures() != 0 {
		t.Errorf("gestures left running: %d", ed.ActiveGestures())
	}
}

func TestObjectTools_ResizeAtZoomUsesRawTravel(t *testing.T) {
	s, stack, d := newTestServer(t)
	call(t, s.handleOpenDesign, map[string]any{"designId": d.ID})
	call(t, s.handleAddObject, map[string]any{"type": "image", "x": 100.0, "y": 100.0, "width": 200.0, "height": 100.0})
	ed, _ := stack.Editors.Get(d.ID)
	ed.SetScale(2)
	id := ed.Objects()[0].ID

	call(t, s.handleResizeObject, map[string]any{"objectId": id, "handle": "se", "dx": 50.0})
	o := stored(t, stack, d.ID, id)
	if o.Frame.Width != 250 || o.Frame.Height != 125 {
		t.Errorf("frame = %vx%v, want 250x125", o.Frame.Width, o.Frame.Height)
	}
	if !o.Content.Covers(o.Frame.Width, o.Frame.Height) {
		t.Errorf("content %+v does not cover the frame", o.Content)
	}
}

func TestObjectTools_PanContentRefusedWithoutSlack(t *testing.T) {
	s, _, d := newTestServer(t)
	call(t, s.handleOpenDesign, map[string]any{"designId": d.ID})
	call(t, s.handleAddObject, map[string]any{"type": "image", "x": 100.0, "y": 100.0})

	ed, _ := s.editors.Get(d.ID)
	id := ed.Objects()[0].ID
	res := call(t, s.handlePanContent, map[string]any{"objectId": id, "dx": 30.0})
	if res.IsError {
		t.Fatal("refusal reported as tool error")
	}
	o, _ := ed.Object(id)
	if o.Content.X != 0 {
		t.Errorf("content moved to %g with no slack", o.Content.X)
	}
}

func TestObjectTools_StructuralChanges(t *testing.T) {
	s, stack, d := newTestServer(t)
	call(t, s.handleOpenDesign, map[string]any{"designId": d.ID})
	call(t, s.handleAddObject, map[string]any{"type": "shape", "x": 0.0, "y": 0.0, "width": 100.0, "height": 100.0})
	ed, _ := stack.Editors.Get(d.ID)
	id := ed.Objects()[0].ID

	call(t, s.handleDuplicateObject, map[string]any{"objectId": id})
	call(t, s.handleChangeOrder, map[string]any{"objectId": id, "direction": "up"})
	if o := stored(t, stack, d.ID, id); o.ZIndex != 2 {
		t.Errorf("zIndex after up = %d, want 2", o.ZIndex)
	}

	call(t, s.handleDeleteObject, map[string]any{"objectId": id})
	st, _ := stack.Designs.LoadDesign(d.ID)
	if len(st.Objects) != 1 {
		t.Errorf("stored objects = %d, want 1", len(st.Objects))
	}
}

func TestAddObject_RejectsUnknownType(t *testing.T) {
	s, _, d := newTestServer(t)
	var req mcp.CallToolRequest
	req.Params.Arguments = map[string]any{"designId": d.ID, "type": "video"}
	if _, err := s.handleAddObject(context.Background(), req); err == nil {
		t.Fatal("expected error for unknown type")
	}
}
