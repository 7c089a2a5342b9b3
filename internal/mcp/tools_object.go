package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"

	"photodesigner/internal/domain"
	"photodesigner/internal/editor"
	"photodesigner/internal/geom"
	"photodesigner/internal/gesture"
	"photodesigner/internal/scene"
	"photodesigner/internal/transform"
)

// agentPointer is the pointer id used for gestures replayed on behalf of
// an agent. Host pointer ids are small non-negative integers.
const agentPointer = -1

// rotateArm is the distance in client px between the rotation center and
// the replayed pointer.
const rotateArm = 100.0

// ── Object Tools ───────────────────────────────────────────

func (s *Server) registerObjectTools() {
	s.mcp.AddTool(
		mcp.NewTool("add_object",
			mcp.WithDescription("Add an object to the active design. Without x/y it is placed on the first free spot of the page."),
			mcp.WithString("designId", mcp.Description("Design ID (defaults to the active design)")),
			mcp.WithString("type", mcp.Required(), mcp.Description("image, text, shape or sticker")),
			mcp.WithNumber("width", mcp.Description("Width in canvas px (default 400)")),
			mcp.WithNumber("height", mcp.Description("Height in canvas px (default 300)")),
			mcp.WithNumber("x", mcp.Description("Left edge in canvas px")),
			mcp.WithNumber("y", mcp.Description("Top edge in canvas px")),
			mcp.WithString("payload", mcp.Description("Type-specific JSON, e.g. {\"src\":\"beach.jpg\"} or {\"text\":\"Hello\"}")),
		),
		s.handleAddObject,
	)

	s.mcp.AddTool(
		mcp.NewTool("move_object",
			mcp.WithDescription("Drag an object to a new position. Edges snap to the page and to other objects."),
			mcp.WithString("designId", mcp.Description("Design ID (defaults to the active design)")),
			mcp.WithString("objectId", mcp.Required(), mcp.Description("Object ID")),
			mcp.WithNumber("x", mcp.Description("New left edge in canvas px")),
			mcp.WithNumber("y", mcp.Description("New top edge in canvas px")),
		),
		s.handleMoveObject,
	)

	s.mcp.AddTool(
		mcp.NewTool("resize_object",
			mcp.WithDescription("Drag a resize handle. Corner handles keep the aspect ratio; edge handles stretch one side. Image content keeps covering the frame."),
			mcp.WithString("designId", mcp.Description("Design ID (defaults to the active design)")),
			mcp.WithString("objectId", mcp.Required(), mcp.Description("Object ID")),
			mcp.WithString("handle", mcp.Description("n, s, e, w, ne, nw, se or sw (default se)")),
			mcp.WithNumber("dx", mcp.Description("Horizontal handle travel in px, not scaled by the zoom")),
			mcp.WithNumber("dy", mcp.Description("Vertical handle travel in px, not scaled by the zoom")),
		),
		s.handleResizeObject,
	)

	s.mcp.AddTool(
		mcp.NewTool("rotate_object",
			mcp.WithDescription("Rotate an object about its center to an absolute angle in degrees, clockwise."),
			mcp.WithString("designId", mcp.Description("Design ID (defaults to the active design)")),
			mcp.WithString("objectId", mcp.Required(), mcp.Description("Object ID")),
			mcp.WithNumber("rotation", mcp.Required(), mcp.Description("Target rotation in degrees")),
		),
		s.handleRotateObject,
	)

	s.mcp.AddTool(
		mcp.NewTool("pan_content",
			mcp.WithDescription("Move the photo inside an image frame. The content never uncovers the frame."),
			mcp.WithString("designId", mcp.Description("Design ID (defaults to the active design)")),
			mcp.WithString("objectId", mcp.Required(), mcp.Description("Object ID")),
			mcp.WithNumber("dx", mcp.Description("Horizontal travel in px, not scaled by the zoom")),
			mcp.WithNumber("dy", mcp.Description("Vertical travel in px, not scaled by the zoom")),
		),
		s.handlePanContent,
	)

	s.mcp.AddTool(
		mcp.NewTool("change_order",
			mcp.WithDescription("Move an object one step up or down in paint order."),
			mcp.WithString("designId", mcp.Description("Design ID (defaults to the active design)")),
			mcp.WithString("objectId", mcp.Required(), mcp.Description("Object ID")),
			mcp.WithString("direction", mcp.Required(), mcp.Description("up or down")),
		),
		s.handleChangeOrder,
	)

	s.mcp.AddTool(
		mcp.NewTool("duplicate_object",
			mcp.WithDescription("Copy an object on top of the paint order, offset from the original."),
			mcp.WithString("designId", mcp.Description("Design ID (defaults to the active design)")),
			mcp.WithString("objectId", mcp.Required(), mcp.Description("Object ID")),
		),
		s.handleDuplicateObject,
	)

	s.mcp.AddTool(
		mcp.NewTool("delete_object",
			mcp.WithDescription("Delete an object."),
			mcp.WithString("designId", mcp.Description("Design ID (defaults to the active design)")),
			mcp.WithString("objectId", mcp.Required(), mcp.Description("Object ID")),
		),
		s.handleDeleteObject,
	)
}

// ── Gesture replay ─────────────────────────────────────────

// toClient maps a canvas point to client px under the editor's view.
func toClient(ed *editor.Editor, p geom.Point) geom.Point {
	v := ed.View()
	return geom.Point{X: v.Pan.X + p.X*v.Scale, Y: v.Pan.Y + p.Y*v.Scale}
}

// centerOf returns the client position of an object's frame center.
func centerOf(ed *editor.Editor, o domain.CanvasObject) geom.Point {
	f := o.Frame
	return toClient(ed, geom.Point{X: f.X + f.Width/2, Y: f.Y + f.Height/2})
}

// drag replays a press, one move and a release on target.
func drag(ed *editor.Editor, t editor.Target, from, to geom.Point) error {
	if err := ed.PointerDown(t, gesture.PointerEvent{PointerID: agentPointer, Client: from}); err != nil {
		return err
	}
	ed.PointerMove(gesture.PointerEvent{PointerID: agentPointer, Client: to})
	ed.PointerUp(gesture.PointerEvent{PointerID: agentPointer, Client: to})
	return nil
}

// scaled converts a canvas px travel to client px. Only moves need it:
// resize and pan apply the raw pointer travel at any zoom.
func scaled(ed *editor.Editor, dx, dy float64) geom.Point {
	scale := ed.View().Scale
	return geom.Point{X: dx * scale, Y: dy * scale}
}

// objectFor resolves the editor and the object named in the tool args.
func (s *Server) objectFor(ctx context.Context, args map[string]any) (*editor.Editor, domain.CanvasObject, error) {
	_, ed, err := s.editorFor(ctx, args)
	if err != nil {
		return nil, domain.CanvasObject{}, err
	}
	id := getString(args, "objectId")
	o, ok := ed.Object(id)
	if !ok {
		return nil, domain.CanvasObject{}, fmt.Errorf("object %s: %w", id, domain.ErrNotFound)
	}
	return ed, o, nil
}

// gestureResult reports the object after a replayed gesture.
func gestureResult(ed *editor.Editor, id string, err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, editor.ErrRefused) {
		return textResult(fmt.Sprintf("Object %s refused the gesture (busy, or nothing to move)", id)), nil
	}
	if err != nil {
		return nil, err
	}
	o, _ := ed.Object(id)
	return jsonResult(o)
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleAddObject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	designID, ed, err := s.editorFor(ctx, args)
	if err != nil {
		return nil, err
	}
	t := domain.ObjectType(getString(args, "type"))
	switch t {
	case domain.ObjectTypeImage, domain.ObjectTypeText, domain.ObjectTypeShape, domain.ObjectTypeSticker:
	default:
		return nil, fmt.Errorf("unknown object type %q", t)
	}
	size := geom.Size{Width: getFloat(args, "width", 400), Height: getFloat(args, "height", 300)}
	if size.Width <= 0 || size.Height <= 0 {
		return nil, fmt.Errorf("object size must be positive, got %gx%g", size.Width, size.Height)
	}

	d := ed.Design()
	x, y := s.layout.NextPosition(ed.Objects(), geom.Size{Width: d.CanvasWidth, Height: d.CanvasHeight}, size.Width, size.Height)
	x = getFloat(args, "x", x)
	y = getFloat(args, "y", y)

	center := toClient(ed, geom.Point{X: x + size.Width/2, Y: y + size.Height/2})
	o, err := s.editors.Drop(ctx, designID, t, center, size, getString(args, "payload"))
	if err != nil {
		return nil, err
	}
	return jsonResult(o)
}

func (s *Server) handleMoveObject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ed, o, err := s.objectFor(ctx, args)
	if err != nil {
		return nil, err
	}
	dx := getFloat(args, "x", o.Frame.X) - o.Frame.X
	dy := getFloat(args, "y", o.Frame.Y) - o.Frame.Y
	from := centerOf(ed, o)
	err = drag(ed, editor.Target{ObjectID: o.ID, Kind: editor.TargetBody}, from, from.Add(scaled(ed, dx, dy)))
	return gestureResult(ed, o.ID, err)
}

func (s *Server) handleResizeObject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ed, o, err := s.objectFor(ctx, args)
	if err != nil {
		return nil, err
	}
	h := transform.Handle(getString(args, "handle"))
	if h == "" {
		h = transform.HandleSE
	}
	switch h {
	case transform.HandleN, transform.HandleS, transform.HandleE, transform.HandleW,
		transform.HandleNE, transform.HandleNW, transform.HandleSE, transform.HandleSW:
	default:
		return nil, fmt.Errorf("unknown resize handle %q", h)
	}
	from := centerOf(ed, o)
	to := from.Add(geom.Point{X: getFloat(args, "dx", 0), Y: getFloat(args, "dy", 0)})
	err = drag(ed, editor.Target{ObjectID: o.ID, Kind: editor.TargetResize, Handle: h}, from, to)
	return gestureResult(ed, o.ID, err)
}

func (s *Server) handleRotateObject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ed, o, err := s.objectFor(ctx, args)
	if err != nil {
		return nil, err
	}
	delta := geom.NormalizeDegrees(getFloat(args, "rotation", o.Frame.Rotation) - o.Frame.Rotation)
	if delta > 180 {
		delta -= 360
	}
	sin, cos := math.Sincos(geom.Radians(delta))
	center := centerOf(ed, o)
	from := center.Add(geom.Point{X: rotateArm})
	to := center.Add(geom.Point{X: rotateArm * cos, Y: rotateArm * sin})
	err = drag(ed, editor.Target{ObjectID: o.ID, Kind: editor.TargetRotate}, from, to)
	return gestureResult(ed, o.ID, err)
}

func (s *Server) handlePanContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ed, o, err := s.objectFor(ctx, args)
	if err != nil {
		return nil, err
	}
	from := centerOf(ed, o)
	to := from.Add(geom.Point{X: getFloat(args, "dx", 0), Y: getFloat(args, "dy", 0)})
	err = drag(ed, editor.Target{ObjectID: o.ID, Kind: editor.TargetContent}, from, to)
	return gestureResult(ed, o.ID, err)
}

func (s *Server) handleChangeOrder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ed, o, err := s.objectFor(ctx, args)
	if err != nil {
		return nil, err
	}
	moved, err := ed.ChangeOrder(o.ID, scene.Direction(getString(args, "direction")))
	if err != nil {
		return nil, err
	}
	if !moved {
		return textResult(fmt.Sprintf("Object %s is already at the %s end", o.ID, getString(args, "direction"))), nil
	}
	return jsonResult(ed.Objects())
}

func (s *Server) handleDuplicateObject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ed, o, err := s.objectFor(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	dup, err := ed.Duplicate(o.ID)
	if err != nil {
		return nil, err
	}
	return jsonResult(dup)
}

func (s *Server) handleDeleteObject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ed, o, err := s.objectFor(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	if err := ed.Delete(o.ID); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Deleted object %s", o.ID)), nil
}
