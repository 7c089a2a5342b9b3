package scene_test

import (
	"testing"

	"photodesigner/internal/domain"
	"photodesigner/internal/scene"
)

func fixture() *scene.Scene {
	// Non-contiguous zIndex values, inserted out of paint order.
	return scene.New("design-1", []domain.CanvasObject{
		{ID: "c", ZIndex: 30, Frame: domain.Frame{X: 30}},
		{ID: "a", ZIndex: 2, Frame: domain.Frame{X: 10}},
		{ID: "b", ZIndex: 7, Frame: domain.Frame{X: 20}},
	})
}

func order(s *scene.Scene) string {
	var out string
	for _, o := range s.Objects() {
		out += o.ID
	}
	return out
}

func TestObjects_PaintOrder(t *testing.T) {
	if got := order(fixture()); got != "abc" {
		t.Errorf("paint order = %q, want abc", got)
	}
}

func TestChangeOrder(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		dir     scene.Direction
		want    string
		changed bool
	}{
		{"forward from bottom", "a", scene.Up, "bac", true},
		{"forward from middle", "b", scene.Up, "acb", true},
		{"forward at top is a no-op", "c", scene.Up, "abc", false},
		{"backward from top", "c", scene.Down, "acb", true},
		{"backward at bottom is a no-op", "a", scene.Down, "abc", false},
		{"unknown id", "zz", scene.Up, "abc", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := fixture()
			touched := s.ChangeOrder(tt.id, tt.dir)
			if (touched != nil) != tt.changed {
				t.Errorf("changed = %v, want %v", touched != nil, tt.changed)
			}
			if got := order(s); got != tt.want {
				t.Errorf("order = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChangeOrder_SwapsValues(t *testing.T) {
	s := fixture()
	touched := s.ChangeOrder("a", scene.Up)
	if len(touched) != 2 {
		t.Fatalf("expected 2 touched objects, got %d", len(touched))
	}
	a, _ := s.Get("a")
	b, _ := s.Get("b")
	if a.ZIndex != 7 || b.ZIndex != 2 {
		t.Errorf("zIndex a=%d b=%d, want 7/2", a.ZIndex, b.ZIndex)
	}
}

func TestChangeOrder_RoundTrip(t *testing.T) {
	for _, id := range []string{"a", "b"} {
		s := fixture()
		s.BringForward(id)
		s.SendBackward(id)
		if got := order(s); got != "abc" {
			t.Errorf("%s: forward then backward = %q, want abc", id, got)
		}
	}
}

func TestChangeOrder_EqualZIndex(t *testing.T) {
	s := scene.New("d", []domain.CanvasObject{{ID: "x", ZIndex: 1}, {ID: "y", ZIndex: 1}})
	if !s.BringForward("x") {
		t.Fatal("expected change")
	}
	if got := order(s); got != "yx" {
		t.Errorf("order = %q, want yx", got)
	}
	s.SendBackward("x")
	if got := order(s); got != "xy" {
		t.Errorf("order = %q, want xy", got)
	}
}

func TestDuplicate(t *testing.T) {
	s := fixture()
	s.SetDuplicateOffset(15)
	dup, ok := s.Duplicate("a")
	if !ok {
		t.Fatal("duplicate failed")
	}
	if dup.ID == "" || dup.ID == "a" {
		t.Errorf("duplicate id %q", dup.ID)
	}
	if dup.ZIndex != 4 {
		t.Errorf("zIndex = %d, want count+1 = 4", dup.ZIndex)
	}
	if dup.Frame.X != 25 || dup.Frame.Y != 15 {
		t.Errorf("offset frame %+v", dup.Frame)
	}
	if dup.DesignID != "design-1" {
		t.Errorf("designID = %q", dup.DesignID)
	}
	if s.Len() != 4 {
		t.Errorf("Len = %d, want 4", s.Len())
	}
	if _, ok := s.Duplicate("missing"); ok {
		t.Error("duplicated an unknown object")
	}
}

func TestDuplicate_ContentNotShared(t *testing.T) {
	s := scene.New("d", []domain.CanvasObject{{ID: "img", Content: &domain.ContentRect{Width: 300, Height: 300}}})
	dup, _ := s.Duplicate("img")
	w := 400.0
	s.Apply(dup.ID, domain.GeometryPatch{ContentWidth: &w})
	src, _ := s.Get("img")
	if src.Content.Width != 300 {
		t.Error("duplicate shares its content rect with the source")
	}
}

func TestDelete_ClearsSelection(t *testing.T) {
	s := fixture()
	s.Select("b")
	if !s.Delete("b") {
		t.Fatal("delete failed")
	}
	if s.Selected() != "" {
		t.Errorf("selection = %q, want cleared", s.Selected())
	}
	s.Select("a")
	s.Delete("c")
	if s.Selected() != "a" {
		t.Error("deleting another object cleared the selection")
	}
	if s.Delete("c") {
		t.Error("double delete reported success")
	}
}

func TestSelect(t *testing.T) {
	s := fixture()
	if s.Select("nope") {
		t.Error("selected unknown id")
	}
	if !s.Select("a") || s.Selected() != "a" {
		t.Error("select a failed")
	}
	if !s.Select("") || s.Selected() != "" {
		t.Error("clearing selection failed")
	}
}

func TestApply(t *testing.T) {
	s := fixture()
	x := 99.0
	got, ok := s.Apply("a", domain.GeometryPatch{X: &x})
	if !ok || got.Frame.X != 99 {
		t.Errorf("apply = %+v, %v", got.Frame, ok)
	}
	if _, ok := s.Apply("missing", domain.GeometryPatch{X: &x}); ok {
		t.Error("applied to unknown object")
	}
}

func TestAdd(t *testing.T) {
	s := fixture()
	o := s.Add(domain.CanvasObject{Type: domain.ObjectTypeText})
	if o.ID == "" || o.ZIndex != 4 || o.DesignID != "design-1" {
		t.Errorf("unexpected added object %+v", o)
	}
	if got := order(s); got[len(got)-len(o.ID):] != o.ID {
		t.Errorf("added object not on top: %q", got)
	}
}

func TestAdd_AboveSparseZIndex(t *testing.T) {
	s := scene.New("d", []domain.CanvasObject{{ID: "a", ZIndex: 5}, {ID: "b", ZIndex: 6}})
	o := s.Add(domain.CanvasObject{Type: domain.ObjectTypeSticker})
	if o.ZIndex != 7 {
		t.Errorf("zIndex = %d, want 7", o.ZIndex)
	}
	if got := order(s); got[len(got)-len(o.ID):] != o.ID {
		t.Errorf("added object not on top: %q", got)
	}
}

func TestDuplicate_KeepsCountPlusOne(t *testing.T) {
	s := scene.New("d", []domain.CanvasObject{{ID: "a", ZIndex: 5}, {ID: "b", ZIndex: 6}})
	dup, _ := s.Duplicate("a")
	if dup.ZIndex != 3 {
		t.Errorf("zIndex = %d, want count+1 = 3", dup.ZIndex)
	}
}
