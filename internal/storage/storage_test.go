package storage_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"photodesigner/internal/domain"
	"photodesigner/internal/storage"
)

func openDB(t *testing.T) *storage.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.New(filepath.Join(dir, "designer.db"), dir)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seed(t *testing.T, db *storage.DB) (*storage.DesignStore, *domain.Design) {
	t.Helper()
	projects := storage.NewProjectStore(db)
	if err := projects.CreateProject(&domain.Project{ID: "p1", Name: "Summer"}); err != nil {
		t.Fatalf("create project: %v", err)
	}
	designs := storage.NewDesignStore(db)
	d := &domain.Design{ID: "d1", ProjectID: "p1", Name: "Cover", Kind: domain.DesignKindPhotobook, CanvasWidth: 1600, CanvasHeight: 1200}
	if err := designs.CreateDesign(d); err != nil {
		t.Fatalf("create design: %v", err)
	}
	return designs, d
}

func image(id string, z int) *domain.CanvasObject {
	return &domain.CanvasObject{
		ID:       id,
		DesignID: "d1",
		Type:     domain.ObjectTypeImage,
		Frame:    domain.Frame{X: 10, Y: 20, Width: 200, Height: 100},
		Content:  &domain.ContentRect{X: -10, Y: 0, Width: 220, Height: 110},
		ZIndex:   z,
		Opacity:  1,
		Payload:  `{"src":"beach.jpg"}`,
	}
}

func TestNew_IsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "designer.db")
	for i := 0; i < 2; i++ {
		db, err := storage.New(path, dir)
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		db.Close()
	}
}

func TestProjectStore(t *testing.T) {
	db := openDB(t)
	s := storage.NewProjectStore(db)
	if err := s.CreateProject(&domain.Project{ID: "p1", Name: "Summer"}); err != nil {
		t.Fatal(err)
	}
	p, err := s.GetProject("p1")
	if err != nil || p.Name != "Summer" {
		t.Fatalf("get = %+v, %v", p, err)
	}
	list, _ := s.ListProjects()
	if len(list) != 1 {
		t.Errorf("list = %d projects", len(list))
	}
	if _, err := s.GetProject("nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing project err = %v", err)
	}
	if err := s.DeleteProject("p1"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteProject("p1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestDesignStore_ObjectRoundTrip(t *testing.T) {
	db := openDB(t)
	s, _ := seed(t, db)

	img := image("img", 1)
	text := &domain.CanvasObject{ID: "txt", DesignID: "d1", Type: domain.ObjectTypeText, Frame: domain.Frame{Width: 50, Height: 20}, ZIndex: 2}
	for _, o := range []*domain.CanvasObject{text, img} {
		if err := s.CreateObject(o); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.GetObject("img")
	if err != nil {
		t.Fatal(err)
	}
	if got.Content == nil || *got.Content != *img.Content {
		t.Errorf("content = %+v, want %+v", got.Content, img.Content)
	}
	if got.Payload != img.Payload || got.Frame != img.Frame {
		t.Errorf("object = %+v", got)
	}

	txt, _ := s.GetObject("txt")
	if txt.Content != nil {
		t.Error("text object grew a content rect")
	}

	list, _ := s.ListObjects("d1")
	if len(list) != 2 || list[0].ID != "img" || list[1].ID != "txt" {
		t.Errorf("paint order = %v", list)
	}
}

func TestDesignStore_UpdateObjectGeometry(t *testing.T) {
	db := openDB(t)
	s, _ := seed(t, db)
	s.CreateObject(image("img", 1))
	s.CreateObject(&domain.CanvasObject{ID: "txt", DesignID: "d1", Type: domain.ObjectTypeText, Frame: domain.Frame{Width: 50, Height: 20}})

	patch := domain.GeometryPatch{
		Width:        domain.F(300),
		Height:       domain.F(150),
		ContentWidth: domain.F(330),
		ContentX:     domain.F(-15),
	}
	for i := 0; i < 2; i++ {
		if err := s.UpdateObjectGeometry("img", patch); err != nil {
			t.Fatal(err)
		}
	}
	got, _ := s.GetObject("img")
	if got.Frame.Width != 300 || got.Frame.Height != 150 || got.Frame.X != 10 {
		t.Errorf("frame = %+v", got.Frame)
	}
	if got.Content.Width != 330 || got.Content.X != -15 || got.Content.Height != 110 {
		t.Errorf("content = %+v", got.Content)
	}

	// Content fields are ignored for objects without content.
	if err := s.UpdateObjectGeometry("txt", domain.GeometryPatch{X: domain.F(5), ContentWidth: domain.F(99)}); err != nil {
		t.Fatal(err)
	}
	txt, _ := s.GetObject("txt")
	if txt.Frame.X != 5 || txt.Content != nil {
		t.Errorf("txt = %+v content %+v", txt.Frame, txt.Content)
	}

	if err := s.UpdateObjectGeometry("ghost", domain.GeometryPatch{X: domain.F(1)}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing object err = %v", err)
	}
	if err := s.UpdateObjectGeometry("ghost", domain.GeometryPatch{}); err != nil {
		t.Errorf("empty patch err = %v", err)
	}
}

func TestDesignStore_ReplaceObjects(t *testing.T) {
	db := openDB(t)
	s, _ := seed(t, db)
	s.CreateObject(image("old", 1))

	if err := s.ReplaceObjects("d1", []domain.CanvasObject{*image("a", 1), *image("b", 2)}); err != nil {
		t.Fatal(err)
	}
	list, _ := s.ListObjects("d1")
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Errorf("objects = %v", list)
	}
	if _, err := s.GetObject("old"); !errors.Is(err, domain.ErrNotFound) {
		t.Error("old object survived replace")
	}
}

func TestDesignStore_Fingerprint(t *testing.T) {
	db := openDB(t)
	s, _ := seed(t, db)
	s.CreateObject(image("img", 1))

	before, err := s.Fingerprint("d1")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateViewport("d1", 40, 50, 2); err != nil {
		t.Fatal(err)
	}
	if fp, _ := s.Fingerprint("d1"); fp != before {
		t.Error("viewport change altered the fingerprint")
	}

	time.Sleep(2 * time.Millisecond)
	s.UpdateObjectGeometry("img", domain.GeometryPatch{X: domain.F(77)})
	if fp, _ := s.Fingerprint("d1"); fp == before {
		t.Error("geometry change left the fingerprint unchanged")
	}
}

func TestDesignStore_DeleteCascades(t *testing.T) {
	db := openDB(t)
	s, _ := seed(t, db)
	s.CreateObject(image("img", 1))

	if err := storage.NewProjectStore(db).DeleteProject("p1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetDesign("d1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("design survived project delete: %v", err)
	}
	if _, err := s.GetObject("img"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("object survived project delete: %v", err)
	}
}

func TestDesignStore_State(t *testing.T) {
	db := openDB(t)
	s, d := seed(t, db)
	s.CreateObject(image("img", 1))
	st, err := s.State(d.ID)
	if err != nil {
		t.Fatal(err)
	}
	if st.Design.Name != "Cover" || len(st.Objects) != 1 || st.Design.ViewportZoom != 1 {
		t.Errorf("state = %+v", st)
	}
}

func TestMirrorStore(t *testing.T) {
	db := openDB(t)
	s := storage.NewMirrorStore(db)
	target := &domain.MirrorTarget{ID: "m1", Name: "print", Driver: domain.MirrorDriverPostgres, Host: "db", Port: 5432, Enabled: true}
	if err := s.CreateTarget(target); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetTarget("m1")
	if err != nil || got.Driver != domain.MirrorDriverPostgres || !got.Enabled {
		t.Fatalf("get = %+v, %v", got, err)
	}

	if _, err := s.LastPush("m1", "d1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("LastPush before any push err = %v", err)
	}
	now := time.Now().UTC().Truncate(time.Second)
	for _, fp := range []string{"aaa", "bbb"} {
		if err := s.RecordPush(domain.MirrorPush{TargetID: "m1", DesignID: "d1", Fingerprint: fp, PushedAt: now}); err != nil {
			t.Fatal(err)
		}
	}
	p, err := s.LastPush("m1", "d1")
	if err != nil || p.Fingerprint != "bbb" {
		t.Errorf("last push = %+v, %v", p, err)
	}

	got.Enabled = false
	if err := s.UpdateTarget(got); err != nil {
		t.Fatal(err)
	}
	list, _ := s.ListTargets()
	if len(list) != 1 || list[0].Enabled {
		t.Errorf("targets = %+v", list)
	}
	if err := s.DeleteTarget("m1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LastPush("m1", "d1"); !errors.Is(err, domain.ErrNotFound) {
		t.Error("push record survived target delete")
	}
}
