package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"photodesigner/internal/domain"
	"photodesigner/internal/secret"
	"photodesigner/internal/service"
	"photodesigner/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Fixtures
// ─────────────────────────────────────────────────────────────

type fixture struct {
	db       *storage.DB
	designs  *storage.DesignStore
	emitter  *service.MockEmitter
	svc      *service.DesignService
	mirrors  *service.MirrorService
	secrets  *secret.MemoryStore
	settings *service.SettingsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.New(filepath.Join(dir, "designer.db"), dir)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		db:      db,
		designs: storage.NewDesignStore(db),
		emitter: &service.MockEmitter{},
		secrets: secret.NewMemoryStore(),
	}
	f.svc = service.NewDesignService(storage.NewProjectStore(db), f.designs, f.emitter)
	f.mirrors = service.NewMirrorService(storage.NewMirrorStore(db), f.designs, f.secrets, f.emitter)
	f.settings = service.NewSettingsService(db)
	return f
}

func (f *fixture) design(t *testing.T) *domain.Design {
	t.Helper()
	p, err := f.svc.CreateProject("Summer")
	if err != nil {
		t.Fatal(err)
	}
	d, err := f.svc.CreateDesign(p.ID, "Cover", domain.DesignKindPhotobook, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func photo(id string, z int) domain.CanvasObject {
	return domain.CanvasObject{
		ID:      id,
		Type:    domain.ObjectTypeImage,
		Frame:   domain.Frame{X: 100, Y: 100, Width: 200, Height: 100},
		Content: &domain.ContentRect{Width: 200, Height: 100},
		ZIndex:  z,
		Opacity: 1,
	}
}

// ─────────────────────────────────────────────────────────────
// Push guard
// ─────────────────────────────────────────────────────────────

func TestPushGuard_TryLock(t *testing.T) {
	var g service.ExportedPushGuard

	if !g.TryLock("m1", "d1") {
		t.Fatal("expected first TryLock to succeed")
	}
	if g.TryLock("m1", "d1") {
		t.Fatal("expected second TryLock for the same push to fail")
	}
	if !g.TryLock("m1", "d2") {
		t.Fatal("expected TryLock for another design to succeed")
	}
	if !g.TryLock("m2", "d1") {
		t.Fatal("expected TryLock for another target to succeed")
	}
	g.Unlock("m1", "d1")
	g.Unlock("m1", "d2")
	g.Unlock("m2", "d1")

	if !g.TryLock("m1", "d1") {
		t.Fatal("expected TryLock to succeed after unlock")
	}
	g.Unlock("m1", "d1")
}

func TestPushGuard_WaitAll(t *testing.T) {
	var g service.ExportedPushGuard
	if !g.TryLock("m1", "d1") {
		t.Fatal("expected lock to succeed")
	}

	done := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		g.WaitAll(ctx)
		close(done)
	}()
	go func() {
		time.Sleep(20 * time.Millisecond)
		g.Unlock("m1", "d1")
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitAll timed out")
	}
}

// ─────────────────────────────────────────────────────────────
// DesignService
// ─────────────────────────────────────────────────────────────

func TestDesignService_CreateDesign(t *testing.T) {
	f := newFixture(t)
	d := f.design(t)
	if d.CanvasWidth != 1600 || d.CanvasHeight != 1200 || d.ViewportZoom != 1 {
		t.Errorf("design = %+v", d)
	}

	second, err := f.svc.CreateDesign(d.ProjectID, "Back", domain.DesignKindPostcard, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if second.Order != 1 || second.CanvasWidth != 1480 {
		t.Errorf("second design = %+v", second)
	}

	if _, err := f.svc.CreateDesign(d.ProjectID, "x", "poster", 0, 0); err == nil {
		t.Error("expected error for unknown kind")
	}
	if _, err := f.svc.CreateDesign("nope", "x", domain.DesignKindPostcard, 0, 0); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing project err = %v", err)
	}
}

func TestDesignService_EditorPersistence(t *testing.T) {
	f := newFixture(t)
	d := f.design(t)

	a, b := photo("a", 1), photo("b", 2)
	a.DesignID, b.DesignID = d.ID, d.ID
	for _, o := range []domain.CanvasObject{a, b} {
		if err := f.svc.SaveObject(o); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.svc.SaveGeometry("a", domain.GeometryPatch{X: domain.F(40), Rotation: domain.F(90)}); err != nil {
		t.Fatal(err)
	}
	a.ZIndex, b.ZIndex = 2, 1
	if err := f.svc.SaveOrder([]domain.CanvasObject{a, b}); err != nil {
		t.Fatal(err)
	}

	st, err := f.svc.LoadDesign(d.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(st.Objects) != 2 || st.Objects[0].ID != "b" || st.Objects[1].ID != "a" {
		t.Fatalf("paint order = %+v", st.Objects)
	}
	if got := st.Objects[1].Frame; got.X != 40 || got.Rotation != 90 || got.Y != 100 {
		t.Errorf("frame = %+v", got)
	}

	if err := f.svc.DeleteObject("b"); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.DeleteObject("b"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestDesignService_ImportIntoInbox(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc := domain.DesignDocument{
		Version: domain.DocumentVersion,
		Design:  domain.Design{ID: "imp", Name: "From disk", Kind: domain.DesignKindPostcard},
		Objects: []domain.CanvasObject{photo("", 1), {Type: domain.ObjectTypeText, Frame: domain.Frame{Width: 80, Height: 20}, Content: &domain.ContentRect{Width: 1, Height: 1}}},
	}
	d, err := f.svc.ImportDocument(ctx, doc)
	if err != nil {
		t.Fatal(err)
	}
	if d.ProjectID != service.InboxProjectID || d.CanvasWidth != 1480 {
		t.Errorf("design = %+v", d)
	}

	st, err := f.svc.LoadDesign("imp")
	if err != nil {
		t.Fatal(err)
	}
	if len(st.Objects) != 2 {
		t.Fatalf("objects = %d", len(st.Objects))
	}
	for _, o := range st.Objects {
		if o.ID == "" {
			t.Error("imported object has no id")
		}
		if o.Type == domain.ObjectTypeText && o.Content != nil {
			t.Error("text object kept a content rect")
		}
	}
	if n := len(f.emitter.Named(service.EventDesignImported)); n != 1 {
		t.Errorf("design:imported emitted %d times", n)
	}

	// Importing again replaces the objects of the same design.
	doc.Objects = doc.Objects[:1]
	doc.Design.Name = "Renamed"
	if _, err := f.svc.ImportDocument(ctx, doc); err != nil {
		t.Fatal(err)
	}
	st, _ = f.svc.LoadDesign("imp")
	if len(st.Objects) != 1 || st.Design.Name != "Renamed" {
		t.Errorf("after reimport = %+v", st)
	}
}

func TestDesignService_ImportRejectsNewerVersion(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ImportDocument(context.Background(), domain.DesignDocument{Version: domain.DocumentVersion + 1})
	if err == nil {
		t.Fatal("expected error for newer document version")
	}
}

func TestDesignService_ExportDocument(t *testing.T) {
	f := newFixture(t)
	d := f.design(t)
	o := photo("a", 1)
	o.DesignID = d.ID
	f.svc.SaveObject(o)

	doc, err := f.svc.ExportDocument(d.ID)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Version != domain.DocumentVersion || doc.Design.ID != d.ID || len(doc.Objects) != 1 {
		t.Errorf("document = %+v", doc)
	}
}

// ─────────────────────────────────────────────────────────────
// SettingsService
// ─────────────────────────────────────────────────────────────

func TestSettingsService_Defaults(t *testing.T) {
	f := newFixture(t)
	if got := f.settings.Load(); got != service.DefaultSettings() {
		t.Errorf("settings = %+v", got)
	}
	if ws := f.settings.LoadWindowSize(); ws.Width != 1280 || ws.Height != 800 {
		t.Errorf("window = %+v", ws)
	}
}

func TestSettingsService_SaveLoad(t *testing.T) {
	f := newFixture(t)
	want := service.Settings{SnapThreshold: 8, MinScale: 0.25, MaxScale: 4, DuplicateOffset: 20, InboxDir: "/tmp/inbox"}
	if err := f.settings.Save(want); err != nil {
		t.Fatal(err)
	}
	if got := f.settings.Load(); got != want {
		t.Errorf("settings = %+v, want %+v", got, want)
	}

	if err := f.settings.Save(service.Settings{MinScale: 2, MaxScale: 1}); err == nil {
		t.Error("expected error for inverted zoom limits")
	}

	if err := f.settings.SaveWindowSize(1600, 900); err != nil {
		t.Fatal(err)
	}
	if ws := f.settings.LoadWindowSize(); ws.Width != 1600 || ws.Height != 900 {
		t.Errorf("window = %+v", ws)
	}
}

// ─────────────────────────────────────────────────────────────
// MirrorService
// ─────────────────────────────────────────────────────────────

func sqliteTarget(path string) service.MirrorTargetInput {
	return service.MirrorTargetInput{Name: "renderer", Driver: domain.MirrorDriverSQLite, Host: path, Enabled: true}
}

func TestMirrorService_PushSkipsUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.design(t)
	o := photo("a", 1)
	o.DesignID = d.ID
	f.svc.SaveObject(o)

	target, err := f.mirrors.CreateTarget(sqliteTarget(filepath.Join(t.TempDir(), "mirror.db")))
	if err != nil {
		t.Fatal(err)
	}

	status := func() string {
		t.Helper()
		res, err := f.mirrors.PushDesign(ctx, d.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(res) != 1 || res[0].TargetID != target.ID {
			t.Fatalf("results = %+v", res)
		}
		return res[0].Status
	}

	if s := status(); s != service.PushStatusPushed {
		t.Fatalf("first push = %s", s)
	}
	if s := status(); s != service.PushStatusUnchanged {
		t.Errorf("second push = %s", s)
	}
	// Viewport changes are not content changes.
	f.svc.SaveViewport(d.ID, 10, 10, 2)
	if s := status(); s != service.PushStatusUnchanged {
		t.Errorf("push after viewport change = %s", s)
	}

	time.Sleep(2 * time.Millisecond)
	f.svc.SaveGeometry("a", domain.GeometryPatch{X: domain.F(7)})
	if s := status(); s != service.PushStatusPushed {
		t.Errorf("push after edit = %s", s)
	}
	if n := len(f.emitter.Named(service.EventMirrorPushed)); n != 2 {
		t.Errorf("mirror:pushed emitted %d times", n)
	}
}

func TestMirrorService_FailureIsReported(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.design(t)

	bad := sqliteTarget(filepath.Join(t.TempDir(), "missing", "dir", "mirror.db"))
	if _, err := f.mirrors.CreateTarget(bad); err != nil {
		t.Fatal(err)
	}
	disabled := sqliteTarget(filepath.Join(t.TempDir(), "off.db"))
	disabled.Enabled = false
	if _, err := f.mirrors.CreateTarget(disabled); err != nil {
		t.Fatal(err)
	}

	res, err := f.mirrors.PushDesign(ctx, d.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 || res[0].Status != service.PushStatusFailed || res[0].Error == "" {
		t.Fatalf("results = %+v", res)
	}
	if n := len(f.emitter.Named(service.EventMirrorFailed)); n != 1 {
		t.Errorf("mirror:failed emitted %d times", n)
	}

	if _, err := f.mirrors.PushDesign(ctx, "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing design err = %v", err)
	}
}

func TestMirrorService_Passwords(t *testing.T) {
	f := newFixture(t)
	in := service.MirrorTargetInput{Name: "print", Driver: domain.MirrorDriverPostgres, Host: "db", Password: "s3cret"}
	target, err := f.mirrors.CreateTarget(in)
	if err != nil {
		t.Fatal(err)
	}
	if pw, _ := f.secrets.Get(target.ID); string(pw) != "s3cret" {
		t.Errorf("stored password = %q", pw)
	}

	in.Password = ""
	in.Name = "print-2"
	if err := f.mirrors.UpdateTarget(target.ID, in); err != nil {
		t.Fatal(err)
	}
	if pw, _ := f.secrets.Get(target.ID); string(pw) != "s3cret" {
		t.Error("empty password replaced the stored one")
	}

	if err := f.mirrors.DeleteTarget(target.ID); err != nil {
		t.Fatal(err)
	}
	if pw, _ := f.secrets.Get(target.ID); len(pw) != 0 {
		t.Error("password survived target delete")
	}

	if _, err := f.mirrors.CreateTarget(service.MirrorTargetInput{Driver: "oracle", Host: "db"}); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestMirrorService_Autosave(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.mirrors.StartAutosave(ctx, "not a spec"); err == nil {
		t.Error("expected error for invalid cron spec")
	}
	if err := f.mirrors.StartAutosave(ctx, "@every 1h"); err != nil {
		t.Fatal(err)
	}
	if err := f.mirrors.StartAutosave(ctx, ""); err != nil {
		t.Fatal(err)
	}
	f.mirrors.Stop()
	f.mirrors.WaitRunning(ctx)
}

func TestMirrorService_PushAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.design(t)
	if _, err := f.svc.CreateDesign(d.ProjectID, "Back", domain.DesignKindPhotobook, 0, 0); err != nil {
		t.Fatal(err)
	}

	// Nothing to do without targets.
	if res, err := f.mirrors.PushAll(ctx); err != nil || len(res) != 0 {
		t.Fatalf("PushAll without targets = %+v, %v", res, err)
	}

	f.mirrors.CreateTarget(sqliteTarget(filepath.Join(t.TempDir(), "mirror.db")))
	res, err := f.mirrors.PushAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 2 {
		t.Fatalf("results = %+v", res)
	}
	for _, r := range res {
		if r.Status != service.PushStatusPushed {
			t.Errorf("%s = %s %s", r.DesignID, r.Status, r.Error)
		}
	}
}
