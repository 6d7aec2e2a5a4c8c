package sqlstore

import (
	"context"
	"errors"
	"os"
	"testing"

	"bragawork/internal/config"
	"bragawork/internal/models"
	"bragawork/internal/util"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	util.SetLogger(zap.NewNop())
	os.Exit(m.Run())
}

type plainHasher struct{}

func (plainHasher) HashPassword(pw string) (string, error) { return "hashed:" + pw, nil }

var testSeed = config.SeedConfig{
	Username: "admin",
	Password: "admin123",
	FullName: "Administrador BragaWork",
	Email:    "admin@bragawork.com",
}

func openTestDB(t *testing.T) Engine {
	t.Helper()
	db, err := Open(context.Background(), config.DatabaseConfig{Type: config.DBTypeSQLite, Path: ":memory:"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func bootstrappedDB(t *testing.T) Engine {
	t.Helper()
	db := openTestDB(t)
	if err := Bootstrap(context.Background(), db, plainHasher{}, testSeed); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	return db
}

func strPtr(s string) *string { return &s }

func TestBootstrapSeedsOnce(t *testing.T) {
	ctx := context.Background()
	db := bootstrappedDB(t)

	// a second boot must not duplicate anything
	if err := Bootstrap(ctx, db, plainHasher{}, testSeed); err != nil {
		t.Fatalf("second Bootstrap: %v", err)
	}

	admin, err := NewAdminRepository(db).GetActiveByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetActiveByUsername: %v", err)
	}
	if admin.PasswordHash != "hashed:admin123" || admin.FullName != "Administrador BragaWork" {
		t.Fatalf("unexpected seeded admin %+v", admin)
	}
	if !admin.IsActive || admin.LastLogin != nil {
		t.Fatalf("seeded admin should be active without a login, got %+v", admin)
	}

	projects := NewProjectRepository(db)
	n, err := projects.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 sample projects, got %d", n)
	}

	list, err := projects.List(ctx, true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"Site Corporativo Moderno", "E-commerce Completo", "Portal de Notícias"}
	for i, p := range list {
		if p.Title != want[i] || p.Status != models.ProjectStatusApproved || !p.IsActive {
			t.Fatalf("sample project %d = %+v", i, p)
		}
	}
}

func TestBootstrapMigratesLegacyProjects(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	legacy := `CREATE TABLE projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title VARCHAR(200) NOT NULL,
		description TEXT NULL,
		media_url VARCHAR(500) NOT NULL,
		media_type VARCHAR(10) DEFAULT 'image',
		project_link VARCHAR(500) NULL,
		is_active BOOLEAN DEFAULT 1,
		display_order INTEGER DEFAULT 0,
		views_count INTEGER DEFAULT 0,
		created_by INTEGER NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(ctx, legacy); err != nil {
		t.Fatalf("create legacy table: %v", err)
	}
	if _, err := db.Exec(ctx, `INSERT INTO projects (title, media_url, is_active) VALUES ('on', 'a', 1), ('off', 'b', 0)`); err != nil {
		t.Fatalf("insert legacy rows: %v", err)
	}

	if err := Bootstrap(ctx, db, plainHasher{}, testSeed); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	ok, err := db.HasColumn(ctx, "projects", "status")
	if err != nil || !ok {
		t.Fatalf("status column missing after migration (err=%v)", err)
	}

	all, err := NewProjectRepository(db).List(ctx, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("sample projects must not be seeded over existing rows, got %d rows", len(all))
	}
	got := map[string]models.ProjectStatus{}
	for _, p := range all {
		got[p.Title] = p.Status
	}
	if got["on"] != models.ProjectStatusApproved || got["off"] != models.ProjectStatusCancelled {
		t.Fatalf("unexpected backfill %v", got)
	}
}

func TestAdminRepository(t *testing.T) {
	ctx := context.Background()
	db := bootstrappedDB(t)
	admins := NewAdminRepository(db)

	if _, err := admins.GetActiveByUsername(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	id, err := admins.Create(ctx, &models.AdminUser{
		Username: "editor", PasswordHash: "x", FullName: "Editor", Email: "editor@bragawork.com",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := admins.TouchLastLogin(ctx, id); err != nil {
		t.Fatalf("TouchLastLogin: %v", err)
	}
	u, err := admins.GetActiveByUsername(ctx, "editor")
	if err != nil {
		t.Fatalf("GetActiveByUsername: %v", err)
	}
	if u.ID != id || u.LastLogin == nil {
		t.Fatalf("last login not recorded: %+v", u)
	}

	if _, err := db.Exec(ctx, `UPDATE admin_users SET is_active = 0 WHERE id = ?`, id); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := admins.GetActiveByUsername(ctx, "editor"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("inactive admin must not be returned, got %v", err)
	}

	if err := admins.TouchLastLogin(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestQuoteRepositoryOrdering(t *testing.T) {
	ctx := context.Background()
	db := bootstrappedDB(t)
	quotes := NewQuoteRepository(db)

	newQuote := func(name string) int64 {
		t.Helper()
		id, err := quotes.Create(ctx, &models.QuoteRequest{
			FirstName: name, LastName: "Silva", Email: name + "@example.com",
			CountryCode: "+55", Phone: "11999999999", ProjectDescription: "site",
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		return id
	}

	done := newQuote("done")
	pendingOld := newQuote("pending-old")
	working := newQuote("working")
	pendingNew := newQuote("pending-new")

	if err := quotes.UpdateStatus(ctx, done, models.QuoteStatusCompleted, strPtr("entregue")); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if err := quotes.UpdateStatus(ctx, working, models.QuoteStatusInProgress, nil); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	list, err := quotes.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	wantOrder := []int64{pendingNew, pendingOld, working, done}
	if len(list) != len(wantOrder) {
		t.Fatalf("expected %d quotes, got %d", len(wantOrder), len(list))
	}
	for i, id := range wantOrder {
		if list[i].ID != id {
			t.Fatalf("position %d: want id %d, got %d (%s)", i, id, list[i].ID, list[i].FirstName)
		}
	}

	last := list[3]
	if last.AdminNotes == nil || *last.AdminNotes != "entregue" {
		t.Fatalf("admin notes not stored: %+v", last)
	}
	if list[2].AdminNotes != nil {
		t.Fatalf("nil notes must leave admin_notes untouched, got %q", *list[2].AdminNotes)
	}
}

func TestQuoteRepositoryMissingRows(t *testing.T) {
	ctx := context.Background()
	quotes := NewQuoteRepository(bootstrappedDB(t))

	if err := quotes.UpdateStatus(ctx, 42, models.QuoteStatusRejected, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateStatus on missing row: %v", err)
	}
	if err := quotes.Delete(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete on missing row: %v", err)
	}

	list, err := quotes.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected an empty non-nil list, got %#v", list)
	}
}

func TestProjectRepositoryUpdateKeepsUnsetFields(t *testing.T) {
	ctx := context.Background()
	projects := NewProjectRepository(bootstrappedDB(t))

	p := &models.Project{
		Title:        "Landing",
		Description:  strPtr("original"),
		MediaURL:     "https://cdn.example.com/a.png",
		MediaType:    models.MediaTypeImage,
		ProjectLink:  strPtr("https://example.com"),
		Status:       models.ProjectStatusPending,
		DisplayOrder: 5,
	}
	id, err := projects.Create(ctx, p)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	err = projects.Update(ctx, ProjectUpdate{
		ID:       id,
		Title:    "Landing v2",
		Status:   models.ProjectStatusApproved,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := projects.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Landing v2" || got.Status != models.ProjectStatusApproved || !got.IsActive {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.MediaURL != p.MediaURL || got.DisplayOrder != 5 || *got.Description != "original" || *got.ProjectLink != "https://example.com" {
		t.Fatalf("unset fields were overwritten: %+v", got)
	}

	order := 0
	video := models.MediaTypeVideo
	err = projects.Update(ctx, ProjectUpdate{
		ID: id, Title: "Landing v2", MediaType: &video, DisplayOrder: &order,
		Status: models.ProjectStatusCancelled,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ = projects.Get(ctx, id)
	if got.MediaType != models.MediaTypeVideo || got.DisplayOrder != 0 || got.IsActive {
		t.Fatalf("explicit fields not applied: %+v", got)
	}

	if err := projects.Update(ctx, ProjectUpdate{ID: 999, Title: "x", Status: models.ProjectStatusPending}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update on missing row: %v", err)
	}
}

func TestProjectRepositoryListAndViews(t *testing.T) {
	ctx := context.Background()
	projects := NewProjectRepository(bootstrappedDB(t))

	hidden := &models.Project{
		Title: "Rascunho", MediaURL: "x", MediaType: models.MediaTypeImage,
		Status: models.ProjectStatusPending, DisplayOrder: 0,
	}
	hiddenID, err := projects.Create(ctx, hidden)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	public, err := projects.List(ctx, true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, p := range public {
		if p.Status != models.ProjectStatusApproved {
			t.Fatalf("public list leaked %+v", p)
		}
	}

	all, err := projects.List(ctx, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != len(public)+1 || all[0].ID != hiddenID {
		t.Fatalf("admin list should include the pending project first by display order, got %+v", all)
	}

	if err := projects.IncrementViews(ctx, hiddenID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("views on a pending project: %v", err)
	}
	if err := projects.IncrementViews(ctx, public[0].ID); err != nil {
		t.Fatalf("IncrementViews: %v", err)
	}
	got, _ := projects.Get(ctx, public[0].ID)
	if got.ViewsCount != 1 {
		t.Fatalf("expected 1 view, got %d", got.ViewsCount)
	}

	if err := projects.Delete(ctx, hiddenID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := projects.Get(ctx, hiddenID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete: %v", err)
	}
	if err := projects.Delete(ctx, hiddenID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete: %v", err)
	}
}
