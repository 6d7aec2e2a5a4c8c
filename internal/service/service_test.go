package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"bragawork/internal/config"
	"bragawork/internal/events"
	"bragawork/internal/hashing"
	"bragawork/internal/models"
	"bragawork/internal/repository/sqlstore"
	"bragawork/internal/session"
	"bragawork/internal/util"
)

func TestMain(m *testing.M) {
	util.SetLogger(zap.NewNop())
	os.Exit(m.Run())
}

type capture struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *capture) Publish(_ context.Context, e events.Event) error {
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
	return nil
}

func (c *capture) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.events))
	for i, e := range c.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	factory *ServiceFactory
	db      sqlstore.Engine
	events  *capture
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := sqlstore.Open(ctx, config.DatabaseConfig{Type: config.DBTypeSQLite, Path: ":memory:"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	hasher := hashing.NewHasher(config.HashingConfig{BcryptCost: 4})
	seed := config.SeedConfig{Username: "admin", Password: "admin123", FullName: "Administrador BragaWork", Email: "admin@bragawork.com"}
	if err := sqlstore.Bootstrap(ctx, db, hasher, seed); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	rec := &capture{}
	f := NewServiceFactory(db, hasher, session.NewMemoryRegistry(time.Hour), rec, config.UploadConfig{
		Dir:          t.TempDir(),
		MaxFileBytes: 5 << 20,
	})
	return &fixture{factory: f, db: db, events: rec}
}

var admin = Actor{UserID: 1, Username: "admin"}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool     { return &b }
func intPtr(n int) *int        { return &n }

func TestLogin(t *testing.T) {
	f := newFixture(t)
	auth := f.factory.AuthService()
	ctx := context.Background()

	res, err := auth.Login(ctx, "admin", "admin123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if len(res.Token) != 64 || res.User.FullName != "Administrador BragaWork" {
		t.Fatalf("unexpected login result %+v", res)
	}

	s, err := auth.Authenticate(ctx, res.Token)
	if err != nil || s.Username != "admin" {
		t.Fatalf("Authenticate = %+v, %v", s, err)
	}

	if err := auth.Logout(ctx, res.Token, ActorFrom(s)); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := auth.Authenticate(ctx, res.Token); !errors.Is(err, session.ErrUnauthorized) {
		t.Fatalf("token still valid after logout: %v", err)
	}

	got := f.events.types()
	if len(got) != 2 || got[0] != events.LoginSucceeded || got[1] != events.Logout {
		t.Fatalf("unexpected events %v", got)
	}
}

func TestLoginRejections(t *testing.T) {
	f := newFixture(t)
	auth := f.factory.AuthService()
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		kind     error
		message  string
	}{
		{"missing password", "admin", "", ErrInvalidInput, "Usuário e senha são obrigatórios."},
		{"missing username", "", "admin123", ErrInvalidInput, "Usuário e senha são obrigatórios."},
		{"wrong password", "admin", "nope", ErrInvalidCredentials, "Usuário ou senha incorretos."},
		{"unknown user", "ghost", "admin123", ErrInvalidCredentials, "Usuário ou senha incorretos."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Login(ctx, tt.username, tt.password)
			if !errors.Is(err, tt.kind) {
				t.Fatalf("expected %v, got %v", tt.kind, err)
			}
			if msg := PublicMessage(err, "fallback"); msg != tt.message {
				t.Fatalf("message = %q", msg)
			}
		})
	}

	if _, err := f.db.Exec(ctx, `UPDATE admin_users SET is_active = 0`); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := auth.Login(ctx, "admin", "admin123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("inactive admin logged in: %v", err)
	}
}

func TestSubmitQuote(t *testing.T) {
	f := newFixture(t)
	quotes := f.factory.QuoteService()
	ctx := context.Background()

	id, err := quotes.Submit(ctx, QuoteInput{
		FirstName: " Ana ", LastName: "Souza", Email: "ana@example.com",
		Phone: "11988887777", ProjectDescription: "Loja virtual",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	list, err := quotes.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("List = %v, %v", list, err)
	}
	q := list[0]
	if q.ID != id || q.FirstName != "Ana" || q.CountryCode != DefaultCountryCode || q.Status != models.QuoteStatusPending {
		t.Fatalf("unexpected stored quote %+v", q)
	}

	_, err = quotes.Submit(ctx, QuoteInput{FirstName: "Ana", LastName: "Souza", Email: "ana@example.com", Phone: "  "})
	if PublicMessage(err, "") != "Todos os campos são obrigatórios." {
		t.Fatalf("expected required-fields rejection, got %v", err)
	}
}

func TestSubmitQuoteRequiresEveryField(t *testing.T) {
	f := newFixture(t)
	quotes := f.factory.QuoteService()
	ctx := context.Background()

	complete := func() QuoteInput {
		return QuoteInput{
			FirstName: "Ana", LastName: "Souza", Email: "ana@example.com",
			Phone: "11988887777", ProjectDescription: "Loja virtual",
		}
	}
	tests := []struct {
		name string
		drop func(*QuoteInput)
	}{
		{"firstName", func(q *QuoteInput) { q.FirstName = "" }},
		{"lastName", func(q *QuoteInput) { q.LastName = " " }},
		{"email", func(q *QuoteInput) { q.Email = "" }},
		{"phone", func(q *QuoteInput) { q.Phone = "\t" }},
		{"projectDescription", func(q *QuoteInput) { q.ProjectDescription = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := complete()
			tt.drop(&in)
			_, err := quotes.Submit(ctx, in)
			if !errors.Is(err, ErrInvalidInput) || PublicMessage(err, "") != "Todos os campos são obrigatórios." {
				t.Fatalf("missing %s: got %v", tt.name, err)
			}
			n, err := sqlstore.NewQuoteRepository(f.db).Count(ctx)
			if err != nil || n != 0 {
				t.Fatalf("missing %s: %d rows stored, %v", tt.name, n, err)
			}
		})
	}
}

func TestUpdateAndDeleteQuote(t *testing.T) {
	f := newFixture(t)
	quotes := f.factory.QuoteService()
	ctx := context.Background()

	id, err := quotes.Submit(ctx, QuoteInput{
		FirstName: "Ana", LastName: "Souza", Email: "ana@example.com", CountryCode: "+351",
		Phone: "912345678", ProjectDescription: "Blog",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if err := quotes.Update(ctx, 0, "completed", "", admin); PublicMessage(err, "") != "ID e status são obrigatórios." {
		t.Fatalf("missing id: %v", err)
	}
	if err := quotes.Update(ctx, ID(id), "archived", "", admin); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown status accepted: %v", err)
	}
	if err := quotes.Update(ctx, ID(id), "in_progress", "ligar amanhã", admin); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := quotes.Update(ctx, ID(id), "completed", "", admin); err != nil {
		t.Fatalf("Update without notes: %v", err)
	}

	list, _ := quotes.List(ctx)
	if list[0].Status != models.QuoteStatusCompleted || list[0].AdminNotes == nil || *list[0].AdminNotes != "ligar amanhã" {
		t.Fatalf("empty notes must not clear stored notes: %+v", list[0])
	}

	if err := quotes.Update(ctx, 999, "completed", "", admin); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update of missing quote: %v", err)
	}
	if err := quotes.Delete(ctx, ID(id), admin); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := quotes.Delete(ctx, ID(id), admin); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete: %v", err)
	}
	if err := quotes.Delete(ctx, 0, admin); PublicMessage(err, "") != "ID é obrigatório." {
		t.Fatalf("missing id: %v", err)
	}
}

func TestDeriveVisibility(t *testing.T) {
	tests := []struct {
		status     string
		isActive   *bool
		wantStatus models.ProjectStatus
		wantActive bool
	}{
		{"", boolPtr(true), models.ProjectStatusApproved, true},
		{"", boolPtr(false), models.ProjectStatusCancelled, false},
		{"", nil, models.ProjectStatusPending, false},
		{"aprovado", nil, models.ProjectStatusApproved, true},
		{"cancelado", nil, models.ProjectStatusCancelled, false},
		{"pendente", boolPtr(true), models.ProjectStatusPending, true},
	}
	for _, tt := range tests {
		st, active := deriveVisibility(tt.status, tt.isActive)
		if st != tt.wantStatus || active != tt.wantActive {
			t.Errorf("deriveVisibility(%q, %v) = %q, %v; want %q, %v",
				tt.status, tt.isActive, st, active, tt.wantStatus, tt.wantActive)
		}
	}
}

func TestSaveProject(t *testing.T) {
	f := newFixture(t)
	projects := f.factory.ProjectService()
	ctx := context.Background()

	if _, err := projects.Save(ctx, ProjectInput{Title: "  "}, admin); PublicMessage(err, "") != "Título é obrigatório." {
		t.Fatalf("blank title accepted: %v", err)
	}
	if _, err := projects.Save(ctx, ProjectInput{Title: "x", Status: "publicado"}, admin); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown status accepted: %v", err)
	}
	if _, err := projects.Save(ctx, ProjectInput{Title: "x", MediaType: strPtr("gif")}, admin); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown media type accepted: %v", err)
	}

	id, err := projects.Save(ctx, ProjectInput{Title: "App Mobile"}, admin)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	all, _ := projects.List(ctx, true)
	var created *models.Project
	for i := range all {
		if all[i].ID == id {
			created = &all[i]
		}
	}
	if created == nil {
		t.Fatalf("project %d not in admin list", id)
	}
	if created.Status != models.ProjectStatusPending || created.IsActive ||
		created.MediaURL != PlaceholderMediaURL || created.MediaType != models.MediaTypeImage ||
		created.DisplayOrder != 0 || created.CreatedBy == nil || *created.CreatedBy != admin.UserID {
		t.Fatalf("unexpected defaults %+v", created)
	}

	public, _ := projects.List(ctx, false)
	for _, p := range public {
		if p.ID == id {
			t.Fatalf("pending project visible publicly")
		}
	}

	updatedID, err := projects.Save(ctx, ProjectInput{
		ID: ID(id), Title: "App Mobile", IsActive: boolPtr(true), DisplayOrder: intPtr(9),
	}, admin)
	if err != nil || updatedID != id {
		t.Fatalf("update Save = %d, %v", updatedID, err)
	}

	public, _ = projects.List(ctx, false)
	last := public[len(public)-1]
	if last.ID != id || last.Status != models.ProjectStatusApproved || last.MediaURL != PlaceholderMediaURL {
		t.Fatalf("approved project should be listed last by display order, got %+v", last)
	}

	if _, err := projects.Save(ctx, ProjectInput{ID: 9999, Title: "x"}, admin); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update of missing project: %v", err)
	}

	if err := projects.RecordView(ctx, ID(id)); err != nil {
		t.Fatalf("RecordView: %v", err)
	}
	if err := projects.Delete(ctx, ID(id), admin); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := projects.RecordView(ctx, ID(id)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("view of deleted project: %v", err)
	}
}

func TestUploadImage(t *testing.T) {
	f := newFixture(t)
	media := f.factory.MediaService()
	ctx := context.Background()

	media.now = func() time.Time { return time.UnixMilli(1700000000000) }
	img, err := media.Upload(ctx, "minha foto (1).png", "image/png", 4, strings.NewReader("\x89PNG"), admin)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.HasPrefix(img.Filename, "1700000000000-") || !strings.HasSuffix(img.Filename, "-minha_foto__1_.png") {
		t.Fatalf("unexpected filename %q", img.Filename)
	}
	if img.URL != "/uploads/projects/"+img.Filename {
		t.Fatalf("unexpected url %q", img.URL)
	}
	data, err := os.ReadFile(filepath.Join(media.dir, img.Filename))
	if err != nil || string(data) != "\x89PNG" {
		t.Fatalf("stored file = %q, %v", data, err)
	}

	_, err = media.Upload(ctx, "doc.pdf", "application/pdf", 4, strings.NewReader("%PDF"), admin)
	if !errors.Is(err, ErrUnsupportedMediaType) {
		t.Fatalf("pdf accepted: %v", err)
	}
	if PublicMessage(err, "") != "Tipo de arquivo não permitido. Use JPG, PNG, WEBP ou GIF." {
		t.Fatalf("unexpected rejection message %q", PublicMessage(err, ""))
	}
}

func TestUploadEnforcesSizeLimit(t *testing.T) {
	media := NewMediaService(t.TempDir(), 8, events.Nop{})
	ctx := context.Background()

	if _, err := media.Upload(ctx, "a.png", "image/png", 9, strings.NewReader("123456789"), admin); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("declared oversize accepted: %v", err)
	}
	// a lying size header is caught while copying
	if _, err := media.Upload(ctx, "a.png", "image/png", 1, strings.NewReader("123456789"), admin); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("actual oversize accepted: %v", err)
	}
	images, err := media.ListImages(ctx)
	if err != nil || len(images) != 0 {
		t.Fatalf("oversized upload left a file behind: %v, %v", images, err)
	}
}

func TestListImages(t *testing.T) {
	root := t.TempDir()
	media := NewMediaService(root, 5<<20, events.Nop{})
	ctx := context.Background()

	images, err := media.ListImages(ctx)
	if err != nil || images == nil || len(images) != 0 {
		t.Fatalf("missing dir should list empty, got %v, %v", images, err)
	}

	dir := filepath.Join(root, ProjectImagesSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	files := map[string]time.Duration{
		"old.jpg":   0,
		"new.WEBP":  2 * time.Hour,
		"mid.gif":   time.Hour,
		"notes.txt": 3 * time.Hour,
	}
	for name, offset := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(path, base.Add(offset), base.Add(offset)); err != nil {
			t.Fatal(err)
		}
	}

	images, err = media.ListImages(ctx)
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}
	want := []string{"new.WEBP", "mid.gif", "old.jpg"}
	if len(images) != len(want) {
		t.Fatalf("expected %v, got %+v", want, images)
	}
	for i, name := range want {
		if images[i].Filename != name || images[i].URL != "/uploads/projects/"+name {
			t.Fatalf("position %d: %+v", i, images[i])
		}
	}
}

func TestIDUnmarshal(t *testing.T) {
	var body struct {
		ID ID `json:"id"`
	}
	for raw, want := range map[string]ID{
		`{"id": 12}`:   12,
		`{"id": "12"}`: 12,
		`{"id": ""}`:   0,
		`{"id": null}`: 0,
		`{}`:           0,
	} {
		body.ID = 0
		if err := json.Unmarshal([]byte(raw), &body); err != nil {
			t.Fatalf("%s: %v", raw, err)
		}
		if body.ID != want {
			t.Fatalf("%s: got %d", raw, body.ID)
		}
	}

	for _, raw := range []string{`{"id": "abc"}`, `{"id": -1}`, `{"id": 1.5}`} {
		if err := json.Unmarshal([]byte(raw), &body); err == nil {
			t.Fatalf("%s: expected error", raw)
		}
	}
}
