package sqlstore

import (
	"context"
	"fmt"

	"bragawork/internal/config"
	"bragawork/internal/models"
	"bragawork/internal/util"
)

// PasswordHasher is what Bootstrap needs to seed the admin account.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type sampleProject struct {
	title       string
	description string
	mediaURL    string
	order       int
}

var sampleProjects = []sampleProject{
	{
		title:       "Site Corporativo Moderno",
		description: "Website empresarial desenvolvido com tecnologias avançadas, design responsivo e otimizado para conversões.",
		mediaURL:    "https://images.unsplash.com/photo-1460925895917-afdab827c52f?ixlib=rb-4.0.3&auto=format&fit=crop&w=600&h=400&q=80",
		order:       1,
	},
	{
		title:       "E-commerce Completo",
		description: "Loja virtual robusta com carrinho de compras, sistema de pagamento integrado e painel administrativo.",
		mediaURL:    "https://images.unsplash.com/photo-1556742049-0cfed4f6a45d?ixlib=rb-4.0.3&auto=format&fit=crop&w=600&h=400&q=80",
		order:       2,
	},
	{
		title:       "Portal de Notícias",
		description: "Portal dinâmico com sistema de gestão de conteúdo e newsletter automática.",
		mediaURL:    "https://images.unsplash.com/photo-1504711434969-e33886168f5c?ixlib=rb-4.0.3&auto=format&fit=crop&w=600&h=400&q=80",
		order:       3,
	},
}

// Bootstrap creates the schema, migrates legacy project rows and seeds the
// admin account and sample projects. Every step is idempotent.
func Bootstrap(ctx context.Context, db Engine, hasher PasswordHasher, seed config.SeedConfig) error {
	if err := createTables(ctx, db); err != nil {
		return err
	}
	if err := migrateProjectStatus(ctx, db); err != nil {
		return err
	}
	if err := seedAdmin(ctx, db, hasher, seed); err != nil {
		return err
	}
	if err := seedProjects(ctx, db); err != nil {
		return err
	}

	util.Info("Database bootstrap complete", util.String("dialect", db.Dialect()))
	return nil
}

func createTables(ctx context.Context, db Engine) error {
	for _, stmt := range db.SchemaStatements() {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// migrateProjectStatus backfills status on databases created before the
// column existed, deriving it from is_active.
func migrateProjectStatus(ctx context.Context, db Engine) error {
	ok, err := db.HasColumn(ctx, "projects", "status")
	if err != nil {
		return fmt.Errorf("failed to inspect projects table: %w", err)
	}
	if ok {
		return nil
	}

	util.Info("Adding status column to projects")
	for _, stmt := range db.AddProjectStatusStatements() {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to add project status: %w", err)
		}
	}

	res, err := db.Exec(ctx, `
		UPDATE projects
		SET status = CASE WHEN is_active THEN 'aprovado' ELSE 'cancelado' END`)
	if err != nil {
		return fmt.Errorf("failed to backfill project status: %w", err)
	}
	util.Info("Project status backfilled", util.Int64("rows", res.RowsAffected))
	return nil
}

func seedAdmin(ctx context.Context, db Engine, hasher PasswordHasher, seed config.SeedConfig) error {
	admins := NewAdminRepository(db)

	exists, err := admins.ExistsByUsername(ctx, seed.Username)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := hasher.HashPassword(seed.Password)
	if err != nil {
		return err
	}
	_, err = admins.Create(ctx, &models.AdminUser{
		Username:     seed.Username,
		PasswordHash: hash,
		FullName:     seed.FullName,
		Email:        seed.Email,
	})
	return err
}

func seedProjects(ctx context.Context, db Engine) error {
	projects := NewProjectRepository(db)

	n, err := projects.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	for _, s := range sampleProjects {
		description := s.description
		p := &models.Project{
			Title:        s.title,
			Description:  &description,
			MediaURL:     s.mediaURL,
			MediaType:    models.MediaTypeImage,
			Status:       models.ProjectStatusApproved,
			IsActive:     true,
			DisplayOrder: s.order,
		}
		if _, err := projects.Create(ctx, p); err != nil {
			return err
		}
	}

	util.Info("Sample projects seeded", util.Int("count", len(sampleProjects)))
	return nil
}
