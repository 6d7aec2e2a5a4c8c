package service

import (
	"bragawork/internal/config"
	"bragawork/internal/events"
	"bragawork/internal/hashing"
	"bragawork/internal/repository/sqlstore"
	"bragawork/internal/session"
)

// ServiceFactory creates and manages service instances
type ServiceFactory struct {
	db        sqlstore.Engine
	hasher    *hashing.Hasher
	sessions  session.Registry
	publisher events.Publisher
	upload    config.UploadConfig

	authService    *AuthService
	quoteService   *QuoteService
	projectService *ProjectService
	mediaService   *MediaService
}

func NewServiceFactory(
	db sqlstore.Engine,
	hasher *hashing.Hasher,
	sessions session.Registry,
	publisher events.Publisher,
	upload config.UploadConfig,
) *ServiceFactory {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &ServiceFactory{
		db:        db,
		hasher:    hasher,
		sessions:  sessions,
		publisher: publisher,
		upload:    upload,
	}
}

// AuthService returns the auth service instance (singleton)
func (f *ServiceFactory) AuthService() *AuthService {
	if f.authService == nil {
		f.authService = NewAuthService(sqlstore.NewAdminRepository(f.db), f.hasher, f.sessions, f.publisher)
	}
	return f.authService
}

func (f *ServiceFactory) QuoteService() *QuoteService {
	if f.quoteService == nil {
		f.quoteService = NewQuoteService(sqlstore.NewQuoteRepository(f.db), f.publisher)
	}
	return f.quoteService
}

func (f *ServiceFactory) ProjectService() *ProjectService {
	if f.projectService == nil {
		f.projectService = NewProjectService(sqlstore.NewProjectRepository(f.db), f.publisher)
	}
	return f.projectService
}

func (f *ServiceFactory) MediaService() *MediaService {
	if f.mediaService == nil {
		f.mediaService = NewMediaService(f.upload.Dir, f.upload.MaxFileBytes, f.publisher)
	}
	return f.mediaService
}

// Sessions exposes the registry backing AuthService, for health reporting.
func (f *ServiceFactory) Sessions() session.Registry {
	return f.sessions
}
