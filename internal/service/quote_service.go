package service

import (
	"context"
	"errors"

	"bragawork/internal/events"
	"bragawork/internal/models"
	"bragawork/internal/repository/sqlstore"
	"bragawork/internal/util"
)

// DefaultCountryCode is used when the form leaves the dialing code empty.
const DefaultCountryCode = "+55"

type QuoteInput struct {
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	Email              string `json:"email"`
	CountryCode        string `json:"countryCode"`
	Phone              string `json:"phone"`
	ProjectDescription string `json:"projectDescription"`
}

type QuoteService struct {
	quotes    sqlstore.QuoteRepository
	publisher events.Publisher
}

func NewQuoteService(quotes sqlstore.QuoteRepository, publisher events.Publisher) *QuoteService {
	return &QuoteService{quotes: quotes, publisher: publisher}
}

func (s *QuoteService) Submit(ctx context.Context, in QuoteInput) (int64, error) {
	util.TrimAll(&in.FirstName, &in.LastName, &in.Email, &in.CountryCode, &in.Phone, &in.ProjectDescription)

	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Phone == "" || in.ProjectDescription == "" {
		return 0, reject(ErrInvalidInput, "Todos os campos são obrigatórios.")
	}
	if in.CountryCode == "" {
		in.CountryCode = DefaultCountryCode
	}

	q := &models.QuoteRequest{
		FirstName:          in.FirstName,
		LastName:           in.LastName,
		Email:              in.Email,
		CountryCode:        in.CountryCode,
		Phone:              in.Phone,
		ProjectDescription: in.ProjectDescription,
		Status:             models.QuoteStatusPending,
	}
	id, err := s.quotes.Create(ctx, q)
	if err != nil {
		return 0, err
	}

	util.Info("Quote request received", util.Int64("quote_id", id))
	events.Emit(ctx, s.publisher, events.New(events.QuoteSubmitted, id, "").
		With("email", q.Email).
		With("country_code", q.CountryCode))
	return id, nil
}

func (s *QuoteService) List(ctx context.Context) ([]models.QuoteRequest, error) {
	return s.quotes.List(ctx)
}

// Update sets the status and, when notes is non-empty, the admin notes.
func (s *QuoteService) Update(ctx context.Context, id ID, status, notes string, actor Actor) error {
	if id == 0 || status == "" {
		return reject(ErrInvalidInput, "ID e status são obrigatórios.")
	}
	st := models.QuoteStatus(status)
	if !st.Valid() {
		return reject(ErrInvalidInput, "Status inválido.")
	}

	var notesArg *string
	if notes != "" {
		notesArg = &notes
	}

	err := s.quotes.UpdateStatus(ctx, id.Int64(), st, notesArg)
	if errors.Is(err, sqlstore.ErrNotFound) {
		return reject(ErrNotFound, "Solicitação não encontrada.")
	}
	if err != nil {
		return err
	}

	util.Info("Quote request updated",
		util.Int64("quote_id", id.Int64()),
		util.String("status", status),
		util.String("admin", actor.Username))
	events.Emit(ctx, s.publisher, events.New(events.QuoteUpdated, id.Int64(), actor.Username).With("status", status))
	return nil
}

func (s *QuoteService) Delete(ctx context.Context, id ID, actor Actor) error {
	if id == 0 {
		return reject(ErrInvalidInput, "ID é obrigatório.")
	}

	err := s.quotes.Delete(ctx, id.Int64())
	if errors.Is(err, sqlstore.ErrNotFound) {
		return reject(ErrNotFound, "Solicitação não encontrada.")
	}
	if err != nil {
		return err
	}

	util.Info("Quote request deleted",
		util.Int64("quote_id", id.Int64()),
		util.String("admin", actor.Username))
	events.Emit(ctx, s.publisher, events.New(events.QuoteDeleted, id.Int64(), actor.Username))
	return nil
}
