package service

import (
	"go-bank-ledger/logger"
	"go-bank-ledger/model"
	"go-bank-ledger/notifier"
	"go-bank-ledger/repository"
)

// SupportService handles customer support queries: persist first, then alert
// the admin mailbox. The alert is best effort and can never fail a submission
// that already made it to storage.
type SupportService struct {
	queryRepo  repository.IQueryRepository
	notifier   notifier.Notifier
	adminEmail string
}

func NewSupportService(queryRepo repository.IQueryRepository, n notifier.Notifier, adminEmail string) *SupportService {
	return &SupportService{
		queryRepo:  queryRepo,
		notifier:   n,
		adminEmail: adminEmail,
	}
}

// SubmitQuery persists the query and forwards it to the admin mailbox
// asynchronously.
func (s *SupportService) SubmitQuery(req model.CreateQueryRequest) (*model.SupportQuery, error) {
	query := &model.SupportQuery{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	}

	if err := s.queryRepo.CreateQuery(query); err != nil {
		return nil, err
	}

	go s.notifier.Notify(s.adminEmail, notifier.SupportQuerySubject,
		notifier.ComposeSupportQueryAlert(query))

	logger.Log.WithField("query_id", query.ID).Info("Support query submitted")
	return query, nil
}

// ListQueries retrieves every support query, newest first.
func (s *SupportService) ListQueries() ([]*model.SupportQuery, error) {
	return s.queryRepo.GetAllQueries()
}
