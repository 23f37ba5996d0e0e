package service

import (
	"go.uber.org/zap"

	"loan-portal-service/internal/loan"
)

// ServiceFactory creates and manages service instances
type ServiceFactory struct {
	remote      RemoteStore
	cache       LocalCache
	events      EventPublisher
	search      SearchIndex
	normalizer  loan.Normalizer
	logger      *zap.Logger
	loanService *LoanService
}

// NewServiceFactory creates a new service factory
func NewServiceFactory(
	remote RemoteStore,
	cache LocalCache,
	events EventPublisher,
	search SearchIndex,
	normalizer loan.Normalizer,
	logger *zap.Logger,
) *ServiceFactory {
	return &ServiceFactory{
		remote:     remote,
		cache:      cache,
		events:     events,
		search:     search,
		normalizer: normalizer,
		logger:     logger,
	}
}

// LoanService returns the loan service instance (singleton)
func (f *ServiceFactory) LoanService() *LoanService {
	if f.loanService == nil {
		f.loanService = NewLoanService(
			f.remote,
			f.cache,
			f.events,
			f.search,
			f.normalizer,
			f.logger,
		)
	}
	return f.loanService
}
