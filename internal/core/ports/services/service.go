package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Team        TeamSvcFacade
	Transaction TransactionSvcFacade
	Exception   ExceptionSvc
	Budget      BudgetSvcFacade
	Envelope    EnvelopeSvcFacade
	TeamSeason  TeamSeasonSvcFacade
	Association AssociationApprovalSvc
	Threshold   ThresholdSvc
	Dispatcher  AutoTransitionDispatcher
	Matcher     EnvelopeMatcherSvc
	Router      TransactionRouterSvc
}
