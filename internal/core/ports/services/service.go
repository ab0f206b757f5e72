package services

// ServiceContainer holds instances of all the application services.
// It is populated at startup and handed to route registration so handlers
// depend on interfaces only.
type ServiceContainer struct {
	Auth              AuthSvcFacade
	User              UserSvcFacade
	ReferralDirectory ReferralDirectorySvcFacade
	ReferralTree      ReferralTreeSvcFacade
	CommissionEngine  CommissionEngineSvcFacade
	Commission        CommissionSvcFacade
	CommissionConfig  CommissionConfigSvcFacade
}
