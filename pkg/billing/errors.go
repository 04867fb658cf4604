package billing

import (
	"net/http"

	"github.com/Abraxas-365/quizcraft/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("BILLING")

var (
	CodeCustomerNotFound     = ErrRegistry.Register("CUSTOMER_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Customer not found")
	CodeSubscriptionNotFound = ErrRegistry.Register("SUBSCRIPTION_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Subscription not found for the customer")
	CodeResourceNotFound     = ErrRegistry.Register("RESOURCE_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Billing resource not found")
	CodeInvalidRequest       = ErrRegistry.Register("INVALID_REQUEST", errx.TypeValidation, http.StatusBadRequest, "Billing request rejected")
	CodeNothingToUpdate      = ErrRegistry.Register("NOTHING_TO_UPDATE", errx.TypeValidation, http.StatusBadRequest, "No changes requested")
	CodeProviderError        = ErrRegistry.Register("PROVIDER_ERROR", errx.TypeExternal, http.StatusBadGateway, "Billing provider error")
)

func ErrCustomerNotFound() *errx.Error     { return ErrRegistry.New(CodeCustomerNotFound) }
func ErrSubscriptionNotFound() *errx.Error { return ErrRegistry.New(CodeSubscriptionNotFound) }
func ErrResourceNotFound() *errx.Error     { return ErrRegistry.New(CodeResourceNotFound) }
func ErrInvalidRequest() *errx.Error       { return ErrRegistry.New(CodeInvalidRequest) }
func ErrNothingToUpdate() *errx.Error      { return ErrRegistry.New(CodeNothingToUpdate) }
func ErrProviderError() *errx.Error        { return ErrRegistry.New(CodeProviderError) }
