package httperr

import "errors"

// Códigos de negócio da liquidação de atendimentos.
const (
	CodeAppointmentNotFound   = "appointment_not_found"
	CodeAlreadyCompleted      = "already_completed"
	CodeInvalidState          = "invalid_state"
	CodeNoEligibleEntitlement = "no_eligible_entitlement"
	CodeComboMismatch         = "combo_mismatch"
	CodePackageExpired        = "package_expired"
	CodeInsufficientBalance   = "insufficient_balance"
	CodeSubscriptionNotFound  = "subscription_not_found"
)

type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// AsBusiness extrai um BusinessError de qualquer posição da cadeia.
func AsBusiness(err error) (BusinessError, bool) {
	var be BusinessError
	if errors.As(err, &be) {
		return be, true
	}
	return BusinessError{}, false
}
