package appointment

import "github.com/SalaoVivo/salon-scheduler/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// completed e cancelled são terminais: não há transição de volta.
func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ===============================
// Validations
// ===============================

// CanCancel define se um agendamento pode ser cancelado
func CanCancel(current Status) error {
	if IsTerminal(current) {
		return httperr.ErrBusiness(httperr.CodeInvalidState)
	}
	return nil
}

// CanComplete define se um agendamento pode ser liquidado. O estado
// terminal devolve um código próprio para o chamador distinguir a
// dupla liquidação de um estado simplesmente inválido.
func CanComplete(current Status) error {
	if current == StatusCompleted {
		return httperr.ErrBusiness(httperr.CodeAlreadyCompleted)
	}
	if current == StatusCancelled {
		return httperr.ErrBusiness(httperr.CodeInvalidState)
	}
	return nil
}

// InitialStatus valida status inicial
func InitialStatus() Status {
	return StatusScheduled
}
