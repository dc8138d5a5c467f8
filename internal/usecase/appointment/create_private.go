package appointment

import (
	"context"
	"time"

	"github.com/SalaoVivo/salon-scheduler/internal/audit"
	domain "github.com/SalaoVivo/salon-scheduler/internal/domain/appointment"
	"github.com/SalaoVivo/salon-scheduler/internal/httperr"
	"github.com/SalaoVivo/salon-scheduler/internal/models"
	"github.com/SalaoVivo/salon-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreatePrivateAppointmentInput struct {
	SalonID        uint
	UserID         uint
	ProfessionalID uint

	ClientName  string
	ClientPhone string
	ClientEmail string

	ServiceIDs []uint

	Date  string
	Time  string
	Notes string
}

// ======================================================
// USE CASE
// ======================================================

type CreatePrivateAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewCreatePrivateAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *CreatePrivateAppointment {
	return &CreatePrivateAppointment{
		repo:  repo,
		audit: audit,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreatePrivateAppointment) Execute(
	ctx context.Context,
	in CreatePrivateAppointmentInput,
) (*models.Appointment, error) {

	salon, err := uc.repo.GetSalonByID(ctx, in.SalonID)
	if err != nil {
		return nil, err
	}

	start, err := timezone.ParseDateTime(salon.Timezone, in.Date, in.Time)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	minAdvance := salon.MinAdvanceMinutes
	if minAdvance <= 0 {
		minAdvance = 120
	}

	now := timezone.NowIn(salon.Timezone)
	if start.Before(now.Add(time.Duration(minAdvance) * time.Minute)) {
		return nil, httperr.ErrBusiness("too_soon")
	}

	// Combo: todos os serviços precisam existir e estar ativos.
	if len(in.ServiceIDs) == 0 {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	services, err := uc.repo.GetServices(ctx, in.SalonID, in.ServiceIDs)
	if err != nil {
		return nil, err
	}
	if len(services) != len(in.ServiceIDs) {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	var durationMin int
	var totalPrice float64
	for _, svc := range services {
		durationMin += svc.DurationMin
		totalPrice += svc.Price
	}

	end := start.Add(time.Duration(durationMin) * time.Minute)

	ok, err := uc.repo.IsWithinWorkingHours(
		ctx,
		in.ProfessionalID,
		start,
		end,
	)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, httperr.ErrBusiness("outside_working_hours")
	}

	client, err := uc.repo.GetOrCreateClient(
		ctx,
		in.SalonID,
		in.ClientName,
		in.ClientPhone,
		in.ClientEmail,
	)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.AssertNoTimeConflict(
		ctx,
		in.ProfessionalID,
		start,
		end,
	); err != nil {
		return nil, err
	}

	ap := &models.Appointment{
		SalonID:        in.SalonID,
		ProfessionalID: in.ProfessionalID,
		ClientID:       client.ID,
		Services:       services,
		StartTime:      start,
		EndTime:        end,
		Status:         string(domain.InitialStatus()),
		TotalPrice:     totalPrice,
		Notes:          in.Notes,
	}

	if err := uc.repo.CreateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		SalonID:  in.SalonID,
		UserID:   &in.UserID,
		Action:   "appointment_created",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}
