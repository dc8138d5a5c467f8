package dto

import "time"

type AppointmentListDTO struct {
	ID               uint      `json:"id"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	Status           string    `json:"status"`
	ClientName       string    `json:"client_name"`
	ProfessionalName string    `json:"professional_name"`
	ServiceNames     []string  `json:"service_names"`
	TotalPrice       float64   `json:"total_price"`
	PaymentSource    *string   `json:"payment_source"`
}
