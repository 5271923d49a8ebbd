package handler

import "gatehouse/internal/directory/models"

type ResidentBody struct {
	Name             string `json:"name" validate:"required,max=120"`
	FlatNo           string `json:"flatNo" validate:"required,max=20"`
	Email            string `json:"email" validate:"omitempty,email"`
	Contact          string `json:"contact" validate:"max=20"`
	EmergencyContact string `json:"emergencyContact" validate:"max=20"`
	Status           string `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

func (b ResidentBody) fields() models.ResidentFields {
	return models.ResidentFields{
		Name:             b.Name,
		FlatNo:           b.FlatNo,
		Email:            b.Email,
		Contact:          b.Contact,
		EmergencyContact: b.EmergencyContact,
		Status:           models.ResidentStatus(b.Status),
	}
}

type GuardBody struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"omitempty,email"`
	Contact string `json:"contact" validate:"max=20"`
	Shift   string `json:"shift" validate:"max=40"`
}

func (b GuardBody) fields() models.GuardFields {
	return models.GuardFields{Name: b.Name, Email: b.Email, Contact: b.Contact, Shift: b.Shift}
}
