package handler

import (
	"gatehouse/internal/package/models"
	id "gatehouse/pkg/domain"
)

// PackageBody is what a resident submits to register or edit a package.
type PackageBody struct {
	TrackingNumber string   `json:"trackingNumber" validate:"max=80"`
	Description    string   `json:"description" validate:"required,max=200"`
	Sender         string   `json:"sender" validate:"max=120"`
	ResidentName   string   `json:"residentName" validate:"max=120"`
	FlatNo         string   `json:"flatNo" validate:"required,max=20"`
	ExpectedDate   *id.Date `json:"expectedDate"`
	DeliveryOTP    string   `json:"deliveryOtp" validate:"omitempty,numeric,min=4,max=8"`
}

func (b PackageBody) details() models.Details {
	d := models.Details{
		TrackingNumber: b.TrackingNumber,
		Description:    b.Description,
		Sender:         b.Sender,
		ResidentName:   b.ResidentName,
		FlatNo:         b.FlatNo,
		DeliveryOTP:    b.DeliveryOTP,
	}
	if b.ExpectedDate != nil {
		d.ExpectedDate = *b.ExpectedDate
	}
	return d
}

type VerifyOTPBody struct {
	OTP string `json:"otp" validate:"required,max=8"`
}

type StatusBody struct {
	Status string `json:"status" validate:"required"`
}
