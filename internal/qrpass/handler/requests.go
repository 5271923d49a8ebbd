package handler

import (
	"gatehouse/internal/qrpass/models"
	id "gatehouse/pkg/domain"
)

// CreatePassBody is what a resident submits to issue a pass.
type CreatePassBody struct {
	Name      string   `json:"name" validate:"required,max=120"`
	Purpose   string   `json:"purpose" validate:"max=200"`
	VisitDate *id.Date `json:"visitDate"`
	Relation  string   `json:"relation" validate:"max=60"`
	FlatNo    string   `json:"flatNo" validate:"required,max=20"`
}

func (b CreatePassBody) details() models.Details {
	d := models.Details{
		VisitorName: b.Name,
		Purpose:     b.Purpose,
		Relation:    b.Relation,
		FlatNo:      b.FlatNo,
	}
	if b.VisitDate != nil && !b.VisitDate.IsZero() {
		d.VisitDate = b.VisitDate
	}
	return d
}

// ScanBody is the payload read off a QR image. Terminals post the whole
// printed pass; only the code is trusted.
type ScanBody struct {
	QRCode string `json:"qrCode"`
}
