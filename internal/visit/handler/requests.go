package handler

import (
	"time"

	"gatehouse/internal/visit/models"
)

// VisitRequestBody is the body of both guard request-visit and resident
// schedule-visit.
type VisitRequestBody struct {
	Name     string `json:"name" validate:"required,max=120"`
	FlatNo   string `json:"flatNo" validate:"required,max=20"`
	Relation string `json:"relation" validate:"max=60"`
	Purpose  string `json:"purpose" validate:"max=200"`
}

func (b VisitRequestBody) details() models.Details {
	d := models.Details{
		VisitorName: b.Name,
		FlatNo:      b.FlatNo,
		Relation:    b.Relation,
		Purpose:     b.Purpose,
	}
	d.Normalize()
	return d
}

// StatusBoardEntry is one row of the guard's status board.
type StatusBoardEntry struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	FlatNo      string        `json:"flatNo"`
	Relation    string        `json:"relation"`
	Purpose     string        `json:"purpose"`
	CheckInTime *time.Time    `json:"checkInTime"`
	Status      models.Status `json:"status"`
}

func toStatusBoard(visits []*models.VisitRequest) []StatusBoardEntry {
	out := make([]StatusBoardEntry, 0, len(visits))
	for _, v := range visits {
		out = append(out, StatusBoardEntry{
			ID:          int64(v.ID),
			Name:        v.VisitorName,
			FlatNo:      v.FlatNo,
			Relation:    v.Relation,
			Purpose:     v.Purpose,
			CheckInTime: v.CheckInTime,
			Status:      v.Status,
		})
	}
	return out
}
