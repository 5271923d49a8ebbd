package handler

import (
	"gatehouse/internal/complaint/models"
)

type FileBody struct {
	Title        string `json:"title" validate:"required,max=120"`
	Description  string `json:"description" validate:"max=1000"`
	Category     string `json:"category" validate:"max=60"`
	Priority     string `json:"priority"`
	ResidentName string `json:"residentName" validate:"max=120"`
	FlatNo       string `json:"flatNo" validate:"required,max=20"`
}

func (b FileBody) details() (models.Details, error) {
	priority, err := models.ParsePriority(b.Priority)
	if err != nil {
		return models.Details{}, err
	}
	return models.Details{
		Title:        b.Title,
		Description:  b.Description,
		Category:     b.Category,
		Priority:     priority,
		ResidentName: b.ResidentName,
		FlatNo:       b.FlatNo,
	}, nil
}

// EditBody is a partial update; absent fields are kept.
type EditBody struct {
	Title       *string `json:"title" validate:"omitempty,max=120"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Category    *string `json:"category" validate:"omitempty,max=60"`
	Priority    *string `json:"priority"`
}

func (b EditBody) edit() (models.Edit, error) {
	e := models.Edit{Title: b.Title, Description: b.Description, Category: b.Category}
	if b.Priority != nil {
		p, err := models.ParsePriority(*b.Priority)
		if err != nil {
			return models.Edit{}, err
		}
		e.Priority = &p
	}
	return e, nil
}

type AssignBody struct {
	AssignedTo string `json:"assignedTo" validate:"required,max=120"`
}

type StatusBody struct {
	Status string `json:"status" validate:"required"`
}
