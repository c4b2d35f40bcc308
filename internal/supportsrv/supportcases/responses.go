package supportcases

import (
	"github.com/tansive/supporttracker/internal/supportsrv/db/models"
)

// CaseResponse is the success envelope for a single case.
type CaseResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Case    *models.SupportCase `json:"case"`
}

// PaginatedResponse is the success envelope for a page of cases. Items is
// never nil, so it always encodes as a JSON array.
type PaginatedResponse struct {
	Success    bool                  `json:"success"`
	Message    string                `json:"message"`
	Items      []*models.SupportCase `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	Size       int                   `json:"size"`
	TotalPages int                   `json:"total_pages"`
}

func newPaginatedResponse(msg string, p *models.CasePage) *PaginatedResponse {
	items := p.Items
	if items == nil {
		items = []*models.SupportCase{}
	}
	return &PaginatedResponse{
		Success:    true,
		Message:    msg,
		Items:      items,
		Total:      p.Total,
		Page:       p.Page,
		Size:       p.Size,
		TotalPages: p.TotalPages,
	}
}
