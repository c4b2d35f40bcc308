package models

import (
	"time"

	"github.com/tansive/supporttracker/internal/common/uuid"
)

/*
      Column      |          Type          | Nullable |  Default
------------------+------------------------+----------+-----------
 id               | uuid                   | not null |
 title            | character varying(100) | not null |
 description      | character varying(500) | not null |
 database_name    | character varying(100) | not null |
 schema_name      | character varying(100) | not null |
 sql_query        | text                   | not null |
 executed_by      | character varying(255) | not null |
 status           | character varying(50)  | not null | 'pendiente'
 priority         | character varying(50)  | not null | 'media'
 created_at       | timestamptz            | not null | now()
 updated_at       | timestamptz            | not null | now()
 execution_result | text                   |          |
*/

// SupportCase is one logged remediation action. Cases are never updated
// after they are created.
type SupportCase struct {
	ID              uuid.UUID    `db:"id" json:"id"`
	Title           string       `db:"title" json:"title"`
	Description     string       `db:"description" json:"description"`
	DatabaseName    string       `db:"database_name" json:"database_name"`
	SchemaName      string       `db:"schema_name" json:"schema_name"`
	SQLQuery        string       `db:"sql_query" json:"sql_query"`
	ExecutedBy      string       `db:"executed_by" json:"executed_by"`
	Status          CaseStatus   `db:"status" json:"status"`
	Priority        CasePriority `db:"priority" json:"priority"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updated_at"`
	ExecutionResult *string      `db:"execution_result" json:"execution_result"`
}

// CaseStatus is the lifecycle state of a case.
type CaseStatus string

const (
	StatusPending    CaseStatus = "pendiente"
	StatusCompleted  CaseStatus = "completado"
	StatusInProgress CaseStatus = "en_proceso"
	StatusRejected   CaseStatus = "rechazado"
	StatusOnHold     CaseStatus = "en_pausa"
)

// CaseStatuses lists every valid status in declaration order.
func CaseStatuses() []CaseStatus {
	return []CaseStatus{StatusPending, StatusCompleted, StatusInProgress, StatusRejected, StatusOnHold}
}

func (s CaseStatus) IsValid() bool {
	for _, v := range CaseStatuses() {
		if s == v {
			return true
		}
	}
	return false
}

// CasePriority is the urgency assigned by the operator.
type CasePriority string

const (
	PriorityLow    CasePriority = "baja"
	PriorityMedium CasePriority = "media"
	PriorityHigh   CasePriority = "alta"
)

// CasePriorities lists every valid priority in declaration order.
func CasePriorities() []CasePriority {
	return []CasePriority{PriorityLow, PriorityMedium, PriorityHigh}
}

func (p CasePriority) IsValid() bool {
	for _, v := range CasePriorities() {
		if p == v {
			return true
		}
	}
	return false
}
