package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tansive/supporttracker/internal/common/uuid"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total int64
		size  int
		want  int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{100, 100, 1},
		{101, 100, 2},
		{5, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.total, tt.size), "total=%d size=%d", tt.total, tt.size)
	}
}

func TestValidatePage(t *testing.T) {
	assert.Empty(t, (&CaseFilter{Page: 1, Size: 1}).ValidatePage())
	assert.Empty(t, (&CaseFilter{Page: 7, Size: MaxPageSize}).ValidatePage())

	ves := (&CaseFilter{Page: 0, Size: 101}).ValidatePage()
	if assert.Len(t, ves, 2) {
		assert.Equal(t, "page", ves[0].Field)
		assert.Equal(t, "size", ves[1].Field)
	}
	assert.Equal(t, int64(20), (&CaseFilter{Page: 3, Size: 10}).Offset())
}

func TestOffsetSaturates(t *testing.T) {
	assert.Equal(t, int64(0), (&CaseFilter{Page: 1, Size: 10}).Offset())
	assert.Equal(t, int64(9999999999900), (&CaseFilter{Page: 100000000000, Size: 100}).Offset())

	huge := &CaseFilter{Page: 100000000000000001, Size: 100}
	assert.Empty(t, huge.ValidatePage())
	assert.Equal(t, int64(math.MaxInt64), huge.Offset())
	assert.Equal(t, int64(math.MaxInt64), (&CaseFilter{Page: math.MaxInt, Size: MaxPageSize}).Offset())
}

func TestEnumerations(t *testing.T) {
	for _, s := range CaseStatuses() {
		assert.True(t, s.IsValid())
	}
	for _, p := range CasePriorities() {
		assert.True(t, p.IsValid())
	}
	assert.False(t, CaseStatus("pending").IsValid())
	assert.False(t, CasePriority("").IsValid())
}

func TestMatches(t *testing.T) {
	created := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	c := &SupportCase{
		ID:           uuid.New(),
		DatabaseName: "billing",
		SchemaName:   "public",
		ExecutedBy:   "jdoe",
		Status:       StatusPending,
		Priority:     PriorityHigh,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	status := StatusPending
	other := StatusRejected
	before := created.Add(-time.Hour)
	after := created.Add(time.Hour)
	name := "billing"

	assert.True(t, (&CaseFilter{}).Matches(c))
	assert.True(t, (&CaseFilter{Status: &status, DatabaseName: &name, StartDate: &created, EndDate: &created}).Matches(c))
	assert.True(t, (&CaseFilter{StartDate: &before, EndDate: &after}).Matches(c))
	assert.False(t, (&CaseFilter{Status: &other}).Matches(c))
	assert.False(t, (&CaseFilter{StartDate: &after}).Matches(c))
	assert.False(t, (&CaseFilter{EndDate: &before}).Matches(c))
	assert.False(t, (&CaseFilter{Status: &status, ID: &uuid.Nil}).Matches(c))
}
