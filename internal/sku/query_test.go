package sku

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostgresListQueries(t *testing.T) {
	countSQL, pageSQL, countArgs, pageArgs := postgresDialect.listQueries(Filter{
		NDC:      "123",
		Name:     "asp",
		Status:   StatusApproved,
		Page:     1,
		PageSize: 10,
	})

	assert.Equal(t, "SELECT COUNT(*) FROM drug_skus WHERE strpos(ndc, $1) > 0 AND strpos(lower(name), lower($2)) > 0 AND status = $3", countSQL)
	assert.Contains(t, pageSQL, "ORDER BY id ASC LIMIT $4 OFFSET $5")
	assert.Equal(t, []any{"123", "asp", "APPROVED"}, countArgs)
	assert.Equal(t, []any{"123", "asp", "APPROVED", 10, 10}, pageArgs)
}

func TestSQLiteListQueriesWithoutFilter(t *testing.T) {
	countSQL, pageSQL, countArgs, pageArgs := sqliteDialect.listQueries(Filter{Manufacturer: "Pfizer"})

	assert.Equal(t, "SELECT COUNT(*) FROM drug_skus WHERE instr(manufacturer, ?) > 0", countSQL)
	assert.NotContains(t, pageSQL, "LIMIT")
	assert.Equal(t, countArgs, pageArgs)
}

func TestInvalidStatusesQueryListsEnum(t *testing.T) {
	assert.Contains(t, invalidStatusesQuery(), "NOT IN ('DRAFT', 'PENDING_REVIEW', 'APPROVED', 'REJECTED', 'DELETED')")
}
