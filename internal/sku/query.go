package sku

import (
	"strconv"
	"strings"
)

const tableName = "drug_skus"

const skuColumns = `id, ndc, name, manufacturer, dosage_form, strength, package_size,
	gtin, image_url, status, created_at, last_modified, created_by, reviewed_by`

// validStatusList is the SQL literal list of enumerated statuses.
var validStatusList = func() string {
	quoted := make([]string, len(Statuses))
	for i, s := range Statuses {
		quoted[i] = "'" + string(s) + "'"
	}
	return strings.Join(quoted, ", ")
}()

// dialect captures the few spots where Postgres and SQLite SQL differ.
type dialect struct {
	placeholder func(n int) string
	// contains renders "haystack contains needle" without LIKE wildcards.
	contains func(haystack, needle string) string
}

var postgresDialect = dialect{
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	contains: func(haystack, needle string) string {
		return "strpos(" + haystack + ", " + needle + ") > 0"
	},
}

var sqliteDialect = dialect{
	placeholder: func(int) string { return "?" },
	contains: func(haystack, needle string) string {
		return "instr(" + haystack + ", " + needle + ") > 0"
	},
}

// where renders the filter predicates and their arguments.
func (d dialect) where(f Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond func(ph string) string, arg any) {
		args = append(args, arg)
		conds = append(conds, cond(d.placeholder(len(args))))
	}
	if f.NDC != "" {
		add(func(ph string) string { return d.contains("ndc", ph) }, f.NDC)
	}
	if f.Name != "" {
		add(func(ph string) string { return d.contains("lower(name)", "lower("+ph+")") }, f.Name)
	}
	if f.Manufacturer != "" {
		add(func(ph string) string { return d.contains("manufacturer", ph) }, f.Manufacturer)
	}
	if f.Status != "" {
		add(func(ph string) string { return "status = " + ph }, string(f.Status))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// listQueries builds the count and page queries for a filter.
func (d dialect) listQueries(f Filter) (countSQL, pageSQL string, countArgs, pageArgs []any) {
	where, args := d.where(f)
	countSQL = "SELECT COUNT(*) FROM " + tableName + where
	pageSQL = "SELECT " + skuColumns + " FROM " + tableName + where + " ORDER BY id ASC"
	pageArgs = append(pageArgs, args...)
	if f.PageSize > 0 {
		pageArgs = append(pageArgs, f.PageSize, f.Offset())
		pageSQL += " LIMIT " + d.placeholder(len(pageArgs)-1) + " OFFSET " + d.placeholder(len(pageArgs))
	}
	return countSQL, pageSQL, args, pageArgs
}

func (d dialect) ndcTakenQuery() string {
	return "SELECT COUNT(*) FROM " + tableName + " WHERE ndc = " + d.placeholder(1) +
		" AND status <> '" + string(StatusDeleted) + "' AND id <> " + d.placeholder(2)
}

func (d dialect) duplicatesQuery() string {
	return "SELECT " + skuColumns + " FROM " + tableName +
		" WHERE name IN (SELECT name FROM " + tableName + " GROUP BY name HAVING COUNT(*) > 1)" +
		" ORDER BY name ASC, id ASC"
}

func invalidStatusesQuery() string {
	return "SELECT " + skuColumns + " FROM " + tableName +
		" WHERE status NOT IN (" + validStatusList + ") ORDER BY id ASC"
}

// rowScanner is implemented by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
