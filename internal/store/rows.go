package store

import (
	"database/sql"
	"time"
)

// sqliteTimeFormat is the text form SQLite itself uses for timestamps.
const sqliteTimeFormat = "2006-01-02 15:04:05.999999999-07:00"

// scanRows drains rows into name-keyed mappings using the column
// metadata of the result set. The returned slice is never nil.
func scanRows(rows *sql.Rows) ([]Row, []string, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	result := []Row{}
	for rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, nil, err
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = normalizeValue(values[i])
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return result, cols, nil
}

// normalizeValue maps driver values onto int64, float64, string, []byte or nil.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case nil, int64, float64, string, []byte:
		return val
	case time.Time:
		return val.Format(sqliteTimeFormat)
	case bool:
		if val {
			return int64(1)
		}
		return int64(0)
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case float32:
		return float64(val)
	default:
		return val
	}
}
