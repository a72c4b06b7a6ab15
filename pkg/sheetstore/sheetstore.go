// Package sheetstore maps spreadsheet tabs onto Go structs. The first row of
// every tab is the header; struct fields are bound to columns through
// `sheet:"column_name"` tags. Columns with no matching field, and fields with
// no matching column, are silently skipped so the spreadsheet can carry extra
// bookkeeping columns without breaking the server.
package sheetstore

import (
	"context"
	"fmt"
	"reflect"
	"strconv"

	"github.com/lanxiangspa/booking-server/pkg/clients/sheetsclient"
)

// DB binds a sheets client to one spreadsheet
type DB struct {
	client        *sheetsclient.Client
	spreadsheetID string
}

// New creates a sheetstore DB for the given spreadsheet
func New(client *sheetsclient.Client, spreadsheetID string) *DB {
	return &DB{client: client, spreadsheetID: spreadsheetID}
}

// GetTableAs retrieves all rows from a tab and maps them to structs of type T
func GetTableAs[T any](ctx context.Context, db *DB, tabName string) ([]T, error) {
	values, err := db.client.GetValues(ctx, db.spreadsheetID, tabName)
	if err != nil {
		return nil, fmt.Errorf("failed to get tab %s: %w", tabName, err)
	}

	results, err := DecodeRows[T](values)
	if err != nil {
		return nil, fmt.Errorf("failed to decode tab %s: %w", tabName, err)
	}
	return results, nil
}

// AppendModel appends a struct as a single row at the end of a tab. The cell
// order follows the struct's field order, which must match the tab's header.
func AppendModel[T any](ctx context.Context, db *DB, tabName string, model T) error {
	row := EncodeRow(model)
	if err := db.client.AppendRow(ctx, db.spreadsheetID, tabName, row); err != nil {
		return fmt.Errorf("failed to append to tab %s: %w", tabName, err)
	}
	return nil
}

// DecodeRows converts raw sheet values (header row first) into structs of type T
func DecodeRows[T any](values [][]interface{}) ([]T, error) {
	if len(values) < 2 {
		// Header only, or empty tab
		return []T{}, nil
	}

	headers := values[0]
	dataRows := values[1:]

	var model T
	t := reflect.TypeOf(model)

	// Build mapping of column name to index
	columnIndexes := make(map[string]int)
	for i, header := range headers {
		if headerStr, ok := header.(string); ok {
			columnIndexes[headerStr] = i
		}
	}

	// Build mapping of column name to struct field
	fieldMap := make(map[string]reflect.StructField)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		columnName := field.Tag.Get("sheet")
		if columnName != "" {
			fieldMap[columnName] = field
		}
	}

	results := make([]T, 0, len(dataRows))
	for rowIdx, row := range dataRows {
		result := reflect.New(t).Elem()

		for columnName, colIdx := range columnIndexes {
			field, ok := fieldMap[columnName]
			if !ok {
				continue
			}
			if colIdx >= len(row) || row[colIdx] == nil {
				// Column is empty in this row
				continue
			}

			if err := setFieldValue(result.FieldByName(field.Name), row[colIdx]); err != nil {
				return nil, fmt.Errorf("row %d, column %s: %w", rowIdx+2, columnName, err)
			}
		}

		results = append(results, result.Interface().(T))
	}

	return results, nil
}

// EncodeRow flattens a struct into a row of cells, taking every field that
// carries a sheet tag in declaration order
func EncodeRow[T any](model T) []interface{} {
	t := reflect.TypeOf(model)
	v := reflect.ValueOf(model)

	row := make([]interface{}, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("sheet") == "" {
			continue
		}
		row = append(row, v.Field(i).Interface())
	}

	return row
}

// setFieldValue converts a sheet cell value to the appropriate Go type and sets it on the field
func setFieldValue(field reflect.Value, cellValue interface{}) error {
	if !field.CanSet() {
		return fmt.Errorf("field cannot be set")
	}

	// The sheets API returns cells as strings
	cellStr, ok := cellValue.(string)
	if !ok {
		return fmt.Errorf("cell value is not a string")
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(cellStr)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if cellStr == "" {
			field.SetInt(0)
		} else {
			intVal, err := strconv.ParseInt(cellStr, 10, 64)
			if err != nil {
				return fmt.Errorf("failed to parse int: %w", err)
			}
			field.SetInt(intVal)
		}

	case reflect.Float32, reflect.Float64:
		if cellStr == "" {
			field.SetFloat(0)
		} else {
			floatVal, err := strconv.ParseFloat(cellStr, 64)
			if err != nil {
				return fmt.Errorf("failed to parse float: %w", err)
			}
			field.SetFloat(floatVal)
		}

	case reflect.Bool:
		if cellStr == "" {
			field.SetBool(false)
		} else {
			boolVal, err := strconv.ParseBool(cellStr)
			if err != nil {
				return fmt.Errorf("failed to parse bool: %w", err)
			}
			field.SetBool(boolVal)
		}

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}
