package models

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator"
)

type Model interface {
	TableName() string
	GetID() int64
	EmptySlice() interface{}
}

// checker is implemented by models with rules the struct tags can't express.
type checker interface {
	Check() error
}

// go-playground/validator suggests using a single instance of the validator.
var validate = validator.New()

// ValidateModel validates a model using the go-playground/validator package,
// followed by the model's own Check method if it has one. It returns an error
// if the provided argument does not implement the Model interface.
func ValidateModel(model interface{}) error {
	m, ok := model.(Model)
	if !ok {
		return fmt.Errorf("expected model, got %T", model)
	}

	if err := validate.Struct(m); err != nil {
		return err
	}
	if c, ok := m.(checker); ok {
		return c.Check()
	}
	return nil
}

// isColumn reports whether a struct field is backed by a table column. Fields
// tagged db:"-" are populated by joins or request bodies only.
func isColumn(field reflect.StructField) bool {
	tag := field.Tag.Get("db")
	return tag != "" && tag != "-"
}

func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	return name
}

func structValue(m interface{}) reflect.Value {
	val := reflect.ValueOf(m)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	return val
}

// GetValsFromModel returns the field values of a model as a slice of
// interfaces, in the order of the model's column names. It is used for
// extracting values from the model and writing them to the database. Validation
// of the model should be done before use.
func GetValsFromModel(m Model) []interface{} {
	val := structValue(m)
	typ := val.Type()

	fieldMap := make(map[string]interface{})
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !isColumn(field) || field.Tag.Get("readOnly") == "true" {
			continue
		}
		fieldMap[field.Tag.Get("db")] = val.Field(i).Interface()
	}

	columnNames := GetColumnNames(m, true)
	vals := make([]interface{}, len(columnNames))
	for i, cn := range columnNames {
		vals[i] = fieldMap[cn]
	}

	return vals
}

// scanTargets returns pointers to the column-backed fields of an addressable
// struct value, in declaration order.
func scanTargets(val reflect.Value) []interface{} {
	typ := val.Type()
	fieldPtrs := make([]interface{}, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		if !isColumn(typ.Field(i)) {
			continue
		}
		fieldPtrs = append(fieldPtrs, val.Field(i).Addr().Interface())
	}
	return fieldPtrs
}

// ScanRowToModel scans a single SQL row into a given model. It takes a model
// and passes a slice of pointers to the model's fields to the sql.Row's Scan
// method. It returns an error if the scan fails or the model is not a pointer.
func ScanRowToModel(m Model, r *sql.Row) error {
	val := reflect.ValueOf(m)
	if val.Kind() != reflect.Ptr {
		return fmt.Errorf("expected pointer to model, got %T", m)
	}

	return r.Scan(scanTargets(val.Elem())...)
}

func ScanRowsToSliceOfModels(m Model, rows *sql.Rows, expectedRows int) (interface{}, error) {
	// EmptySlice returns a pointer to an empty slice of the model type
	modelsSlice := m.EmptySlice()

	sliceVal := reflect.ValueOf(modelsSlice).Elem()
	if sliceVal.Kind() != reflect.Slice {
		return nil, fmt.Errorf("expected slice, got %s", sliceVal.Kind())
	}
	elemType := sliceVal.Type().Elem()

	// Best guess at capacity from the number of rows the caller expects
	// (e.g. the limit parameter of a URL query).
	sliceVal.Set(reflect.MakeSlice(sliceVal.Type(), 0, determineInitialCapacity(expectedRows)))

	for rows.Next() {
		model := reflect.New(elemType).Elem()
		if err := rows.Scan(scanTargets(model)...); err != nil {
			return nil, err
		}
		sliceVal.Set(reflect.Append(sliceVal, model))
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return modelsSlice, nil
}

// GetColumnNames returns the model's column names as a slice of strings.
func GetColumnNames(m Model, excludeReadOnlyFields bool) []string {
	typ := structValue(m).Type()
	var columnNames []string

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !isColumn(field) {
			continue
		}
		if excludeReadOnlyFields && field.Tag.Get("readOnly") == "true" {
			continue
		}
		columnNames = append(columnNames, field.Tag.Get("db"))
	}
	return columnNames
}

// Returns a map of the model's field tags where key is JSON and value is DB
func MapJsonTagsToDB(m Model) map[string]string {
	typ := structValue(m).Type()
	tagMap := make(map[string]string)

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !isColumn(field) {
			continue
		}
		tagMap[jsonName(field)] = field.Tag.Get("db")
	}
	return tagMap
}

// ApplyEdits overlays a partial JSON-shaped field set onto m, which must be a
// pointer. Keys that don't name a writable column of the model are dropped,
// so read-only fields, join-only fields and fields the model lacks are left
// alone. It returns the keys that were applied.
func ApplyEdits(m Model, edits map[string]interface{}) ([]string, error) {
	if reflect.ValueOf(m).Kind() != reflect.Ptr {
		return nil, fmt.Errorf("expected pointer to model, got %T", m)
	}

	typ := structValue(m).Type()
	writable := make(map[string]bool)
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if isColumn(field) && field.Tag.Get("readOnly") != "true" {
			writable[jsonName(field)] = true
		}
	}

	filtered := make(map[string]interface{})
	applied := []string{}
	for k, v := range edits {
		if writable[k] {
			filtered[k] = v
			applied = append(applied, k)
		}
	}

	payload, err := json.Marshal(filtered)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, m); err != nil {
		return nil, err
	}
	return applied, nil
}

// Helper function to determine the initial capacity based on expected rows
func determineInitialCapacity(expectedRows int) int {
	switch {
	case expectedRows <= 10:
		return 10
	case expectedRows <= 25:
		return 20
	case expectedRows <= 50:
		return 35
	case expectedRows <= 100:
		return 75
	case expectedRows <= 200:
		return 150
	case expectedRows <= 300:
		return 250
	case expectedRows <= 500:
		return 400
	default:
		return 500
	}
}
