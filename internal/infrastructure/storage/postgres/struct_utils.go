package postgres

import (
	"reflect"
	"sync"
)

// ExtractDBColumns returns the column names from struct "db" tags in field order.
// Embedded structs (entity.AdminEntity) are flattened.
//
//	cols := ExtractDBColumns[progressivetype.ProgressiveType]()
//	// ["id", "active", "is_deleted", "created", "created_by", "name", "display_order"]
func ExtractDBColumns[T any]() []string {
	var zero T
	return columnsOf(reflect.TypeOf(zero))
}

func columnsOf(t reflect.Type) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var cols []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			cols = append(cols, columnsOf(field.Type)...)
			continue
		}
		if tag := field.Tag.Get("db"); tag != "" && tag != "-" {
			cols = append(cols, tag)
		}
	}
	return cols
}

// structFields is the cached field layout of one struct type.
type structFields struct {
	tagged   map[int]string // field index -> column
	embedded []int
}

var layoutCache sync.Map // map[reflect.Type]*structFields

func layoutOf(t reflect.Type) *structFields {
	if cached, ok := layoutCache.Load(t); ok {
		return cached.(*structFields)
	}

	layout := &structFields{tagged: make(map[int]string)}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			layout.embedded = append(layout.embedded, i)
			continue
		}
		if tag := field.Tag.Get("db"); tag != "" && tag != "-" {
			layout.tagged[i] = tag
		}
	}

	actual, _ := layoutCache.LoadOrStore(t, layout)
	return actual.(*structFields)
}

// StructToMap converts a struct (or pointer to struct) to column -> value using "db" tags.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	layout := layoutOf(rv.Type())
	res := make(map[string]any, len(layout.tagged))
	for idx, col := range layout.tagged {
		res[col] = rv.Field(idx).Interface()
	}
	for _, idx := range layout.embedded {
		for k, val := range StructToMap(rv.Field(idx).Interface()) {
			res[k] = val
		}
	}
	return res
}

// PickColumns returns the entries of data for cols, skipping columns that are absent.
func PickColumns(data map[string]any, cols ...string) map[string]any {
	res := make(map[string]any, len(cols))
	for _, col := range cols {
		if val, ok := data[col]; ok {
			res[col] = val
		}
	}
	return res
}
