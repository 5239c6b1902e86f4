package binder

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// structFields walks the settable fields of v carrying tagName and calls fn
// with the tag's parameter name.
func structFields(v any, tagName string, fn func(name string, field reflect.Value, sf reflect.StructField) error) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrInvalidTarget
	}
	rv = rv.Elem()
	rt := rv.Type()

	for i := range rt.NumField() {
		field := rv.Field(i)
		if !field.CanSet() {
			continue
		}
		sf := rt.Field(i)
		name, skip := parseFieldTag(sf, tagName)
		if skip {
			continue
		}
		if err := fn(name, field, sf); err != nil {
			return err
		}
	}
	return nil
}

// bindToStruct sets the fields tagged tagName from values.
func bindToStruct(v any, tagName string, values map[string][]string, bindErr error) error {
	err := structFields(v, tagName, func(name string, field reflect.Value, sf reflect.StructField) error {
		vals := values[name]
		if len(vals) == 0 {
			return nil
		}
		if err := setFieldValue(field, sf.Type, vals); err != nil {
			return fmt.Errorf("%w: field %s: %v", bindErr, sf.Name, err)
		}
		return nil
	})
	if err == ErrInvalidTarget {
		return fmt.Errorf("%w: %w", bindErr, err)
	}
	return err
}

// parseFieldTag returns the parameter name of the field. Fields without the
// tag or tagged "-" are skipped. Options after a comma are ignored here.
func parseFieldTag(sf reflect.StructField, tagName string) (name string, skip bool) {
	tag := sf.Tag.Get(tagName)
	if tag == "" || tag == "-" {
		return "", true
	}
	name, _, _ = strings.Cut(tag, ",")
	return name, false
}

func setFieldValue(field reflect.Value, t reflect.Type, values []string) error {
	switch t.Kind() {
	case reflect.Pointer:
		if field.IsNil() {
			field.Set(reflect.New(t.Elem()))
		}
		return setFieldValue(field.Elem(), t.Elem(), values)
	case reflect.Slice:
		return setSliceValue(field, t, values)
	}

	value := values[0]
	switch t.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, t.Bits())
		if err != nil {
			return fmt.Errorf("invalid int value %q", value)
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, t.Bits())
		if err != nil {
			return fmt.Errorf("invalid uint value %q", value)
		}
		field.SetUint(n)

	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(value, t.Bits())
		if err != nil {
			return fmt.Errorf("invalid float value %q", value)
		}
		field.SetFloat(n)

	case reflect.Bool:
		b, err := parseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported type %s", t)
	}
	return nil
}

// parseBool accepts strconv.ParseBool input plus on/off and yes/no.
// An empty value, as in "?thumb", is true.
func parseBool(value string) (bool, error) {
	if b, err := strconv.ParseBool(value); err == nil {
		return b, nil
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid bool value %q", value)
}

// setSliceValue accepts repeated parameters and comma separated lists.
func setSliceValue(field reflect.Value, t reflect.Type, values []string) error {
	var all []string
	for _, v := range values {
		all = append(all, strings.Split(v, ",")...)
	}

	slice := reflect.MakeSlice(t, len(all), len(all))
	for i, v := range all {
		if err := setFieldValue(slice.Index(i), t.Elem(), []string{strings.TrimSpace(v)}); err != nil {
			return err
		}
	}
	field.Set(slice)
	return nil
}
