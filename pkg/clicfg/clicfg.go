// Package clicfg copies urfave/cli flag values into a struct using
// `flag:"..."` field tags.
package clicfg

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/urfave/cli/v3"
)

var ErrCannotParseFlags = errors.New("cannot parse flags")

func ParseFlags(c *cli.Command, s any) error {
	v := reflect.ValueOf(s)
	if v.Kind() != reflect.Ptr {
		return fmt.Errorf("%w: expected pointer to struct, got %T", ErrCannotParseFlags, s)
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("%w: expected pointer to struct, got pointer to %s", ErrCannotParseFlags, v.Kind())
	}

	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		if !fieldValue.CanSet() {
			continue
		}

		flagName := field.Tag.Get("flag")
		if flagName == "" {
			continue
		}

		switch field.Type.Kind() {
		case reflect.String:
			fieldValue.SetString(c.String(flagName))
		case reflect.Bool:
			fieldValue.SetBool(c.Bool(flagName))
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			fieldValue.SetInt(int64(c.Int(flagName)))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			fieldValue.SetUint(uint64(c.Uint(flagName)))
		case reflect.Float32, reflect.Float64:
			fieldValue.SetFloat(float64(c.Float(flagName)))
		default:
			return fmt.Errorf("%w: unsupported type %s for field %s", ErrCannotParseFlags, field.Type.Kind(), field.Name)
		}
	}

	return nil
}
