package main

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
)

type intMapper struct {
	base int
}

func (h intMapper) parse(value string) (uint64, error) {
	if h.base == 16 {
		value = strings.TrimPrefix(strings.TrimPrefix(value, "0x"), "0X")
	}
	return strconv.ParseUint(value, h.base, 64)
}

func (h intMapper) Decode(ctx *kong.DecodeContext, target reflect.Value) error {
	var value string
	err := ctx.Scan.PopValueInto("hex", &value)
	if err != nil {
		return err
	}
	i, err := h.parse(value)
	if err != nil {
		return err
	}

	switch target.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if i > 1<<62 || target.OverflowInt(int64(i)) {
			return fmt.Errorf("%q does not fit in %s", value, target.Type())
		}
		target.SetInt(int64(i))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if target.OverflowUint(i) {
			return fmt.Errorf("%q does not fit in %s", value, target.Type())
		}
		target.SetUint(i)
	default:
		return fmt.Errorf("cannot map %q onto %s", value, target.Type())
	}
	return nil
}
