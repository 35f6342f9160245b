// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package rest

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// paramTag is the struct tag naming the parameter a field binds to.
const paramTag = "param"

var bytesType = reflect.TypeOf([]byte(nil))

// checkParamStruct verifies that typ is a struct whose param-tagged
// fields name exactly the descriptor's parameters, and that each
// such field is a string or []byte.
func checkParamStruct(typ reflect.Type, d *FormDescriptor) error {
	if typ.Kind() != reflect.Struct {
		return fmt.Errorf("%v: parameter type %v is not a struct", d.Name, typ)
	}
	tagged := make(map[string]bool)
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		name := field.Tag.Get(paramTag)
		if name == "" {
			continue
		}
		if field.Type.Kind() != reflect.String && field.Type != bytesType {
			return fmt.Errorf("%v: field %v must be string or []byte", d.Name, field.Name)
		}
		if _, known := d.Field(name); !known {
			return fmt.Errorf("%v: field %v binds unknown parameter %q", d.Name, field.Name, name)
		}
		tagged[name] = true
	}
	for _, param := range d.Parameters {
		if !tagged[param.Name] {
			return fmt.Errorf("%v: no field for parameter %q", d.Name, param.Name)
		}
	}
	return nil
}

// bind fills out, a pointer to a parameter struct, from validated
// values.
func bind(d *FormDescriptor, values []string, out interface{}) error {
	input := make(map[string]interface{}, len(values))
	for i, param := range d.Parameters {
		input[param.Name] = values[i]
	}
	config := mapstructure.DecoderConfig{
		DecodeHook:  decodeStringAsBytes,
		ErrorUnused: true,
		TagName:     paramTag,
		Result:      out,
	}
	decoder, err := mapstructure.NewDecoder(&config)
	if err == nil {
		err = decoder.Decode(input)
	}
	return err
}

// decodeStringAsBytes is a mapstructure decode hook that accepts a
// string where a byte slice is expected.
func decodeStringAsBytes(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() == reflect.String && to == bytesType {
		return []byte(data.(string)), nil
	}
	return data, nil
}
