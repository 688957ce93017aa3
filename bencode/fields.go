// Copyright 2020 xgfone
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bencode

import (
	"reflect"
	"strings"
)

// field is an exported struct field mapped to a dict key by the tag
// `bencode:"name,omitempty"`. The tag "-" skips the field.
type field struct {
	name      string
	index     int
	omitEmpty bool
}

func structFields(t reflect.Type) []field {
	fields := make([]field, 0, t.NumField())
	for i, n := 0, t.NumField(); i < n; i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			continue
		}

		tag := sf.Tag.Get("bencode")
		if tag == "-" {
			continue
		}

		f := field{name: sf.Name, index: i}
		name, opts, _ := strings.Cut(tag, ",")
		if name != "" {
			f.name = name
		}
		for opts != "" {
			var opt string
			opt, opts, _ = strings.Cut(opts, ",")
			if opt == "omitempty" {
				f.omitEmpty = true
			}
		}

		fields = append(fields, f)
	}
	return fields
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	case reflect.Struct:
		if v.Type() == integerType {
			return v.Interface().(Integer).Sign() == 0
		}
	}
	return false
}
