package builtins

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dop251/goja/unistring"

	"github.com/example/jscore/runtime"
)

func createJSONObject(realm *runtime.Realm) *runtime.Object {
	j := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	setMethod(realm, j, "parse", 2, jsonParse)
	setMethod(realm, j, "stringify", 3, jsonStringify)
	setToStringTag(j, "JSON")
	return j
}

func jsonParse(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	text, err := toGoStr(a, argAt(args, 0))
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	result, err := decodeJSONValue(a, dec)
	if err == nil {
		if _, extra := dec.Token(); extra != io.EOF {
			err = errors.New("unexpected non-whitespace character after JSON data")
		}
	}
	if err != nil {
		var ex *runtime.Exception
		if errors.As(err, &ex) {
			return nil, err
		}
		return nil, a.NewSyntaxError("JSON.parse: %v", err)
	}

	reviver := argAt(args, 1)
	if !runtime.IsCallable(reviver) {
		return result, nil
	}
	root := a.NewPlainObject()
	runtime.Must(runtime.CreateDataProperty(a, root, runtime.StrKey(""), result))
	return internalizeJSONProperty(a, root, runtime.StrKey(""), reviver)
}

func decodeJSONValue(a *runtime.Agent, dec *json.Decoder) (*runtime.Value, error) {
	tok, err := dec.Token()
	if err == io.EOF {
		return nil, io.ErrUnexpectedEOF
	}
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case nil:
		return runtime.Null, nil
	case bool:
		return runtime.NewBool(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil && !math.IsInf(f, 0) {
			return nil, err
		}
		return runtime.NewNumber(f), nil
	case string:
		return runtime.NewUString(runtime.StringFromWTF8(t)), nil
	case json.Delim:
		switch t {
		case '[':
			var elems []*runtime.Value
			for dec.More() {
				v, err := decodeJSONValue(a, dec)
				if err != nil {
					return nil, err
				}
				elems = append(elems, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arrayValue(a, elems), nil
		case '{':
			obj := a.NewPlainObject()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				v, err := decodeJSONValue(a, dec)
				if err != nil {
					return nil, err
				}
				key := runtime.UKey(runtime.StringFromWTF8(kt.(string)))
				if _, err := runtime.CreateDataProperty(a, obj, key, v); err != nil {
					return nil, err
				}
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return runtime.NewObject(obj), nil
		}
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func internalizeJSONProperty(a *runtime.Agent, holder *runtime.Object, name runtime.PropertyKey, reviver *runtime.Value) (*runtime.Value, error) {
	val, err := runtime.Get(a, holder, name)
	if err != nil {
		return nil, err
	}
	if val.IsObject() {
		isArray, err := runtime.IsArray(a, val)
		if err != nil {
			return nil, err
		}
		var keys []runtime.PropertyKey
		if isArray {
			n, err := runtime.LengthOfArrayLike(a, val.Object)
			if err != nil {
				return nil, err
			}
			for i := int64(0); i < n; i++ {
				keys = append(keys, runtime.IndexKey(i))
			}
		} else {
			names, err := runtime.EnumerableOwnProperties(a, val.Object, runtime.EnumKeys)
			if err != nil {
				return nil, err
			}
			for _, n := range names {
				keys = append(keys, runtime.UKey(n.Str))
			}
		}
		for _, k := range keys {
			nv, err := internalizeJSONProperty(a, val.Object, k, reviver)
			if err != nil {
				return nil, err
			}
			if nv.IsUndefined() {
				_, err = val.Object.Delete(a, k)
			} else {
				_, err = runtime.CreateDataProperty(a, val.Object, k, nv)
			}
			if err != nil {
				return nil, err
			}
		}
	}
	return callFn(a, reviver, runtime.NewObject(holder), name.ToValue(), val)
}

// jsonSerializer carries the state of one JSON.stringify call.
type jsonSerializer struct {
	replacer     *runtime.Value
	propertyList []runtime.PropertyKey
	gap          string
	indent       string
	buf          bytes.Buffer
}

func jsonStringify(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
	s := &jsonSerializer{}
	if r := argAt(args, 1); r.IsObject() {
		if runtime.IsCallable(r) {
			s.replacer = r
		} else if ok, err := runtime.IsArray(a, r); err != nil {
			return nil, err
		} else if ok {
			list, err := jsonPropertyList(a, r.Object)
			if err != nil {
				return nil, err
			}
			s.propertyList = list
		}
	}
	if err := s.setGap(a, argAt(args, 2)); err != nil {
		return nil, err
	}

	wrapper := a.NewPlainObject()
	runtime.Must(runtime.CreateDataProperty(a, wrapper, runtime.StrKey(""), argAt(args, 0)))
	ok, err := s.serializeProperty(a, runtime.StrKey(""), wrapper)
	if err != nil {
		return nil, err
	}
	if !ok {
		return runtime.Undefined, nil
	}
	return runtime.NewUString(runtime.StringFromWTF8(s.buf.String())), nil
}

func jsonPropertyList(a *runtime.Agent, r *runtime.Object) ([]runtime.PropertyKey, error) {
	n, err := runtime.LengthOfArrayLike(a, r)
	if err != nil {
		return nil, err
	}
	seen := make(map[unistring.String]bool)
	list := []runtime.PropertyKey{}
	for i := int64(0); i < n; i++ {
		v, err := getIndex(a, r, i)
		if err != nil {
			return nil, err
		}
		var item *runtime.Value
		switch {
		case v.IsString():
			item = v
		case v.IsNumber():
			item = runtime.NewString(runtime.NumberToString(v.Number))
		case v.IsObject() && (v.Object.Kind == runtime.KindString || v.Object.Kind == runtime.KindNumber):
			s, err := toStr(a, v)
			if err != nil {
				return nil, err
			}
			item = runtime.NewUString(s)
		}
		if item != nil && !seen[item.Str] {
			seen[item.Str] = true
			list = append(list, runtime.UKey(item.Str))
		}
	}
	return list, nil
}

func (s *jsonSerializer) setGap(a *runtime.Agent, space *runtime.Value) error {
	if space.IsObject() {
		switch space.Object.Kind {
		case runtime.KindNumber:
			n, err := runtime.ToNumber(a, space)
			if err != nil {
				return err
			}
			space = runtime.NewNumber(n)
		case runtime.KindString:
			str, err := toStr(a, space)
			if err != nil {
				return err
			}
			space = runtime.NewUString(str)
		}
	}
	switch {
	case space.IsNumber():
		n := min(10, runtime.IntegerOrInfinity(space.Number))
		if n >= 1 {
			s.gap = strings.Repeat(" ", int(n))
		}
	case space.IsString():
		units := runtime.Units(space.Str)
		if len(units) > 10 {
			units = units[:10]
		}
		s.gap = runtime.GoString(runtime.StringFromUnits(units))
	}
	return nil
}

// serializeProperty writes holder[key] and reports whether it produced
// output; undefined, functions and symbols produce none.
func (s *jsonSerializer) serializeProperty(a *runtime.Agent, key runtime.PropertyKey, holder *runtime.Object) (bool, error) {
	value, err := runtime.Get(a, holder, key)
	if err != nil {
		return false, err
	}
	if value.IsObject() || value.IsBigInt() {
		toJSON, err := runtime.GetV(a, value, runtime.StrKey("toJSON"))
		if err != nil {
			return false, err
		}
		if runtime.IsCallable(toJSON) {
			if value, err = callFn(a, toJSON, value, key.ToValue()); err != nil {
				return false, err
			}
		}
	}
	if s.replacer != nil {
		if value, err = callFn(a, s.replacer, runtime.NewObject(holder), key.ToValue(), value); err != nil {
			return false, err
		}
	}
	if value.IsObject() {
		o := value.Object
		switch o.Kind {
		case runtime.KindNumber:
			n, err := runtime.ToNumber(a, value)
			if err != nil {
				return false, err
			}
			value = runtime.NewNumber(n)
		case runtime.KindString:
			str, err := toStr(a, value)
			if err != nil {
				return false, err
			}
			value = runtime.NewUString(str)
		case runtime.KindBoolean, runtime.KindBigInt:
			if v, ok := o.Slot("[[BooleanData]]").(*runtime.Value); ok {
				value = v
			} else if v, ok := o.Slot("[[BigIntData]]").(*runtime.Value); ok {
				value = v
			}
		}
	}

	switch value.Type {
	case runtime.TypeNull:
		s.buf.WriteString("null")
	case runtime.TypeBoolean:
		if value.Bool {
			s.buf.WriteString("true")
		} else {
			s.buf.WriteString("false")
		}
	case runtime.TypeString:
		quoteJSONString(&s.buf, value.Str)
	case runtime.TypeNumber:
		if math.IsNaN(value.Number) || math.IsInf(value.Number, 0) {
			s.buf.WriteString("null")
		} else {
			s.buf.WriteString(runtime.NumberToString(value.Number))
		}
	case runtime.TypeBigInt:
		return false, a.NewTypeError("Do not know how to serialize a BigInt")
	case runtime.TypeObject:
		if runtime.IsCallable(value) {
			return false, nil
		}
		isArray, err := runtime.IsArray(a, value)
		if err != nil {
			return false, err
		}
		if isArray {
			return true, s.serializeArray(a, value.Object)
		}
		return true, s.serializeObject(a, value.Object)
	default:
		return false, nil
	}
	return true, nil
}

func (s *jsonSerializer) enter(a *runtime.Agent, o *runtime.Object) (string, error) {
	if !a.EnterCycleGuard(o) {
		return "", a.NewTypeError("Converting circular structure to JSON")
	}
	stepback := s.indent
	s.indent += s.gap
	return stepback, nil
}

func (s *jsonSerializer) leave(a *runtime.Agent, o *runtime.Object, stepback string) {
	a.LeaveCycleGuard(o)
	s.indent = stepback
}

// separator writes the newline and indentation that precede a member when
// a gap is in effect.
func (s *jsonSerializer) separator(first bool) {
	if !first {
		s.buf.WriteByte(',')
	}
	if s.gap != "" {
		s.buf.WriteByte('\n')
		s.buf.WriteString(s.indent)
	}
}

func (s *jsonSerializer) closing(stepback string, empty bool, c byte) {
	if !empty && s.gap != "" {
		s.buf.WriteByte('\n')
		s.buf.WriteString(stepback)
	}
	s.buf.WriteByte(c)
}

func (s *jsonSerializer) serializeObject(a *runtime.Agent, o *runtime.Object) error {
	stepback, err := s.enter(a, o)
	if err != nil {
		return err
	}
	defer s.leave(a, o, stepback)

	keys := s.propertyList
	if keys == nil {
		names, err := runtime.EnumerableOwnProperties(a, o, runtime.EnumKeys)
		if err != nil {
			return err
		}
		for _, n := range names {
			keys = append(keys, runtime.UKey(n.Str))
		}
	}
	s.buf.WriteByte('{')
	empty := true
	for _, k := range keys {
		mark := s.buf.Len()
		s.separator(empty)
		quoteJSONString(&s.buf, runtime.StringFromWTF8(k.String()))
		s.buf.WriteByte(':')
		if s.gap != "" {
			s.buf.WriteByte(' ')
		}
		ok, err := s.serializeProperty(a, k, o)
		if err != nil {
			return err
		}
		if !ok {
			s.buf.Truncate(mark)
			continue
		}
		empty = false
	}
	s.closing(stepback, empty, '}')
	return nil
}

func (s *jsonSerializer) serializeArray(a *runtime.Agent, o *runtime.Object) error {
	stepback, err := s.enter(a, o)
	if err != nil {
		return err
	}
	defer s.leave(a, o, stepback)

	n, err := runtime.LengthOfArrayLike(a, o)
	if err != nil {
		return err
	}
	s.buf.WriteByte('[')
	for i := int64(0); i < n; i++ {
		s.separator(i == 0)
		ok, err := s.serializeProperty(a, runtime.IndexKey(i), o)
		if err != nil {
			return err
		}
		if !ok {
			s.buf.WriteString("null")
		}
	}
	s.closing(stepback, n == 0, ']')
	return nil
}

// quoteJSONString writes str as a JSON string literal. Lone surrogates are
// written as \u escapes.
func quoteJSONString(buf *bytes.Buffer, str unistring.String) {
	units := runtime.Units(str)
	buf.WriteByte('"')
	for i := 0; i < len(units); i++ {
		u := units[i]
		switch u {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			switch {
			case u < 0x20:
				fmt.Fprintf(buf, `\u%04x`, u)
			case u >= 0xD800 && u <= 0xDBFF && i+1 < len(units) && units[i+1] >= 0xDC00 && units[i+1] <= 0xDFFF:
				r := (rune(u)-0xD800)<<10 + (rune(units[i+1]) - 0xDC00) + 0x10000
				buf.WriteRune(r)
				i++
			case u >= 0xD800 && u <= 0xDFFF:
				fmt.Fprintf(buf, `\u%04x`, u)
			default:
				buf.WriteRune(rune(u))
			}
		}
	}
	buf.WriteByte('"')
}
