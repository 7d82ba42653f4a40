package reactively

import (
	"encoding/binary"
	"math"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

const (
	tagNil byte = iota
	tagBool
	tagInt
	tagUint
	tagFloat
	tagComplex
	tagString
	tagSeq
	tagMap
	tagStruct
	tagPointer
	tagCycle
	tagIface
	tagOpaque
)

// Fingerprint returns a deep structural hash of v. Two values with the same
// contents hash the same regardless of pointer identity; map iteration order
// does not matter and cyclic pointers are visited once per path.
func Fingerprint(v any) uint64 {
	h := &hasher{
		d:        xxhash.New(),
		visiting: map[uintptr]struct{}{},
	}
	h.value(reflect.ValueOf(v))
	return h.d.Sum64()
}

type hasher struct {
	d        *xxhash.Digest
	visiting map[uintptr]struct{}
	buf      [9]byte
}

func (h *hasher) word(tag byte, x uint64) {
	h.buf[0] = tag
	binary.LittleEndian.PutUint64(h.buf[1:], x)
	h.d.Write(h.buf[:])
}

func (h *hasher) tag(tag byte) {
	h.buf[0] = tag
	h.d.Write(h.buf[:1])
}

func (h *hasher) sub(fn func(h *hasher)) uint64 {
	s := &hasher{d: xxhash.New(), visiting: h.visiting}
	fn(s)
	return s.d.Sum64()
}

func (h *hasher) value(v reflect.Value) {
	switch v.Kind() {
	case reflect.Invalid:
		h.tag(tagNil)
	case reflect.Bool:
		var b uint64
		if v.Bool() {
			b = 1
		}
		h.word(tagBool, b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		h.word(tagInt, uint64(v.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		h.word(tagUint, v.Uint())
	case reflect.Float32, reflect.Float64:
		h.word(tagFloat, math.Float64bits(v.Float()))
	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		h.word(tagComplex, math.Float64bits(real(c)))
		h.word(tagComplex, math.Float64bits(imag(c)))
	case reflect.String:
		s := v.String()
		h.word(tagString, uint64(len(s)))
		h.d.WriteString(s)
	case reflect.Slice:
		if v.IsNil() {
			h.tag(tagNil)
			return
		}
		fallthrough
	case reflect.Array:
		n := v.Len()
		h.word(tagSeq, uint64(n))
		for i := 0; i < n; i++ {
			h.value(v.Index(i))
		}
	case reflect.Map:
		if v.IsNil() {
			h.tag(tagNil)
			return
		}
		var sum uint64
		iter := v.MapRange()
		for iter.Next() {
			k, e := iter.Key(), iter.Value()
			sum += h.sub(func(s *hasher) {
				s.value(k)
				s.value(e)
			})
		}
		h.word(tagMap, uint64(v.Len()))
		h.word(tagMap, sum)
	case reflect.Struct:
		n := v.NumField()
		h.word(tagStruct, uint64(n))
		for i := 0; i < n; i++ {
			h.value(v.Field(i))
		}
	case reflect.Pointer:
		if v.IsNil() {
			h.tag(tagNil)
			return
		}
		p := v.Pointer()
		if _, ok := h.visiting[p]; ok {
			h.tag(tagCycle)
			return
		}
		h.visiting[p] = struct{}{}
		h.tag(tagPointer)
		h.value(v.Elem())
		delete(h.visiting, p)
	case reflect.Interface:
		if v.IsNil() {
			h.tag(tagNil)
			return
		}
		e := v.Elem()
		h.word(tagIface, uint64(len(e.Type().String())))
		h.d.WriteString(e.Type().String())
		h.value(e)
	default:
		// funcs, channels and unsafe pointers compare by identity
		h.word(tagOpaque, uint64(v.Pointer()))
	}
}
