package reactively

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	Name string
	Tags []string
}

type user struct {
	ID      int
	Profile *profile
	Meta    map[string]int
}

func TestCore(t *testing.T) {
	/*
	   a  b
	   | /
	   c
	*/
	t.Run("two values", func(t *testing.T) {
		sys := NewSystem()

		a := NewValue(sys, 7)
		b := NewValue(sys, 1)
		callCount := 0

		c := NewDerived(sys, func() int {
			callCount++
			return a.Read() * b.Read()
		})

		assert.Equal(t, 7, c.Read())

		a.Set(2)
		assert.Equal(t, 2, c.Read())

		b.Set(3)
		assert.Equal(t, 6, c.Read())

		assert.Equal(t, 3, callCount)
		c.Read()
		assert.Equal(t, 3, callCount)
	})

	/*
	   a  b
	   | /
	   c
	   |
	   d
	*/
	t.Run("dependent derived", func(t *testing.T) {
		sys := NewSystem()
		a := NewValue(sys, 7)
		b := NewValue(sys, 1)

		callCount1 := 0
		c := NewDerived(sys, func() int {
			callCount1++
			return a.Read() * b.Read()
		})

		callCount2 := 0
		d := NewDerived(sys, func() int {
			callCount2++
			return c.Read() + 1
		})

		assert.Equal(t, 8, d.Read())
		assert.Equal(t, 1, callCount1)
		assert.Equal(t, 1, callCount2)
		a.Set(3)
		assert.Equal(t, 4, d.Read())
		assert.Equal(t, 2, callCount1)
		assert.Equal(t, 2, callCount2)
	})

	/*
	   a
	   |
	   c
	*/
	t.Run("equality check", func(t *testing.T) {
		callCount := 0
		sys := NewSystem()
		a := NewValue(sys, 7)
		c := NewDerived(sys, func() int {
			callCount++
			return a.Read() + 10
		})

		c.Read()
		c.Read()
		assert.Equal(t, 1, callCount)
		a.Set(7)
		c.Read()
		assert.Equal(t, 1, callCount) // unchanged, equality check
	})

	/*
	   a     b
	   |     |
	   cA   cB
	   |   / (dynamically depends on cB)
	   cAB
	*/
	t.Run("dynamic derived", func(t *testing.T) {
		sys := NewSystem()
		a := NewValue(sys, 1)
		b := NewValue(sys, 2)
		var callCountA, callCountB, callCountAB int

		cA := NewDerived(sys, func() int {
			callCountA++
			return a.Read()
		})

		cB := NewDerived(sys, func() int {
			callCountB++
			return b.Read()
		})

		cAB := NewDerived(sys, func() int {
			callCountAB++
			if av := cA.Read(); av != 0 {
				return av
			}
			return cB.Read()
		})

		assert.Equal(t, 1, cAB.Read())
		a.Set(2)
		b.Set(3)
		assert.Equal(t, 2, cAB.Read())

		assert.Equal(t, 2, callCountA)
		assert.Equal(t, 2, callCountAB)
		assert.Equal(t, 0, callCountB)
		a.Set(0)
		assert.Equal(t, 3, cAB.Read())
		assert.Equal(t, 3, callCountA)
		assert.Equal(t, 3, callCountAB)
		assert.Equal(t, 1, callCountB)
		b.Set(4)
		assert.Equal(t, 4, cAB.Read())
		assert.Equal(t, 3, callCountA)
		assert.Equal(t, 4, callCountAB)
		assert.Equal(t, 2, callCountB)
	})

	/*
	   a
	   |
	   b (=)
	   |
	   c
	*/
	t.Run("boolean equality check", func(t *testing.T) {
		sys := NewSystem()
		a := NewValue(sys, 0)
		b := NewDerived(sys, func() bool {
			return a.Read() > 0
		})
		callCount := 0

		c := NewDerived(sys, func() int {
			callCount++
			if b.Read() {
				return 1
			}
			return 0
		})

		assert.Equal(t, 0, c.Read())
		assert.Equal(t, 1, callCount)

		a.Set(1)
		assert.Equal(t, 1, c.Read())
		assert.Equal(t, 2, callCount)

		a.Set(2)
		assert.Equal(t, 1, c.Read())
		assert.Equal(t, 2, callCount) // unchanged, oughtn't run because bool didn't change
	})

	/*
	   s
	   |
	   a
	   | \
	   b  c
	    \ |
	      d
	*/
	t.Run("diamond derived", func(t *testing.T) {
		sys := NewSystem()
		s := NewValue(sys, 1)
		a := NewDerived(sys, func() int {
			return s.Read()
		})
		b := NewDerived(sys, func() int {
			return a.Read() * 2
		})
		c := NewDerived(sys, func() int {
			return a.Read() * 3
		})
		callCount := 0
		d := NewDerived(sys, func() int {
			callCount++
			return b.Read() + c.Read()
		})

		assert.Equal(t, 5, d.Read())
		assert.Equal(t, 1, callCount)
		s.Set(2)
		assert.Equal(t, 10, d.Read())
		assert.Equal(t, 2, callCount)
		s.Set(3)
		assert.Equal(t, 15, d.Read())
		assert.Equal(t, 3, callCount)
	})

	/*
	   s
	   |
	   l  a (sets s)
	*/
	t.Run("set inside reaction", func(t *testing.T) {
		sys := NewSystem()
		s := NewValue(sys, 1)
		a := NewDerived(sys, func() bool {
			s.Set(2)
			return true
		})
		l := NewDerived(sys, func() int {
			return s.Read() + 100
		})

		a.Read()
		assert.Equal(t, 102, l.Read())
	})

	t.Run("untracked read", func(t *testing.T) {
		sys := NewSystem()
		src := NewValue(sys, 0)
		c := NewDerived(sys, func() int {
			var v int
			sys.Untracked(func() {
				v = src.Read()
			})
			return v
		})
		assert.Equal(t, 0, c.Read())

		src.Set(1)
		assert.Equal(t, 0, c.Read())
	})
}

func TestWatchDeep(t *testing.T) {
	t.Run("fires once per write", func(t *testing.T) {
		sys := NewSystem()
		count := NewValue(sys, 0)
		calls := 0
		stop := WatchDeep(count, func() { calls++ })
		defer stop()

		count.Set(1)
		count.Set(2)
		count.Update(func(v *int) { *v++ })
		assert.Equal(t, 3, calls)
		assert.Equal(t, 3, count.Peek())
	})

	t.Run("same value does not fire", func(t *testing.T) {
		sys := NewSystem()
		name := NewValue(sys, "a")
		calls := 0
		WatchDeep(name, func() { calls++ })

		name.Set("a")
		name.Update(func(*string) {})
		assert.Zero(t, calls)
	})

	t.Run("nested field through pointer", func(t *testing.T) {
		sys := NewSystem()
		u := NewValue(sys, user{ID: 1, Profile: &profile{Name: "a"}})
		calls := 0
		WatchDeep(u, func() { calls++ })

		u.Update(func(v *user) { v.Profile.Name = "b" })
		assert.Equal(t, 1, calls)

		u.Update(func(v *user) { v.Profile.Tags = append(v.Profile.Tags, "x") })
		assert.Equal(t, 2, calls)

		u.Update(func(v *user) { v.Meta = map[string]int{"k": 1} })
		assert.Equal(t, 3, calls)

		u.Update(func(v *user) { v.Meta["k"] = 2 })
		assert.Equal(t, 4, calls)
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		sys := NewSystem()
		v := NewValue(sys, 0)
		calls := 0
		stop := WatchDeep(v, func() { calls++ })

		v.Set(1)
		stop()
		stop()
		v.Set(2)
		assert.Equal(t, 1, calls)
		assert.Empty(t, v.observers)
	})

	t.Run("derived fires only on value change", func(t *testing.T) {
		sys := NewSystem()
		n := NewValue(sys, 1)
		even := NewDerived(sys, func() bool { return n.Read()%2 == 0 })
		calls := 0
		WatchDeep(even, func() { calls++ })

		n.Set(3)
		assert.Zero(t, calls)
		n.Set(4)
		assert.Equal(t, 1, calls)
		assert.True(t, even.Peek())
	})

	t.Run("write from callback is delivered in the same stack", func(t *testing.T) {
		sys := NewSystem()
		a := NewValue(sys, 0)
		b := NewValue(sys, 0)
		var seen []int
		WatchDeep(a, func() { b.Set(a.Peek() * 10) })
		WatchDeep(b, func() { seen = append(seen, b.Peek()) })

		a.Set(1)
		a.Set(2)
		assert.Equal(t, []int{10, 20}, seen)
	})

	t.Run("panic in derived propagates", func(t *testing.T) {
		sys := NewSystem()
		n := NewValue(sys, 0)
		d := NewDerived(sys, func() int {
			if n.Read() > 0 {
				panic("boom")
			}
			return 0
		})
		WatchDeep(d, func() {})

		require.PanicsWithValue(t, "boom", func() { n.Set(1) })
		assert.Nil(t, sys.current)
		assert.False(t, sys.flushing)
	})
}

func TestFingerprint(t *testing.T) {
	type node struct {
		Next *node
		V    int
	}

	tests := []struct {
		name  string
		a, b  any
		equal bool
	}{
		{"ints", 1, 1, true},
		{"different ints", 1, 2, false},
		{"int vs uint", int(1), uint(1), false},
		{"strings", "ab", "ab", true},
		{"string split", []string{"a", "bc"}, []string{"ab", "c"}, false},
		{"nil vs empty slice", []int(nil), []int{}, false},
		{"maps ignore order", map[string]int{"a": 1, "b": 2}, map[string]int{"b": 2, "a": 1}, true},
		{"maps differ", map[string]int{"a": 1}, map[string]int{"a": 2}, false},
		{"pointer contents", &profile{Name: "x"}, &profile{Name: "x"}, true},
		{"pointer contents differ", &profile{Name: "x"}, &profile{Name: "y"}, false},
		{"interface element types", []any{int32(1)}, []any{int64(1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, Fingerprint(tt.a) == Fingerprint(tt.b))
		})
	}

	t.Run("cycles terminate", func(t *testing.T) {
		n := &node{V: 1}
		n.Next = n
		m := &node{V: 1}
		m.Next = m
		assert.Equal(t, Fingerprint(n), Fingerprint(m))
	})
}
