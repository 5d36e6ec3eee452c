package safe

import (
	"math"
	"testing"
)

type uint32TestCase[T Integer] struct {
	name    string
	v       T
	want    uint32
	wantErr bool
}

func runUint32Case[T Integer](t *testing.T, tc uint32TestCase[T]) {
	t.Helper()

	t.Run(tc.name, func(t *testing.T) {
		got, err := Uint32(tc.v)
		if (err != nil) != tc.wantErr {
			t.Errorf("Uint32() error = %v, wantErr %v", err, tc.wantErr)
			return
		}
		if got != tc.want {
			t.Errorf("Uint32() got = %v, want %v", got, tc.want)
		}
	})
}

func TestUint32(t *testing.T) {
	runUint32Case(t, uint32TestCase[int]{name: "int within range", v: 42, want: 42})
	runUint32Case(t, uint32TestCase[int]{name: "int negative", v: -1, wantErr: true})
	runUint32Case(t, uint32TestCase[int64]{name: "int64 overflow", v: int64(math.MaxUint32) + 1, wantErr: true})
	runUint32Case(t, uint32TestCase[int64]{name: "int64 boundary ok", v: int64(math.MaxUint32), want: math.MaxUint32})
	runUint32Case(t, uint32TestCase[uint64]{name: "uint64 overflow", v: math.MaxUint32 + 1, wantErr: true})
	runUint32Case(t, uint32TestCase[uint32]{name: "uint32 max", v: math.MaxUint32, want: math.MaxUint32})
	runUint32Case(t, uint32TestCase[uint]{name: "uint small", v: 7, want: 7})
	runUint32Case(t, uint32TestCase[int32]{name: "int32 negative", v: -5, wantErr: true})
	runUint32Case(t, uint32TestCase[int64]{name: "zero", v: 0, want: 0})
}

type uint64TestCase[T Integer] struct {
	name    string
	v       T
	want    uint64
	wantErr bool
}

func runUint64Case[T Integer](t *testing.T, tc uint64TestCase[T]) {
	t.Helper()

	t.Run(tc.name, func(t *testing.T) {
		got, err := Uint64(tc.v)
		if (err != nil) != tc.wantErr {
			t.Errorf("Uint64() error = %v, wantErr %v", err, tc.wantErr)
			return
		}
		if got != tc.want {
			t.Errorf("Uint64() got = %v, want %v", got, tc.want)
		}
	})
}

func TestUint64(t *testing.T) {
	runUint64Case(t, uint64TestCase[int]{name: "int positive", v: 99, want: 99})
	runUint64Case(t, uint64TestCase[int]{name: "int negative", v: -1, wantErr: true})
	runUint64Case(t, uint64TestCase[int64]{name: "int64 negative", v: -100, wantErr: true})
	runUint64Case(t, uint64TestCase[int64]{name: "int64 large positive", v: math.MaxInt64, want: math.MaxInt64})
	runUint64Case(t, uint64TestCase[uint64]{name: "uint64 value", v: math.MaxUint64, want: math.MaxUint64})
	runUint64Case(t, uint64TestCase[int32]{name: "int32 zero", v: 0, want: 0})
}

func TestInt(t *testing.T) {
	t.Parallel()

	if got, err := Int(uint32(825_000)); err != nil || got != 825_000 {
		t.Fatalf("Int(uint32) = %v, %v", got, err)
	}
	if got, err := Int(uint64(12)); err != nil || got != 12 {
		t.Fatalf("Int(uint64) = %v, %v", got, err)
	}
	if _, err := Int(uint64(math.MaxUint64)); err == nil {
		t.Fatal("Int(MaxUint64) expected error")
	}
}
