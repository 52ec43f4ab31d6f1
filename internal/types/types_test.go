package types

import "testing"

func TestIdentical(t *testing.T) {
	arr5 := NewArray(5, Typ[Int])
	tests := []struct {
		name string
		x, y Type
		want bool
	}{
		{"same basic", Typ[Int], Typ[Int], true},
		{"different basic", Typ[Int], Typ[Double], false},
		{"equal arrays", arr5, NewArray(5, Typ[Int]), true},
		{"array length differs", arr5, NewArray(6, Typ[Int]), false},
		{"array elem differs", arr5, NewArray(5, Typ[Double]), false},
		{"pointers", NewPointer(Typ[Int]), NewPointer(Typ[Int]), true},
		{"pointer vs basic", NewPointer(Typ[Int]), Typ[Int], false},
		{"nil", nil, Typ[Int], false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Identical(tt.x, tt.y); got != tt.want {
				t.Errorf("Identical(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestPredicates(t *testing.T) {
	if !IsInt(Typ[Int]) || IsInt(Typ[Double]) {
		t.Error("IsInt mismatch")
	}
	if !IsDouble(Typ[Double]) || IsDouble(Typ[Bool]) {
		t.Error("IsDouble mismatch")
	}
	if !IsBool(Typ[Bool]) || IsBool(nil) {
		t.Error("IsBool mismatch")
	}
	if IsScalar(NewArray(3, Typ[Int])) {
		t.Error("IsScalar(array) = true, want false")
	}
	if got := Elem(NewPointer(Typ[Double])); got != Typ[Double] {
		t.Errorf("Elem(*double) = %v, want double", got)
	}
	if got := Elem(NewArray(2, Typ[Int])); got != Typ[Int] {
		t.Errorf("Elem([2]integer) = %v, want integer", got)
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		t    Type
		want string
	}{
		{Typ[Int], "integer"},
		{Typ[Double], "double"},
		{NewArray(7, Typ[Int]), "[7]integer"},
		{NewPointer(NewArray(7, Typ[Int])), "*[7]integer"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
