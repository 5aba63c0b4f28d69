package path

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestEncodeTable checks Encode against a table of expected record keys,
// the one spot in this package that reaches for testify rather than plain
// testing, mirroring how sparingly the dependency is used elsewhere in the
// module.
func TestEncodeTable(t *testing.T) {
	cases := []struct {
		name string
		path Path
		kind RecordKind
		want string
	}{
		{"root object", nil, Object, "."},
		{"root array", nil, Array, "["},
		{"object scalar child", Path{Key("toplevel")}, Scalar, `."toplevel"=`},
		{"nested object", Path{Key("nested"), Key("a")}, Scalar, `."nested"."a"=`},
		{"array element", Path{Key("xs"), Index(0)}, Scalar, `."xs"[0]=`},
		{"deep mixed path", Path{Key("a"), Key("b"), Key("c"), Index(0), Index(1)}, Scalar, `."a"."b"."c"[0][1]=`},
		{"key with special bytes", Path{Key(`a."b[c`)}, Scalar, `."a.\"b[c"=`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Encode(tc.path, tc.kind)
			require.Equal(t, tc.want, string(got))
		})
	}
}

func TestDecodeChildRoundTrip(t *testing.T) {
	parent := Path{Key("a"), Index(3)}
	child := parent.Child(Key(`weird".[]`))
	key := Encode(child, Scalar)

	step, remainder, ok := DecodeChild(parent, key)
	if !ok {
		t.Fatalf("DecodeChild: expected ok")
	}
	if step.Kind != KeyStepKind || step.Key != `weird".[]` {
		t.Fatalf("DecodeChild: got step %+v", step)
	}
	if !bytes.Equal(remainder, []byte{'='}) {
		t.Fatalf("DecodeChild: remainder = %q, want %q", remainder, "=")
	}
}

func TestDecodeChildArrayIndex(t *testing.T) {
	parent := Path{Key("xs")}
	child := parent.Child(Index(42))
	key := Encode(child, Object)

	step, remainder, ok := DecodeChild(parent, key)
	if !ok {
		t.Fatalf("DecodeChild: expected ok")
	}
	if step.Kind != IndexStepKind || step.Index != 42 {
		t.Fatalf("DecodeChild: got step %+v", step)
	}
	if !bytes.Equal(remainder, []byte{'.'}) {
		t.Fatalf("DecodeChild: remainder = %q, want %q", remainder, ".")
	}
}

func TestDecodeChildRejectsOwnMarker(t *testing.T) {
	p := Path{Key("a")}
	marker := Encode(p, Object)

	if _, _, ok := DecodeChild(p, marker); ok {
		t.Fatalf("DecodeChild: own marker key should not decode as a child")
	}
}

func TestDecodeChildRejectsUnrelatedKey(t *testing.T) {
	p := Path{Key("a")}
	unrelated := Encode(Path{Key("b")}, Scalar)

	if _, _, ok := DecodeChild(p, unrelated); ok {
		t.Fatalf("DecodeChild: unrelated key should not decode as a child")
	}
}

// TestContainerRangeOrdering:
// keys "a", "b", "a.b", "a[" must each sort into the object's container range
// exactly once and not collide with one another.
func TestContainerRangeOrdering(t *testing.T) {
	root := Path(nil)
	lo, hi := ContainerRange(root, Object)

	keys := []string{"a", "b", "a.b", "a["}
	encoded := make([][]byte, len(keys))
	for i, k := range keys {
		encoded[i] = Encode(Path{Key(k)}, Scalar)
		if bytes.Compare(encoded[i], lo) < 0 || bytes.Compare(encoded[i], hi) >= 0 {
			t.Fatalf("key %q encoded %q is outside root container range [%q, %q)", k, encoded[i], lo, hi)
		}
	}

	for i := range encoded {
		for j := range encoded {
			if i == j {
				continue
			}
			if bytes.Equal(encoded[i], encoded[j]) {
				t.Fatalf("keys %q and %q collide", keys[i], keys[j])
			}
		}
	}
}

func TestContainerRangeExcludesOwnMarker(t *testing.T) {
	p := Path{Key("a")}
	marker := Encode(p, Object)
	lo, hi := ContainerRange(p, Object)

	if bytes.Compare(marker, lo) >= 0 && bytes.Compare(marker, hi) < 0 {
		t.Fatalf("ContainerRange must exclude the container's own marker record")
	}
}

func TestContainerRangeExcludesOwnArrayMarker(t *testing.T) {
	p := Path{Key("xs")}
	marker := Encode(p, Array)
	lo, hi := ContainerRange(p, Array)

	if bytes.Compare(marker, lo) >= 0 && bytes.Compare(marker, hi) < 0 {
		t.Fatalf("ContainerRange must exclude the array's own marker record")
	}

	elem := Encode(p.Child(Index(0)), Scalar)
	if bytes.Compare(elem, lo) < 0 || bytes.Compare(elem, hi) >= 0 {
		t.Fatalf("ContainerRange must include array elements")
	}
}

func TestContainerRangeIncludesChildren(t *testing.T) {
	p := Path{Key("a")}
	lo, hi := ContainerRange(p, Object)

	child := Encode(p.Child(Key("b")), Scalar)
	if bytes.Compare(child, lo) < 0 || bytes.Compare(child, hi) >= 0 {
		t.Fatalf("ContainerRange must include direct children")
	}

	grandchild := Encode(p.Child(Key("b")).Child(Key("c")), Scalar)
	if bytes.Compare(grandchild, lo) < 0 || bytes.Compare(grandchild, hi) >= 0 {
		t.Fatalf("ContainerRange must include deeper descendants")
	}

	sibling := Encode(Path{Key("z")}, Scalar)
	if bytes.Compare(sibling, lo) >= 0 && bytes.Compare(sibling, hi) < 0 {
		t.Fatalf("ContainerRange must not include unrelated siblings")
	}
}

func TestArrayChildrenByteOrderIsNotNumericOrder(t *testing.T) {
	k2 := Encode(Path{Key("xs"), Index(2)}, Scalar)
	k10 := Encode(Path{Key("xs"), Index(10)}, Scalar)

	if bytes.Compare(k10, k2) >= 0 {
		t.Fatalf("expected byte order of index 10 to sort before index 2, got %q >= %q", k10, k2)
	}
}
