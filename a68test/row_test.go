package a68test

import "testing"

func TestRows(t *testing.T) {
	r := &Runner{}
	RunTestSuite(t, r, TestSuite{
		{
			Name:   "display",
			Source: `[1:3] INT a := (1, 2, 3); print(a)`,
			Output: "(1, 2, 3)",
		},
		{
			Name: "subscript-assignment",
			Source: `
[1:3] INT a;
FOR k TO 3 DO a[k] := k * k OD;
print(a)`,
			Output: "(1, 4, 9)",
		},
		{
			Name:   "subscript-read",
			Source: `[1:3] INT a := (10, 20, 30); print(a[2])`,
			Output: "20",
		},
		{
			Name: "computed-bounds",
			Source: `
INT n := 2;
[1:n + 1] INT a := (7, 8, 9);
print(a[3])`,
			Output: "9",
		},
		{
			Name: "assignment-copies",
			Source: `
[1:2] INT a := (1, 2);
[1:2] INT b;
b := a;
a[1] := 99;
print(b)`,
			Output: "(1, 2)",
		},
		{
			Name:   "rowing",
			Source: `[1:1] INT one := 7; print(one)`,
			Output: "(7)",
		},
		{
			Name:   "element-widening",
			Source: `[1:2] REAL xs := (1, 2.5); print(xs)`,
			Output: "(1, 2.5)",
		},
		{
			Name:   "uninitialized-element-display",
			Source: `[1:3] INT a; a[2] := 5; print(a)`,
			Output: "(SKIP, 5, SKIP)",
		},
		{
			Name:   "subscript-out-of-bounds",
			Source: `[1:3] INT a; a[4] := 1`,
			Error:  "bounds error",
		},
		{
			Name:   "uninitialized-element-read",
			Source: `[1:2] INT a; a[1] := 7; print(a[2])`,
			Error:  "initialization error",
		},
		{
			Name:   "string-is-a-character-row",
			Source: `STRING s := "abc"; print((s, "/", s + s))`,
			Output: "abc/abcabc",
		},
		{
			Name:   "subscript-under-repeated-calls",
			Source: `PROC f = ([] INT a) REAL: a[2] + 0.5; print((f((1, 2, 3)), " ", f((5, 6, 7))))`,
			Output: "2.5 6.5",
		},
		{
			Name: "subscript-of-subscript",
			Source: `
[1:3] INT a := (10, 20, 30);
[] INT b = (3, 1);
PROC pick = INT: a[b[1]];
print((pick + 0, " ", pick + 0))`,
			Output: "30 30",
		},
	})
}

func TestStructures(t *testing.T) {
	r := &Runner{}
	RunTestSuite(t, r, TestSuite{
		{
			Name: "display-and-selection",
			Source: `
MODE PAIR = STRUCT (INT x, INT y);
PAIR p := (3, 4);
print((x OF p, y OF p, " ", p))`,
			Output: "34 (3, 4)",
		},
		{
			Name: "field-assignment",
			Source: `
MODE PAIR = STRUCT (INT x, INT y);
PAIR p := (3, 4);
x OF p := 9;
print(p)`,
			Output: "(9, 4)",
		},
		{
			Name: "mixed-fields",
			Source: `
MODE ENTRY = STRUCT (STRING name, REAL score);
ENTRY e := ("ada", 9.5);
print((name OF e, " ", score OF e))`,
			Output: "ada 9.5",
		},
		{
			Name: "struct-assignment-copies-rows",
			Source: `
MODE BOX = STRUCT ([] INT row, INT tag);
BOX a := ((1, 2), 5);
BOX b := a;
row OF a := (8, 9);
print((row OF b, " ", tag OF b))`,
			Output: "(1, 2) 5",
		},
		{
			Name: "shared-field-declarer",
			Source: `
MODE PT = STRUCT (INT x, y);
PT p := (1, 2);
print((x OF p, y OF p))`,
			Output: "12",
		},
	})
}

func TestUnions(t *testing.T) {
	r := &Runner{}
	RunTestSuite(t, r, TestSuite{
		{
			Name: "conformity-dispatch",
			Source: `
UNION (INT, STRING) u := 42;
CASE u IN (INT i): print(i), (STRING s): print(s) ESAC;
u := "hi";
CASE u IN (INT i): print(i), (STRING s): print(s) ESAC`,
			Output: "42hi",
		},
		{
			Name: "conformity-out",
			Source: `
UNION (INT, REAL) u := 1.5;
CASE u IN (INT i): print("int") OUT print("other") ESAC`,
			Output: "other",
		},
		{
			Name: "conformity-without-binding",
			Source: `
UNION (INT, BOOL) u := TRUE;
CASE u IN (INT): print("int"), (BOOL): print("bool") ESAC`,
			Output: "bool",
		},
		{
			Name: "conformity-balances",
			Source: `
UNION (INT, REAL) u := 2;
print(CASE u IN (INT i): i * 10, (REAL x): 0 ESAC)`,
			Output: "20",
		},
		{
			Name: "widening-into-union",
			Source: `
UNION (REAL, BOOL) u := 1;
CASE u IN (REAL x): print(x), (BOOL b): print(b) ESAC`,
			Output: "1",
		},
		{
			Name:   "union-formats-payload",
			Source: `UNION (INT, STRING) u := "deep"; print(u)`,
			Output: "deep",
		},
	})
}
