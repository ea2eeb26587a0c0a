package a68test

import "testing"

func TestProcedures(t *testing.T) {
	r := &Runner{}
	RunTestSuite(t, r, TestSuite{
		{
			Name:   "call",
			Source: `PROC add = (INT a, INT b) INT: a + b; print(add(40, 2))`,
			Output: "42",
		},
		{
			Name:   "recursion",
			Source: `PROC fac = (INT n) INT: IF n = 0 THEN 1 ELSE n * fac(n - 1) FI; print(fac(5))`,
			Output: "120",
		},
		{
			Name: "mutual-recursion",
			Source: `
PROC even = (INT n) BOOL: IF n = 0 THEN TRUE ELSE odd(n - 1) FI;
PROC odd = (INT n) BOOL: IF n = 0 THEN FALSE ELSE even(n - 1) FI;
print((even(10), " ", odd(7)))`,
			Output: "TRUE TRUE",
		},
		{
			Name: "statement-position-invocation",
			Source: `
INT count := 0;
PROC tick = INT: (count := count + 1; count);
tick; tick;
print(tick + 0)`,
			Output: "3",
		},
		{
			Name: "captured-variable",
			Source: `
INT x := 10;
PROC bump = VOID: x := x + 1;
bump; bump;
print(x)`,
			Output: "12",
		},
		{
			Name:   "argument-strong-context",
			Source: `PROC half = (REAL x) REAL: x / 2.0; print(half(5))`,
			Output: "2.5",
		},
		{
			Name:   "too-few-parameters",
			Source: `PROC add = (INT a, INT b) INT: a + b; print(add(1))`,
			Error:  "actual parameters",
		},
		{
			Name:   "frame-exhaustion",
			Source: `PROC down = INT: down; INT x := down`,
			Error:  "resource error",
		},
		{
			Name: "held-procedure-not-invoked-by-voiding",
			Source: `
INT n := 0;
PROC bump = VOID: n +:= 1;
PROC VOID hold;
hold := bump;
print(n);
hold;
print(n)`,
			Output: "01",
		},
		{
			Name: "skipped-procedure-value",
			Source: `
PROC VOID p := SKIP;
p;
PROC (INT) INT f := SKIP;
INT z := f(3);
print("ok")`,
			Output: "ok",
		},
	})
}

func TestPartialParametrization(t *testing.T) {
	r := &Runner{}
	RunTestSuite(t, r, TestSuite{
		{
			Name: "curry-first",
			Source: `
PROC add = (INT a, INT b) INT: a + b;
PROC (INT) INT inc = add(1, );
print(inc(41))`,
			Output: "42",
		},
		{
			Name: "curry-second",
			Source: `
PROC sub = (INT a, INT b) INT: a - b;
PROC (INT) INT fromten = sub(10, );
print(fromten(3))`,
			Output: "7",
		},
		{
			Name: "empty-parameter-pack",
			Source: `
PROC add = (INT a, INT b) INT: a + b;
PROC (INT, INT) INT same = add(, );
print(same(40, 2))`,
			Output: "42",
		},
		{
			Name: "locale-independence",
			Source: `
PROC add = (INT a, INT b) INT: a + b;
PROC (INT) INT inc = add(1, );
PROC (INT) INT dec = add(-1, );
print((inc(5), " ", dec(5), " ", inc(1), inc(2)))`,
			Output: "6 4 23",
		},
		{
			Name: "reuse-after-binding",
			Source: `
PROC join = (INT a, INT b, INT c) INT: a * 100 + b * 10 + c;
PROC (INT, INT) INT one = join(1, , );
PROC (INT) INT onetwo = one(2, );
print((onetwo(3), " ", one(9, 9)))`,
			Output: "123 199",
		},
	})
}
