package a68test

import "testing"

func TestLoops(t *testing.T) {
	r := &Runner{}
	RunTestSuite(t, r, TestSuite{
		{
			Name:   "counter",
			Source: `FOR k TO 5 DO print(k) OD`,
			Output: "12345",
		},
		{
			Name:   "from-by",
			Source: `FOR k FROM 2 BY 3 TO 11 DO print(k) OD`,
			Output: "25811",
		},
		{
			Name:   "negative-by",
			Source: `FOR k FROM 5 BY -2 TO 1 DO print(k) OD`,
			Output: "531",
		},
		{
			Name:   "empty-range",
			Source: `FOR k FROM 3 TO 1 DO print(k) OD; print("x")`,
			Output: "x",
		},
		{
			Name:   "while",
			Source: `INT i := 0; WHILE i < 3 DO i +:= 1 OD; print(i)`,
			Output: "3",
		},
		{
			Name:   "until",
			Source: `INT i := 0; DO i +:= 1 UNTIL i = 3 OD; print(i)`,
			Output: "3",
		},
		{
			Name:   "counter-with-until",
			Source: `FOR k TO 10 DO print(k) UNTIL k = 3 OD`,
			Output: "123",
		},
		{
			Name:   "while-and-counter",
			Source: `INT sum := 0; FOR k TO 10 WHILE sum < 6 DO sum +:= k OD; print(sum)`,
			Output: "6",
		},
		{
			Name: "body-declarations-rebuilt",
			Source: `
FOR k TO 3 DO
  INT sq := k * k;
  print(sq)
OD`,
			Output: "149",
		},
		{
			Name: "nested-loops",
			Source: `
FOR i TO 3 DO
  FOR j TO i DO print(j) OD;
  print(" ")
OD`,
			Output: "1 12 123 ",
		},
		{
			Name:   "bounds-are-meek",
			Source: `INT n := 2; FOR k TO n + 1 DO print(k) OD`,
			Output: "123",
		},
		{
			Name: "counter-at-maximum",
			Source: `
INT n := 0;
FOR k FROM 9223372036854775806 TO 9223372036854775807 DO n +:= 1 OD;
print(n)`,
			Output: "2",
		},
		{
			Name: "by-zero-never-advances",
			Source: `
INT tries := 0;
FOR k BY 0 TO 5 WHILE tries < 3 DO tries +:= 1; print(k) OD;
print(tries)`,
			Output: "1113",
		},
		{
			Name: "reused-body-frame-is-reinitialized",
			Source: `
FOR k TO 2
DO INT t;
   IF k = 1 THEN t := 7 FI;
   print(t)
OD`,
			Output: "7",
			Error:  "initialization error",
		},
	})
}
