package a68test

import "testing"

func TestScopeChecking(t *testing.T) {
	r := &Runner{}
	RunTestSuite(t, r, TestSuite{
		{
			Name:   "local-name-escapes-assignment",
			Source: `REF INT r := NIL; BEGIN INT x; r := x END`,
			Error:  "scope error",
		},
		{
			Name:   "local-name-escapes-result",
			Source: `PROC leak = REF INT: BEGIN INT x; x END; leak; SKIP`,
			Error:  "scope error",
		},
		{
			Name: "procedure-captures-local-frame",
			Source: `
PROC VOID hold;
BEGIN
  INT x := 1;
  hold := VOID: x := 2
END`,
			Error: "scope error",
		},
		{
			Name: "heap-generator-escapes",
			Source: `
REF INT r := NIL;
BEGIN r := HEAP INT END;
REF INT rr = r;
rr := 7;
print(rr)`,
			Output: "7",
		},
		{
			Name:   "identity-of-heap-name",
			Source: `REF INT r = HEAP INT; r := 7; print(r)`,
			Output: "7",
		},
		{
			Name:   "loc-generator",
			Source: `REF INT l = LOC INT; l := 3; print(l)`,
			Output: "3",
		},
		{
			Name:   "nil-never-escapes",
			Source: `REF INT r := NIL; BEGIN INT x := 0; r := NIL END; print("ok")`,
			Output: "ok",
		},
		{
			Name:   "dereference-nil",
			Source: `REF INT r := NIL; print(r)`,
			Error:  "NIL dereferenced",
		},
		{
			Name:   "assignment-through-nil",
			Source: `REF INT r := NIL; REF INT rr = r; rr := 7`,
			Error:  "assignment through NIL",
		},
	})
}
