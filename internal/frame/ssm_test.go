// internal/frame/ssm_test.go
package frame

import "testing"

func TestCombineSSM(t *testing.T) {
	cases := []struct {
		a, b, want SSM
	}{
		{SSMFailureWarning, SSMNormalOperation, SSMFailureWarning},
		{SSMData, SSMData, SSMData},
		{SSMFunctionalTest, SSMNormalOperation, SSMFunctionalTest},
		{SSMFunctionalTest, SSMNoComputedData, SSMNoComputedData},
		{SSMNormalOperation, SSMData, SSMNormalOperation},
	}
	for _, tc := range cases {
		if got := CombineSSM(tc.a, tc.b); got != tc.want {
			t.Fatalf("CombineSSM(%v,%v)=%v want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestCombineSSM_CommutativeAssociative(t *testing.T) {
	all := []SSM{SSMData, SSMNormalOperation, SSMNoComputedData, SSMFunctionalTest, SSMFailureWarning}
	for _, a := range all {
		for _, b := range all {
			if CombineSSM(a, b) != CombineSSM(b, a) {
				t.Fatalf("not commutative for %v,%v", a, b)
			}
			for _, c := range all {
				l := CombineSSM(CombineSSM(a, b), c)
				r := CombineSSM(a, CombineSSM(b, c))
				if l != r {
					t.Fatalf("not associative for %v,%v,%v", a, b, c)
				}
			}
		}
	}
}

func TestParseSSM(t *testing.T) {
	got, err := ParseSSM("fw")
	if err != nil || got != SSMFailureWarning {
		t.Fatalf("got %v err=%v", got, err)
	}
	if _, err := ParseSSM("bogus"); err == nil {
		t.Fatalf("expected error")
	}
}
