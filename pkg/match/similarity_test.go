package match

import "testing"

func TestTokenSortRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"identical", "SOCIETE GENERALE", "SOCIETE GENERALE", 100},
		{"token order ignored", "GENERALE SOCIETE", "SOCIETE GENERALE", 100},
		{"three tokens shuffled", "BANQUE DE FRANCE", "FRANCE BANQUE DE", 100},
		{"disjoint", "ACME", "ZENITH", 0},
		{"both empty", "", "", 0},
		{"one empty", "ACME", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TokenSortRatio(tt.a, tt.b); got != tt.want {
				t.Errorf("TokenSortRatio(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestTokenSortRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"SOCIETE GENERALE", "GENERALE SOC"},
		{"ACME HOLDING", "ACME"},
		{"NORDIC INVEST", "NORDIC INVESTMENTS"},
	}
	for _, p := range pairs {
		if ab, ba := TokenSortRatio(p[0], p[1]), TokenSortRatio(p[1], p[0]); ab != ba {
			t.Errorf("TokenSortRatio not symmetric for %q / %q: %d vs %d", p[0], p[1], ab, ba)
		}
	}
}

func TestTokenSortRatioOrdering(t *testing.T) {
	// A closer name must never score below a more distant one.
	base := "NORDIC INVESTMENT PARTNERS"
	close := TokenSortRatio(base, "NORDIC INVESTMENT PARTNER")
	far := TokenSortRatio(base, "NORDIC")
	if close <= far {
		t.Errorf("close = %d, far = %d, want close > far", close, far)
	}
}
