package provisioner

import "testing"

func TestParseStrategy(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		"objects":    {in: "objects", want: StrategyObjects},
		"helm":       {in: "helm", want: StrategyHelm},
		"mixed case": {in: "Helm", want: StrategyHelm},
		"unknown":    {in: "kustomize", wantErr: true},
		"empty":      {in: "", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseStrategy(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseStrategy(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("ParseStrategy(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
