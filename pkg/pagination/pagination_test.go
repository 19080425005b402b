package pagination

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   Params
		want Params
	}{
		{in: Params{}, want: Params{Limit: DefaultLimit}},
		{in: Params{Limit: 5, Offset: 20}, want: Params{Limit: 5, Offset: 20}},
		{in: Params{Limit: 1000, Offset: -3}, want: Params{Limit: MaxLimit}},
	}
	for _, tc := range cases {
		if got := tc.in.Normalize(); got != tc.want {
			t.Fatalf("normalize %+v: expected %+v got %+v", tc.in, tc.want, got)
		}
	}
}

func TestPageOf(t *testing.T) {
	page := Params{Offset: 10}.PageOf(42)
	if page.Limit != DefaultLimit || page.Offset != 10 || page.Total != 42 {
		t.Fatalf("unexpected page %+v", page)
	}
}
