package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPlaceholderLabel(t *testing.T) {
	t.Parallel()

	if got := PlaceholderLabel(0); got != "Column_1" {
		t.Errorf("PlaceholderLabel(0) = %q, want Column_1", got)
	}
	if got := PlaceholderLabel(9); got != "Column_10" {
		t.Errorf("PlaceholderLabel(9) = %q, want Column_10", got)
	}
}

func TestHeaderLabelNormalize(t *testing.T) {
	t.Parallel()

	h := HeaderLabel{"", "Nome", "", "Tipo de Contrato"}
	got := h.Normalize()
	want := HeaderLabel{"Column_1", "Nome", "Column_3", "Tipo de Contrato"}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
	if h[0] != "" {
		t.Error("Normalize must not modify the receiver")
	}
}

func TestRecordKeys(t *testing.T) {
	t.Parallel()

	r := Record{"b": "2", "a": "1", "c": "3"}
	if diff := cmp.Diff([]string{"a", "b", "c"}, r.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}

	if _, ok := r.Get("missing"); ok {
		t.Error("Get reported a missing label as present")
	}
}

func TestSearchKeyValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		key     SearchKey
		wantErr bool
	}{
		{name: "formatted CPF", key: "123.456.789-00"},
		{name: "digits only", key: "12345678900"},
		{name: "empty", key: "", wantErr: true},
		{name: "whitespace only is still a key", key: "   "},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.key.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestOutcomeRoundTrip(t *testing.T) {
	t.Parallel()

	for _, o := range []Outcome{OutcomeFound, OutcomeNoMatch, OutcomeNoRecords, OutcomeNoContent} {
		got, ok := ParseOutcome(o.String())
		if !ok || got != o {
			t.Errorf("ParseOutcome(%q) = %v, %v", o.String(), got, ok)
		}
	}
	if _, ok := ParseOutcome("bogus"); ok {
		t.Error("ParseOutcome accepted an unknown label")
	}
	if Outcome(99).String() != "unknown" {
		t.Error("expected unknown label for out-of-range outcome")
	}
}
