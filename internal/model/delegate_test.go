package model

import "testing"

func TestDelegateIDIsEmpty(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		id    DelegateID
		empty bool
	}{
		{"", true},
		{"   ", true},
		{"\t\n", true},
		{"D42", false},
		{" D7 ", false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.id), func(t *testing.T) {
			t.Parallel()
			if got := tc.id.IsEmpty(); got != tc.empty {
				t.Errorf("IsEmpty(%q) = %v, expected %v", tc.id, got, tc.empty)
			}
		})
	}
}

func TestParseFormStatus(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected FormStatus
		wantErr  bool
	}{
		{"Submitted", FormSubmitted, false},
		{"submitted", FormSubmitted, false},
		{"Pending", FormPending, false},
		{"Not Submitted", FormNotSubmitted, false},
		{"", FormNotSubmitted, false},
		{"lost", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFormStatus(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("got %q, expected %q", got, tc.expected)
			}
		})
	}
}

func TestDelegateFormsComplete(t *testing.T) {
	t.Parallel()

	t.Run("both forms submitted is complete", func(t *testing.T) {
		t.Parallel()
		d := Delegate{LiabilityForm: FormSubmitted, TransportForm: FormSubmitted}
		if !d.FormsComplete() {
			t.Error("expected forms to be complete")
		}
	})

	t.Run("a pending form is not complete", func(t *testing.T) {
		t.Parallel()
		d := Delegate{LiabilityForm: FormSubmitted, TransportForm: FormPending}
		if d.FormsComplete() {
			t.Error("expected forms to be incomplete")
		}
	})
}
