package remote

import (
	"errors"
	"strconv"
	"testing"
)

func TestValidatePortRejects(t *testing.T) {
	cases := []string{"", " ", "abc", "1024", "0", "-1", "65536", "70000", "12.5", "0x1000", "99999999999999999999"}
	for _, in := range cases {
		if _, err := ValidatePort(in); err == nil {
			t.Fatalf("ValidatePort(%q) succeeded, want error", in)
		} else {
			var pe *InvalidPortError
			if !errors.As(err, &pe) {
				t.Fatalf("ValidatePort(%q) error %T is not *InvalidPortError", in, err)
			}
			if pe.Input != in || pe.Field != PortFieldName {
				t.Fatalf("unexpected error fields %+v", pe)
			}
			if !errors.Is(err, ErrInvalidPort) {
				t.Fatalf("ValidatePort(%q) error does not match ErrInvalidPort", in)
			}
		}
	}
}

func TestValidatePortAcceptsUserRange(t *testing.T) {
	for port := MinUserPort; port <= MaxUserPort; port++ {
		got, err := ValidatePort(strconv.Itoa(port))
		if err != nil {
			t.Fatalf("ValidatePort(%d): %v", port, err)
		}
		if got != port {
			t.Fatalf("ValidatePort(%d) = %d", port, got)
		}
	}
}

func TestValidatePortTrimsWhitespace(t *testing.T) {
	got, err := ValidatePort(" 6050\n")
	if err != nil || got != 6050 {
		t.Fatalf("got %d, %v", got, err)
	}
}

func TestInvalidPortErrorMessageNamesField(t *testing.T) {
	_, err := ValidatePort("70000")
	want := "You must enter an integer value in the interval 1025-65535 in the text field for 'Remote server port'"
	if err == nil || err.Error() != want {
		t.Fatalf("unexpected message %v", err)
	}
}

func TestInvalidPortErrorUnwrapsParseError(t *testing.T) {
	_, err := ValidatePort("abc")
	if errors.Unwrap(err) == nil {
		t.Fatalf("expected wrapped strconv error")
	}
	_, err = ValidatePort("80")
	if errors.Unwrap(err) != nil {
		t.Fatalf("range error should not wrap anything")
	}
}
