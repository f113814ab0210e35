package guard

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	kerrors "github.com/PolarWolf314/refuge/internal/errors"
)

func expectWeak(t *testing.T, pin string) {
	t.Helper()
	if err := ValidateStrength(pin); !errors.Is(err, kerrors.ErrWeakCredential) {
		t.Errorf("Expected %q to be rejected, got %v", pin, err)
	}
}

func TestValidateStrengthRejectsLengthAndCharacters(t *testing.T) {
	for _, pin := range []string{"", "12", "38271", "382719465", "3827a9", "38 719", "３８２７１９", "-38271"} {
		expectWeak(t, pin)
	}
}

func TestValidateStrengthRejectsAllSameDigits(t *testing.T) {
	for length := MinPinLength; length <= MaxPinLength; length++ {
		for d := '0'; d <= '9'; d++ {
			expectWeak(t, strings.Repeat(string(d), length))
		}
	}
}

func TestValidateStrengthRejectsSequencesWithWrap(t *testing.T) {
	for length := MinPinLength; length <= MaxPinLength; length++ {
		for start := 0; start < 10; start++ {
			var asc, desc strings.Builder
			for i := 0; i < length; i++ {
				asc.WriteByte(byte('0' + (start+i)%10))
				desc.WriteByte(byte('0' + (start-i+100)%10))
			}
			expectWeak(t, asc.String())
			expectWeak(t, desc.String())
		}
	}

	// Spot checks named in the rules.
	for _, pin := range []string{"901234", "456789", "098765", "89012345", "3210987"} {
		expectWeak(t, pin)
	}
}

func TestValidateStrengthRejectsShortRepeatingPatterns(t *testing.T) {
	for a := 0; a < 10; a++ {
		for b := 0; b < 10; b++ {
			pair := fmt.Sprintf("%d%d", a, b)
			expectWeak(t, strings.Repeat(pair, 3))
			expectWeak(t, strings.Repeat(pair, 4))

			for c := 0; c < 10; c++ {
				expectWeak(t, strings.Repeat(fmt.Sprintf("%d%d%d", a, b, c), 2))
			}
		}
	}

	expectWeak(t, "121212")
	expectWeak(t, "123123")
	expectWeak(t, "90909090")
}

func TestValidateStrengthRejectsCommonPins(t *testing.T) {
	for pin := range commonPins {
		expectWeak(t, pin)
	}
}

func TestValidateStrengthAcceptsNonPatternPins(t *testing.T) {
	for _, pin := range []string{"372915", "4829173", "58273916", "104729", "6620481"} {
		if err := ValidateStrength(pin); err != nil {
			t.Errorf("Expected %q to be accepted, got %v", pin, err)
		}
	}
}

func TestValidateStrengthSevenDigitsHaveNoShortPeriod(t *testing.T) {
	// 7 is not divisible by 2 or 3, so only other rules may reject it.
	if err := ValidateStrength("1212123"); err != nil {
		t.Errorf("Expected 1212123 to be accepted, got %v", err)
	}
}
