package guard

import (
	"fmt"

	kerrors "github.com/PolarWolf314/refuge/internal/errors"
)

const (
	MinPinLength = 6
	MaxPinLength = 8
)

// commonPins are frequently chosen PINs not already caught by the pattern rules.
var commonPins = map[string]struct{}{
	"112233": {}, "123321": {}, "123654": {}, "147258": {}, "147852": {},
	"159357": {}, "159753": {}, "258369": {}, "369258": {}, "520520": {},
	"696969": {}, "741852": {}, "789456": {}, "963852": {}, "102030": {},
	"110110": {}, "112211": {}, "131313": {}, "142536": {}, "198019": {},
	"654123": {}, "777888": {}, "100200": {}, "111222": {}, "200000": {},
	"1122334": {}, "1234321": {}, "1472580": {}, "2580258": {},
	"11223344": {}, "12341234": {}, "12344321": {}, "11112222": {},
	"19701970": {}, "19801980": {}, "19901990": {}, "20002000": {},
	"14725836": {}, "25802580": {}, "69696969": {}, "87654321": {},
}

// ValidateStrength returns nil when candidate is an acceptable PIN, or an
// error wrapping ErrWeakCredential that names the failed rule.
func ValidateStrength(candidate string) error {
	if len(candidate) < MinPinLength || len(candidate) > MaxPinLength {
		return weak("pin must be %d to %d digits", MinPinLength, MaxPinLength)
	}

	for _, c := range candidate {
		if c < '0' || c > '9' {
			return weak("pin must contain only digits")
		}
	}

	if allSame(candidate) {
		return weak("pin must not repeat a single digit")
	}

	if isSequential(candidate, 1) || isSequential(candidate, 9) {
		return weak("pin must not be a sequence of consecutive digits")
	}

	if _, ok := commonPins[candidate]; ok {
		return weak("pin is too common")
	}

	for _, period := range []int{2, 3} {
		if hasPeriod(candidate, period) {
			return weak("pin must not be a short repeating pattern")
		}
	}

	return nil
}

func weak(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, kerrors.ErrWeakCredential)...)
}

func allSame(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

// isSequential reports whether every step between adjacent digits is step
// modulo 10. A step of 1 is ascending and 9 is descending, both wrapping
// through zero ("890123", "210987").
func isSequential(s string, step int) bool {
	for i := 1; i < len(s); i++ {
		prev := int(s[i-1] - '0')
		cur := int(s[i] - '0')
		if (prev+step)%10 != cur {
			return false
		}
	}
	return true
}

// hasPeriod reports whether s is a block of length period repeated to fill s.
func hasPeriod(s string, period int) bool {
	if len(s)%period != 0 {
		return false
	}
	for i := period; i < len(s); i++ {
		if s[i] != s[i%period] {
			return false
		}
	}
	return true
}
