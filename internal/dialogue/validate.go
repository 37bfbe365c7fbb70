package dialogue

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	nonDigitRe = regexp.MustCompile(`\D`)
	dateRe     = regexp.MustCompile(`^(\d{2})[/\-.]?(\d{2})[/\-.]?(\d{4})$`)
)

// ExtractCPF strips everything that is not a digit and returns the remainder
// when it is exactly 11 digits long. This is the detection rule for "this
// message is a CPF".
func ExtractCPF(text string) (string, bool) {
	digits := nonDigitRe.ReplaceAllString(text, "")
	if len(digits) != 11 {
		return "", false
	}
	return digits, true
}

// ValidCPF runs the full modulo-11 check-digit validation on an 11-digit
// string. Repeated-pattern CPFs like 111.111.111-11 are rejected even though
// their check digits happen to match.
func ValidCPF(cpf string) bool {
	if len(cpf) != 11 {
		return false
	}
	allSame := true
	for i := 1; i < 11; i++ {
		if cpf[i] != cpf[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return false
	}

	digit := func(i int) int { return int(cpf[i] - '0') }

	sum := 0
	for i := 0; i < 9; i++ {
		sum += digit(i) * (10 - i)
	}
	check := (sum * 10) % 11
	if check == 10 {
		check = 0
	}
	if check != digit(9) {
		return false
	}

	sum = 0
	for i := 0; i < 10; i++ {
		sum += digit(i) * (11 - i)
	}
	check = (sum * 10) % 11
	if check == 10 {
		check = 0
	}
	return check == digit(10)
}

// ParseBirthDate accepts DD/MM/YYYY with /, -, . or no separator, rejects
// impossible calendar dates (31/02, month 13) and returns the normalized
// DD/MM/YYYY form.
func ParseBirthDate(text string) (string, bool) {
	m := dateRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return "", false
	}
	day := atoi2(m[1])
	month := atoi2(m[2])
	year := atoi4(m[3])
	if year < 1900 || year > time.Now().Year() {
		return "", false
	}

	// time.Date normalizes overflow (Feb 30 -> Mar 2); a round-trip mismatch
	// means the calendar date did not exist.
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return "", false
	}
	return fmt.Sprintf("%02d/%02d/%04d", day, month, year), true
}

// ValidEmail is a minimal sanity check; the CMS is the place for anything
// stricter.
func ValidEmail(text string) bool {
	text = strings.TrimSpace(text)
	at := strings.Index(text, "@")
	if at <= 0 || at == len(text)-1 {
		return false
	}
	domain := text[at+1:]
	return strings.Contains(domain, ".") && !strings.ContainsAny(text, " \t")
}

func atoi2(s string) int { return int(s[0]-'0')*10 + int(s[1]-'0') }

func atoi4(s string) int {
	n := 0
	for i := 0; i < 4; i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}
