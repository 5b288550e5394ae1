package usecase

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"

	xerrors "auth-service/pkg/utils/errors"
)

var phoneDigits = regexp.MustCompile(`^\+7\d{10}$`)

// NormalizePhone reduces user input to the canonical +7XXXXXXXXXX form used
// as the key for all OTP state.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case len(digits) == 11 && digits[0] == '8':
		digits = "7" + digits[1:]
	case len(digits) == 10 && digits[0] == '9':
		digits = "7" + digits
	}
	phone := "+" + digits
	if !phoneDigits.MatchString(phone) {
		return "", xerrors.ErrInvalidRequest
	}
	return phone, nil
}

// Referral codes avoid 0/O/1/I so they survive being read over the phone.
const referralAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func GenerateReferralCode() string {
	code := make([]byte, 8)
	max := big.NewInt(int64(len(referralAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken
			panic(err)
		}
		code[i] = referralAlphabet[n.Int64()]
	}
	return string(code)
}

var translitMap = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "shch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

var (
	legalFormPrefix = regexp.MustCompile(`(?i)^(ООО|ОАО|ЗАО|ПАО|АО|ИП)\s*[«"']?`)
	quoteChars      = regexp.MustCompile(`[»«"']`)
	underscoreRuns  = regexp.MustCompile(`_+`)
)

// MakeOrgSlug transliterates an organization's short name into a compact
// ASCII slug for database naming.
func MakeOrgSlug(nameShort string) string {
	name := legalFormPrefix.ReplaceAllString(nameShort, "")
	name = strings.TrimSpace(quoteChars.ReplaceAllString(name, ""))

	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if tr, ok := translitMap[r]; ok {
			b.WriteString(tr)
		} else if r < 128 && (r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else if r == ' ' {
			b.WriteByte('_')
		}
	}

	slug := underscoreRuns.ReplaceAllString(b.String(), "_")
	slug = strings.Trim(slug, "_")
	if len(slug) > 20 {
		slug = slug[:20]
	}
	if slug == "" {
		slug = "org"
	}
	return slug
}
