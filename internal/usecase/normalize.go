package usecase

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	nonDigitRe    = regexp.MustCompile(`\D`)
	cpfSeparators = strings.NewReplacer(".", "", "-", "", " ", "")
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// NormalizeCPF remove pontos, traços e espaços.
func NormalizeCPF(cpf string) string {
	return cpfSeparators.Replace(cpf)
}

// NormalizePhone mantém só os dígitos.
func NormalizePhone(phone string) string {
	return nonDigitRe.ReplaceAllString(phone, "")
}

// NormalizeName deixa o nome comparável: NFC, minúsculo, sem espaços extras.
func NormalizeName(name string) string {
	s := strings.ToLower(norm.NFC.String(name))
	s = whitespaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
	return s
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FormatCPF devolve ###.###.###-## para um CPF de 11 dígitos; qualquer outra entrada volta intacta.
func FormatCPF(digits string) string {
	if len(digits) != 11 || nonDigitRe.MatchString(digits) {
		return digits
	}
	return digits[0:3] + "." + digits[3:6] + "." + digits[6:9] + "-" + digits[9:11]
}
