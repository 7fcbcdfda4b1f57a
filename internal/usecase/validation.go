package usecase

import (
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)
	colorRe    = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

var brazilianStates = map[string]bool{
	"AC": true, "AL": true, "AP": true, "AM": true, "BA": true, "CE": true, "DF": true,
	"ES": true, "GO": true, "MA": true, "MT": true, "MS": true, "MG": true, "PA": true,
	"PB": true, "PR": true, "PE": true, "PI": true, "RJ": true, "RN": true, "RS": true,
	"RO": true, "RR": true, "SC": true, "SP": true, "SE": true, "TO": true,
}

// validationFailed junta os erros numa única mensagem, no formato que o front já exibe.
func validationFailed(errs []ValidationError) *DomainError {
	errMsg := "validation failed: "
	for i, e := range errs {
		if i > 0 {
			errMsg += ", "
		}
		errMsg += e.Field + " (" + e.Message + ")"
	}
	return &DomainError{Code: CodeValidation, Message: errMsg}
}

// validateFieldValue valida um campo editável do aluno. Valor vazio só é
// aceito nos campos opcionais.
func validateFieldValue(field, value string) *ValidationError {
	value = strings.TrimSpace(value)

	switch field {
	case "name":
		if value == "" {
			return &ValidationError{"name", "is required"}
		}
		if len([]rune(value)) < 3 {
			return &ValidationError{"name", "must have at least 3 characters"}
		}
		if len([]rune(value)) > 200 {
			return &ValidationError{"name", "must not exceed 200 characters"}
		}
	case "email":
		if value == "" {
			return &ValidationError{"email", "is required"}
		}
		// só o endereço puro; "Nome <email>" passa no ParseAddress mas não é aceito
		addr, err := mail.ParseAddress(value)
		if err != nil || addr.Name != "" || addr.Address != value {
			return &ValidationError{"email", "is invalid"}
		}
	}

	if value == "" {
		return nil
	}

	switch field {
	case "phone":
		if !isValidPhoneNumber(value) {
			return &ValidationError{"phone", "must be a valid phone number"}
		}
	case "cpf":
		if !isValidCPF(value) {
			return &ValidationError{"cpf", "is invalid"}
		}
	case "birth_date":
		t, err := time.Parse("2006-01-02", value)
		if err != nil {
			return &ValidationError{"birth_date", "must be a valid date (YYYY-MM-DD)"}
		}
		if t.After(time.Now()) {
			return &ValidationError{"birth_date", "must not be in the future"}
		}
	case "expected_close_date":
		if !isValidDate(value) {
			return &ValidationError{"expected_close_date", "must be a valid date (YYYY-MM-DD)"}
		}
	case "state":
		if !brazilianStates[strings.ToUpper(value)] {
			return &ValidationError{"state", "must be a valid UF"}
		}
	case "zip_code":
		if !isValidZipCode(value) {
			return &ValidationError{"zip_code", "must be a valid zip code (XXXXX-XXX)"}
		}
	case "currency":
		if !currencyRe.MatchString(value) {
			return &ValidationError{"currency", "must be an ISO-4217 code"}
		}
	case "deal_value":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return &ValidationError{"deal_value", "must be a number"}
		}
		if v < 0 {
			return &ValidationError{"deal_value", "must not be negative"}
		}
	}
	return nil
}

func validateTags(tags []entity.Tag) []ValidationError {
	var errs []ValidationError
	for i, t := range tags {
		if strings.TrimSpace(t.Name) == "" {
			errs = append(errs, ValidationError{fmt.Sprintf("tags[%d].name", i), "is required"})
		}
		if t.Color != "" && !colorRe.MatchString(t.Color) {
			errs = append(errs, ValidationError{fmt.Sprintf("tags[%d].color", i), "must be a hex color"})
		}
	}
	return errs
}

func isValidCPF(cpf string) bool {
	cleaned := nonDigitRe.ReplaceAllString(cpf, "")
	if len(cleaned) != 11 {
		return false
	}

	allEqual := true
	for i := 1; i < len(cleaned); i++ {
		if cleaned[i] != cleaned[0] {
			allEqual = false
			break
		}
	}
	return !allEqual
}

// 10 ou 11 dígitos nacionais, opcionalmente com o 55 na frente.
func isValidPhoneNumber(phone string) bool {
	cleaned := NormalizePhone(phone)
	if (len(cleaned) == 12 || len(cleaned) == 13) && strings.HasPrefix(cleaned, "55") {
		return true
	}
	return len(cleaned) >= 10 && len(cleaned) <= 11
}

func isValidDate(dateStr string) bool {
	if _, err := time.Parse("2006-01-02", dateStr); err == nil {
		return true
	}
	if _, err := time.Parse(time.RFC3339, dateStr); err == nil {
		return true
	}
	return false
}

func isValidZipCode(zipcode string) bool {
	return len(nonDigitRe.ReplaceAllString(zipcode, "")) == 8
}
