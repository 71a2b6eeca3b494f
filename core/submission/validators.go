package submission

import (
	"fmt"
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/micportal/core"
)

var (
	decisionTag  = "decision"
	decisionText = "decision must be one of: approved, rejected, needs_improvement"

	stageTag  = "stage"
	stageText = "stage must be one of: under_incubation, looking_for_funding, found_company"

	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to the name or email"
)

// InitValidators registers the submission validators; core.InitValidators must be called first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterEnumValidation(validate, translator, decisionTag, decisionText,
		string(DecisionApproved), string(DecisionRejected), string(DecisionNeedsImprovement))

	stages := make([]string, 0, len(Stages))
	for _, st := range Stages {
		stages = append(stages, string(st))
	}
	core.RegisterEnumValidation(validate, translator, stageTag, stageText, stages...)

	validate.RegisterStructValidation(facultyStructValidation, NewFaculty{}, UpdateFaculty{})
	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(validate, translator, pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(validate, translator, pwdNotAllNumTag, pwdNotAllNumText)
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, pwdAttrSimText)
}

// Custom Validators

// facultyStructValidation applies the password policy to faculty accounts.
func facultyStructValidation(sl validator.StructLevel) {
	switch f := sl.Current().Interface().(type) {
	case NewFaculty:
		validatePassword(f.Password, f.Name, f.Email, sl)
	case UpdateFaculty:
		if f.Password != "" {
			validatePassword(f.Password, f.Name, f.Email, sl)
		}
	}
}

// validatePassword applies the password policy to provided password:
// - minLen: 8
// - no whitespace
// - no all numeric
// - no similarity with the name or the email
func validatePassword(pwd, name, email string, sl validator.StructLevel) {
	reportErr := func(tag string) {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}

	if len(pwd) < pwdMinLen {
		reportErr(pwdMinLenTag)
		return
	}

	var digitCount int
	for _, char := range pwd {
		if unicode.IsSpace(char) {
			reportErr(pwdNoSpaceTag)
			return
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
	}
	if digitCount == len([]rune(pwd)) {
		reportErr(pwdNotAllNumTag)
		return
	}

	getRatio := func(pass, attr string) float64 {
		if attr == "" {
			return 0
		}
		return difflib.NewMatcher(strings.Split(strings.ToLower(pass), ""), strings.Split(strings.ToLower(attr), "")).QuickRatio()
	}
	local := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		local = email[:at]
	}
	if getRatio(pwd, name) >= pwdMaxSim || getRatio(pwd, local) >= pwdMaxSim {
		reportErr(pwdAttrSimTag)
	}
}
