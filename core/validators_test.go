package core

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string  `json:"name" validate:"required,notblank"`
	Link  *string `json:"link" validate:"omitempty,httpurl"`
	Color string  `json:"color" validate:"required,shade"`
}

func newSampleValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	InitValidators(validate, translator)
	RegisterEnumValidation(validate, translator, "shade", "color must be red or blue", "red", "blue")
	return validate, translator
}

func TestInitValidators(t *testing.T) {
	validate, translator := newSampleValidator()
	link := func(s string) *string { return &s }

	tests := []struct {
		name string
		in   sample
		want []FieldError
	}{
		{name: "valid", in: sample{Name: "Ada", Link: link("https://mic.test/logo.png"), Color: "red"}},
		{name: "no link", in: sample{Name: "Ada", Color: "blue"}},
		{
			name: "blank name",
			in:   sample{Name: "  ", Color: "red"},
			want: []FieldError{{Field: "name", Error: "this field cannot be blank"}},
		},
		{
			name: "not a web link",
			in:   sample{Name: "Ada", Link: link("ftp://mic.test/file"), Color: "red"},
			want: []FieldError{{Field: "link", Error: "link must be an http or https link"}},
		},
		{
			name: "relative link",
			in:   sample{Name: "Ada", Link: link("/logo.png"), Color: "red"},
			want: []FieldError{{Field: "link", Error: "link must be an http or https link"}},
		},
		{
			name: "unknown color",
			in:   sample{Name: "Ada", Color: "green"},
			want: []FieldError{{Field: "color", Error: "color must be red or blue"}},
		},
		{
			name: "missing fields",
			in:   sample{Name: "Ada"},
			want: []FieldError{{Field: "color", Error: "this field is required"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.in)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			var vErrs validator.ValidationErrors
			require.ErrorAs(t, err, &vErrs)
			assert.Equal(t, tt.want, TranslateErrors(vErrs, translator))
		})
	}
}
