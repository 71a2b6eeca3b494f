package content

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/micportal/core"
)

// dataKeys are the content_data fields each type carries.
var dataKeys = map[Type][]string{
	TypeAboutFeature:     {"icon"},
	TypeAboutStat:        {"stat_value"},
	TypeAboutTestimonial: {"role"},
	TypeTeamMember:       {"role"},
	TypeEvent:            {"event_date", "venue", "price", "registration_link"},
}

// Input creates or replaces a content block.
type Input struct {
	Type        Type    `json:"content_type" validate:"required,contenttype"`
	Title       string  `json:"title" validate:"required,notblank"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url" validate:"omitempty,httpurl"`
	OrderIndex  int     `json:"order_index" validate:"min=0"`
	IsActive    bool    `json:"is_active"`
	Data        Data    `json:"content_data"`
}

// Clean trims the fields, turns blank optional strings into nulls and keeps only the
// content_data fields of the type. Events always carry all their fields.
func (in Input) Clean() Input {
	in.Title = core.CleanString(in.Title)
	in.Description = nullable(in.Description)
	in.ImageURL = nullable(in.ImageURL)

	data := Data{}
	for _, key := range dataKeys[in.Type] {
		v := core.CleanString(in.Data.String(key))
		if v != "" || in.Type == TypeEvent {
			data[key] = v
		}
	}
	in.Data = data
	return in
}

func (in Input) Validate(validate *validator.Validate) error {
	return validate.Struct(in)
}

func nullable(s *string) *string {
	if s == nil {
		return nil
	}
	v := core.CleanString(*s)
	if v == "" {
		return nil
	}
	return &v
}

var (
	contentTypeTag  = "contenttype"
	contentTypeText = "unknown content type"
)

// InitValidators registers the content validators; core.InitValidators must be called first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	types := make([]string, 0, len(typeLabels))
	for t := range typeLabels {
		types = append(types, string(t))
	}
	core.RegisterEnumValidation(validate, translator, contentTypeTag, contentTypeText, types...)
}
