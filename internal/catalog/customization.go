package catalog

import (
	"strings"

	"github.com/GonzanDev/sellos-pro/internal/domain"
)

// Product categories. Each category owns its own customization schema, so
// validation dispatches once on the category instead of branching on strings
// at every call site.
const (
	CategoryPlain     = "plain"
	CategoryLogoKit   = "logo-kit"
	CategorySchool    = "school"
	CategoryInk       = "ink"
	CategoryFlavorKit = "flavor-kit"
)

type customizationSchema struct {
	// required option name -> message shown when it is missing
	required map[string]string
	// options that must be data-URI image references when present
	imageFields []string
}

var schemas = map[string]customizationSchema{
	CategoryPlain: {
		required: map[string]string{
			"text": "stamp text is required",
		},
	},
	CategoryLogoKit: {
		required: map[string]string{
			"logo": "an uploaded logo is required",
		},
		imageFields: []string{"logo"},
	},
	CategorySchool: {
		required: map[string]string{
			"school_name": "school name is required",
		},
	},
	CategoryInk: {
		required: map[string]string{
			"color": "ink color is required",
		},
	},
	CategoryFlavorKit: {
		required: map[string]string{
			"flavor": "flavor set is required",
		},
	},
}

// ValidateCustomization checks a customization against the category's
// schema and returns field-level errors, empty when valid. Unknown
// categories accept anything.
func ValidateCustomization(category string, c domain.Customization) map[string]string {
	schema, ok := schemas[category]
	if !ok {
		return nil
	}

	fieldErrors := make(map[string]string)
	for field, message := range schema.required {
		if isMissing(c[field]) {
			fieldErrors[field] = message
		}
	}
	for _, field := range schema.imageFields {
		value, ok := c[field].(string)
		if ok && value != "" && !strings.HasPrefix(value, "data:image/") {
			fieldErrors[field] = "must be an uploaded image"
		}
	}

	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}

func isMissing(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	default:
		return false
	}
}
