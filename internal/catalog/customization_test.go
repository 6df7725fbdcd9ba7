package catalog

import (
	"testing"

	"github.com/GonzanDev/sellos-pro/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestValidateCustomization_PlainRequiresText(t *testing.T) {
	errs := ValidateCustomization(CategoryPlain, domain.Customization{})
	assert.Contains(t, errs, "text")

	errs = ValidateCustomization(CategoryPlain, domain.Customization{"text": "ACME SRL"})
	assert.Empty(t, errs)
}

func TestValidateCustomization_LogoKitRequiresUploadedLogo(t *testing.T) {
	errs := ValidateCustomization(CategoryLogoKit, domain.Customization{"logo": ""})
	assert.Contains(t, errs, "logo")

	errs = ValidateCustomization(CategoryLogoKit, domain.Customization{"logo": "not-an-image"})
	assert.Contains(t, errs, "logo")

	errs = ValidateCustomization(CategoryLogoKit, domain.Customization{
		"logo": "data:image/png;base64,iVBORw0KGgo=",
	})
	assert.Empty(t, errs)
}

func TestValidateCustomization_SchoolAndInkAndFlavor(t *testing.T) {
	assert.Contains(t, ValidateCustomization(CategorySchool, nil), "school_name")
	assert.Contains(t, ValidateCustomization(CategoryInk, nil), "color")
	assert.Contains(t, ValidateCustomization(CategoryFlavorKit, nil), "flavor")

	assert.Empty(t, ValidateCustomization(CategorySchool, domain.Customization{"school_name": "Escuela 12"}))
	assert.Empty(t, ValidateCustomization(CategoryInk, domain.Customization{"color": "blue"}))
	assert.Empty(t, ValidateCustomization(CategoryFlavorKit, domain.Customization{"flavor": "vanilla"}))
}

func TestValidateCustomization_UnknownCategoryAcceptsAnything(t *testing.T) {
	assert.Empty(t, ValidateCustomization("misc", nil))
	assert.Empty(t, ValidateCustomization("misc", domain.Customization{"whatever": 1}))
}
