package validation

import (
	"CivicLearn/internal/models"
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const (
	notBlankTag     = "notblank"
	locationTypeTag = "location_type"
	electiveTag     = "elective"
	slugTag         = "slug"
)

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

	translator ut.Translator
	once       sync.Once

	locationTypes = map[string]struct{}{
		models.LocationWard:         {},
		models.LocationConstituency: {},
		models.LocationCounty:       {},
	}
	electives = map[string]struct{}{
		models.ElectivePresident: {},
		models.ElectiveGovernor:  {},
		models.ElectiveSenator:   {},
		models.ElectiveMP:        {},
		models.ElectiveWomenRep:  {},
		models.ElectiveMCA:       {},
	}
)

// Register installs the custom tags and JSON field naming on gin's binding
// validator. Safe to call more than once.
func Register() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		configure(v)
	})
}

func configure(v *validator.Validate) {
	english := en.New()
	uni := ut.New(english, english)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, translator)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(notBlankTag, notBlank)
	_ = v.RegisterValidation(locationTypeTag, inSet(locationTypes))
	_ = v.RegisterValidation(electiveTag, inSet(electives))
	_ = v.RegisterValidation(slugTag, func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})

	noop := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, locationTypeTag, electiveTag, slugTag} {
		_ = v.RegisterTranslation(tag, translator, noop, translateCustom)
	}
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return "this field cannot be blank"
	case locationTypeTag:
		return "must be one of ward, constituency, county"
	case electiveTag:
		return "unknown elective position"
	case slugTag:
		return "must be lowercase letters and digits separated by hyphens"
	default:
		return fe.Error()
	}
}

func notBlank(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

func inSet(set map[string]struct{}) validator.Func {
	return func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		// empty means "not given"; pair with required when it is not optional
		if str == "" {
			return true
		}
		_, found := set[str]
		return found
	}
}

// Errors turns a binding error into a field -> message map. Errors that are
// not validation failures (malformed JSON and the like) land under "body".
func Errors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if translator != nil {
			out[field] = fe.Translate(translator)
		} else {
			out[field] = fe.Error()
		}
	}
	return out
}
