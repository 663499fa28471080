package helper

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gofiber/fiber/v2"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	notBlankTag = "notblank"
	sessionTag  = "session"
	mobileTag   = "mobile"

	sessionRe = regexp.MustCompile(`^\d{4}-\d{2}$`)
	mobileRe  = regexp.MustCompile(`^(\+91)?[6-9]\d{9}$`)
)

func init() {
	Validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// json tag names in error keys
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = Validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = Validate.RegisterValidation(sessionTag, func(fl validator.FieldLevel) bool {
		return IsAcademicSession(fl.Field().String())
	})
	_ = Validate.RegisterValidation(mobileTag, func(fl validator.FieldLevel) bool {
		return mobileRe.MatchString(strings.ReplaceAll(fl.Field().String(), " ", ""))
	})

	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, sessionTag, mobileTag} {
		_ = Validate.RegisterTranslation(tag, Translator, registerFn, translateCustom)
	}
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	case sessionTag:
		return fe.Field() + " must look like 2024-25"
	case mobileTag:
		return fe.Field() + " must be a valid 10 digit mobile number"
	default:
		return fe.Error()
	}
}

// IsAcademicSession reports whether s is "YYYY-YY" with consecutive years.
func IsAcademicSession(s string) bool {
	if !sessionRe.MatchString(s) {
		return false
	}
	start := s[2:4]
	end := s[5:7]
	return (int(start[0]-'0')*10+int(start[1]-'0')+1)%100 == int(end[0]-'0')*10+int(end[1]-'0')
}

// ValidateStruct returns nil when v is valid, else a field -> messages map keyed by json path.
func ValidateStruct(v any) map[string][]string {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}
	ves, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string][]string{"_": {err.Error()}}
	}
	return FieldErrorsMap(ves)
}

func FieldErrorsMap(ves validator.ValidationErrors) map[string][]string {
	out := make(map[string][]string, len(ves))
	for _, fe := range ves {
		key := fieldPath(fe.Namespace())
		out[key] = append(out[key], fe.Translate(Translator))
	}
	return out
}

// "CreateEnquiryRequest.qualifications[0].board" -> "qualifications.0.board"
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	ns = strings.ReplaceAll(ns, "[", ".")
	ns = strings.ReplaceAll(ns, "]", "")
	return ns
}

// BindAndValidate parses the JSON body into dst and runs struct validation.
// The returned error is rendered by FiberErrorHandler.
func BindAndValidate(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if fields := ValidateStruct(dst); fields != nil {
		return NewValidationError(fields)
	}
	return nil
}

// BindQuery parses and validates query-string filters.
func BindQuery(c *fiber.Ctx, dst any) error {
	if err := c.QueryParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query: "+err.Error())
	}
	if fields := ValidateStruct(dst); fields != nil {
		return NewValidationError(fields)
	}
	return nil
}
