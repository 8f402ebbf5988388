package marketplace

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/threadswap/storefront/internal/api"
	"github.com/threadswap/storefront/internal/upload"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return strings.ToLower(fld.Name)
		}
		return name
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("condition", func(fl validator.FieldLevel) bool {
		return Condition(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		return Status(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("initialstatus", func(fl validator.FieldLevel) bool {
		s := Status(fl.Field().String())
		return s == StatusDraft || s == StatusActive
	})
	_ = v.RegisterValidation("listingsize", func(fl validator.FieldLevel) bool {
		return slices.Contains(Sizes, fl.Field().String())
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		u := sl.Current().Interface().(Upload)
		if _, err := upload.DetectImage(u.Data); err != nil {
			sl.ReportError(u.Data, "images", "Data", "image", err.Error())
		}
	}, Upload{})
	return v
}

// Validate checks a new listing before any request is made.
func (r CreateRequest) Validate() error {
	return validationError(validate.Struct(r))
}

// Validate checks the fields present in the patch.
func (r UpdateRequest) Validate() error {
	return validationError(validate.Struct(r))
}

// validationError turns the first validator failure into an
// *api.ValidationError.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &api.ValidationError{Msg: err.Error()}
	}
	fe := verrs[0]
	return &api.ValidationError{Field: fieldName(fe), Msg: message(fe)}
}

func fieldName(fe validator.FieldError) string {
	if strings.HasPrefix(fe.Namespace(), "CreateRequest.images[") || fe.Tag() == "image" {
		return "images"
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("at least %s required", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("maximum %s allowed", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return "must be greater than " + fe.Param()
	case "lte":
		return "cannot exceed " + fe.Param()
	case "category":
		return "select a category"
	case "condition":
		return "select the condition"
	case "listingsize":
		return "select a size"
	case "status":
		return "unknown status"
	case "initialstatus":
		return "new listings start as DRAFT or ACTIVE"
	case "image":
		return fe.Param()
	}
	return "is invalid"
}
