package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/projectbuddy/projectbuddy/internal/models"
)

// RegisterValidators adds the domain enum tags to gin's binding validator:
// visibility, post_type, reaction, member_status and project_status.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	return registerValidators(v)
}

func registerValidators(v *validator.Validate) error {
	// Report fields by the name clients send them under.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return field.Name
	})

	tags := map[string]validator.Func{
		"visibility": func(fl validator.FieldLevel) bool {
			return models.Visibility(fl.Field().String()).Valid()
		},
		"post_type": func(fl validator.FieldLevel) bool {
			return models.PostType(fl.Field().String()).Valid()
		},
		"reaction": func(fl validator.FieldLevel) bool {
			return models.ReactionType(fl.Field().String()).Valid()
		},
		"member_status": func(fl validator.FieldLevel) bool {
			return models.MemberStatus(fl.Field().String()).Valid()
		},
		"project_status": func(fl validator.FieldLevel) bool {
			return models.ProjectStatus(fl.Field().String()).Valid()
		},
	}

	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}

	return nil
}
