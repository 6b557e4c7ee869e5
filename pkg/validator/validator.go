package validator

import (
	stderrors "errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"invitegen/internal/model"
	"invitegen/utils"
)

type Validator struct {
	validate *validator.Validate
}

var (
	defaultValidator *Validator
	once             sync.Once
)

func New() *Validator {
	v := validator.New()

	// 错误里使用 json 字段名，方便前端对应
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Custom validators
	_ = v.RegisterValidation("clock", validateClock)
	_ = v.RegisterValidation("weekday", validateWeekday)

	return &Validator{validate: v}
}

// Default 进程内共享的校验器
func Default() *Validator {
	once.Do(func() {
		defaultValidator = New()
	})
	return defaultValidator
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// Details 把校验错误转换成 字段 -> 规则 的映射，用作错误响应的 details
func Details(err error) map[string]interface{} {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return nil
	}

	details := make(map[string]interface{}, len(verrs))
	for _, fe := range verrs {
		key := strings.TrimPrefix(fe.Namespace(), strings.SplitN(fe.Namespace(), ".", 2)[0]+".")
		if fe.Param() != "" {
			details[key] = fe.Tag() + "=" + fe.Param()
		} else {
			details[key] = fe.Tag()
		}
	}
	return details
}

func validateClock(fl validator.FieldLevel) bool {
	return utils.ValidateClock(fl.Field().String())
}

func validateWeekday(fl validator.FieldLevel) bool {
	day := fl.Field().String()
	for _, d := range model.Weekdays {
		if d == day {
			return true
		}
	}
	return false
}
