package config

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"todo-go/internal/models"
)

// Validate adalah validator bersama untuk form client dan request backend.
// models.Date dianggap kosong jika zero. Selain tag bawaan, tersedia:
//   - notpast: string tanggal YYYY-MM-DD yang tidak sebelum hari ini
//   - taskstatus: salah satu dari pending, in-progress, completed
var Validate = newValidator()

type clockKey struct{}

// WithClock attaches the clock used by the notpast rule.
func WithClock(ctx context.Context, now func() time.Time) context.Context {
	return context.WithValue(ctx, clockKey{}, now)
}

func clockFrom(ctx context.Context) func() time.Time {
	if now, ok := ctx.Value(clockKey{}).(func() time.Time); ok && now != nil {
		return now
	}
	return time.Now
}

func newValidator() *validator.Validate {
	v := validator.New()

	// Pakai nama json di pesan error supaya cocok dengan nama field form.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// models.Date divalidasi sebagai string YYYY-MM-DD, kosong jika zero,
	// supaya tag required bisa dipakai.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(models.Date); ok {
			return d.String()
		}
		return nil
	}, models.Date{})

	_ = v.RegisterValidationCtx("notpast", func(ctx context.Context, fl validator.FieldLevel) bool {
		due, err := models.ParseDate(fl.Field().String())
		if err != nil {
			return false
		}
		today := models.DateOf(clockFrom(ctx)())
		return !due.Before(today)
	})

	_ = v.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
		return models.Status(fl.Field().String()).Valid()
	})

	return v
}
