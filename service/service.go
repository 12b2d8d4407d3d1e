package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"cafeteria-api/apperr"
	"cafeteria-api/events"
	"cafeteria-api/logger"
	"cafeteria-api/mailer"
	"cafeteria-api/metrics"
	"cafeteria-api/store"

	"github.com/go-playground/validator/v10"
)

const publishTimeout = 5 * time.Second

// Deps is shared by every engine. Store is required; the rest fall back to no-ops.
type Deps struct {
	Store   *store.Store
	Mailer  mailer.Mailer
	Events  events.Publisher
	Metrics *metrics.Metrics
	Log     logger.Logger
	Now     func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Store == nil {
		panic("service: nil store")
	}
	if d.Log == nil {
		d.Log = logger.NewNop()
	}
	if d.Mailer == nil {
		d.Mailer = mailer.NewLogMailer(d.Log)
	}
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// publish runs after commit. Failures are logged and counted, never returned.
func (d Deps) publish(ctx context.Context, ev events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := d.Events.Publish(ctx, ev); err != nil {
		d.Metrics.PublishFailed()
		d.Log.Warnf("failed to publish %s for order %d: %v", ev.Type, ev.OrderID, err)
	}
}

// ── Validation ──────────────────────────────────────────────────────────────

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateStruct converts the first validator failure into a VALIDATION_FAILED error.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Validation("", "invalid input: %v", err)
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return apperr.Validation(fe.Field(), "%s is required", fe.Field())
	case "email":
		return apperr.Validation(fe.Field(), "%s must be a valid email address", fe.Field())
	case "min":
		return apperr.Validation(fe.Field(), "%s must be at least %s", fe.Field(), fe.Param())
	case "gt":
		return apperr.Validation(fe.Field(), "%s must be greater than %s", fe.Field(), fe.Param())
	case "oneof":
		return apperr.Validation(fe.Field(), "%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return apperr.Validation(fe.Field(), "%s is invalid", fe.Field())
	}
}
