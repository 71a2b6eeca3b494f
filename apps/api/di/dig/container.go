package dig_container

import (
	"log"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	echoapi "github.com/trezcool/micportal/apps/api/echo"
	"github.com/trezcool/micportal/core"
	"github.com/trezcool/micportal/core/store"
	logsvc "github.com/trezcool/micportal/services/logger"
	"github.com/trezcool/micportal/services/metrics"
	"github.com/trezcool/micportal/services/portal"
)

func newZap(conf *core.Config) *zap.Logger {
	z, err := logsvc.NewZap(conf)
	if err != nil {
		log.Fatalf("building zap logger: %v", err)
	}
	return z.Named("api")
}

func newLogger(z *zap.Logger, conf *core.Config) (core.Logger, *logsvc.RollbarLogger) {
	logger := logsvc.NewRollbarLogger(z, conf)
	return logger, logger
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// newGuard counts the refused double submits.
func newGuard(m *metrics.Metrics) *store.Guard {
	return store.NewGuard(m.GuardRejected)
}

// newPortal is the anonymous portal client; handlers derive per user clients from it.
func newPortal(conf *core.Config, m *metrics.Metrics) *portal.Client {
	return portal.New(conf, nil, portal.WithObserver(m))
}

type depsParams struct {
	dig.In
	Portal     *portal.Client
	Validate   *validator.Validate
	Translator ut.Translator
	Guard      *store.Guard
}

func newDeps(p depsParams) *echoapi.Deps {
	return &echoapi.Deps{
		Portal:     p.Portal,
		Validate:   p.Validate,
		Translator: p.Translator,
		Guard:      p.Guard,
	}
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newZap))
	must(c.Provide(newLogger))
	must(c.Provide(metrics.New))
	must(c.Provide(newGuard))
	must(c.Provide(newPortal))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))
	must(c.Provide(newDeps))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
