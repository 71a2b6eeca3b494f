package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/micportal/core"
	"github.com/trezcool/micportal/core/content"
	"github.com/trezcool/micportal/core/invitation"
	"github.com/trezcool/micportal/core/store"
	"github.com/trezcool/micportal/core/submission"
	appfs "github.com/trezcool/micportal/fs"
	email "github.com/trezcool/micportal/services/email"
	logsvc "github.com/trezcool/micportal/services/logger"
	"github.com/trezcool/micportal/storage/state"
)

var logger core.Logger

func main() {
	defer os.Exit(0)

	conf := core.NewConfig()
	z, err := logsvc.NewZap(conf)
	if err != nil {
		log.Fatal(err)
	}
	rollbarLogger := logsvc.NewRollbarLogger(z.Named("admin"), conf)
	defer rollbarLogger.Sync()
	logger = rollbarLogger

	// set up validators
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	submission.InitValidators(validate, translator)
	invitation.InitValidators(validate, translator)
	content.InitValidators(validate, translator)

	// set up state & mailer
	st, err := state.Open(conf.StateFile)
	errAndDie(err)
	errAndDie(core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf))
	var mailer core.EmailService = email.NewConsoleService(conf)
	if conf.SendgridApiKey != "" {
		mailer = email.NewSendgridService(conf, logger)
	}

	// start CLI
	cli := commandLine{
		conf:       conf,
		logger:     logger,
		validate:   validate,
		translator: translator,
		state:      st,
		mailer:     mailer,
		guard:      store.NewGuard(),
		out:        os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		rollbarLogger.Sync()
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
