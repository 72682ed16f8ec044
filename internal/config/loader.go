package config

import (
	"errors"
	"flag"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/omeid/uconfig/flat"
	"gitlab.com/TitanInd/hashfarm/internal/lib"
)

const (
	TagEnv  = "env"
	TagFlag = "flag"
	TagDesc = "desc"
)

var (
	ErrEnvLoad          = errors.New("error during loading .env file")
	ErrFlagParse        = errors.New("cannot parse flag")
	ErrConfigInvalid    = errors.New("invalid config struct")
	ErrConfigValidation = errors.New("config validation error")
)

type Defaulter interface {
	SetDefaults()
}

type Validatable interface {
	Validate() error
}

// LoadConfig reads the optional .env file, the environment and then the flags (flags win),
// applies defaults and validates the result
func LoadConfig(cfg interface{}, osArgs *[]string) error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return lib.WrapError(ErrEnvLoad, err)
	}

	// recursively iterates over each field of the nested struct
	fields, err := flat.View(cfg)
	if err != nil {
		return lib.WrapError(ErrConfigInvalid, err)
	}

	flagset := flag.NewFlagSet("", flag.ContinueOnError)

	for _, field := range fields {
		envName, ok := field.Tag(TagEnv)
		if !ok {
			continue
		}

		if envValue, ok := os.LookupEnv(envName); ok {
			_ = field.Set(envValue)
		}

		flagName, ok := field.Tag(TagFlag)
		if !ok {
			continue
		}

		flagDesc, _ := field.Tag(TagDesc)
		flagset.Var(field, flagName, flagDesc)
	}

	args := os.Args
	if osArgs != nil {
		args = *osArgs
	}

	if len(args) > 1 {
		if err := flagset.Parse(args[1:]); err != nil {
			return lib.WrapError(ErrFlagParse, err)
		}
	}

	if d, ok := cfg.(Defaulter); ok {
		d.SetDefaults()
	}

	if err := validator.New().Struct(cfg); err != nil {
		return lib.WrapError(ErrConfigValidation, err)
	}

	if v, ok := cfg.(Validatable); ok {
		if err := v.Validate(); err != nil {
			return lib.WrapError(ErrConfigValidation, err)
		}
	}

	return nil
}
