// Package config parses environment variables into typed configuration
// structs using github.com/caarlos0/env/v11 struct tags.
//
// A .env file in the working directory, when present, is loaded once before
// the first parse. Variables already set in the process environment win over
// values from the file.
//
//	type Config struct {
//	    Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	cfg := config.MustLoad[Config]()
//
// A config type that implements Validator is validated right after parsing.
package config
