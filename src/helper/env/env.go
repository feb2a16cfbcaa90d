package env

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// lookup lê name e aplica parse. Variável vazia ou com valor inválido cai no
// primeiro default (ou no zero de T); valor inválido é avisado no log, porque
// um typo em KAFKA_BATCH_SIZE não deve passar calado.
func lookup[T any](name string, parse func(string) (T, error), defaultValue []T) T {
	if raw := os.Getenv(name); raw != "" {
		value, err := parse(raw)
		if err == nil {
			return value
		}
		slog.Warn("invalid environment variable, using default",
			"name", name,
			"value", raw,
			"error", err)
	}

	var zero T
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return zero
}

// mustLookup é a versão obrigatória: ausência ou valor inválido derruba o processo
// na subida, antes de qualquer conexão ser aberta.
func mustLookup[T any](name string, parse func(string) (T, error)) T {
	raw := os.Getenv(name)
	if raw == "" {
		panic(fmt.Sprintf("%s can't be empty", name))
	}
	value, err := parse(raw)
	if err != nil {
		panic(fmt.Sprintf("%s has an invalid value %q: %v", name, raw, err))
	}
	return value
}

func parseString(raw string) (string, error) { return raw, nil }

func GetString(name string, defaultValue ...string) string {
	return lookup(name, parseString, defaultValue)
}

func MustGetString(name string) string {
	return mustLookup(name, parseString)
}

func GetInt(name string, defaultValue ...int) int {
	return lookup(name, strconv.Atoi, defaultValue)
}

func MustGetInt(name string) int {
	return mustLookup(name, strconv.Atoi)
}

// GetDuration aceita o formato de time.ParseDuration ("5s", "250ms").
func GetDuration(name string, defaultValue ...time.Duration) time.Duration {
	return lookup(name, time.ParseDuration, defaultValue)
}

func GetBool(name string, defaultValue ...bool) bool {
	return lookup(name, strconv.ParseBool, defaultValue)
}
