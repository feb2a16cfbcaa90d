package env_test

import (
	"bytes"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"mutualexchange/src/helper/env"
)

var _ = Describe("env", func() {
	set := func(name, value string) {
		Expect(os.Setenv(name, value)).To(Succeed())
		DeferCleanup(os.Unsetenv, name)
	}

	It("falls back to the default when unset", func() {
		Expect(env.GetString("EXCHANGE_TEST_UNSET", "fallback")).To(Equal("fallback"))
		Expect(env.GetInt("EXCHANGE_TEST_UNSET", 7)).To(Equal(7))
		Expect(env.GetBool("EXCHANGE_TEST_UNSET", true)).To(BeTrue())
		Expect(env.GetDuration("EXCHANGE_TEST_UNSET", time.Second)).To(Equal(time.Second))
	})

	It("parses set values", func() {
		set("EXCHANGE_TEST_INT", "42")
		set("EXCHANGE_TEST_BOOL", "true")
		set("EXCHANGE_TEST_DURATION", "250ms")

		Expect(env.GetInt("EXCHANGE_TEST_INT", 1)).To(Equal(42))
		Expect(env.MustGetInt("EXCHANGE_TEST_INT")).To(Equal(42))
		Expect(env.GetBool("EXCHANGE_TEST_BOOL", false)).To(BeTrue())
		Expect(env.GetDuration("EXCHANGE_TEST_DURATION")).To(Equal(250 * time.Millisecond))
	})

	It("falls back when the value cannot be parsed", func() {
		set("EXCHANGE_TEST_INT", "forty")

		Expect(env.GetInt("EXCHANGE_TEST_INT", 3)).To(Equal(3))
	})

	It("warns when a set value cannot be parsed", func() {
		var buf bytes.Buffer
		previous := slog.Default()
		slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
		DeferCleanup(slog.SetDefault, previous)
		set("EXCHANGE_TEST_DURATION", "five seconds")

		Expect(env.GetDuration("EXCHANGE_TEST_DURATION", time.Second)).To(Equal(time.Second))
		Expect(buf.String()).To(ContainSubstring(`"name":"EXCHANGE_TEST_DURATION"`))
	})

	It("returns the zero value without a default", func() {
		set("EXCHANGE_TEST_BOOL", "maybe")

		Expect(env.GetBool("EXCHANGE_TEST_BOOL")).To(BeFalse())
		Expect(env.GetInt("EXCHANGE_TEST_UNSET")).To(Equal(0))
	})

	It("panics when a required value is missing", func() {
		Expect(func() { env.MustGetString("EXCHANGE_TEST_UNSET") }).To(Panic())
	})

	It("panics when a required value is invalid", func() {
		set("EXCHANGE_TEST_INT", "forty")

		Expect(func() { env.MustGetInt("EXCHANGE_TEST_INT") }).To(PanicWith(ContainSubstring("EXCHANGE_TEST_INT")))
	})
})
