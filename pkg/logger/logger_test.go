package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/binder/pkg/logger"
)

func decodeLine(buf *bytes.Buffer) map[string]any {
	var parsed map[string]any
	ExpectWithOffset(1, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &parsed)).To(Succeed())
	return parsed
}

var testTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("disk full")
}

var _ = Describe("Logger", func() {
	Describe("New", func() {
		It("writes logfmt text by default", func() {
			var buf bytes.Buffer
			logger.New(logger.WithWriter(&buf)).Info("renewal due", "property", "PROP-001")

			Expect(buf.String()).To(ContainSubstring(`msg="renewal due"`))
			Expect(buf.String()).To(ContainSubstring("property=PROP-001"))
		})

		It("writes JSON with FormatJSON", func() {
			var buf bytes.Buffer
			logger.New(logger.WithWriter(&buf), logger.WithFormat(logger.FormatJSON)).Info("turn saved", "fragments", 42)

			parsed := decodeLine(&buf)
			Expect(parsed["msg"]).To(Equal("turn saved"))
			Expect(parsed["fragments"]).To(BeNumerically("==", 42))
		})

		It("writes through charmbracelet/log with FormatPretty", func() {
			var buf bytes.Buffer
			logger.New(logger.WithWriter(&buf), logger.WithFormat(logger.FormatPretty)).Info("pretty output")

			Expect(buf.String()).To(ContainSubstring("pretty output"))
		})

		It("filters debug records unless debug is set", func() {
			var quiet, loud bytes.Buffer
			logger.New(logger.WithWriter(&quiet), logger.WithDebug(false)).Debug("hidden")
			logger.New(logger.WithWriter(&loud), logger.WithDebug(true)).Debug("shown")

			Expect(quiet.String()).To(BeEmpty())
			Expect(loud.String()).To(ContainSubstring("shown"))
		})

		It("honours WithLevel", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithLevel(slog.LevelWarn))
			l.Info("skipped")
			l.Warn("kept")

			Expect(buf.String()).NotTo(ContainSubstring("skipped"))
			Expect(buf.String()).To(ContainSubstring("kept"))
		})

		It("does not let WithDebug(false) undo an earlier WithLevel", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithLevel(slog.LevelDebug), logger.WithDebug(false))
			l.Debug("still here")

			Expect(buf.String()).To(ContainSubstring("still here"))
		})

		It("includes the source location with WithSource", func() {
			var buf bytes.Buffer
			logger.New(logger.WithWriter(&buf), logger.WithFormat(logger.FormatJSON), logger.WithSource(true)).Info("located")

			Expect(decodeLine(&buf)).To(HaveKey(slog.SourceKey))
		})
	})

	Describe("ParseFormat", func() {
		DescribeTable("known names",
			func(in string, want logger.Format) {
				Expect(logger.ParseFormat(in)).To(Equal(want))
			},
			Entry("json", "json", logger.FormatJSON),
			Entry("upper case", "TEXT", logger.FormatText),
			Entry("padded", " pretty ", logger.FormatPretty),
		)

		It("rejects anything else", func() {
			_, err := logger.ParseFormat("xml")
			Expect(err).To(MatchError(ContainSubstring(`unknown log format "xml"`)))
		})
	})

	Describe("Nop", func() {
		It("is disabled at every level", func() {
			l := logger.Nop()
			Expect(l.Handler().Enabled(context.Background(), slog.LevelError)).To(BeFalse())
			Expect(func() { l.With("k", "v").WithGroup("g").Error("msg") }).NotTo(Panic())
		})
	})

	Describe("Multi", func() {
		It("dispatches to all loggers", func() {
			var text, structured bytes.Buffer
			multi := logger.Multi(
				logger.New(logger.WithWriter(&text)),
				logger.New(logger.WithWriter(&structured), logger.WithFormat(logger.FormatJSON)),
			)
			multi.Info("broadcast", "key", "val")

			Expect(text.String()).To(ContainSubstring("broadcast"))
			Expect(decodeLine(&structured)["key"]).To(Equal("val"))
		})

		It("respects each logger's own level", func() {
			var info, debug bytes.Buffer
			multi := logger.Multi(
				logger.New(logger.WithWriter(&info)),
				logger.New(logger.WithWriter(&debug), logger.WithDebug(true)),
			)
			multi.Debug("details")

			Expect(info.String()).To(BeEmpty())
			Expect(debug.String()).To(ContainSubstring("details"))
		})

		It("carries With and WithGroup through to every handler", func() {
			var buf bytes.Buffer
			multi := logger.Multi(logger.New(logger.WithWriter(&buf), logger.WithFormat(logger.FormatJSON)))
			multi.With("component", "recorder").WithGroup("turn").Info("saved", "id", "t-1")

			parsed := decodeLine(&buf)
			Expect(parsed["component"]).To(Equal("recorder"))
			Expect(parsed["turn"]).To(HaveKeyWithValue("id", "t-1"))
		})

		It("keeps writing when one handler fails", func() {
			var buf bytes.Buffer
			broken := slog.New(failingHandler{slog.NewTextHandler(&bytes.Buffer{}, nil)})
			multi := logger.Multi(broken, logger.New(logger.WithWriter(&buf)))

			err := multi.Handler().Handle(context.Background(), slog.NewRecord(testTime, slog.LevelInfo, "after failure", 0))
			Expect(err).To(MatchError("disk full"))
			Expect(buf.String()).To(ContainSubstring("after failure"))
		})

		It("skips nil loggers", func() {
			var buf bytes.Buffer
			logger.Multi(nil, logger.New(logger.WithWriter(&buf))).Info("ok")
			Expect(buf.String()).To(ContainSubstring("ok"))
		})
	})
})
