package sse_test

import (
	"bytes"
	"errors"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/binder/pkg/sse"
)

var _ = Describe("ParseLine", func() {
	It("classifies event lines and trims the name", func() {
		line := sse.ParseLine("event:  sources  ")
		Expect(line.Field).To(Equal(sse.FieldEvent))
		Expect(line.Value).To(Equal("sources"))
	})

	It("keeps data payloads verbatim", func() {
		line := sse.ParseLine(`data:  {"text":"a "} `)
		Expect(line.Field).To(Equal(sse.FieldData))
		Expect(line.Value).To(Equal(` {"text":"a "} `))
	})

	It("requires the space after the colon", func() {
		Expect(sse.ParseLine("data:no-space").Field).To(Equal(sse.FieldUnknown))
		Expect(sse.ParseLine("event:done").Field).To(Equal(sse.FieldUnknown))
	})

	It("treats comments, blank lines and other fields as unknown", func() {
		for _, raw := range []string{"", ": keep-alive", "id: 42", "retry: 3000"} {
			line := sse.ParseLine(raw)
			Expect(line.Field).To(Equal(sse.FieldUnknown), raw)
			Expect(line.Raw).To(Equal(raw))
		}
	})

	It("renders field names", func() {
		Expect(sse.FieldEvent.String()).To(Equal("event"))
		Expect(sse.FieldData.String()).To(Equal("data"))
		Expect(sse.FieldUnknown.String()).To(Equal("unknown"))
	})
})

var _ = Describe("Framer", func() {
	var f *sse.Framer

	BeforeEach(func() {
		f = sse.NewFramer()
	})

	It("returns complete lines in order", func() {
		lines := f.Feed([]byte("event: content\ndata: one\n\ndata: two\n"))
		Expect(lines).To(HaveLen(4))
		Expect(lines[0].Field).To(Equal(sse.FieldEvent))
		Expect(lines[1].Value).To(Equal("one"))
		Expect(lines[2].Raw).To(BeEmpty())
		Expect(lines[3].Value).To(Equal("two"))
		Expect(f.Pending()).To(Equal(0))
	})

	It("buffers a partial line until its newline arrives", func() {
		Expect(f.Feed([]byte(`data: {"tex`))).To(BeEmpty())
		Expect(f.Pending()).To(Equal(len(`data: {"tex`)))

		lines := f.Feed([]byte("t\":\"abc\"}\n"))
		Expect(lines).To(HaveLen(1))
		Expect(lines[0].Value).To(Equal(`{"text":"abc"}`))
		Expect(f.Pending()).To(Equal(0))
	})

	It("splits the line marker itself across chunks", func() {
		Expect(f.Feed([]byte("da"))).To(BeEmpty())
		Expect(f.Feed([]byte("ta"))).To(BeEmpty())
		lines := f.Feed([]byte(": x\n"))
		Expect(lines).To(HaveLen(1))
		Expect(lines[0].Field).To(Equal(sse.FieldData))
		Expect(lines[0].Value).To(Equal("x"))
	})

	It("reassembles multi-byte characters split across chunks", func() {
		payload := []byte("data: café\n")
		split := bytes.Index(payload, []byte("é")) + 1

		Expect(f.Feed(payload[:split])).To(BeEmpty())
		lines := f.Feed(payload[split:])
		Expect(lines).To(HaveLen(1))
		Expect(lines[0].Value).To(Equal("café"))
	})

	It("strips carriage returns from CRLF streams", func() {
		lines := f.Feed([]byte("event: done\r\ndata: {}\r\n"))
		Expect(lines).To(HaveLen(2))
		Expect(lines[0].Value).To(Equal("done"))
		Expect(lines[1].Value).To(Equal("{}"))
	})

	It("feeds byte-at-a-time without losing anything", func() {
		input := "event: content\ndata: {\"text\":\"hi\"}\n"
		var lines []sse.Line
		for i := range len(input) {
			lines = append(lines, f.Feed([]byte{input[i]})...)
		}
		Expect(lines).To(HaveLen(2))
		Expect(lines[1].Value).To(Equal(`{"text":"hi"}`))
	})

	Describe("Flush", func() {
		It("returns the unterminated remainder once", func() {
			f.Feed([]byte("data: tail"))

			line, ok := f.Flush()
			Expect(ok).To(BeTrue())
			Expect(line.Value).To(Equal("tail"))

			_, ok = f.Flush()
			Expect(ok).To(BeFalse())
		})

		It("reports nothing when the buffer is empty", func() {
			f.Feed([]byte("data: x\n"))
			_, ok := f.Flush()
			Expect(ok).To(BeFalse())
		})
	})

	It("keeps independent state per framer", func() {
		other := sse.NewFramer()
		f.Feed([]byte("data: left"))
		other.Feed([]byte("data: right"))

		Expect(f.Feed([]byte("\n"))[0].Value).To(Equal("left"))
		Expect(other.Feed([]byte("\n"))[0].Value).To(Equal("right"))
	})
})

type errFlushWriter struct {
	bytes.Buffer
	flushes int
	err     error
}

func (w *errFlushWriter) Flush() error {
	w.flushes++
	return w.err
}

var _ = Describe("Writer", func() {
	It("writes event and data lines followed by a blank line", func() {
		var buf bytes.Buffer
		w := sse.NewWriter(&buf)

		Expect(w.WriteEvent("content", `{"text":"Hi"}`)).To(Succeed())
		Expect(buf.String()).To(Equal("event: content\ndata: {\"text\":\"Hi\"}\n\n"))
	})

	It("omits the event line when the name is empty", func() {
		var buf bytes.Buffer
		Expect(sse.NewWriter(&buf).WriteEvent("", "raw text")).To(Succeed())
		Expect(buf.String()).To(Equal("data: raw text\n\n"))
	})

	It("marshals JSON payloads", func() {
		var buf bytes.Buffer
		err := sse.NewWriter(&buf).WriteJSON("done", map[string]any{"conversation_id": "c1"})
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(Equal("event: done\ndata: {\"conversation_id\":\"c1\"}\n\n"))
	})

	It("rejects payloads containing newlines", func() {
		var buf bytes.Buffer
		err := sse.NewWriter(&buf).WriteEvent("content", "a\nb")
		Expect(err).To(HaveOccurred())
		Expect(buf.Len()).To(BeZero())
	})

	It("flushes writers that support it", func() {
		w := &errFlushWriter{}
		Expect(sse.NewWriter(w).WriteEvent("", "x")).To(Succeed())
		Expect(w.flushes).To(Equal(1))

		w.err = errors.New("flush failed")
		Expect(sse.NewWriter(w).WriteEvent("", "y")).To(MatchError("flush failed"))
	})

	It("flushes http response writers", func() {
		rec := httptest.NewRecorder()
		Expect(sse.NewWriter(rec).WriteEvent("", "x")).To(Succeed())
		Expect(rec.Flushed).To(BeTrue())
	})

	It("round-trips through the framer", func() {
		var buf bytes.Buffer
		w := sse.NewWriter(&buf)
		Expect(w.WriteEvent("sources", "[]")).To(Succeed())
		Expect(w.WriteEvent("", "plain")).To(Succeed())

		lines := sse.NewFramer().Feed(buf.Bytes())
		var fields []sse.Field
		for _, l := range lines {
			fields = append(fields, l.Field)
		}
		Expect(fields).To(Equal([]sse.Field{
			sse.FieldEvent, sse.FieldData, sse.FieldUnknown,
			sse.FieldData, sse.FieldUnknown,
		}))
	})
})
