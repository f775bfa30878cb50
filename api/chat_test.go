package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/binder/pkg/chatstream"
	"github.com/papercomputeco/binder/pkg/portfolio"
)

func postChat(server *Server, body string) *http.Response {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := server.app.Test(req, -1)
	Expect(err).NotTo(HaveOccurred())
	return resp
}

var _ = Describe("Chat endpoint", func() {
	var server *Server

	BeforeEach(func() {
		server = newTestServer()
	})

	It("streams sources, content and done frames", func() {
		resp := postChat(server, `{"message":"Do we have flood coverage?","stream":true}`)
		defer resp.Body.Close()

		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(resp.Header.Get("Content-Type")).To(HavePrefix("text/event-stream"))

		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		raw := string(body)

		Expect(raw).To(HavePrefix("event: sources\ndata: {\"sources\":["))
		Expect(raw).To(ContainSubstring("event: content\ndata: {\"text\":"))
		Expect(raw).To(ContainSubstring("event: done\ndata: {\"conversation_id\":"))
		Expect(strings.Index(raw, "event: done")).To(BeNumerically(">", strings.LastIndex(raw, "event: content")))
	})

	It("produces a stream the chat decoder reassembles", func() {
		resp := postChat(server, `{"message":"what is the wind deductible","conversation_id":"conv-9","stream":true}`)
		defer resp.Body.Close()

		var (
			text       strings.Builder
			sources    []portfolio.Source
			convID     string
			confidence float64
			errs       []string
		)
		err := chatstream.Decode(context.Background(), resp.Body, chatstream.Handler{
			OnContent: func(s string) { text.WriteString(s) },
			OnSources: func(s []portfolio.Source) { sources = s },
			OnDone:    func(id string, c float64) { convID, confidence = id, c },
			OnError:   func(m string) { errs = append(errs, m) },
		})
		Expect(err).NotTo(HaveOccurred())

		answer := server.fixtures.answerFor("wind deductible")
		Expect(text.String()).To(Equal(answer.Text))
		Expect(sources).To(Equal(answer.Sources))
		Expect(convID).To(Equal("conv-9"))
		Expect(confidence).To(Equal(answer.Confidence))
		Expect(errs).To(BeEmpty())
	})

	It("assigns a conversation id to a new conversation", func() {
		resp := postChat(server, `{"message":"hello","stream":true}`)
		defer resp.Body.Close()

		var convID string
		Expect(chatstream.Decode(context.Background(), resp.Body, chatstream.Handler{
			OnDone: func(id string, _ float64) { convID = id },
		})).To(Succeed())
		Expect(convID).To(HaveLen(36))
	})

	It("reports an empty message as an error frame with status 200", func() {
		resp := postChat(server, `{"message":"   ","stream":true}`)
		defer resp.Body.Close()

		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(Equal("data: {\"error\":\"" + portfolio.ErrEmptyMessage.Error() + "\"}\n\n"))
	})

	It("rejects a body that is not JSON with 400", func() {
		resp := postChat(server, `{"message":`)
		defer resp.Body.Close()

		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))

		var e ErrorResponse
		Expect(json.NewDecoder(resp.Body).Decode(&e)).To(Succeed())
		Expect(e.Error).To(Equal("invalid request body"))
	})

	It("answers with a single JSON document when streaming is off", func() {
		resp := postChat(server, `{"message":"when do we renew?","stream":false}`)
		defer resp.Body.Close()

		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		var out chatAnswer
		Expect(json.NewDecoder(resp.Body).Decode(&out)).To(Succeed())
		Expect(out.Answer).To(ContainSubstring("Three policies renew"))
		Expect(out.Sources).NotTo(BeNil())
		Expect(out.ConversationID).NotTo(BeEmpty())
	})
})
