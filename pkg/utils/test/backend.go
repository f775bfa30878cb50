package testutils

import (
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/binder/api"
	"github.com/papercomputeco/binder/pkg/logger"
)

// StartBackend runs the mock backend with its default fixtures on a random
// local port for the current test and returns its base URL. The server is
// shut down when the test ends.
func StartBackend() string {
	fixtures, err := api.DefaultFixtures(time.Now())
	Expect(err).NotTo(HaveOccurred())

	server, err := api.NewServer(api.Config{}, fixtures, logger.Nop())
	Expect(err).NotTo(HaveOccurred())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	Expect(err).NotTo(HaveOccurred())
	go func() { _ = server.Serve(ln) }()

	DeferCleanup(server.Shutdown)
	return "http://" + ln.Addr().String()
}
