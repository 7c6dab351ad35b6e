package int

import (
	"bufio"
	"context"
	"net/http"
	"strings"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Team events", func() {
	BeforeEach(cleanupMongo)

	Specify("a registration shows up on the event stream", func() {
		user := registerUser(0)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, "GET", baseURL()+"/team/events", nil)
		Expect(err).To(BeNil())
		req.Header.Set("Authorization", "Bearer "+user.AccessToken)

		res, err := http.DefaultClient.Do(req)
		Expect(err).To(BeNil())
		defer res.Body.Close()
		Expect(res.StatusCode).To(Equal(http.StatusOK))
		Expect(res.Header.Get("Content-Type")).To(ContainSubstring("text/event-stream"))

		// the stream headers arrive before the first event, so the
		// subscription is live by the time we write
		Expect(user.RegisterTeam("Falcons", "Alice").Code).To(Equal(0))

		var payload string
		scanner := bufio.NewScanner(res.Body)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.HasPrefix(line, "data:") {
				payload = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
				break
			}
		}

		Expect(payload).To(ContainSubstring("Falcons"))
		Expect(payload).To(ContainSubstring(user.Email))
	})
})
