package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/telvanni/user-directory/internal/transport"
)

var _ = Describe("Handler", func() {
	var (
		handler *Handler
		manager *Manager
		mockDir *mockDirectory
		cache   *MemoryCache
	)

	BeforeEach(func() {
		mockDir = newMockDirectory()
		cache = NewMemoryCache()
		manager = NewManager(mockDir, cache, time.Hour, nil, nil)
		handler = NewHandler(manager, 5*time.Second)
	})

	login := func() string {
		req := httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(
			`{"user_name":"alice","user_password":"correct_password"}`))
		w := httptest.NewRecorder()
		handler.Create(w, req)
		Expect(w.Code).To(Equal(http.StatusOK))
		return w.Header().Get(transport.HeaderAuthToken)
	}

	Describe("Create", func() {
		It("should answer 200 with the token in the response header only", func() {
			req := httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(
				`{"user_name":"alice","user_password":"correct_password"}`))
			w := httptest.NewRecorder()

			handler.Create(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			token := w.Header().Get(transport.HeaderAuthToken)
			Expect(token).To(MatchRegexp(`^[0-9a-f]{32}$`))
			Expect(w.Body.String()).NotTo(ContainSubstring(token))
		})

		It("should answer 403 on a wrong password", func() {
			req := httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(
				`{"user_name":"alice","user_password":"wrong"}`))
			w := httptest.NewRecorder()

			handler.Create(w, req)

			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(w.Header().Get(transport.HeaderAuthToken)).To(BeEmpty())
		})

		It("should answer 403 on an unknown user", func() {
			req := httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(
				`{"user_name":"nobody","user_password":"whatever"}`))
			w := httptest.NewRecorder()

			handler.Create(w, req)

			Expect(w.Code).To(Equal(http.StatusForbidden))
		})

		It("should answer 400 on a payload missing user_name", func() {
			req := httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(
				`{"user_password":"correct_password"}`))
			w := httptest.NewRecorder()

			handler.Create(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should answer 400 on a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(`{not json`))
			w := httptest.NewRecorder()

			handler.Create(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Delete", func() {
		It("should answer 403 without a token header", func() {
			req := httptest.NewRequest(http.MethodDelete, "/session", nil)
			w := httptest.NewRecorder()

			handler.Delete(w, req)

			Expect(w.Code).To(Equal(http.StatusForbidden))
		})

		It("should answer 403 for a token no user holds", func() {
			req := httptest.NewRequest(http.MethodDelete, "/session", nil)
			req.Header.Set(transport.HeaderAuthToken, "deadbeefdeadbeefdeadbeefdeadbeef")
			w := httptest.NewRecorder()

			handler.Delete(w, req)

			Expect(w.Code).To(Equal(http.StatusForbidden))
		})

		It("should destroy a live session", func() {
			token := login()
			mockDir.profiles[token] = &Profile{UserID: "u-alice", ClientID: "tenant-1", UserName: "alice"}

			req := httptest.NewRequest(http.MethodDelete, "/session", nil)
			req.Header.Set(transport.HeaderAuthToken, token)
			w := httptest.NewRecorder()

			handler.Delete(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			resolved, err := manager.Resolve(req.Context(), token)
			Expect(err).NotTo(HaveOccurred())
			Expect(resolved).To(BeNil())
		})
	})

	Describe("Show", func() {
		It("should return the caller's own projection", func() {
			token := login()
			mockDir.profiles[token] = &Profile{
				UserID:    "u-alice",
				ClientID:  "tenant-1",
				UserName:  "alice",
				UserEmail: "alice@example.com",
			}

			req := httptest.NewRequest(http.MethodGet, "/session", nil)
			req.Header.Set(transport.HeaderAuthToken, token)
			w := httptest.NewRecorder()

			handler.Show(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var body Profile
			Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
			Expect(body.UserName).To(Equal("alice"))
			Expect(body.UserEmail).To(Equal("alice@example.com"))
		})

		It("should answer 404 for a token no user holds", func() {
			req := httptest.NewRequest(http.MethodGet, "/session", nil)
			req.Header.Set(transport.HeaderAuthToken, "deadbeefdeadbeefdeadbeefdeadbeef")
			w := httptest.NewRecorder()

			handler.Show(w, req)

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("Authenticate", func() {
		var next http.Handler
		var reached *Session

		BeforeEach(func() {
			reached = nil
			next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				sess, ok := FromContext(r.Context())
				Expect(ok).To(BeTrue())
				reached = sess
				w.WriteHeader(http.StatusOK)
			})
		})

		It("should reject a request without a token", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
			w := httptest.NewRecorder()

			handler.Authenticate(next).ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(reached).To(BeNil())
		})

		It("should reject a token the cache does not hold", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
			req.Header.Set(transport.HeaderAuthToken, "deadbeefdeadbeefdeadbeefdeadbeef")
			w := httptest.NewRecorder()

			handler.Authenticate(next).ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(reached).To(BeNil())
		})

		It("should attach the resolved session for a live token", func() {
			token := login()

			req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
			req.Header.Set(transport.HeaderAuthToken, token)
			w := httptest.NewRecorder()

			handler.Authenticate(next).ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(reached).NotTo(BeNil())
			Expect(reached.UserName).To(Equal("alice"))
			Expect(reached.ClientID).To(Equal("tenant-1"))
		})
	})
})
