package user

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/telvanni/user-directory/internal/session"
)

var _ = Describe("Handler", func() {
	var (
		handler  *Handler
		mockRepo *mockRepository
		router   chi.Router
		caller   *session.Session
	)

	BeforeEach(func() {
		mockRepo = newMockRepository()
		service := NewService(mockRepo, nil, "/api/v1/users", nil)
		handler = NewHandler(service, 5*time.Second)
		caller = adminSession()

		mockRepo.add(seededUser("u-1", "tenant-1", "alice", "alice_pw"))
		mockRepo.add(seededUser("u-3", "tenant-2", "carol", "carol_pw"))

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), caller)))
			})
		})
		router.Get("/api/v1/users", handler.ListUsers)
		router.Post("/api/v1/users", handler.CreateUser)
		router.Get("/api/v1/users/{user}", handler.GetUser)
		router.Put("/api/v1/users/{user}", handler.UpdateUser)
		router.Delete("/api/v1/users/{user}", handler.DeleteUser)
	})

	Describe("GET /users", func() {
		It("should return the visible users without secrets in the body", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var body []map[string]interface{}
			Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
			Expect(body).To(HaveLen(2))
			for _, item := range body {
				Expect(item).To(HaveKey("user_id"))
				Expect(item).To(HaveKey("user_name"))
				Expect(item).NotTo(HaveKey("user_password"))
				Expect(item).NotTo(HaveKey("user_salt"))
				Expect(item).NotTo(HaveKey("auth_key"))
			}
		})
	})

	Describe("GET /users/{user}", func() {
		It("should return the record for a session carrying the admin attribute", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u-1", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var body map[string]interface{}
			Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
			Expect(body["user_name"]).To(Equal("alice"))
		})

		It("should answer 303 with a Location for a session without the admin attribute", func() {
			caller = bareSession()

			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u-1", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusSeeOther))
			Expect(w.Header().Get("Location")).To(Equal("/api/v1/users/u-1"))
		})

		It("should answer 404 for an unknown id", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/no-such-user", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("POST /users", func() {
		It("should create a user and return its projection", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(
				`{"client_id":"tenant-2","user_name":"dave","user_email":"dave@example.com","user_password":"dave_pw"}`))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var body map[string]interface{}
			Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
			Expect(body["user_name"]).To(Equal("dave"))
			Expect(body).NotTo(HaveKey("user_password"))
		})

		It("should answer 303 with the existing record's Location on a taken name", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(
				`{"client_id":"tenant-1","user_name":"alice","user_email":"a@example.com","user_password":"pw"}`))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusSeeOther))
			Expect(w.Header().Get("Location")).To(Equal("/api/v1/users/u-1"))
		})

		It("should answer 403 for a non-admin caller", func() {
			caller = memberSession("tenant-1")

			req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(
				`{"client_id":"tenant-1","user_name":"dave","user_password":"pw"}`))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusForbidden))
		})

		It("should answer 400 on a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(`{not json`))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("PUT /users/{user}", func() {
		It("should answer 401 when a non-admin omits the old password", func() {
			caller = memberSession("tenant-1")

			req := httptest.NewRequest(http.MethodPut, "/api/v1/users/u-1", strings.NewReader(
				`{"user_email":"new@example.com"}`))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("should answer 401 on a wrong old password", func() {
			caller = memberSession("tenant-1")

			req := httptest.NewRequest(http.MethodPut, "/api/v1/users/u-1", strings.NewReader(
				`{"user_email":"new@example.com","old_password":"wrong"}`))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("should update the record with a correct old password", func() {
			caller = memberSession("tenant-1")

			req := httptest.NewRequest(http.MethodPut, "/api/v1/users/u-1", strings.NewReader(
				`{"user_email":"new@example.com","old_password":"alice_pw","new_password":"alice_pw_2"}`))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var body map[string]interface{}
			Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
			Expect(body["user_email"]).To(Equal("new@example.com"))
		})

		It("should answer 404 when a non-admin targets another tenant", func() {
			caller = memberSession("tenant-1")

			req := httptest.NewRequest(http.MethodPut, "/api/v1/users/u-3", strings.NewReader(
				`{"user_email":"new@example.com","old_password":"carol_pw"}`))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("DELETE /users/{user}", func() {
		It("should remove the record for an admin", func() {
			req := httptest.NewRequest(http.MethodDelete, "/api/v1/users/u-1", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(mockRepo.deleted).To(ConsistOf("u-1"))
		})

		It("should answer 403 for a non-admin caller", func() {
			caller = memberSession("tenant-1")

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/users/u-1", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusForbidden))
		})

		It("should answer 403 for a record flagged admin", func() {
			flagged := seededUser("u-9", "tenant-1", "superuser", "pw")
			flagged.Admin = true
			mockRepo.add(flagged)

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/users/u-9", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(mockRepo.users).To(HaveKey("u-9"))
		})
	})
})
