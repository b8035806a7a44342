package session

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/telvanni/user-directory/internal/hasher"
)

// Mock Directory for testing
type mockDirectory struct {
	creds         map[string]*Credentials // user_name -> credentials
	profiles      map[string]*Profile     // auth_key -> profile
	storedKeys    map[string]*string      // user_id -> last stored auth_key
	returnError   bool
	errorToReturn error
}

func newMockDirectory() *mockDirectory {
	salt := "ABCDEFGH"
	return &mockDirectory{
		creds: map[string]*Credentials{
			"alice": {
				UserID:   "u-alice",
				ClientID: "tenant-1",
				UserName: "alice",
				Salt:     salt,
				Password: hasher.Digest(salt, "correct_password"),
			},
		},
		profiles:   map[string]*Profile{},
		storedKeys: map[string]*string{},
	}
}

func (m *mockDirectory) Credentials(_ context.Context, userName string) (*Credentials, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	return m.creds[userName], nil
}

func (m *mockDirectory) ProfileByAuthKey(_ context.Context, authKey string) (*Profile, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	return m.profiles[authKey], nil
}

func (m *mockDirectory) StoreAuthKey(_ context.Context, userID string, authKey *string) error {
	if m.returnError {
		return m.errorToReturn
	}
	m.storedKeys[userID] = authKey
	for _, c := range m.creds {
		if c.UserID == userID {
			c.AuthKey = authKey
		}
	}
	return nil
}

var _ = Describe("Manager", func() {
	var (
		manager *Manager
		mockDir *mockDirectory
		cache   *MemoryCache
		ctx     context.Context
	)

	BeforeEach(func() {
		mockDir = newMockDirectory()
		cache = NewMemoryCache()
		manager = NewManager(mockDir, cache, time.Hour, nil, nil)
		ctx = context.Background()
	})

	Describe("Login", func() {
		Context("with valid credentials", func() {
			It("returns an opaque token", func() {
				token, err := manager.Login(ctx, "alice", "correct_password")

				Expect(err).NotTo(HaveOccurred())
				Expect(token).To(MatchRegexp(`^[0-9a-f]{32}$`))
			})

			It("persists the token as the user's auth key", func() {
				token, err := manager.Login(ctx, "alice", "correct_password")

				Expect(err).NotTo(HaveOccurred())
				Expect(mockDir.storedKeys["u-alice"]).NotTo(BeNil())
				Expect(*mockDir.storedKeys["u-alice"]).To(Equal(token))
			})

			It("writes a session record with the admin snapshot", func() {
				mockDir.creds["alice"].Admin = true

				token, err := manager.Login(ctx, "alice", "correct_password")
				Expect(err).NotTo(HaveOccurred())

				record, err := cache.Get(ctx, token)
				Expect(err).NotTo(HaveOccurred())
				Expect(record).NotTo(BeNil())
				Expect(record.UserID).To(Equal("u-alice"))
				Expect(record.ClientID).To(Equal("tenant-1"))
				Expect(record.HasAdminAttribute()).To(BeTrue())
				Expect(record.IsAdmin()).To(BeTrue())
			})

			It("reuses the persisted token while its cache entry is live", func() {
				first, err := manager.Login(ctx, "alice", "correct_password")
				Expect(err).NotTo(HaveOccurred())

				second, err := manager.Login(ctx, "alice", "correct_password")
				Expect(err).NotTo(HaveOccurred())
				Expect(second).To(Equal(first))
			})

			It("mints a fresh token when the cached entry is gone", func() {
				first, err := manager.Login(ctx, "alice", "correct_password")
				Expect(err).NotTo(HaveOccurred())

				Expect(cache.Delete(ctx, first)).To(Succeed())

				second, err := manager.Login(ctx, "alice", "correct_password")
				Expect(err).NotTo(HaveOccurred())
				Expect(second).NotTo(Equal(first))
			})
		})

		Context("with bad credentials", func() {
			It("fails the same way for an unknown user and a wrong password", func() {
				_, unknownErr := manager.Login(ctx, "nobody", "whatever")
				_, wrongErr := manager.Login(ctx, "alice", "wrong_password")

				Expect(unknownErr).To(MatchError(ErrInvalidLogin))
				Expect(wrongErr).To(MatchError(ErrInvalidLogin))
			})

			It("does not persist anything", func() {
				_, err := manager.Login(ctx, "alice", "wrong_password")

				Expect(err).To(HaveOccurred())
				Expect(mockDir.storedKeys).To(BeEmpty())
			})
		})

		Context("when the directory fails", func() {
			It("propagates the failure instead of masking it", func() {
				mockDir.returnError = true
				mockDir.errorToReturn = errors.New("connection refused")

				_, err := manager.Login(ctx, "alice", "correct_password")

				Expect(err).To(HaveOccurred())
				Expect(err).NotTo(MatchError(ErrInvalidLogin))
			})
		})
	})

	Describe("Logout", func() {
		var token string

		BeforeEach(func() {
			var err error
			token, err = manager.Login(ctx, "alice", "correct_password")
			Expect(err).NotTo(HaveOccurred())
			mockDir.profiles[token] = &Profile{
				UserID:   "u-alice",
				ClientID: "tenant-1",
				UserName: "alice",
			}
		})

		It("invalidates the token for subsequent requests", func() {
			Expect(manager.Logout(ctx, token)).To(Succeed())

			record, err := cache.Get(ctx, token)
			Expect(err).NotTo(HaveOccurred())
			Expect(record).To(BeNil())

			resolved, err := manager.Resolve(ctx, token)
			Expect(err).NotTo(HaveOccurred())
			Expect(resolved).To(BeNil())
		})

		It("clears the persisted auth key", func() {
			Expect(manager.Logout(ctx, token)).To(Succeed())
			Expect(mockDir.storedKeys["u-alice"]).To(BeNil())
		})

		It("fails when no user holds the token", func() {
			Expect(manager.Logout(ctx, "unknown-token")).To(MatchError(ErrNotLoggedIn))
		})

		It("fails when the cache entry already expired", func() {
			Expect(cache.Delete(ctx, token)).To(Succeed())
			Expect(manager.Logout(ctx, token)).To(MatchError(ErrNotLoggedIn))
		})
	})

	Describe("Current", func() {
		It("returns the non-sensitive projection for the token holder", func() {
			mockDir.profiles["tok"] = &Profile{
				UserID:    "u-alice",
				ClientID:  "tenant-1",
				UserName:  "alice",
				UserEmail: "alice@example.com",
			}

			profile, err := manager.Current(ctx, "tok")

			Expect(err).NotTo(HaveOccurred())
			Expect(profile.UserID).To(Equal("u-alice"))
			Expect(profile.UserEmail).To(Equal("alice@example.com"))
		})

		It("fails when no user holds the token", func() {
			_, err := manager.Current(ctx, "unknown-token")
			Expect(err).To(MatchError(ErrNotLoggedIn))
		})
	})

	Describe("Resolve", func() {
		It("returns the cached session for a live token", func() {
			token, err := manager.Login(ctx, "alice", "correct_password")
			Expect(err).NotTo(HaveOccurred())

			sess, err := manager.Resolve(ctx, token)
			Expect(err).NotTo(HaveOccurred())
			Expect(sess).NotTo(BeNil())
			Expect(sess.UserName).To(Equal("alice"))
		})

		It("returns absent for an empty token without touching the cache", func() {
			sess, err := manager.Resolve(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(sess).To(BeNil())
		})
	})
})
