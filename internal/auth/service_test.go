package auth_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/frahmantamala/asset-management/internal"
	"github.com/frahmantamala/asset-management/internal/auth"
)

func TestAuthService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Service Suite")
}

type mockDirectory struct {
	users map[string]*auth.DirectoryUser
}

func (m *mockDirectory) GetByUsername(_ context.Context, username string) (*auth.DirectoryUser, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockDirectory) GetByID(_ context.Context, id int64) (*auth.DirectoryUser, error) {
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

var _ = Describe("Auth Service", func() {
	var (
		service   *auth.Service
		directory *mockDirectory
		ctx       context.Context
	)

	BeforeEach(func() {
		directory = &mockDirectory{users: map[string]*auth.DirectoryUser{
			"ravi":  {ID: 1, Username: "ravi", Role: "Branch User", BranchCode: "BR1"},
			"admin": {ID: 2, Username: "admin", Role: "Admin"},
			"ghost": {ID: 3, Username: "ghost", Role: "Intern"},
		}}
		tokens := auth.NewJWTTokenGenerator("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = auth.NewService(directory, tokens, logger)
		ctx = context.Background()
	})

	Describe("Login", func() {
		It("should issue a token pair carrying the directory identity", func() {
			resp, err := service.Login(ctx, auth.LoginDTO{Username: "ravi"})

			Expect(err).ToNot(HaveOccurred())
			Expect(resp.User.ID).To(Equal(int64(1)))
			Expect(resp.User.Role).To(Equal("Branch User"))
			Expect(resp.User.BranchCode).To(Equal("BR1"))
			Expect(resp.Tokens.AccessToken).ToNot(BeEmpty())
			Expect(resp.Tokens.RefreshToken).ToNot(BeEmpty())
		})

		It("should reject an unknown username", func() {
			_, err := service.Login(ctx, auth.LoginDTO{Username: "nobody"})
			Expect(err).To(MatchError(auth.ErrUserNotFound))
		})

		It("should refuse a directory row carrying an unknown role", func() {
			// A tampered or mis-imported row must not become a session.
			_, err := service.Login(ctx, auth.LoginDTO{Username: "ghost"})
			Expect(errors.Is(err, internal.ErrInvalidRole)).To(BeTrue())
		})

		It("should require a username", func() {
			_, err := service.Login(ctx, auth.LoginDTO{})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ResolveAccessToken", func() {
		It("should resolve an issued token back to the actor", func() {
			resp, err := service.Login(ctx, auth.LoginDTO{Username: "ravi"})
			Expect(err).ToNot(HaveOccurred())

			actor, err := service.ResolveAccessToken(ctx, resp.Tokens.AccessToken)

			Expect(err).ToNot(HaveOccurred())
			Expect(actor.ID).To(Equal(int64(1)))
			Expect(actor.Username).To(Equal("ravi"))
		})

		It("should pick up role changes made after the token was issued", func() {
			resp, err := service.Login(ctx, auth.LoginDTO{Username: "ravi"})
			Expect(err).ToNot(HaveOccurred())

			directory.users["ravi"].Role = "Manager"
			actor, err := service.ResolveAccessToken(ctx, resp.Tokens.AccessToken)

			Expect(err).ToNot(HaveOccurred())
			Expect(actor.Role).To(Equal("Manager"))
		})

		It("should reject a garbage token", func() {
			_, err := service.ResolveAccessToken(ctx, "not-a-token")
			Expect(err).To(HaveOccurred())
		})

		It("should reject a refresh token presented as an access token", func() {
			resp, err := service.Login(ctx, auth.LoginDTO{Username: "ravi"})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.ResolveAccessToken(ctx, resp.Tokens.RefreshToken)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Refresh", func() {
		It("should rotate the pair from a valid refresh token", func() {
			resp, err := service.Login(ctx, auth.LoginDTO{Username: "admin"})
			Expect(err).ToNot(HaveOccurred())

			tokens, err := service.Refresh(ctx, resp.Tokens.RefreshToken)

			Expect(err).ToNot(HaveOccurred())
			Expect(tokens.AccessToken).ToNot(BeEmpty())
			Expect(tokens.RefreshToken).ToNot(BeEmpty())
		})

		It("should fail when the user has left the directory", func() {
			resp, err := service.Login(ctx, auth.LoginDTO{Username: "admin"})
			Expect(err).ToNot(HaveOccurred())

			delete(directory.users, "admin")
			_, err = service.Refresh(ctx, resp.Tokens.RefreshToken)

			Expect(err).To(MatchError(auth.ErrUserNotFound))
		})
	})
})
