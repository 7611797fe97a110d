package scope_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/asset-management/internal"
	"github.com/frahmantamala/asset-management/internal/scope"
)

func TestScope(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Scope Suite")
}

type staticHierarchy struct {
	branches map[int64][]string
}

func (h *staticHierarchy) BranchCodesForManager(_ context.Context, managerID int64) ([]string, error) {
	return h.branches[managerID], nil
}

var _ = Describe("ParseRole", func() {
	It("should accept every role string the directory may hold", func() {
		for roleName, want := range map[string]scope.RoleKind{
			"Admin":       scope.RoleAdmin,
			"HO":          scope.RoleHO,
			"Manager":     scope.RoleManager,
			"Manager1":    scope.RoleManager,
			"Manager2":    scope.RoleManager,
			"Branch User": scope.RoleBranchUser,
			"BranchUser":  scope.RoleBranchUser,
		} {
			kind, err := scope.ParseRole(roleName)
			Expect(err).ToNot(HaveOccurred(), roleName)
			Expect(kind).To(Equal(want), roleName)
		}
	})

	It("should tolerate surrounding whitespace", func() {
		kind, err := scope.ParseRole("  Admin ")
		Expect(err).ToNot(HaveOccurred())
		Expect(kind).To(Equal(scope.RoleAdmin))
	})

	It("should reject unknown role strings instead of guessing", func() {
		_, err := scope.ParseRole("Super Admin")
		Expect(errors.Is(err, internal.ErrInvalidRole)).To(BeTrue())

		_, err = scope.ParseRole("")
		Expect(errors.Is(err, internal.ErrInvalidRole)).To(BeTrue())
	})
})

var _ = Describe("Scope", func() {
	Describe("AllowsRecord", func() {
		It("should admit everything when All is set", func() {
			Expect(scope.Everything().AllowsRecord("BR9")).To(BeTrue())
		})

		It("should admit only listed branches otherwise", func() {
			sc := scope.ForBranches("BR1", "BR3")
			Expect(sc.AllowsRecord("BR1")).To(BeTrue())
			Expect(sc.AllowsRecord("BR3")).To(BeTrue())
			Expect(sc.AllowsRecord("BR2")).To(BeFalse())
		})
	})

	Describe("AllowsAsset", func() {
		It("should keep transferred-away assets visible at the origin", func() {
			sc := scope.ForBranches("BR1")
			Expect(sc.AllowsAsset("BR2", "BR1")).To(BeTrue())
		})

		It("should not admit assets with an out-of-scope breadcrumb", func() {
			sc := scope.ForBranches("BR1")
			Expect(sc.AllowsAsset("BR2", "BR3")).To(BeFalse())
			Expect(sc.AllowsAsset("BR2", "")).To(BeFalse())
		})
	})
})

var _ = Describe("Resolver", func() {
	var (
		resolver *scope.Resolver
		ctx      context.Context
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		hierarchy := &staticHierarchy{branches: map[int64][]string{
			20: {"BR1", "BR3"},
		}}
		resolver = scope.NewResolver(hierarchy, logger)
		ctx = context.Background()
	})

	It("should grant Admin and HO unrestricted visibility", func() {
		for _, roleName := range []string{"Admin", "HO"} {
			sc, err := resolver.Resolve(ctx, roleName, "", 1)
			Expect(err).ToNot(HaveOccurred())
			Expect(sc.All).To(BeTrue())
		}
	})

	It("should limit a branch user to its own branch", func() {
		sc, err := resolver.Resolve(ctx, "Branch User", "BR2", 7)

		Expect(err).ToNot(HaveOccurred())
		Expect(sc.All).To(BeFalse())
		Expect(sc.BranchCodes).To(ConsistOf("BR2"))
	})

	It("should give a manager its own branch plus the branches reporting to it", func() {
		sc, err := resolver.Resolve(ctx, "Manager", "BR2", 20)

		Expect(err).ToNot(HaveOccurred())
		Expect(sc.BranchCodes).To(ConsistOf("BR1", "BR2", "BR3"))
	})

	It("should not duplicate the manager's own branch", func() {
		sc, err := resolver.Resolve(ctx, "Manager", "BR1", 20)

		Expect(err).ToNot(HaveOccurred())
		Expect(sc.BranchCodes).To(ConsistOf("BR1", "BR3"))
	})

	It("should surface unknown roles as a validation error", func() {
		_, err := resolver.Resolve(ctx, "Intern", "BR1", 7)
		Expect(errors.Is(err, internal.ErrInvalidRole)).To(BeTrue())
	})
})
