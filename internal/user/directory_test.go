package user_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/frahmantamala/asset-management/internal/user"
)

type mockUserRepository struct {
	users map[string]*user.User
}

func (m *mockUserRepository) GetByUsername(_ context.Context, username string) (*user.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepository) GetByID(_ context.Context, id int64) (*user.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepository) GetAll(_ context.Context) ([]*user.User, error) {
	var out []*user.User
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockUserRepository) Create(_ context.Context, u *user.User) error {
	m.users[u.Username] = u
	return nil
}

func (m *mockUserRepository) BranchCodesForManager(_ context.Context, _ int64) ([]string, error) {
	return nil, nil
}

var _ = Describe("Directory", func() {
	var (
		directory *user.Directory
		ctx       context.Context
	)

	BeforeEach(func() {
		repo := &mockUserRepository{users: map[string]*user.User{
			"priya": {ID: 7, Username: "priya", Role: "Manager", BranchCode: "BR1", BranchName: "Kochi"},
		}}
		directory = user.NewDirectory(repo)
		ctx = context.Background()
	})

	It("should expose a directory row by username with the identity fields auth needs", func() {
		row, err := directory.GetByUsername(ctx, "priya")

		Expect(err).ToNot(HaveOccurred())
		Expect(row.ID).To(Equal(int64(7)))
		Expect(row.Username).To(Equal("priya"))
		Expect(row.Role).To(Equal("Manager"))
		Expect(row.BranchCode).To(Equal("BR1"))
	})

	It("should expose the same row by id", func() {
		row, err := directory.GetByID(ctx, 7)

		Expect(err).ToNot(HaveOccurred())
		Expect(row.Username).To(Equal("priya"))
	})

	It("should propagate a missing row", func() {
		_, err := directory.GetByUsername(ctx, "nobody")
		Expect(err).To(MatchError(gorm.ErrRecordNotFound))
	})
})
