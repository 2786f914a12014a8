package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/devfolio-api/internal/domain/entity"
	"github.com/oksasatya/devfolio-api/internal/domain/repository"
	"github.com/oksasatya/devfolio-api/internal/infrastructure/memory"
	"github.com/oksasatya/devfolio-api/pkg/apperror"
	"github.com/oksasatya/devfolio-api/pkg/events"
	"github.com/oksasatya/devfolio-api/pkg/helpers"
)

type fakePublisher struct {
	mu   sync.Mutex
	msgs []any
	err  error
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, body)
	return p.err
}

// failingUsers lets a test inject store faults.
type failingUsers struct {
	*memory.UserRepository
	getErr    error
	createErr error
}

func (f *failingUsers) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.UserRepository.GetByEmail(ctx, email)
}

func (f *failingUsers) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.UserRepository.GetByID(ctx, id)
}

func (f *failingUsers) Create(ctx context.Context, u *entity.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	return f.UserRepository.Create(ctx, u)
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newAuth(t *testing.T) (*AuthService, *clock, *fakePublisher) {
	t.Helper()
	clk := &clock{t: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)}
	jwt := helpers.NewJWTManager("test-secret", 24*time.Hour).WithClock(clk.Now)
	pub := &fakePublisher{}
	return NewAuthService(memory.NewUserRepository(), jwt, pub, helpers.NewDiscardLogger()), clk, pub
}

func TestSignup_OnceThenDuplicate(t *testing.T) {
	svc, _, pub := newAuth(t)
	ctx := context.Background()

	id, err := svc.Signup(ctx, SignupInput{Username: "alice", Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = svc.Signup(ctx, SignupInput{Username: "alice2", Email: "a@x.com", Password: "other"})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.DuplicateEmail))
	assert.Equal(t, MsgEmailRegistered, apperror.From(err).Message)

	require.Len(t, pub.msgs, 1)
	ev, ok := pub.msgs[0].(events.UserRegistered)
	require.True(t, ok)
	assert.Equal(t, events.TypeUserRegistered, ev.Type)
	assert.Equal(t, id, ev.UserID)
	assert.Equal(t, "a@x.com", ev.Email)
}

func TestSignup_StoresHashNotPassword(t *testing.T) {
	svc, _, _ := newAuth(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Username: "bob", Email: "b@x.com", Password: "secret"})
	require.NoError(t, err)

	u, err := svc.Users.GetByEmail(ctx, "b@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", u.PasswordHash)
	assert.True(t, helpers.CompareHashAndPassword(u.PasswordHash, "secret"))
}

func TestSignup_MissingFields(t *testing.T) {
	svc, _, pub := newAuth(t)

	inputs := []SignupInput{
		{Email: "a@x.com", Password: "pw"},
		{Username: "a", Password: "pw"},
		{Username: "a", Email: "a@x.com"},
		{Username: "   ", Email: "a@x.com", Password: "pw"},
	}
	for _, in := range inputs {
		_, err := svc.Signup(context.Background(), in)
		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.Validation))
		assert.Equal(t, MsgAllFieldsRequired, apperror.From(err).Message)
	}
	assert.Empty(t, pub.msgs)
}

func TestSignup_PasswordTooLong(t *testing.T) {
	svc, _, _ := newAuth(t)

	_, err := svc.Signup(context.Background(), SignupInput{Username: "a", Email: "a@x.com", Password: strings.Repeat("é", 40)})
	assert.True(t, apperror.Is(err, apperror.Validation))
}

func TestSignup_ConstraintViolationIsDuplicate(t *testing.T) {
	svc, _, _ := newAuth(t)
	users := &failingUsers{UserRepository: memory.NewUserRepository()}
	svc.Users = users

	users.createErr = errors.New("connection reset")
	_, err := svc.Signup(context.Background(), SignupInput{Username: "a", Email: "a@x.com", Password: "pw"})
	assert.True(t, apperror.Is(err, apperror.Internal))

	// Another signup slipped in between the existence check and the insert.
	users.createErr = fmt.Errorf("insert user: %w", repository.ErrDuplicateEmail)
	_, err = svc.Signup(context.Background(), SignupInput{Username: "a", Email: "a@x.com", Password: "pw"})
	assert.True(t, apperror.Is(err, apperror.DuplicateEmail))
}

func TestSignup_PublishFailureDoesNotFailSignup(t *testing.T) {
	svc, _, pub := newAuth(t)
	pub.err = errors.New("broker down")

	id, err := svc.Signup(context.Background(), SignupInput{Username: "a", Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestSignup_StoreFault(t *testing.T) {
	svc, _, _ := newAuth(t)
	svc.Users = &failingUsers{UserRepository: memory.NewUserRepository(), getErr: errors.New("db down")}

	_, err := svc.Signup(context.Background(), SignupInput{Username: "a", Email: "a@x.com", Password: "pw"})
	assert.True(t, apperror.Is(err, apperror.Internal))
}

func TestLogin(t *testing.T) {
	svc, _, _ := newAuth(t)
	ctx := context.Background()
	id, err := svc.Signup(ctx, SignupInput{Username: "alice", Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)

	res, err := svc.Login(ctx, "a@x.com", "pw1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, entity.PublicUser{ID: id, Username: "alice", Email: "a@x.com"}, res.User)

	resolved, err := svc.ResolveUser(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, id, resolved.ID)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	svc, _, _ := newAuth(t)
	ctx := context.Background()
	_, err := svc.Signup(ctx, SignupInput{Username: "alice", Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)

	_, wrongPw := svc.Login(ctx, "a@x.com", "wrongpw")
	_, noUser := svc.Login(ctx, "ghost@x.com", "pw1")

	require.Error(t, wrongPw)
	require.Error(t, noUser)
	assert.Equal(t, apperror.From(wrongPw).Kind, apperror.From(noUser).Kind)
	assert.Equal(t, apperror.From(wrongPw).Message, apperror.From(noUser).Message)
	assert.Equal(t, MsgInvalidCredentials, apperror.From(noUser).Message)
}

func TestLogin_MissingFields(t *testing.T) {
	svc, _, _ := newAuth(t)

	for _, c := range [][2]string{{"", "pw"}, {"a@x.com", ""}} {
		_, err := svc.Login(context.Background(), c[0], c[1])
		assert.True(t, apperror.Is(err, apperror.Validation))
	}
}

func TestResolveUser(t *testing.T) {
	svc, clk, _ := newAuth(t)
	ctx := context.Background()
	id, err := svc.Signup(ctx, SignupInput{Username: "alice", Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)
	res, err := svc.Login(ctx, "a@x.com", "pw1")
	require.NoError(t, err)

	_, err = svc.ResolveUser(ctx, "")
	assert.True(t, apperror.Is(err, apperror.TokenMissing))

	_, err = svc.ResolveUser(ctx, "garbage")
	assert.True(t, apperror.Is(err, apperror.TokenInvalid))

	orphan, _, err := svc.Tokens.Issue("b2f0a6a4-0000-4000-8000-000000000000")
	require.NoError(t, err)
	_, err = svc.ResolveUser(ctx, orphan)
	assert.True(t, apperror.Is(err, apperror.Unauthorized))

	clk.t = clk.t.Add(24*time.Hour - time.Second)
	u, err := svc.ResolveUser(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)

	clk.t = clk.t.Add(time.Second)
	_, err = svc.ResolveUser(ctx, res.Token)
	assert.True(t, apperror.Is(err, apperror.TokenExpired))
}

func TestResolveUser_StoreFaultIsInternal(t *testing.T) {
	svc, _, _ := newAuth(t)
	tok, _, err := svc.Tokens.Issue("some-user")
	require.NoError(t, err)
	svc.Users = &failingUsers{UserRepository: memory.NewUserRepository(), getErr: errors.New("db down")}

	_, err = svc.ResolveUser(context.Background(), tok)
	assert.True(t, apperror.Is(err, apperror.Internal))
}
