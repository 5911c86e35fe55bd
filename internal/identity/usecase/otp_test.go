package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/libascollective/shophub/internal/identity/entity"
	"github.com/libascollective/shophub/internal/identity/outbound/otpstore"
	"github.com/libascollective/shophub/internal/pkg/config"
	"github.com/libascollective/shophub/internal/pkg/goerror"
	"github.com/libascollective/shophub/internal/pkg/goroutine"
	"github.com/libascollective/shophub/internal/pkg/idempotency"
	"github.com/libascollective/shophub/internal/pkg/instrument"
	"github.com/libascollective/shophub/internal/pkg/validator"
)

type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type stubConfig struct {
	config.Config
	debug bool
}

func (c stubConfig) GetSecond(string) time.Duration { return 5 * time.Second }
func (c stubConfig) GetBool(string) bool            { return c.debug }

type seqCodes struct {
	mu    sync.Mutex
	codes []string
	i     int
}

func (g *seqCodes) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	code := g.codes[g.i%len(g.codes)]
	g.i++
	return code, nil
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeEmail) SendOTPCode(_ context.Context, to, _, code string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to+":"+code)
	return nil
}

type fakeDB struct {
	mu        sync.Mutex
	users     map[string]*entity.User
	activated []int64
}

func (f *fakeDB) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeDB) GetUserByID(_ context.Context, id int64) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (f *fakeDB) GetUserLoginInfo(_ context.Context, _ string) (*entity.UserLoginInfo, error) {
	return nil, goerror.ErrNotFound
}

func (f *fakeDB) NewRegistration(_ context.Context, user entity.NewUser, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.Email] = &entity.User{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Status:   user.Status,
	}
	return nil
}

func (f *fakeDB) ActivateUser(_ context.Context, id int64, oldStatus, newStatus entity.UserStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id && u.Status == oldStatus {
			u.Status = newStatus
			f.activated = append(f.activated, id)
			return nil
		}
	}
	return goerror.ErrNotFound
}

type fakeMessaging struct {
	mu     sync.Mutex
	events []UserVerifiedEvent
}

func (f *fakeMessaging) PublishUserVerified(_ context.Context, msg UserVerifiedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, msg)
	return nil
}

type plainHash struct{}

func (plainHash) Hash(plaintext string) ([]byte, error) { return []byte("hashed:" + plaintext), nil }
func (plainHash) Verify(hashed, plaintext string) bool  { return hashed == "hashed:"+plaintext }

type seqIDs struct {
	next atomic.Int64
}

func (g *seqIDs) Generate() int64 { return g.next.Add(1) }

type passIdempotency struct{}

func (passIdempotency) Acquire(context.Context, string, time.Duration) (idempotency.State, error) {
	return idempotency.StateNone, nil
}
func (passIdempotency) MarkCompleted(context.Context, string, time.Duration) error { return nil }
func (passIdempotency) MarkFailed(context.Context, string, time.Duration) error    { return nil }
func (passIdempotency) Exec(ctx context.Context, _ string, fn func(context.Context) error, _ ...idempotency.Option) error {
	return fn(ctx)
}

type fixture struct {
	uc      *Usecase
	store   *otpstore.Memory
	clock   *stubClock
	email   *fakeEmail
	db      *fakeDB
	msg     *fakeMessaging
	codes   *seqCodes
	routine *goroutine.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	v10, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	clk := &stubClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	store := otpstore.NewMemory(otpstore.Config{TTL: 10 * time.Minute, MaxAttempts: 3, Clock: clk})
	t.Cleanup(func() { store.Close() })

	email := &fakeEmail{}
	db := &fakeDB{users: map[string]*entity.User{}}
	msg := &fakeMessaging{}
	codes := &seqCodes{codes: []string{"111111", "222222", "333333"}}
	routine := goroutine.NewManager(8)

	uc := New(Dependency{
		RepoDB:        db,
		RepoMessaging: msg,
		RepoEmail:     email,
		OTPStore:      store,
		Idempotency:   passIdempotency{},
		Validator:     v10,
		Config:        stubConfig{},
		Bcrypt:        plainHash{},
		UID:           &seqIDs{},
		Clock:         clk,
		CodeGenerator: codes,
		Instrument:    instrument.NewNoop(),
		Goroutine:     routine,
	})

	return &fixture{uc: uc, store: store, clock: clk, email: email, db: db, msg: msg, codes: codes, routine: routine}
}

func TestOtpSendSingleLiveRecord(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()

	// Act
	for range 3 {
		if err := f.uc.OtpSend(ctx, OtpSendInput{Identity: "a@x.com", DisplayName: "Ana"}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	// Assert
	if got := f.store.Len(); got != 1 {
		t.Fatalf("expected exactly one live record, got %d", got)
	}
	rec, ok := f.store.Get("a@x.com")
	if !ok || rec.Code != "333333" {
		t.Fatalf("expected most recent code, got %+v ok=%v", rec, ok)
	}
}

func TestOtpSendInvalidEmail(t *testing.T) {
	f := newFixture(t)

	err := f.uc.OtpSend(context.Background(), OtpSendInput{Identity: "not-an-email"})

	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Type() != goerror.TypeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.store.Len() != 0 {
		t.Fatalf("no record should be stored for invalid input")
	}
}

func TestOtpSendEmailFailureLeavesCode(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.email.err = errors.New("smtp: connection refused")

	// Act
	err := f.uc.OtpSend(context.Background(), OtpSendInput{Identity: "a@x.com"})

	// Assert
	if !errors.Is(err, entity.ErrEmailDelivery) {
		t.Fatalf("expected delivery failure, got %v", err)
	}
	if _, ok := f.store.Get("a@x.com"); !ok {
		t.Fatalf("the stored code must stay valid after a delivery failure")
	}
	if err := f.uc.OtpVerify(context.Background(), OtpVerifyInput{Identity: "a@x.com", Code: "111111"}); err != nil {
		t.Fatalf("code issued before delivery failure should verify: %v", err)
	}
}

func TestOtpVerifyNeverIssued(t *testing.T) {
	f := newFixture(t)

	for range 2 {
		err := f.uc.OtpVerify(context.Background(), OtpVerifyInput{Identity: "ghost@x.com", Code: "123456"})
		if !errors.Is(err, entity.ErrOTPNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	}
}

func TestOtpVerifyExpiryPrecedence(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()
	if err := f.uc.OtpSend(ctx, OtpSendInput{Identity: "a@x.com"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	f.clock.Advance(10*time.Minute + time.Second)

	// Act: wrong code against an expired record.
	err := f.uc.OtpVerify(ctx, OtpVerifyInput{Identity: "a@x.com", Code: "999999"})

	// Assert
	if !errors.Is(err, entity.ErrOTPExpired) {
		t.Fatalf("expected expired, got %v", err)
	}
	if _, ok := f.store.Get("a@x.com"); ok {
		t.Fatalf("expired record must be purged on verify")
	}
}

func TestOtpVerifyAttemptAccounting(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()
	if err := f.uc.OtpSend(ctx, OtpSendInput{Identity: "a@x.com"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	// Act & Assert
	wrong := OtpVerifyInput{Identity: "a@x.com", Code: "000000"}
	want := []error{entity.ErrOTPMismatch, entity.ErrOTPMismatch, entity.ErrOTPTooManyAttempts, entity.ErrOTPNotFound}
	for i, expected := range want {
		err := f.uc.OtpVerify(ctx, wrong)
		if !errors.Is(err, expected) {
			t.Fatalf("attempt %d: expected %v, got %v", i+1, expected, err)
		}
	}
}

func TestOtpVerifySuccessPurge(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()
	if err := f.uc.OtpSend(ctx, OtpSendInput{Identity: "a@x.com"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	// Act & Assert
	if err := f.uc.OtpVerify(ctx, OtpVerifyInput{Identity: "a@x.com", Code: "111111"}); err != nil {
		t.Fatalf("expected verified, got %v", err)
	}
	err := f.uc.OtpVerify(ctx, OtpVerifyInput{Identity: "a@x.com", Code: "111111"})
	if !errors.Is(err, entity.ErrOTPNotFound) {
		t.Fatalf("expected not found after purge, got %v", err)
	}
}

func TestOtpVerifyConcurrentCeiling(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()
	if err := f.uc.OtpSend(ctx, OtpSendInput{Identity: "a@x.com"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	f.store.RecordFailedAttempt("a@x.com")
	f.store.RecordFailedAttempt("a@x.com") // counter now at maxAttempts-1

	// Act
	results := make(chan error, 2)
	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- f.uc.OtpVerify(ctx, OtpVerifyInput{Identity: "a@x.com", Code: "000000"})
		}()
	}
	wg.Wait()
	close(results)

	// Assert
	lockedOut := 0
	for err := range results {
		if err == nil {
			t.Fatalf("no caller may verify past the attempt ceiling")
		}
		if errors.Is(err, entity.ErrOTPMismatch) {
			t.Fatalf("the final attempt must surface lockout, not mismatch: %v", err)
		}
		if errors.Is(err, entity.ErrOTPTooManyAttempts) {
			lockedOut++
		}
	}
	if lockedOut > 1 {
		t.Fatalf("at most one caller may observe the lockout transition, got %d", lockedOut)
	}
	if _, ok := f.store.Get("a@x.com"); ok {
		t.Fatalf("record must be purged exactly once")
	}
}

func TestOtpReissueResetsLockout(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()
	if err := f.uc.OtpSend(ctx, OtpSendInput{Identity: "a@x.com"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	wrong := OtpVerifyInput{Identity: "a@x.com", Code: "000000"}
	for range 3 {
		f.uc.OtpVerify(ctx, wrong)
	}

	// Act
	if err := f.uc.OtpSend(ctx, OtpSendInput{Identity: "a@x.com"}); err != nil {
		t.Fatalf("re-issue: %v", err)
	}
	err := f.uc.OtpVerify(ctx, OtpVerifyInput{Identity: "a@x.com", Code: "222222"})

	// Assert
	if err != nil {
		t.Fatalf("fresh code after lockout should verify, got %v", err)
	}
}

func TestOtpVerifyActivatesPendingRegistration(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()
	if err := f.uc.Register(ctx, RegisterInput{
		Email:    "ana@x.com",
		Password: "Secret123!",
		FullName: "Ana Pratama",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Act
	if err := f.uc.OtpVerify(ctx, OtpVerifyInput{Identity: "ana@x.com", Code: "111111"}); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := f.routine.Wait(); err != nil {
		t.Fatalf("background publish: %v", err)
	}

	// Assert
	user, err := f.db.GetUserByEmail(ctx, "ana@x.com")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Status != entity.UserStatusActive {
		t.Fatalf("expected active user, got %v", user.Status)
	}
	if len(f.msg.events) != 1 || f.msg.events[0].Email != "ana@x.com" {
		t.Fatalf("expected one user verified event, got %+v", f.msg.events)
	}
}

func TestOtpDebugDisabledByDefault(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.OtpDebug(context.Background())

	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
