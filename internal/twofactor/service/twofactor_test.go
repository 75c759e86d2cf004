package service_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/twofactor/internal/twofactor/domain"
	"github.com/aussiebroadwan/twofactor/internal/twofactor/service"
	"github.com/aussiebroadwan/twofactor/internal/twofactor/store/drivers/sqlite"
	"github.com/aussiebroadwan/twofactor/internal/twofactor/totp"
	"github.com/aussiebroadwan/twofactor/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	calls atomic.Int32
	err   error

	mu    sync.Mutex
	users []domain.User
}

func (n *fakeNotifier) Notify2FAEnabled(_ context.Context, u domain.User) error {
	n.calls.Add(1)
	n.mu.Lock()
	n.users = append(n.users, u)
	n.mu.Unlock()
	return n.err
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	svc      *service.TwoFactorService
	store    *sqlite.Store
	notifier *fakeNotifier
	clock    *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.MemoryDSN)
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	sealer, err := cryptox.NewSealer(bytes.Repeat([]byte{7}, 32), "twofactor-test")
	require.NoError(t, err)

	clk := &clock{now: time.Unix(1_700_000_010, 0).UTC()}
	codes := service.NewBackupCodeManager([]byte("test-pepper-0123456789abcdef0123"))
	codes.Now = clk.Now

	n := &fakeNotifier{}
	svc := service.NewTwoFactorService(st, sealer, codes, n, "Example")
	svc.Now = clk.Now

	return &fixture{svc: svc, store: st, notifier: n, clock: clk}
}

func (f *fixture) code(t *testing.T, secret string) string {
	t.Helper()
	code, err := totp.CurrentCode(secret, f.clock.Now())
	require.NoError(t, err)
	return code
}

var alice = domain.User{ID: "01HZXALICE", Email: "alice@example.com"}

func TestEndToEndLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	prov, err := f.svc.Enroll(ctx, alice)
	require.NoError(t, err)
	require.Len(t, prov.BackupCodes, service.DefaultBackupCodeCount)
	require.Equal(t, "alice@example.com", prov.AccountLabel)
	require.Contains(t, prov.ProvisioningURI, "otpauth://totp/")
	require.Contains(t, prov.ProvisioningURI, prov.Secret)

	st, err := f.svc.Status(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, domain.StatePending, st.State)
	require.Equal(t, 10, st.BackupCodesRemaining)

	code := f.code(t, prov.Secret)
	res, err := f.svc.Verify(ctx, alice, code)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.True(t, res.NewlyEnabled)
	require.EqualValues(t, 1, f.notifier.calls.Load())
	require.Equal(t, []domain.User{alice}, f.notifier.users)

	f.clock.Advance(61 * time.Second)
	_, err = f.svc.Verify(ctx, alice, code)
	require.ErrorIs(t, err, service.ErrInvalidCode)

	fresh, err := f.svc.RegenerateBackupCodes(ctx, alice)
	require.NoError(t, err)
	require.Len(t, fresh, 10)
	for _, old := range prov.BackupCodes {
		require.NotContains(t, fresh, old)
		_, err := f.svc.Verify(ctx, alice, old)
		require.ErrorIs(t, err, service.ErrInvalidCode)
	}

	res, err = f.svc.Verify(ctx, alice, fresh[0])
	require.NoError(t, err)
	require.True(t, res.Success)
	require.False(t, res.NewlyEnabled)
	require.EqualValues(t, 1, f.notifier.calls.Load())

	require.NoError(t, f.svc.Disable(ctx, alice))

	st, err = f.svc.Status(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, domain.StateDisabled, st.State)
	require.Zero(t, st.BackupCodesRemaining)

	_, err = f.svc.Verify(ctx, alice, f.code(t, prov.Secret))
	require.ErrorIs(t, err, service.ErrNotFound)
	_, err = f.svc.Verify(ctx, alice, fresh[1])
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestEnrollTwiceReusesSecretAndRefreshesCodes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.svc.Enroll(ctx, alice)
	require.NoError(t, err)
	second, err := f.svc.Enroll(ctx, alice)
	require.NoError(t, err)

	require.Equal(t, first.Secret, second.Secret)
	require.NotEqual(t, first.BackupCodes, second.BackupCodes)

	_, err = f.svc.Verify(ctx, alice, first.BackupCodes[0])
	require.ErrorIs(t, err, service.ErrInvalidCode)

	st, err := f.svc.Status(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, domain.StatePending, st.State)
	require.Equal(t, 10, st.BackupCodesRemaining)
}

func TestEnrollWhenEnabledFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	prov, err := f.svc.Enroll(ctx, alice)
	require.NoError(t, err)
	_, err = f.svc.Verify(ctx, alice, f.code(t, prov.Secret))
	require.NoError(t, err)

	_, err = f.svc.Enroll(ctx, alice)
	require.ErrorIs(t, err, service.ErrAlreadyEnabled)

	// The failed enrol must not have replaced the codes.
	res, err := f.svc.Verify(ctx, alice, prov.BackupCodes[0])
	require.NoError(t, err)
	require.True(t, res.Success)
}

func TestAccountLabelFallsBackToUserID(t *testing.T) {
	f := newFixture(t)

	prov, err := f.svc.Enroll(context.Background(), domain.User{ID: "01HZXNOMAIL"})
	require.NoError(t, err)
	require.Equal(t, "01HZXNOMAIL", prov.AccountLabel)
}

func TestBackupCodeConfirmsPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	prov, err := f.svc.Enroll(ctx, alice)
	require.NoError(t, err)

	res, err := f.svc.Verify(ctx, alice, prov.BackupCodes[3])
	require.NoError(t, err)
	require.True(t, res.NewlyEnabled)
	require.EqualValues(t, 1, f.notifier.calls.Load())

	st, err := f.svc.Status(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, domain.StateEnabled, st.State)
	require.Equal(t, 9, st.BackupCodesRemaining)

	_, err = f.svc.Verify(ctx, alice, prov.BackupCodes[3])
	require.ErrorIs(t, err, service.ErrInvalidCode)
}

func TestBackupCodeInputIsNormalized(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	prov, err := f.svc.Enroll(ctx, alice)
	require.NoError(t, err)

	code := prov.BackupCodes[0]
	typed := "  " + code[:5] + "-" + code[5:] + " "
	res, err := f.svc.Verify(ctx, alice, typed)
	require.NoError(t, err)
	require.True(t, res.Success)

	lower := []byte(prov.BackupCodes[1])
	for i, c := range lower {
		if c >= 'A' && c <= 'Z' {
			lower[i] = c + ('a' - 'A')
		}
	}
	_, err = f.svc.Verify(ctx, alice, string(lower))
	require.NoError(t, err)
}

func TestTOTPReplayIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	prov, err := f.svc.Enroll(ctx, alice)
	require.NoError(t, err)
	_, err = f.svc.Verify(ctx, alice, f.code(t, prov.Secret))
	require.NoError(t, err)

	f.clock.Advance(totp.Period)
	code := f.code(t, prov.Secret)

	_, err = f.svc.Verify(ctx, alice, code)
	require.NoError(t, err)

	f.clock.Advance(5 * time.Second)
	_, err = f.svc.Verify(ctx, alice, code)
	require.ErrorIs(t, err, service.ErrInvalidCode)

	// An older step inside the window is no better than a replay.
	older, err := totp.CurrentCode(prov.Secret, f.clock.Now().Add(-totp.Period))
	require.NoError(t, err)
	_, err = f.svc.Verify(ctx, alice, older)
	require.ErrorIs(t, err, service.ErrInvalidCode)
}

func TestVerifyFailuresLookTheSame(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	prov, err := f.svc.Enroll(ctx, alice)
	require.NoError(t, err)

	for _, code := range []string{"", "000000", "ABCDEFGHJK", "not a code", prov.Secret} {
		res, err := f.svc.Verify(ctx, alice, code)
		require.ErrorIs(t, err, service.ErrInvalidCode, "code %q", code)
		require.Equal(t, service.VerifyResult{}, res)
	}

	st, err := f.svc.Status(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, domain.StatePending, st.State)
	require.Zero(t, f.notifier.calls.Load())
}

func TestVerifyWithoutCredential(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Verify(context.Background(), alice, "123456")
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestNotifierErrorDoesNotFailVerify(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.notifier.err = errors.New("smtp down")

	prov, err := f.svc.Enroll(ctx, alice)
	require.NoError(t, err)

	res, err := f.svc.Verify(ctx, alice, f.code(t, prov.Secret))
	require.NoError(t, err)
	require.True(t, res.NewlyEnabled)
	require.EqualValues(t, 1, f.notifier.calls.Load())

	st, err := f.svc.Status(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, domain.StateEnabled, st.State)
}

func TestNilNotifier(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc.Notifier = nil

	prov, err := f.svc.Enroll(ctx, alice)
	require.NoError(t, err)
	res, err := f.svc.Verify(ctx, alice, f.code(t, prov.Secret))
	require.NoError(t, err)
	require.True(t, res.NewlyEnabled)
}

func TestDisableAndRegenerateRequireCredential(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.ErrorIs(t, f.svc.Disable(ctx, alice), service.ErrNotEnabled)
	_, err := f.svc.RegenerateBackupCodes(ctx, alice)
	require.ErrorIs(t, err, service.ErrNotEnabled)

	_, err = f.svc.Enroll(ctx, alice)
	require.NoError(t, err)

	_, err = f.svc.RegenerateBackupCodes(ctx, alice)
	require.ErrorIs(t, err, service.ErrNotEnabled, "pending is not enabled")

	require.NoError(t, f.svc.Disable(ctx, alice), "pending may be abandoned")
	require.ErrorIs(t, f.svc.Disable(ctx, alice), service.ErrNotEnabled)
}

func TestReenrollAfterDisableIssuesNewSecret(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.svc.Enroll(ctx, alice)
	require.NoError(t, err)
	_, err = f.svc.Verify(ctx, alice, f.code(t, first.Secret))
	require.NoError(t, err)
	require.NoError(t, f.svc.Disable(ctx, alice))

	second, err := f.svc.Enroll(ctx, alice)
	require.NoError(t, err)
	require.NotEqual(t, first.Secret, second.Secret)

	f.clock.Advance(totp.Period)
	res, err := f.svc.Verify(ctx, alice, f.code(t, second.Secret))
	require.NoError(t, err)
	require.True(t, res.NewlyEnabled)
	require.EqualValues(t, 2, f.notifier.calls.Load())
}

func TestInvalidBackupCodeCount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, n := range []int{-1, service.MaxBackupCodeCount + 1} {
		f.svc.BackupCodeCount = n
		_, err := f.svc.Enroll(ctx, alice)
		require.ErrorIs(t, err, service.ErrInvalidCount, "count %d", n)
	}

	// Nothing was written by the failed attempts.
	st, err := f.svc.Status(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, domain.StateDisabled, st.State)

	f.svc.BackupCodeCount = service.MaxBackupCodeCount
	prov, err := f.svc.Enroll(ctx, alice)
	require.NoError(t, err)
	require.Len(t, prov.BackupCodes, service.MaxBackupCodeCount)
}

func TestConcurrentBackupCodeVerifyHasOneWinner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	prov, err := f.svc.Enroll(ctx, alice)
	require.NoError(t, err)
	_, err = f.svc.Verify(ctx, alice, f.code(t, prov.Secret))
	require.NoError(t, err)

	const workers = 16
	var (
		wg      sync.WaitGroup
		wins    atomic.Int32
		rejects atomic.Int32
		start   = make(chan struct{})
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.svc.Verify(ctx, alice, prov.BackupCodes[0])
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, service.ErrInvalidCode):
				rejects.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	require.EqualValues(t, 1, wins.Load())
	require.EqualValues(t, workers-1, rejects.Load())
}

func TestConcurrentConfirmNotifiesOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	prov, err := f.svc.Enroll(ctx, alice)
	require.NoError(t, err)
	code := f.code(t, prov.Secret)

	const workers = 8
	var (
		wg    sync.WaitGroup
		newly atomic.Int32
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.svc.Verify(ctx, alice, code)
			if err == nil && res.NewlyEnabled {
				newly.Add(1)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, newly.Load())
	require.EqualValues(t, 1, f.notifier.calls.Load())
}
