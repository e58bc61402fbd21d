package candidates

import (
	"context"
	"errors"
	"testing"

	"github.com/bluele/gcache"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srodi/appimpact/pkg/types"
)

type fakeHandle struct {
	pid        int
	ppid       int
	name       string
	nameErr    error
	uid        int
	status     []string
	foreground bool
	created    int64
	nameCalls  *int
}

func (f fakeHandle) PID() int                                  { return f.pid }
func (f fakeHandle) PPID(context.Context) (int, error)         { return f.ppid, nil }
func (f fakeHandle) RealUID(context.Context) (int, error)      { return f.uid, nil }
func (f fakeHandle) Status(context.Context) ([]string, error)  { return f.status, nil }
func (f fakeHandle) Foreground(context.Context) (bool, error)  { return f.foreground, nil }
func (f fakeHandle) CreateTime(context.Context) (int64, error) { return f.created, nil }
func (f fakeHandle) Name(context.Context) (string, error) {
	if f.nameCalls != nil {
		*f.nameCalls++
	}
	return f.name, f.nameErr
}

func newTestSource(filter Filter, handles ...procHandle) *Source {
	s := NewSource(filter, logrus.NewEntry(logrus.New()))
	s.ownPID = 1
	s.ownUID = 501
	s.list = func(context.Context) ([]procHandle, error) { return handles, nil }
	return s
}

func app(pid int, name string) fakeHandle {
	return fakeHandle{pid: pid, ppid: 1, name: name, uid: 501, status: []string{"running"}}
}

func TestCandidatesFiltersIneligibleProcesses(t *testing.T) {
	zombie := app(20, "defunct")
	zombie.status = []string{"zombie"}
	stopped := app(21, "suspended")
	stopped.status = []string{"stop"}
	otherUser := app(22, "postgres")
	otherUser.uid = 70
	unnamed := app(23, "")
	nameErr := app(24, "ghost")
	nameErr.nameErr = errors.New("gone")
	front := app(30, "IntelliJ IDEA")
	front.foreground = true
	kworker := app(25, "kworker/0:1")
	kworker.ppid = 2

	s := newTestSource(Filter{},
		app(1, "appimpact"),
		zombie, stopped, otherUser, unnamed, nameErr,
		kworker,
		app(26, "Firefox"),
		front,
	)

	got, err := s.Candidates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []types.CandidateApp{
		{PID: 26, Name: "Firefox"},
		{PID: 30, Name: "IntelliJ IDEA", IsFrontmost: true},
	}, got)
}

func TestCandidatesAllUsersAndKernelToggle(t *testing.T) {
	otherUser := app(22, "postgres")
	otherUser.uid = 70
	hide := false
	s := newTestSource(Filter{AllUsers: true, HideKernel: &hide}, otherUser, app(25, "kworker/0:1"))

	got, err := s.Candidates(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "postgres", got[0].Name)
	assert.Equal(t, "kworker/0:1", got[1].Name)
}

func TestIsKernelThread(t *testing.T) {
	kthread := app(40, "jbd2/sda1-8")
	kthread.ppid = 2
	kthreadd := app(2, "kthreadd")
	kthreadd.ppid = 0
	userRCU := app(41, "rcu-monitor")

	cases := []struct {
		name string
		h    fakeHandle
		goos string
		want bool
	}{
		{"linux child of kthreadd", kthread, "linux", true},
		{"linux kthreadd", kthreadd, "linux", true},
		{"linux user program with kernel-like name", userRCU, "linux", false},
		{"darwin kernel-like name", userRCU, "darwin", true},
		{"darwin unknown name", kthread, "darwin", false},
		{"darwin regular app", app(42, "bash"), "darwin", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isKernelThread(context.Background(), tc.h, tc.h.name, tc.goos))
		})
	}
}

func TestCandidatesKeepsSingleFrontmost(t *testing.T) {
	idleShell := app(10, "zsh")
	idleShell.foreground = true
	idleShell.created = 1000
	editor := app(11, "vim")
	editor.foreground = true
	editor.created = 5000
	background := app(12, "Firefox")
	background.created = 9000

	s := newTestSource(Filter{}, idleShell, editor, background)
	got, err := s.Candidates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []types.CandidateApp{
		{PID: 10, Name: "zsh"},
		{PID: 11, Name: "vim", IsFrontmost: true},
		{PID: 12, Name: "Firefox"},
	}, got)
}

func TestCandidatesIncludeExclude(t *testing.T) {
	s := newTestSource(Filter{Include: []string{"fire", " Code "}, Exclude: []string{"helper"}},
		app(10, "Firefox"),
		app(11, "Firefox Helper"),
		app(12, "code"),
		app(13, "Terminal"),
	)

	got, err := s.Candidates(context.Background())
	require.NoError(t, err)
	names := make([]string, 0, len(got))
	for _, c := range got {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Firefox", "code"}, names)
}

func TestCandidatesCachesNames(t *testing.T) {
	calls := 0
	h := app(10, "Firefox")
	h.nameCalls = &calls
	s := newTestSource(Filter{}, h)

	for i := 0; i < 3; i++ {
		_, err := s.Candidates(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 1, calls)

	cached, err := s.names.Get(nameKey{pid: 10})
	require.NoError(t, err)
	assert.Equal(t, "Firefox", cached)
	_, err = s.names.Get(nameKey{pid: 99})
	assert.ErrorIs(t, err, gcache.KeyNotFoundError)
}

func TestCandidatesReusedPIDGetsFreshName(t *testing.T) {
	calls := 0
	first := app(10, "Firefox")
	first.created = 1000
	first.nameCalls = &calls
	s := newTestSource(Filter{}, first)

	got, err := s.Candidates(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Firefox", got[0].Name)

	reused := app(10, "Terminal")
	reused.created = 2000
	reused.nameCalls = &calls
	s.list = func(context.Context) ([]procHandle, error) { return []procHandle{reused}, nil }

	got, err = s.Candidates(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Terminal", got[0].Name)
	assert.Equal(t, 2, calls)
}

func TestCandidatesPropagatesListError(t *testing.T) {
	s := newTestSource(Filter{})
	s.list = func(context.Context) ([]procHandle, error) { return nil, errors.New("denied") }
	_, err := s.Candidates(context.Background())
	assert.Error(t, err)
}

func TestIsLive(t *testing.T) {
	assert.True(t, isLive([]string{"running"}))
	assert.True(t, isLive([]string{"sleep"}))
	assert.True(t, isLive(nil))
	assert.False(t, isLive([]string{"zombie"}))
	assert.False(t, isLive([]string{"stop"}))
}
