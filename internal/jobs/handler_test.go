package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencampus-hq/timereport/internal/artifact"
	"github.com/opencampus-hq/timereport/internal/jobstate"
	"github.com/opencampus-hq/timereport/internal/logging"
	"github.com/opencampus-hq/timereport/internal/messaging"
	"github.com/opencampus-hq/timereport/internal/models"
	"github.com/opencampus-hq/timereport/internal/repository"
	"github.com/opencampus-hq/timereport/internal/service"
)

// fakeBus implements messaging.Client in memory for worker tests.
type fakeBus struct {
	published map[string][][]byte
	handler   messaging.MessageHandler
}

func newFakeBus() *fakeBus {
	return &fakeBus{published: make(map[string][][]byte)}
}

func (f *fakeBus) Publish(ctx context.Context, subject string, data []byte) error {
	f.published[subject] = append(f.published[subject], data)
	return nil
}

func (f *fakeBus) PublishMsg(ctx context.Context, msg *messaging.Message) error {
	return f.Publish(ctx, msg.Subject, msg.Data)
}

func (f *fakeBus) Request(ctx context.Context, subject string, data []byte, timeout time.Duration) (*messaging.Message, error) {
	return nil, nil
}

func (f *fakeBus) Subscribe(subject string, handler messaging.MessageHandler) (messaging.Subscription, error) {
	f.handler = handler
	return fakeSubscription{subject: subject}, nil
}

func (f *fakeBus) QueueSubscribe(subject, queue string, handler messaging.MessageHandler) (messaging.Subscription, error) {
	f.handler = handler
	return fakeSubscription{subject: subject}, nil
}

func (f *fakeBus) Close() error      { return nil }
func (f *fakeBus) Drain() error      { return nil }
func (f *fakeBus) IsConnected() bool { return true }

type fakeSubscription struct{ subject string }

func (s fakeSubscription) Unsubscribe() error { return nil }
func (s fakeSubscription) Subject() string    { return s.subject }
func (s fakeSubscription) IsValid() bool      { return true }

// fakeRepo serves one known user with a fixed event stream.
type fakeRepo struct {
	user   *models.User
	events []models.LogEvent
}

func (r *fakeRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if r.user != nil && r.user.ID == id {
		return r.user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeRepo) GetLogEvents(ctx context.Context, userID, start, end int64, allowedTargets []string) ([]models.LogEvent, error) {
	return r.events, nil
}

func (r *fakeRepo) GetDistinctTargets(ctx context.Context) ([]string, error) { return nil, nil }
func (r *fakeRepo) CreateUser(ctx context.Context, user *models.User) error  { return nil }
func (r *fakeRepo) InsertLogEvents(ctx context.Context, userID int64, events []models.LogEvent) error {
	return nil
}
func (r *fakeRepo) Close() {}

func setupWorker(t *testing.T, repo repository.Repository) (*Worker, *fakeBus, *jobstate.Manager, *artifact.Store) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	state := jobstate.NewManager(client, 5*time.Minute, 24*time.Hour)

	store, err := artifact.NewStore(t.TempDir())
	require.NoError(t, err)

	logger := logging.New(slog.LevelError, "text")
	svc := service.New(repo, store, state, nil, nil, logger, service.Config{
		IdleThreshold:  1800,
		BorrowedTime:   900,
		PublicBasePath: "/reports",
	})

	bus := newFakeBus()
	w := NewWorker(bus, svc, state, logger)
	require.NoError(t, w.Start())
	t.Cleanup(func() { w.Stop() })

	return w, bus, state, store
}

func testJob() *ReportJobRequest {
	return &ReportJobRequest{
		JobID:       "job-1",
		RequestorID: 7,
		UserID:      42,
		Start:       1704067200000,
		End:         1706745599000,
		ContextID:   5,
		RequestedAt: time.Now().Unix(),
	}
}

func jobMessage(t *testing.T, job *ReportJobRequest) *messaging.Message {
	t.Helper()
	data, err := json.Marshal(job)
	require.NoError(t, err)
	return &messaging.Message{Subject: messaging.SubjectReportJobsGenerate, Data: data}
}

func TestWorker_GeneratesAndPublishesCompletion(t *testing.T) {
	base := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC).Unix()
	repo := &fakeRepo{
		user: &models.User{ID: 42, Username: "Jean Dupont"},
		events: []models.LogEvent{
			{Timestamp: base, Day: "2024-01-15"},
			{Timestamp: base + 600, Day: "2024-01-15"},
		},
	}
	w, bus, _, store := setupWorker(t, repo)
	ctx := context.Background()
	job := testJob()

	require.NoError(t, w.handleGenerate(ctx, jobMessage(t, job)))

	assert.True(t, store.Exists(5, "report__jean_dupont__01-01-2024_31-01-2024.csv"))

	subject := messaging.ReportCompletedSubject(job.JobID)
	require.Len(t, bus.published[subject], 1)

	var completed ReportJobCompleted
	require.NoError(t, json.Unmarshal(bus.published[subject][0], &completed))
	assert.Equal(t, job.JobID, completed.JobID)
	assert.Equal(t, int64(42), completed.UserID)
	assert.True(t, strings.HasPrefix(completed.Path, "/reports/5/"))
}

func TestWorker_DropsDuplicateJob(t *testing.T) {
	repo := &fakeRepo{user: &models.User{ID: 42, Username: "Jean Dupont"}}
	w, bus, state, _ := setupWorker(t, repo)
	ctx := context.Background()
	job := testJob()

	// Another worker already holds the lock for this report.
	key := jobstate.ReportKey(42, 1704067200, 1706745599)
	acquired, err := state.AcquireLock(ctx, key)
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, w.handleGenerate(ctx, jobMessage(t, job)))
	assert.Empty(t, bus.published[messaging.ReportCompletedSubject(job.JobID)])
}

func TestWorker_ReleasesLockAfterGeneration(t *testing.T) {
	repo := &fakeRepo{user: &models.User{ID: 42, Username: "Jean Dupont"}}
	w, _, state, _ := setupWorker(t, repo)
	ctx := context.Background()

	require.NoError(t, w.handleGenerate(ctx, jobMessage(t, testJob())))

	key := jobstate.ReportKey(42, 1704067200, 1706745599)
	acquired, err := state.AcquireLock(ctx, key)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestWorker_MalformedJobIsDropped(t *testing.T) {
	repo := &fakeRepo{user: &models.User{ID: 42, Username: "Jean Dupont"}}
	w, bus, _, _ := setupWorker(t, repo)

	msg := &messaging.Message{Subject: messaging.SubjectReportJobsGenerate, Data: []byte("{not json")}
	assert.NoError(t, w.handleGenerate(context.Background(), msg))
	assert.Empty(t, bus.published)
}

func TestWorker_UnknownSubjectIsNotRetried(t *testing.T) {
	repo := &fakeRepo{}
	w, bus, _, _ := setupWorker(t, repo)

	assert.NoError(t, w.handleGenerate(context.Background(), jobMessage(t, testJob())))
	assert.Empty(t, bus.published)
}

func TestPublisher_PublishGenerate(t *testing.T) {
	bus := newFakeBus()
	p := NewPublisher(bus)

	req := &models.GenerateReportRequest{
		RequestorID: 7,
		UserID:      42,
		Start:       1704067200000,
		End:         1706745599000,
		ContextID:   5,
	}
	require.NoError(t, p.PublishGenerate(context.Background(), req))

	require.Len(t, bus.published[messaging.SubjectReportJobsGenerate], 1)

	var job ReportJobRequest
	require.NoError(t, json.Unmarshal(bus.published[messaging.SubjectReportJobsGenerate][0], &job))
	assert.NotEmpty(t, job.JobID)
	assert.Equal(t, int64(42), job.UserID)
	assert.Equal(t, int64(1704067200000), job.Start)

	// Round-trips back into the service request.
	assert.Equal(t, req, job.Request())
}
