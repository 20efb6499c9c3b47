package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-insights/internal/adapter/repository"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/usecase/actionplan"
	usecaseErrors "github.com/johnquangdev/meeting-insights/internal/usecase/errors"
	"github.com/johnquangdev/meeting-insights/internal/usecase/insight"
	"github.com/johnquangdev/meeting-insights/internal/usecase/stage"
	"github.com/johnquangdev/meeting-insights/internal/usecase/transcription"
	"github.com/johnquangdev/meeting-insights/pkg/ai"
)

type fakeTranscriber struct {
	err       error
	mockCalls int
	mu        sync.Mutex
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioRef string) (*entities.TranscriptionResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	res := transcription.MockResult(12)
	res.Source = entities.TranscriptionSourceAssemblyAI
	return res, nil
}

func (f *fakeTranscriber) Mock(ctx context.Context, audioRef string) (*entities.TranscriptionResult, error) {
	f.mu.Lock()
	f.mockCalls++
	f.mu.Unlock()
	return transcription.MockResult(5), nil
}

type textCompleter struct {
	response string
}

func (c textCompleter) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	return c.response, nil
}

func (c textCompleter) Provider() string { return "fake" }

type memoryProgress struct {
	mu    sync.Mutex
	items map[uuid.UUID]entities.ProcessingProgress
	seen  []entities.ProcessingStage
}

func newMemoryProgress() *memoryProgress {
	return &memoryProgress{items: make(map[uuid.UUID]entities.ProcessingProgress)}
}

func (p *memoryProgress) SetProgress(ctx context.Context, progress entities.ProcessingProgress) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items[progress.MeetingID] = progress
	p.seen = append(p.seen, progress.Stage)
	return nil
}

func (p *memoryProgress) GetProgress(ctx context.Context, id uuid.UUID) (*entities.ProcessingProgress, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	got, ok := p.items[id]
	if !ok {
		return nil, entities.ErrProgressNotFound
	}
	return &got, nil
}

// failingCompletion fails the final transaction after the meeting reached it
type failingCompletion struct {
	*repository.MemoryRepository
}

func (f *failingCompletion) CompleteMeeting(ctx context.Context, id uuid.UUID, change entities.StatusChange, actions []*entities.Action) (bool, error) {
	return false, errors.New("connection refused")
}

// sweptPlanner fails the meeting the way the stale sweeper does, then plans
type sweptPlanner struct {
	repo *repository.MemoryRepository
	next PlanGenerator
}

func (p *sweptPlanner) Plan(ctx context.Context, insights *entities.MeetingInsights, uc actionplan.UserContext) stage.Outcome[*entities.ActionPlan] {
	meetings, _ := p.repo.ListMeetings(ctx, uc.UserID, 0, 0)
	for _, m := range meetings {
		p.repo.TransitionStatus(ctx, m.ID, entities.StatusChange{
			From:          entities.ProcessingStatusProcessing,
			To:            entities.ProcessingStatusFailed,
			FailedStage:   stage.ActionPlanning,
			FailureReason: "stale",
		})
	}
	return p.next.Plan(ctx, insights, uc)
}

type panickingPlanner struct{}

func (panickingPlanner) Plan(ctx context.Context, insights *entities.MeetingInsights, uc actionplan.UserContext) stage.Outcome[*entities.ActionPlan] {
	panic("planner exploded")
}

var fixedNow = time.Date(2030, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	repo     *repository.MemoryRepository
	progress *memoryProgress
	tr       *fakeTranscriber
	orch     *Orchestrator
}

func newFixture(t *testing.T, llm ai.Completer) *fixture {
	t.Helper()
	repo := repository.NewMemoryRepository()
	progress := newMemoryProgress()
	tr := &fakeTranscriber{}
	orch := NewOrchestrator(
		repo, repo, progress, tr,
		insight.NewExtractor(llm, nil, nil),
		actionplan.NewGenerator(llm, nil, nil).WithClock(func() time.Time { return fixedNow }),
		nil,
	).WithMockFallback(true).WithClock(func() time.Time { return fixedNow })
	return &fixture{repo: repo, progress: progress, tr: tr, orch: orch}
}

func (f *fixture) create(t *testing.T) *entities.Meeting {
	t.Helper()
	m, err := f.orch.CreateMeeting(context.Background(), CreateMeetingInput{
		UserID:   "user-1",
		Title:    "Weekly mentoring",
		AudioRef: "meetings/weekly.mp3",
	})
	if err != nil {
		t.Fatalf("create meeting: %v", err)
	}
	return m
}

func TestStartProcessing_NoCredentialCompletesWithMock(t *testing.T) {
	f := newFixture(t, nil)
	m := f.create(t)

	res, err := f.orch.StartProcessing(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := res.Meeting
	if got.ProcessingStatus != entities.ProcessingStatusCompleted {
		t.Fatalf("expected completed, got %s", got.ProcessingStatus)
	}
	if got.Insights == nil || got.Insights.Confidence != insight.MockConfidence || len(got.Insights.AdviceGiven) != 3 {
		t.Fatalf("expected mock insights, got %+v", got.Insights)
	}
	if got.Confidence != insight.MockConfidence {
		t.Fatalf("expected final confidence %v, got %v", insight.MockConfidence, got.Confidence)
	}
	if got.Transcript == nil || got.Duration != 12 || got.ProcessedAt == nil {
		t.Fatalf("transcription fields not persisted: %+v", got)
	}
	if got.InsightsMode != entities.StageModeDegraded || got.PlanMode != entities.StageModeDegraded {
		t.Fatalf("expected degraded modes, got %s/%s", got.InsightsMode, got.PlanMode)
	}
	if len(res.Actions) == 0 || len(res.Actions) != len(got.ActionPlan.ImmediateActions) {
		t.Fatalf("expected one action per immediate action, got %d", len(res.Actions))
	}
	for _, a := range res.Actions {
		if a.UserID != "user-1" || a.MeetingID != m.ID || a.Status != entities.ActionStatusPending {
			t.Fatalf("action not owned by meeting: %+v", a)
		}
	}

	p, _ := f.progress.GetProgress(context.Background(), m.ID)
	if p.Stage != entities.ProcessingStageCompleted || p.Progress != 100 {
		t.Fatalf("unexpected final progress %+v", p)
	}
}

func TestStartProcessing_UnparsableInsightsStillComplete(t *testing.T) {
	f := newFixture(t, textCompleter{response: "not json"})
	m := f.create(t)

	res, err := f.orch.StartProcessing(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Meeting.ProcessingStatus != entities.ProcessingStatusCompleted {
		t.Fatalf("expected completed, got %s", res.Meeting.ProcessingStatus)
	}
	if res.Meeting.Confidence != insight.MockConfidence {
		t.Fatalf("expected mock confidence, got %v", res.Meeting.Confidence)
	}
	if res.Meeting.TranscriptionMode != entities.StageModeReal {
		t.Fatalf("expected real transcription, got %s", res.Meeting.TranscriptionMode)
	}
}

func TestStartProcessing_RejectsNonUploaded(t *testing.T) {
	f := newFixture(t, nil)
	m := f.create(t)
	ctx := context.Background()

	if _, err := f.orch.StartProcessing(ctx, m.ID); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := f.orch.StartProcessing(ctx, m.ID); !errors.Is(err, usecaseErrors.ErrNotProcessable) {
		t.Fatalf("expected completed meeting rejected, got %v", err)
	}

	claimed := f.create(t)
	if _, err := f.orch.Claim(ctx, claimed.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := f.orch.StartProcessing(ctx, claimed.ID); !errors.Is(err, usecaseErrors.ErrNotProcessable) {
		t.Fatalf("expected processing meeting rejected, got %v", err)
	}
	actions, _ := f.repo.ListActions(ctx, claimed.ID)
	if len(actions) != 0 {
		t.Fatalf("rejected call must not create actions, got %d", len(actions))
	}

	if _, err := f.orch.StartProcessing(ctx, uuid.New()); !errors.Is(err, entities.ErrMeetingNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStartProcessing_ConcurrentCallsRunOnce(t *testing.T) {
	f := newFixture(t, nil)
	m := f.create(t)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, conf int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.orch.StartProcessing(context.Background(), m.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, usecaseErrors.ErrNotProcessable):
				conf++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 1 || conf != 7 {
		t.Fatalf("expected one run and seven conflicts, got %d/%d", ok, conf)
	}
	status, err := f.orch.GetStatus(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(status.Actions) != len(status.Meeting.ActionPlan.ImmediateActions) {
		t.Fatalf("expected exactly one action set, got %d", len(status.Actions))
	}
}

func TestStartProcessing_ActionPersistenceFailure(t *testing.T) {
	repo := repository.NewMemoryRepository()
	progress := newMemoryProgress()
	orch := NewOrchestrator(&failingCompletion{repo}, repo, progress, &fakeTranscriber{},
		insight.NewExtractor(nil, nil, nil),
		actionplan.NewGenerator(nil, nil, nil).WithClock(func() time.Time { return fixedNow }),
		nil,
	)
	m, _ := orch.CreateMeeting(context.Background(), CreateMeetingInput{UserID: "u", Title: "t", AudioRef: "a.mp3"})

	_, err := orch.StartProcessing(context.Background(), m.ID)
	var perr *ProcessingError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProcessingError, got %v", err)
	}
	if perr.Stage != stage.ActionPersistence || perr.MeetingID != m.ID {
		t.Fatalf("unexpected processing error %+v", perr)
	}

	got, _ := repo.GetMeeting(context.Background(), m.ID)
	if got.ProcessingStatus != entities.ProcessingStatusFailed {
		t.Fatalf("expected failed, got %s", got.ProcessingStatus)
	}
	if got.FailedStage == nil || *got.FailedStage != stage.ActionPersistence || got.FailureReason == nil {
		t.Fatalf("failure not recorded: %+v", got)
	}
	if got.Insights == nil || got.ActionPlan == nil {
		t.Fatal("work done before the failing stage must survive")
	}
	if actions, _ := repo.ListActions(context.Background(), m.ID); len(actions) != 0 {
		t.Fatalf("failed meeting must not keep a partial action set, got %d", len(actions))
	}

	p, _ := progress.GetProgress(context.Background(), m.ID)
	if p.Stage != entities.ProcessingStageFailed || p.Error == "" {
		t.Fatalf("unexpected failure progress %+v", p)
	}

	if _, err := orch.StartProcessing(context.Background(), m.ID); !errors.Is(err, usecaseErrors.ErrNotProcessable) {
		t.Fatalf("failed meeting must stay terminal, got %v", err)
	}
}

func TestStartProcessing_SweptMidRunStopsStages(t *testing.T) {
	repo := repository.NewMemoryRepository()
	planner := &sweptPlanner{
		repo: repo,
		next: actionplan.NewGenerator(nil, nil, nil).WithClock(func() time.Time { return fixedNow }),
	}
	orch := NewOrchestrator(repo, repo, newMemoryProgress(), &fakeTranscriber{},
		insight.NewExtractor(nil, nil, nil), planner, nil)
	m, _ := orch.CreateMeeting(context.Background(), CreateMeetingInput{UserID: "u", Title: "t", AudioRef: "a.mp3"})

	_, err := orch.StartProcessing(context.Background(), m.ID)
	var perr *ProcessingError
	if !errors.As(err, &perr) || !errors.Is(err, entities.ErrInvalidStatusTransition) {
		t.Fatalf("expected ProcessingError wrapping invalid transition, got %v", err)
	}
	if perr.Stage != stage.ActionPlanning {
		t.Fatalf("expected run to stop at %s, got %s", stage.ActionPlanning, perr.Stage)
	}

	got, _ := repo.GetMeeting(context.Background(), m.ID)
	if got.ProcessingStatus != entities.ProcessingStatusFailed {
		t.Fatalf("expected failed, got %s", got.ProcessingStatus)
	}
	if got.ActionPlan != nil {
		t.Fatal("no plan may be written onto a failed meeting")
	}
	if *got.FailedStage != stage.ActionPlanning {
		t.Fatalf("sweeper failure must be kept, got %s", *got.FailedStage)
	}
	if actions, _ := repo.ListActions(context.Background(), m.ID); len(actions) != 0 {
		t.Fatalf("failed meeting must have no actions, got %d", len(actions))
	}
}

func TestStartProcessing_TranscriptionFailures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		fallback   bool
		wantStatus entities.ProcessingStatus
		wantMock   int
	}{
		{"service error falls back", &transcription.ServiceError{Op: "poll", Err: errors.New("500")}, true, entities.ProcessingStatusCompleted, 1},
		{"timeout falls back", &transcription.TimeoutError{JobID: "j", Attempts: 60}, true, entities.ProcessingStatusCompleted, 1},
		{"missing media fails", &transcription.MediaNotFoundError{Ref: "a.mp3", Err: entities.ErrMediaNotFound}, true, entities.ProcessingStatusFailed, 0},
		{"fallback disabled fails", &transcription.ServiceError{Op: "upload", Err: errors.New("401")}, false, entities.ProcessingStatusFailed, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			f.tr.err = tt.err
			f.orch.WithMockFallback(tt.fallback)
			m := f.create(t)

			_, err := f.orch.StartProcessing(context.Background(), m.ID)
			got, _ := f.repo.GetMeeting(context.Background(), m.ID)
			if got.ProcessingStatus != tt.wantStatus || f.tr.mockCalls != tt.wantMock {
				t.Fatalf("status %s mock calls %d, err %v", got.ProcessingStatus, f.tr.mockCalls, err)
			}
			if tt.wantStatus == entities.ProcessingStatusCompleted {
				if got.TranscriptionMode != entities.StageModeDegraded {
					t.Fatalf("expected degraded transcription, got %s", got.TranscriptionMode)
				}
				return
			}
			var perr *ProcessingError
			if !errors.As(err, &perr) || perr.Stage != stage.Transcription || !errors.Is(err, tt.err) {
				t.Fatalf("expected transcription ProcessingError wrapping the cause, got %v", err)
			}
		})
	}
}

func TestStartProcessing_PanicIsAttributedToStage(t *testing.T) {
	repo := repository.NewMemoryRepository()
	orch := NewOrchestrator(repo, repo, nil, &fakeTranscriber{}, insight.NewExtractor(nil, nil, nil), panickingPlanner{}, nil)
	m, _ := orch.CreateMeeting(context.Background(), CreateMeetingInput{UserID: "u", Title: "t", AudioRef: "a.mp3"})

	_, err := orch.StartProcessing(context.Background(), m.ID)
	var perr *ProcessingError
	if !errors.As(err, &perr) || perr.Stage != stage.ActionPlanning {
		t.Fatalf("expected action-planning failure, got %v", err)
	}
	got, _ := repo.GetMeeting(context.Background(), m.ID)
	if got.ProcessingStatus != entities.ProcessingStatusFailed {
		t.Fatalf("expected failed, got %s", got.ProcessingStatus)
	}
}

func TestAbandon_DoesNotReopenTerminalMeeting(t *testing.T) {
	f := newFixture(t, nil)
	m := f.create(t)
	if _, err := f.orch.StartProcessing(context.Background(), m.ID); err != nil {
		t.Fatalf("run: %v", err)
	}

	err := f.orch.Abandon(context.Background(), m, stage.Unknown, errors.New("late failure"))
	var perr *ProcessingError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProcessingError, got %v", err)
	}
	got, _ := f.repo.GetMeeting(context.Background(), m.ID)
	if got.ProcessingStatus != entities.ProcessingStatusCompleted || got.FailedStage != nil {
		t.Fatalf("completed meeting must not move, got %+v", got)
	}
}

func TestCreateMeeting_Validation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if _, err := f.orch.CreateMeeting(ctx, CreateMeetingInput{UserID: "u", AudioRef: "a"}); !errors.Is(err, usecaseErrors.ErrTitleRequired) {
		t.Fatalf("expected title error, got %v", err)
	}
	if _, err := f.orch.CreateMeeting(ctx, CreateMeetingInput{UserID: "u", Title: "t"}); !errors.Is(err, usecaseErrors.ErrAudioRequired) {
		t.Fatalf("expected audio error, got %v", err)
	}

	m, err := f.orch.CreateMeeting(ctx, CreateMeetingInput{
		UserID: "u", Title: "  Standup ", AudioRef: "a", MeetingType: "standup", Participants: []string{"Ana"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if m.Title != "Standup" || m.MeetingType != "standup" || len(m.Participants) != 1 {
		t.Fatalf("metadata not applied: %+v", m)
	}
}

func TestUpdateActionStatus(t *testing.T) {
	f := newFixture(t, nil)
	m := f.create(t)
	ctx := context.Background()
	res, err := f.orch.StartProcessing(ctx, m.ID)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	id := res.Actions[0].ID

	if _, err := f.orch.UpdateActionStatus(ctx, "someone-else", id, entities.ActionStatusCompleted, nil); !errors.Is(err, usecaseErrors.ErrNotActionOwner) {
		t.Fatalf("expected owner check, got %v", err)
	}
	if _, err := f.orch.UpdateActionStatus(ctx, "user-1", id, "archived", nil); !errors.Is(err, entities.ErrInvalidActionStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}

	notes := "done on Friday"
	a, err := f.orch.UpdateActionStatus(ctx, "user-1", id, entities.ActionStatusCompleted, &notes)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if a.CompletedAt == nil || !a.CompletedAt.Equal(f.orch.now()) {
		t.Fatalf("completedAt not stamped: %v", a.CompletedAt)
	}
	if _, err := f.orch.UpdateActionStatus(ctx, "user-1", id, entities.ActionStatusInProgress, nil); !errors.Is(err, entities.ErrInvalidActionTransition) {
		t.Fatalf("expected backward move rejected, got %v", err)
	}

	done, err := f.orch.ListUserActions(ctx, entities.ActionFilter{UserID: "user-1", Status: entities.ActionStatusCompleted})
	if err != nil || len(done) != 1 {
		t.Fatalf("expected one completed action, got %d %v", len(done), err)
	}
}

func TestGetProgress_DerivedFromStatus(t *testing.T) {
	repo := repository.NewMemoryRepository()
	orch := NewOrchestrator(repo, repo, nil, &fakeTranscriber{}, insight.NewExtractor(nil, nil, nil), actionplan.NewGenerator(nil, nil, nil), nil)
	m, _ := orch.CreateMeeting(context.Background(), CreateMeetingInput{UserID: "u", Title: "t", AudioRef: "a.mp3"})

	p, err := orch.GetProgress(context.Background(), m.ID)
	if err != nil || p.Stage != entities.ProcessingStageUploaded {
		t.Fatalf("unexpected progress %+v %v", p, err)
	}
	if _, err := orch.GetProgress(context.Background(), uuid.New()); !errors.Is(err, entities.ErrMeetingNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUserStats(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	var meetings []*entities.Meeting
	for i := 0; i < 4; i++ {
		meetings = append(meetings, f.create(t))
		time.Sleep(2 * time.Millisecond)
	}
	oldest, newest := meetings[0], meetings[3]

	day := 24 * time.Hour
	add := func(m *entities.Meeting, userID string, status entities.ActionStatus, priority entities.Level, due time.Duration, p float64) *entities.Action {
		a := &entities.Action{
			MeetingID:          m.ID,
			UserID:             userID,
			Title:              "Practice the pitch",
			Priority:           priority,
			Status:             status,
			EstimatedTime:      30,
			DueDate:            fixedNow.Add(due),
			SuccessProbability: p,
		}
		if err := f.repo.CreateAction(ctx, a); err != nil {
			t.Fatalf("create action: %v", err)
		}
		return a
	}
	add(newest, "user-1", entities.ActionStatusCompleted, entities.LevelHigh, day, 0.9)
	highOpen := add(newest, "user-1", entities.ActionStatusPending, entities.LevelHigh, 3*day, 0.5)
	soonest := add(newest, "user-1", entities.ActionStatusInProgress, entities.LevelLow, day, 0.7)
	for i := 0; i < 4; i++ {
		add(oldest, "user-1", entities.ActionStatusPending, entities.LevelMedium, time.Duration(10+i)*day, 0.5)
	}
	add(newest, "user-2", entities.ActionStatusCompleted, entities.LevelHigh, day, 1)

	stats, err := f.orch.UserStats(ctx, "user-1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if stats.TotalActions != 7 || stats.ActionsCompleted != 1 {
		t.Fatalf("expected 1 of 7 completed, got %d of %d", stats.ActionsCompleted, stats.TotalActions)
	}
	if stats.ImplementationRate != 14 {
		t.Errorf("implementation rate: want 14 got %d", stats.ImplementationRate)
	}
	if stats.AverageSuccessProbability != 59 {
		t.Errorf("average success probability: want 59 got %d", stats.AverageSuccessProbability)
	}
	if stats.HighPriorityPending != 1 {
		t.Errorf("high priority pending: want 1 got %d", stats.HighPriorityPending)
	}
	if stats.TotalMeetings != 4 {
		t.Errorf("total meetings: want 4 got %d", stats.TotalMeetings)
	}

	if len(stats.UpcomingActions) != 5 {
		t.Fatalf("expected 5 upcoming actions, got %d", len(stats.UpcomingActions))
	}
	if stats.UpcomingActions[0].ID != soonest.ID || stats.UpcomingActions[1].ID != highOpen.ID {
		t.Fatalf("upcoming actions not ordered by due date: %+v", stats.UpcomingActions[:2])
	}
	for _, u := range stats.UpcomingActions {
		if u.Status == entities.ActionStatusCompleted {
			t.Fatalf("completed action listed as upcoming: %+v", u)
		}
	}

	if len(stats.RecentMeetings) != 3 {
		t.Fatalf("expected 3 recent meetings, got %d", len(stats.RecentMeetings))
	}
	if stats.RecentMeetings[0].ID != newest.ID || stats.RecentMeetings[0].Actions != 3 {
		t.Fatalf("newest meeting should lead with 3 actions, got %+v", stats.RecentMeetings[0])
	}
	for _, r := range stats.RecentMeetings {
		if r.ID == oldest.ID {
			t.Fatal("oldest meeting should not be recent")
		}
	}
}

func TestUserStats_Empty(t *testing.T) {
	f := newFixture(t, nil)

	stats, err := f.orch.UserStats(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.ImplementationRate != 0 || stats.TotalMeetings != 0 {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
	if stats.UpcomingActions == nil || stats.RecentMeetings == nil {
		t.Fatal("lists must encode as empty arrays")
	}
}
