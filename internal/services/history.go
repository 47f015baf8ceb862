package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/abrezinsky/luckydraw/internal/errors"
	"github.com/abrezinsky/luckydraw/internal/logger"
	"github.com/abrezinsky/luckydraw/internal/models"
	"github.com/abrezinsky/luckydraw/internal/repository"
)

// HistoryBroadcaster is notified whenever the stored session list changes
type HistoryBroadcaster interface {
	BroadcastHistoryChanged(count int)
}

// HistoryService stores finished sessions and serves them back
type HistoryService struct {
	log         logger.Logger
	repo        repository.SessionRepository
	catalog     *Catalog
	broadcaster HistoryBroadcaster

	mu       sync.Mutex
	watchers map[chan []models.LotterySession]struct{}
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(log logger.Logger, repo repository.SessionRepository, catalog *Catalog) *HistoryService {
	return &HistoryService{
		log:      log,
		repo:     repo,
		catalog:  catalog,
		watchers: make(map[chan []models.LotterySession]struct{}),
	}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *HistoryService) SetBroadcaster(b HistoryBroadcaster) {
	s.broadcaster = b
}

// SaveSession stores a session, replacing any earlier save with the same ID
func (s *HistoryService) SaveSession(ctx context.Context, session models.LotterySession) error {
	rec, err := toRecord(session)
	if err != nil {
		return errors.Internal(err)
	}
	if err := s.repo.SaveSession(ctx, rec); err != nil {
		s.log.Error("Failed to save session", "session_id", session.ID, "error", err)
		return errors.Storage(err)
	}
	s.log.Debug("Session saved", "session_id", session.ID)
	s.changed(ctx)
	return nil
}

// GetSession returns a stored session
func (s *HistoryService) GetSession(ctx context.Context, id string) (*models.LotterySession, error) {
	rec, err := s.repo.GetSession(ctx, id)
	if err == repository.ErrNotFound {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, errors.Storage(err)
	}
	session, err := s.fromRecord(*rec)
	if err != nil {
		return nil, errors.Storage(err)
	}
	return &session, nil
}

// ListSessions returns every stored session, newest first
func (s *HistoryService) ListSessions(ctx context.Context) ([]models.LotterySession, error) {
	recs, err := s.repo.ListSessions(ctx)
	if err != nil {
		return nil, errors.Storage(err)
	}
	return s.fromRecords(recs), nil
}

// SearchSessions returns sessions whose ID or any drawn number contains query.
// An empty query matches everything.
func (s *HistoryService) SearchSessions(ctx context.Context, query string) ([]models.LotterySession, error) {
	sessions, err := s.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return sessions, nil
	}

	matched := make([]models.LotterySession, 0, len(sessions))
	for _, session := range sessions {
		if matchesQuery(session, query) {
			matched = append(matched, session)
		}
	}
	return matched, nil
}

func matchesQuery(session models.LotterySession, query string) bool {
	if strings.Contains(strings.ToLower(session.ID), query) {
		return true
	}
	for _, r := range session.Results {
		for _, n := range r.Numbers {
			if strings.Contains(n, query) {
				return true
			}
		}
	}
	return false
}

// RecentCompleted returns up to limit completed sessions, newest first
func (s *HistoryService) RecentCompleted(ctx context.Context, limit int) ([]models.LotterySession, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	recs, err := s.repo.ListCompletedSessions(ctx, limit)
	if err != nil {
		return nil, errors.Storage(err)
	}
	return s.fromRecords(recs), nil
}

// Count returns the number of stored sessions
func (s *HistoryService) Count(ctx context.Context) (int, error) {
	n, err := s.repo.CountSessions(ctx)
	if err != nil {
		return 0, errors.Storage(err)
	}
	return n, nil
}

// Unfinished returns the newest stored session that never ended, or nil if there is none
func (s *HistoryService) Unfinished(ctx context.Context) (*models.LotterySession, error) {
	rec, err := s.repo.GetActiveSession(ctx)
	if err == repository.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Storage(err)
	}
	session, err := s.fromRecord(*rec)
	if err != nil {
		return nil, errors.Storage(err)
	}
	return &session, nil
}

// DeleteSession removes a stored session
func (s *HistoryService) DeleteSession(ctx context.Context, id string) error {
	err := s.repo.DeleteSession(ctx, id)
	if err == repository.ErrNotFound {
		return ErrSessionNotFound
	}
	if err != nil {
		return errors.Storage(err)
	}
	s.log.Info("Session deleted", "session_id", id)
	s.changed(ctx)
	return nil
}

// ClearSessions removes every stored session
func (s *HistoryService) ClearSessions(ctx context.Context) error {
	if err := s.repo.ClearSessions(ctx); err != nil {
		return errors.Storage(err)
	}
	s.log.Info("Session history cleared")
	s.changed(ctx)
	return nil
}

// Watch returns a channel that receives the session list right away and
// again after every change. Slow readers only see the latest list.
// The channel is closed when ctx is done.
func (s *HistoryService) Watch(ctx context.Context) (<-chan []models.LotterySession, error) {
	sessions, err := s.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	ch := make(chan []models.LotterySession, 1)
	ch <- sessions

	s.mu.Lock()
	s.watchers[ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers, ch)
		close(ch)
		s.mu.Unlock()
	}()
	return ch, nil
}

// changed pushes the new list to watchers and clients
func (s *HistoryService) changed(ctx context.Context) {
	sessions, err := s.ListSessions(ctx)
	if err != nil {
		s.log.Warn("Could not refresh session list", "error", err)
		return
	}

	s.mu.Lock()
	for ch := range s.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- sessions
	}
	s.mu.Unlock()

	if s.broadcaster != nil {
		s.broadcaster.BroadcastHistoryChanged(len(sessions))
	}
}

const shareRule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// ShareText renders a stored session as plain text, jackpot first
func (s *HistoryService) ShareText(ctx context.Context, id string) (string, error) {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return "", err
	}
	return FormatShareText(s.catalog, *session), nil
}

// FormatShareText renders session as shareable text. Times are shown in local time.
func FormatShareText(catalog *Catalog, session models.LotterySession) string {
	var b strings.Builder

	shortID := session.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	b.WriteString("🎲 KẾT QUẢ XỔ SỐ MAY MẮN 🎲\n")
	b.WriteString(shareRule + "\n")
	fmt.Fprintf(&b, "📅 Thời gian: %s\n", session.StartedAt.Local().Format("02/01/2006 15:04:05"))
	fmt.Fprintf(&b, "🆔 Mã phiên: %s\n", shortID)
	b.WriteString(shareRule + "\n\n")

	ordered := catalog.Ordered(session.Results)
	for i := len(ordered) - 1; i >= 0; i-- {
		r := ordered[i]
		fmt.Fprintf(&b, "%s %s\n", prizeIcon(r.Prize.ID), r.Prize.DisplayName)
		b.WriteString(strings.Join(r.Numbers, " - "))
		b.WriteString("\n\n")
	}

	b.WriteString(shareRule + "\n")
	b.WriteString("📊 THỐNG KÊ:\n")
	fmt.Fprintf(&b, "• Tổng số giải: %d\n", len(ordered))
	fmt.Fprintf(&b, "• Tổng số ra: %d\n", session.NumberCount())
	if session.EndedAt != nil {
		fmt.Fprintf(&b, "• Thời gian thực hiện: %ds\n", int64(session.Duration()/time.Second))
	}
	if session.Completed {
		b.WriteString("• Trạng thái: Hoàn tất ✅\n")
	} else {
		b.WriteString("• Trạng thái: Chưa hoàn tất ⏳\n")
	}
	b.WriteString(shareRule)
	return b.String()
}

func prizeIcon(id string) string {
	switch id {
	case JackpotID:
		return "🏆"
	case "first":
		return "🥇"
	case "second":
		return "🥈"
	case "third":
		return "🥉"
	default:
		return "🏅"
	}
}

// ShareImage renders the share text of a session as a PNG QR code
func (s *HistoryService) ShareImage(ctx context.Context, id string, size int) ([]byte, error) {
	if size < 64 || size > 1024 {
		return nil, ErrInvalidImageSize
	}
	text, err := s.ShareText(ctx, id)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(text, qrcode.Low, size)
	if err != nil {
		s.log.Error("Failed to render share image", "session_id", id, "error", err)
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to render share image")
	}
	return png, nil
}

// ==================== Record mapping ====================

func toRecord(session models.LotterySession) (models.SessionRecord, error) {
	numbers := make(map[string][]string, len(session.Results))
	for id, r := range session.Results {
		numbers[id] = r.Numbers
	}
	data, err := json.Marshal(numbers)
	if err != nil {
		return models.SessionRecord{}, err
	}

	rec := models.SessionRecord{
		ID:          session.ID,
		ResultsJSON: string(data),
		StartTime:   session.StartedAt.UnixMilli(),
		IsCompleted: session.Completed,
	}
	if session.EndedAt != nil {
		end := session.EndedAt.UnixMilli()
		rec.EndTime = &end
	}
	return rec, nil
}

// fromRecord rebuilds a session. Prize IDs that are not in the catalog are dropped;
// restored results carry the session end time, or the start time if it never ended.
func (s *HistoryService) fromRecord(rec models.SessionRecord) (models.LotterySession, error) {
	var numbers map[string][]string
	if err := json.Unmarshal([]byte(rec.ResultsJSON), &numbers); err != nil {
		return models.LotterySession{}, fmt.Errorf("session %s: %w", rec.ID, err)
	}

	session := models.LotterySession{
		ID:        rec.ID,
		Results:   make(map[string]models.DrawResult, len(numbers)),
		StartedAt: time.UnixMilli(rec.StartTime),
		Completed: rec.IsCompleted,
	}
	stamp := session.StartedAt
	if rec.EndTime != nil {
		end := time.UnixMilli(*rec.EndTime)
		session.EndedAt = &end
		stamp = end
	}

	for id, nums := range numbers {
		prize, ok := s.catalog.Lookup(id)
		if !ok {
			s.log.Debug("Dropping unknown prize from stored session", "session_id", rec.ID, "prize", id)
			continue
		}
		session.Results[id] = models.DrawResult{Prize: prize, Numbers: nums, CreatedAt: stamp}
	}
	return session, nil
}

// fromRecords maps records in order, skipping rows whose results cannot be decoded
func (s *HistoryService) fromRecords(recs []models.SessionRecord) []models.LotterySession {
	sessions := make([]models.LotterySession, 0, len(recs))
	for _, rec := range recs {
		session, err := s.fromRecord(rec)
		if err != nil {
			s.log.Warn("Skipping unreadable session", "session_id", rec.ID, "error", err)
			continue
		}
		sessions = append(sessions, session)
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.After(sessions[j].StartedAt)
	})
	return sessions
}
