// Package csvimport parses a CSV file of draft/scheduled posts and hands
// each row through the content validator before it reaches the durable
// store.
package csvimport

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gopublicist/publicist/internal/apperrors"
	"github.com/gopublicist/publicist/internal/clock"
	"github.com/gopublicist/publicist/internal/contentvalidator"
	"github.com/gopublicist/publicist/internal/domain"
	"github.com/gopublicist/publicist/internal/scheduler"
	"github.com/gopublicist/publicist/pkg/logger"
)

// Modes accepted by the mode column.
const (
	ModeDraft     = "draft"
	ModeScheduled = "scheduled"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ChannelResolver looks a channel up by id or title for rows that supply
// one or the other.
type ChannelResolver interface {
	FindByID(ctx context.Context, id int64) (*domain.Channel, error)
	FindByTitle(ctx context.Context, title string) (*domain.Channel, error)
}

// PostCreator persists the Post row a CSV row produces.
type PostCreator interface {
	Create(ctx context.Context, post *domain.Post) (*domain.Post, error)
}

// PublicationCreator schedules the Publication row for a post accepted in
// scheduled mode.
type PublicationCreator interface {
	CreateForPost(ctx context.Context, postID int64, plannedAt, readyAt time.Time) (*domain.Publication, error)
}

// Result is one row's outcome: either a created Post (and, in scheduled
// mode, its Publication) or a rejection reason.
type Result struct {
	Row         int
	Post        *domain.Post
	Publication *domain.Publication
	Rejected    bool
	Reason      string
}

// Importer wires the CSV parser to the validator, scheduler, and store.
type Importer struct {
	channels     ChannelResolver
	posts        PostCreator
	publications PublicationCreator
	validator    *contentvalidator.Validator
	scheduler    *scheduler.Scheduler
}

func New(
	channels ChannelResolver,
	posts PostCreator,
	publications PublicationCreator,
	validator *contentvalidator.Validator,
	sched *scheduler.Scheduler,
) *Importer {
	return &Importer{
		channels:     channels,
		posts:        posts,
		publications: publications,
		validator:    validator,
		scheduler:    sched,
	}
}

// Import reads every row of r and processes it independently; one row's
// failure never aborts the rest of the file.
func (imp *Importer) Import(ctx context.Context, r io.Reader) ([]Result, error) {
	rows, err := parseRows(r)
	if err != nil {
		return nil, apperrors.Import(apperrors.CodeValidation).Wrap(err)
	}

	results := make([]Result, 0, len(rows))
	for i, row := range rows {
		rowNum := i + 2 // header is row 1
		result := imp.importRow(ctx, rowNum, row)
		results = append(results, result)
	}
	return results, nil
}

func (imp *Importer) importRow(ctx context.Context, rowNum int, row rawRow) Result {
	channel, err := imp.resolveChannel(ctx, row)
	if err != nil {
		return Result{Row: rowNum, Rejected: true, Reason: fmt.Sprintf("канал не найден: %v", err)}
	}

	media, err := parseMediaURLs(row.mediaURLs)
	if err != nil {
		return Result{Row: rowNum, Rejected: true, Reason: err.Error()}
	}
	buttons, err := parseButtons(row.buttons)
	if err != nil {
		return Result{Row: rowNum, Rejected: true, Reason: err.Error()}
	}

	mode := strings.ToLower(strings.TrimSpace(row.mode))
	if mode == "" {
		mode = ModeDraft
	}
	if mode != ModeDraft && mode != ModeScheduled {
		return Result{Row: rowNum, Rejected: true, Reason: fmt.Sprintf("неизвестный режим: %s", row.mode)}
	}

	post := &domain.Post{
		ChannelID: channel.ID,
		Title:     row.title,
		BodyHTML:  row.bodyHTML,
		Media:     media,
		Buttons:   buttons,
		Status:    domain.PostStatusDraft,
	}

	ok, reason, err := imp.validator.Validate(ctx, post)
	if err != nil {
		return Result{Row: rowNum, Rejected: true, Reason: fmt.Sprintf("ошибка валидации: %v", err)}
	}
	if !ok {
		post.BlacklistCheckStatus = domain.BlacklistCheckBlocked
		post.BlacklistReason = reason
		created, createErr := imp.posts.Create(ctx, post)
		if createErr != nil {
			return Result{Row: rowNum, Rejected: true, Reason: fmt.Sprintf("не удалось сохранить пост: %v", createErr)}
		}
		return Result{Row: rowNum, Post: created, Rejected: true, Reason: *reason}
	}

	if mode == ModeDraft {
		created, err := imp.posts.Create(ctx, post)
		if err != nil {
			return Result{Row: rowNum, Rejected: true, Reason: fmt.Sprintf("не удалось сохранить пост: %v", err)}
		}
		return Result{Row: rowNum, Post: created}
	}

	plannedAt, err := imp.resolvePlannedAt(ctx, channel, row.plannedAt)
	if err != nil {
		return Result{Row: rowNum, Rejected: true, Reason: err.Error()}
	}
	post.Status = domain.PostStatusScheduled
	created, err := imp.posts.Create(ctx, post)
	if err != nil {
		return Result{Row: rowNum, Rejected: true, Reason: fmt.Sprintf("не удалось сохранить пост: %v", err)}
	}
	pub, err := imp.publications.CreateForPost(ctx, created.ID, plannedAt, plannedAt)
	if err != nil {
		logger.Errorf("csvimport: row %d: post %d created but publication scheduling failed: %v", rowNum, created.ID, err)
		return Result{Row: rowNum, Post: created, Rejected: true, Reason: fmt.Sprintf("не удалось запланировать публикацию: %v", err)}
	}
	return Result{Row: rowNum, Post: created, Publication: pub}
}

func (imp *Importer) resolveChannel(ctx context.Context, row rawRow) (*domain.Channel, error) {
	if row.channelID != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(row.channelID), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("некорректный channel_id: %q", row.channelID)
		}
		return imp.channels.FindByID(ctx, id)
	}
	if row.channelTitle != "" {
		return imp.channels.FindByTitle(ctx, strings.TrimSpace(row.channelTitle))
	}
	return nil, fmt.Errorf("не указан channel_id или channel_title")
}

// resolvePlannedAt honors an explicit planned_at (local YYYY-MM-DD HH:MM,
// adjusted into the channel's window) or, when absent, defers to the
// slot scheduler exactly as the admin "schedule now" action would.
func (imp *Importer) resolvePlannedAt(ctx context.Context, channel *domain.Channel, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		plannedAt, _, err := imp.scheduler.CalculateNextSlot(ctx, channel)
		if err != nil {
			return time.Time{}, apperrors.Import(apperrors.CodeValidation).Wrap(err)
		}
		return plannedAt, nil
	}

	local, err := time.Parse("2006-01-02 15:04", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("некорректный planned_at: %q", raw)
	}
	plannedUTC := clock.LocalToUTCNaive(local, channel.Timezone)
	adjusted, err := imp.scheduler.AdjustToWindow(channel, plannedUTC)
	if err != nil {
		return time.Time{}, apperrors.Import(apperrors.CodeValidation).Wrap(err)
	}
	return adjusted, nil
}

type rawRow struct {
	channelID    string
	channelTitle string
	title        string
	bodyHTML     string
	mediaURLs    string
	buttons      string
	plannedAt    string
	mode         string
}

// parseRows reads the CSV body into column-addressed rows, stripping a
// leading UTF-8 BOM and matching the header's column order regardless of
// how the admin interface orders them.
func parseRows(r io.Reader) ([]rawRow, error) {
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	body := bytes.TrimPrefix(buf.Bytes(), utf8BOM)

	reader := csv.NewReader(bytes.NewReader(body))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	col := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	rows := make([]rawRow, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, rawRow{
			channelID:    col(record, "channel_id"),
			channelTitle: col(record, "channel_title"),
			title:        col(record, "title"),
			bodyHTML:     col(record, "body_html"),
			mediaURLs:    col(record, "media_urls"),
			buttons:      col(record, "buttons"),
			plannedAt:    col(record, "planned_at"),
			mode:         col(record, "mode"),
		})
	}
	return rows, nil
}
