package tracker

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/myrjola/habitapp/internal/errors"
	"github.com/myrjola/habitapp/internal/habits"
	"golang.org/x/sync/errgroup"
)

const (
	maxTaskTitleLength = 200
	maxNoteLength      = 20000
	maxLoggedMinutes   = 24 * 60
)

// DeepWorkDay is the deep work page content of one date.
type DeepWorkDay struct {
	Date       time.Time
	Tasks      []habits.DeepWorkTask
	Session    habits.DeepWorkSession
	Note       string
	Completion habits.TaskCompletion
}

type DeepWorkStats struct {
	Period     habits.Period
	Range      habits.DateRange
	Completion habits.TaskCompletion
}

func (s *Service) DeepWorkDay(ctx context.Context, date time.Time) (DeepWorkDay, error) {
	d := DeepWorkDay{Date: habits.Day(date)} //nolint:exhaustruct // filled below.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.Tasks, err = s.repo.deepWork.ListTasks(gctx, date)
		return err
	})
	g.Go(func() error {
		var err error
		d.Session, err = s.repo.deepWork.GetSession(gctx, date)
		return err
	})
	g.Go(func() error {
		var err error
		d.Note, err = s.repo.deepWork.GetNote(gctx, date)
		return err
	})
	if err := g.Wait(); err != nil {
		return DeepWorkDay{}, errors.Wrap(err, "load deep work day", slog.String("date", habits.Key(date)))
	}
	d.Completion = habits.ComputeTaskCompletion(d.Tasks, habits.DateRange{Start: date, End: date})
	return d, nil
}

func (s *Service) AddTask(ctx context.Context, date time.Time, title string) (habits.DeepWorkTask, error) {
	title, err := validateTitle(title)
	if err != nil {
		return habits.DeepWorkTask{}, err
	}
	t, err := s.repo.deepWork.CreateTask(ctx, date, title)
	if err != nil {
		return habits.DeepWorkTask{}, errors.Wrap(err, "add task")
	}
	return t, nil
}

// ToggleTask flips the completion of a task and stamps the completion time.
func (s *Service) ToggleTask(ctx context.Context, id int) error {
	_, err := s.repo.deepWork.UpdateTask(ctx, id, func(t *habits.DeepWorkTask) error {
		t.Completed = !t.Completed
		t.CompletedAt = time.Time{}
		if t.Completed {
			t.CompletedAt = s.now()
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "toggle task", slog.Int("id", id))
	}
	return nil
}

func (s *Service) RenameTask(ctx context.Context, id int, title string) error {
	title, err := validateTitle(title)
	if err != nil {
		return err
	}
	if _, err = s.repo.deepWork.UpdateTask(ctx, id, func(t *habits.DeepWorkTask) error {
		t.Title = title
		return nil
	}); err != nil {
		return errors.Wrap(err, "rename task", slog.Int("id", id))
	}
	return nil
}

// MoveTask moves a task one step up or down in its day's list.
func (s *Service) MoveTask(ctx context.Context, id int, up bool) error {
	if err := s.repo.deepWork.MoveTask(ctx, id, up); err != nil {
		return errors.Wrap(err, "move task", slog.Int("id", id))
	}
	return nil
}

func (s *Service) DeleteTask(ctx context.Context, id int) error {
	if err := s.repo.deepWork.DeleteTask(ctx, id); err != nil {
		return errors.Wrap(err, "delete task", slog.Int("id", id))
	}
	return nil
}

// SetTarget chooses the day's deep work target in minutes.
func (s *Service) SetTarget(ctx context.Context, date time.Time, minutes int) error {
	target, err := habits.ParseDeepWorkTarget(minutes)
	if err != nil {
		return err
	}
	if _, err = s.repo.deepWork.UpdateSession(ctx, date, func(session *habits.DeepWorkSession) {
		session.Target = target
	}); err != nil {
		return errors.Wrap(err, "set deep work target")
	}
	return nil
}

// LogMinutes adds minutes, which may be negative to correct mistakes, to the day's logged time.
func (s *Service) LogMinutes(ctx context.Context, date time.Time, minutes int) error {
	if minutes == 0 || minutes > maxLoggedMinutes || minutes < -maxLoggedMinutes {
		return errors.Wrap(ErrInvalidInput, "minutes out of range", slog.Int("minutes", minutes))
	}
	if _, err := s.repo.deepWork.UpdateSession(ctx, date, func(session *habits.DeepWorkSession) {
		session.LogMinutes(minutes)
	}); err != nil {
		return errors.Wrap(err, "log deep work minutes")
	}
	return nil
}

func (s *Service) SaveNote(ctx context.Context, date time.Time, markdown string) error {
	markdown = strings.TrimSpace(markdown)
	if utf8.RuneCountInString(markdown) > maxNoteLength {
		return errors.Wrap(ErrInvalidInput, "note too long")
	}
	if err := s.repo.deepWork.SetNote(ctx, date, markdown); err != nil {
		return errors.Wrap(err, "save note")
	}
	return nil
}

// DeepWorkStats reports the task completion of period ending at today.
func (s *Service) DeepWorkStats(ctx context.Context, period habits.Period, today time.Time) (DeepWorkStats, error) {
	r := habits.ResolveRange(period, today)
	tasks, err := s.repo.deepWork.ListTasksRange(ctx, r.Start, r.End)
	if err != nil {
		return DeepWorkStats{}, errors.Wrap(err, "load deep work stats")
	}
	return DeepWorkStats{Period: period, Range: r, Completion: habits.ComputeTaskCompletion(tasks, r)}, nil
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" || utf8.RuneCountInString(title) > maxTaskTitleLength {
		return "", errors.Wrap(ErrInvalidInput, "invalid task title", slog.Int("length", len(title)))
	}
	return title, nil
}
