// Package cli implements the interactive terminal front end: pick a city and
// a month/day filter, read the statistics report, page through raw trips five
// at a time, and optionally start over.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/pkordes/bikeshare-stats/internal/domain"
)

// Querier is the subset of service.StatsService the session needs.
type Querier interface {
	Summary(ctx context.Context, city string, f domain.Filter) (domain.Report, error)
	Raw(ctx context.Context, city string, cursor int) (domain.Page, error)
}

const rule = "----------------------------------------"

// errQuit reports that input ended. It is not a failure.
var errQuit = errors.New("input closed")

// Session is one interactive run over in and out.
type Session struct {
	stats Querier
	in    *bufio.Scanner
	out   io.Writer
	now   func() time.Time
}

// New constructs a Session reading answers from in and writing to out.
func New(stats Querier, in io.Reader, out io.Writer) *Session {
	return &Session{stats: stats, in: bufio.NewScanner(in), out: out, now: time.Now}
}

// Run loops until the user declines to restart or input ends.
// Only context cancellation and write failures are returned as errors.
func (s *Session) Run(ctx context.Context) error {
	s.println("Hello! Let's explore some US bikeshare data!")
	for {
		err := s.explore(ctx)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			return err
		}

		again, err := s.yesNo("\nWould you like to restart? Enter yes or no.")
		if errors.Is(err, errQuit) || (err == nil && !again) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// explore runs one pass: choose, report, page.
func (s *Session) explore(ctx context.Context) error {
	city, err := s.askCity()
	if err != nil {
		return err
	}
	f, err := s.askFilter()
	if err != nil {
		return err
	}
	s.println(rule)

	start := s.now()
	report, err := s.stats.Summary(ctx, string(city), f)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.printf("Could not compute statistics for %s: %v\n", city.DisplayName(), err)
		return nil
	}
	writeReport(s.out, report)
	s.printf("\nThis took %s.\n%s\n", s.now().Sub(start).Round(time.Millisecond), rule)

	return s.page(ctx, city)
}

// page shows raw records five at a time for as long as the user says yes.
func (s *Session) page(ctx context.Context, city domain.City) error {
	prompt := "Would you like to see 5 lines of raw data? Enter yes or no."
	cursor := 0
	for {
		more, err := s.yesNo(prompt)
		if err != nil || !more {
			return err
		}
		p, err := s.stats.Raw(ctx, string(city), cursor)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.printf("Could not read raw data: %v\n", err)
			return nil
		}
		writePage(s.out, p)
		if p.Done {
			s.println("That is the end of the raw data.")
			return nil
		}
		cursor = p.Next
		prompt = "Would you like to see the next 5 lines of raw data? Enter yes or no."
	}
}

func (s *Session) askCity() (domain.City, error) {
	for {
		answer, err := s.ask("Enter the name of the city (Chicago, New York City, Washington):")
		if err != nil {
			return "", err
		}
		if c, err := domain.ParseCity(answer); err == nil {
			return c, nil
		}
		s.println("Invalid input. Please enter a valid city name.")
	}
}

func (s *Session) askFilter() (domain.Filter, error) {
	month, err := s.askChoice(
		"Enter the month to filter by (January, February, ... , June), or 'all' for no month filter:",
		domain.FilterMonths,
		"Invalid input. Please enter a valid month name or 'all'.")
	if err != nil {
		return domain.Filter{}, err
	}
	day, err := s.askChoice(
		"Enter the day of the week to filter by (Monday, Tuesday, ... Sunday), or 'all' for no day filter:",
		domain.FilterDays,
		"Invalid input. Please enter a valid day of the week or 'all'.")
	if err != nil {
		return domain.Filter{}, err
	}
	return domain.ParseFilter(month, day)
}

// askChoice re-prompts until the answer is "all" or one of choices.
// An empty answer is rejected here even though ParseFilter would accept it,
// so the user always makes an explicit choice.
func (s *Session) askChoice(prompt string, choices []string, invalid string) (string, error) {
	for {
		answer, err := s.ask(prompt)
		if err != nil {
			return "", err
		}
		answer = strings.ToLower(answer)
		if answer == domain.All || slices.Contains(choices, answer) {
			return answer, nil
		}
		s.println(invalid)
	}
}

func (s *Session) yesNo(prompt string) (bool, error) {
	for {
		answer, err := s.ask(prompt)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "yes", "y":
			return true, nil
		case "no", "n":
			return false, nil
		}
		s.println("Invalid input. Please enter yes or no.")
	}
}

// ask prints prompt and returns the next trimmed line, or errQuit at EOF.
func (s *Session) ask(prompt string) (string, error) {
	s.printf("%s ", prompt)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", fmt.Errorf("cli.Session.ask: %w", err)
		}
		s.println("")
		return "", errQuit
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *Session) println(line string) { fmt.Fprintln(s.out, line) }

func (s *Session) printf(format string, args ...any) { fmt.Fprintf(s.out, format, args...) }
