package report

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/tuinteract/internal/model"
)

// Source is the read side of the fit journal.
type Source interface {
	ListFits(ctx context.Context, cfg model.HistoryConfig) ([]model.FitRecord, error)
	Summaries(ctx context.Context) ([]model.FitAggregate, error)
}

// History is the journal content selected by a HistoryConfig.
type History struct {
	Fits      []model.FitRecord
	Summaries []model.FitAggregate
}

// Build loads fits matching cfg and the per-function summaries.
func Build(ctx context.Context, src Source, cfg model.HistoryConfig) (History, error) {
	fits, err := src.ListFits(ctx, cfg)
	if err != nil {
		return History{}, fmt.Errorf("list fits: %w", err)
	}
	sums, err := src.Summaries(ctx)
	if err != nil {
		return History{}, fmt.Errorf("summarize fits: %w", err)
	}
	if cfg.Function != "" {
		kept := sums[:0]
		for _, s := range sums {
			if s.Function == cfg.Function {
				kept = append(kept, s)
			}
		}
		sums = kept
	}
	return History{Fits: fits, Summaries: sums}, nil
}

// FitLines renders one row per fit, oldest first.
func FitLines(fits []model.FitRecord) []string {
	rows := make([][]string, 0, len(fits))
	for _, f := range fits {
		rows = append(rows, []string{
			f.CreatedAt.Local().Format(time.DateTime),
			f.Function,
			f.Title,
			fmt.Sprintf("[%s, %s]", num(f.Lo), num(f.Hi)),
			strconv.Itoa(f.Points),
			num(f.SSR),
			formatParams(f.Params),
		})
	}
	return formatTable([]string{"When", "Function", "Title", "Window", "N", "SSR", "Parameters"}, rows, map[int]bool{4: true, 5: true})
}

// SummaryLines renders one row per fitted function.
func SummaryLines(sums []model.FitAggregate) []string {
	rows := make([][]string, 0, len(sums))
	for _, s := range sums {
		rows = append(rows, []string{
			s.Function,
			strconv.Itoa(s.Fits),
			num(s.BestSSR),
			s.LastAt.Local().Format(time.DateTime),
		})
	}
	return formatTable([]string{"Function", "Fits", "Best SSR", "Last"}, rows, map[int]bool{1: true, 2: true})
}

// Write prints the history, or a notice when it is empty.
func (h History) Write(w io.Writer, summary bool) error {
	var lines []string
	switch {
	case summary && len(h.Summaries) > 0:
		lines = SummaryLines(h.Summaries)
	case !summary && len(h.Fits) > 0:
		lines = FitLines(h.Fits)
	default:
		lines = []string{"No fits recorded."}
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

func formatParams(params []model.ParamValue) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Name + "=" + num(p.Value)
		if p.StdErr > 0 {
			parts[i] += "±" + strconv.FormatFloat(p.StdErr, 'g', 2, 64)
		}
	}
	return strings.Join(parts, " ")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', 5, 64)
}
